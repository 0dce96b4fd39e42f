package messagestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/shanemcgraw/tillage-vestaboard/internal/boot"
	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
)

type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbName := path.Join(config.DataDir, "messages.db")

	db, err := sqlx.Connect("sqlite3", "file:"+dbName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists message(
		ID             text not null primary key,
		CreatedAt      DATETIME not null,
		ReviewedAt     DATETIME null,
		PostedAt       DATETIME null,
		Status         text not null default 'pending',
		SenderEmail    text not null,
		SenderName     text null,
		Subject        text not null,
		RawBody        text not null,
		CleanedBody    text not null,
		VestaboardText text not null,
		DedupKey       text null,
		ErrorMessage   text null
	)`)
	if err != nil {
		return fmt.Errorf("creating message table: %w", err)
	}

	// The uniqueness constraint is what makes deduplication race-free: two
	// concurrent deliveries of the same external message contend on the
	// index, not on an application-level read.
	_, err = s.db.Exec(`create unique index if not exists message_DedupKey
		on message(DedupKey) where DedupKey is not null`)
	if err != nil {
		return fmt.Errorf("creating dedup index: %w", err)
	}

	return nil
}

// Create inserts a new message, minting an ID and stamping CreatedAt. A
// message whose DedupKey is already stored is reported as
// model.ErrorDuplicateMessage and nothing is inserted.
func (s *Store) Create(message *model.Message) error {
	if message.ID == "" {
		message.ID = model.CreateID()
	}
	if message.Status == "" {
		message.Status = model.StatusPending
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExec(`insert into message
		(ID, CreatedAt, ReviewedAt, PostedAt, Status, SenderEmail, SenderName,
		 Subject, RawBody, CleanedBody, VestaboardText, DedupKey, ErrorMessage)
		values(:ID, :CreatedAt, :ReviewedAt, :PostedAt, :Status, :SenderEmail, :SenderName,
		 :Subject, :RawBody, :CleanedBody, :VestaboardText, :DedupKey, :ErrorMessage)`, message)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.ErrorDuplicateMessage
		}
		return fmt.Errorf("inserting message: %w", err)
	}

	return nil
}

func (s *Store) Get(id model.MessageID) (*model.Message, error) {
	message := &model.Message{}
	err := s.db.Get(message, `select * from message where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorMessageNotFound
		}
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return message, nil
}

// ListByStatus returns messages in the given status, newest first. A limit
// of zero or less returns everything.
func (s *Store) ListByStatus(status model.Status, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	messages := []model.Message{}
	err := s.db.Select(&messages,
		`select * from message where Status = ? order by CreatedAt desc limit ?`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// ListReviewed returns messages that have left the pending state, newest
// first, for the moderation history view.
func (s *Store) ListReviewed(limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	messages := []model.Message{}
	err := s.db.Select(&messages,
		`select * from message where Status != ? order by CreatedAt desc limit ?`,
		model.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reviewed messages: %w", err)
	}
	return messages, nil
}

// MarkApproved moves a pending message to approved, recording the reviewed
// board text. The status condition means exactly one of two concurrent
// moderation actions can win.
func (s *Store) MarkApproved(id model.MessageID, boardText string, reviewedAt time.Time) error {
	res, err := s.db.Exec(`update message
		set Status = ?, VestaboardText = ?, ReviewedAt = ?
		where ID = ? and Status = ?`,
		model.StatusApproved, boardText, reviewedAt, id, model.StatusPending)
	if err != nil {
		return fmt.Errorf("approving message: %w", err)
	}
	return requireRow(res)
}

// MarkRejected moves a pending message to rejected.
func (s *Store) MarkRejected(id model.MessageID, reviewedAt time.Time) error {
	res, err := s.db.Exec(`update message
		set Status = ?, ReviewedAt = ?
		where ID = ? and Status = ?`,
		model.StatusRejected, reviewedAt, id, model.StatusPending)
	if err != nil {
		return fmt.Errorf("rejecting message: %w", err)
	}
	return requireRow(res)
}

// MarkPosted records a successful post attempt, clearing any previous
// failure reason. from must be the status the caller last observed.
func (s *Store) MarkPosted(id model.MessageID, from model.Status, postedAt time.Time) error {
	res, err := s.db.Exec(`update message
		set Status = ?, PostedAt = ?, ErrorMessage = null
		where ID = ? and Status = ?`,
		model.StatusPosted, postedAt, id, from)
	if err != nil {
		return fmt.Errorf("marking message posted: %w", err)
	}
	return requireRow(res)
}

// MarkFailed records a failed post attempt with the reason reported by the
// device API. A failed retry passes from == StatusFailed and just refreshes
// the reason.
func (s *Store) MarkFailed(id model.MessageID, from model.Status, reason string) error {
	res, err := s.db.Exec(`update message
		set Status = ?, ErrorMessage = ?
		where ID = ? and Status = ?`,
		model.StatusFailed, reason, id, from)
	if err != nil {
		return fmt.Errorf("marking message failed: %w", err)
	}
	return requireRow(res)
}

// Delete removes a message, permitted only from the failed status.
func (s *Store) Delete(id model.MessageID) error {
	res, err := s.db.Exec(`delete from message where ID = ? and Status = ?`,
		id, model.StatusFailed)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows == 0 {
		return model.ErrorNotDeletable
	}
	return nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrorStaleStatus
	}
	return nil
}

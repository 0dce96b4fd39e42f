package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
	"github.com/shanemcgraw/tillage-vestaboard/pkg/board"
)

// MessageStore is the slice of the storage collaborator the lifecycle needs.
// Transition methods are conditioned on the expected prior status so that
// concurrent moderation actions on one message cannot both succeed.
type MessageStore interface {
	Create(message *model.Message) error
	Get(id model.MessageID) (*model.Message, error)
	MarkApproved(id model.MessageID, boardText string, reviewedAt time.Time) error
	MarkRejected(id model.MessageID, reviewedAt time.Time) error
	MarkPosted(id model.MessageID, from model.Status, postedAt time.Time) error
	MarkFailed(id model.MessageID, from model.Status, reason string) error
	Delete(id model.MessageID) error
}

type BoardPoster interface {
	Post(ctx context.Context, boardText string) error
}

type service struct {
	store  MessageStore
	poster BoardPoster
}

func New(store MessageStore, poster BoardPoster) *service {
	return &service{store: store, poster: poster}
}

// Approve moves a pending message to approved with the moderator's (possibly
// edited) text and immediately attempts the post. The returned message
// reflects the outcome: posted on success, failed with the reason otherwise.
func (s *service) Approve(ctx context.Context, id model.MessageID, editedText string) (*model.Message, error) {
	boardText := board.Compose(board.Normalize(editedText), board.Rows, board.Cols)

	if err := s.store.MarkApproved(id, boardText, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("approving message: %w", err)
	}

	return s.attemptPost(ctx, id, model.StatusApproved, boardText)
}

// Reject is terminal; no post attempt is made.
func (s *service) Reject(ctx context.Context, id model.MessageID) (*model.Message, error) {
	if err := s.store.MarkRejected(id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("rejecting message: %w", err)
	}
	return s.store.Get(id)
}

// Retry re-posts a failed message with its stored text unchanged. Success
// clears the recorded failure; another failure refreshes it.
func (s *service) Retry(ctx context.Context, id model.MessageID) (*model.Message, error) {
	message, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if message.Status != model.StatusFailed {
		return nil, model.ErrorStaleStatus
	}

	return s.attemptPost(ctx, id, model.StatusFailed, message.VestaboardText)
}

// Delete removes a message; the store only permits this from failed.
func (s *service) Delete(ctx context.Context, id model.MessageID) error {
	return s.store.Delete(id)
}

// Compose creates a moderator-written message that skips review and goes
// straight to a post attempt.
func (s *service) Compose(ctx context.Context, text string) (*model.Message, error) {
	boardText := board.Compose(board.Normalize(text), board.Rows, board.Cols)

	now := time.Now().UTC()
	senderName := "Admin"
	message := &model.Message{
		SenderEmail:    "admin@board",
		SenderName:     &senderName,
		Subject:        "Admin Compose",
		RawBody:        text,
		CleanedBody:    text,
		VestaboardText: boardText,
		Status:         model.StatusApproved,
		ReviewedAt:     &now,
	}
	if err := s.store.Create(message); err != nil {
		return nil, fmt.Errorf("creating composed message: %w", err)
	}

	return s.attemptPost(ctx, message.ID, model.StatusApproved, boardText)
}

// attemptPost resolves a post attempt into posted or failed; the attempt is
// never allowed to leave the message in an in-between status, and post
// errors are recorded rather than returned.
func (s *service) attemptPost(ctx context.Context, id model.MessageID, from model.Status, boardText string) (*model.Message, error) {
	if postErr := s.poster.Post(ctx, boardText); postErr != nil {
		if err := s.store.MarkFailed(id, from, postErr.Error()); err != nil {
			return nil, fmt.Errorf("recording post failure: %w", err)
		}
	} else {
		if err := s.store.MarkPosted(id, from, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("recording post success: %w", err)
		}
	}

	return s.store.Get(id)
}

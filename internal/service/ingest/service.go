package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/shanemcgraw/tillage-vestaboard/internal/mailparse"
	"github.com/shanemcgraw/tillage-vestaboard/internal/model"
	"github.com/shanemcgraw/tillage-vestaboard/pkg/board"
)

type MessageStore interface {
	Create(message *model.Message) error
}

type Mailer interface {
	SendAutoReply(ctx context.Context, toEmail, originalSubject string) error
}

type EmailParams struct {
	From    string
	Subject string
	Text    string
	HTML    string
	Headers string
}

type WebParams struct {
	Name  string
	Email string
	Text  string
}

type service struct {
	store  MessageStore
	mailer Mailer
}

func New(store MessageStore, mailer Mailer) *service {
	return &service{store: store, mailer: mailer}
}

// SubmitEmail records an inbound email as a pending message. The email's
// Message-ID header is the dedup key: a redelivery of an already-stored
// message is discarded with no new record, no auto-reply and no error —
// created reports whether a record was actually made.
func (s *service) SubmitEmail(ctx context.Context, params EmailParams) (message *model.Message, created bool, err error) {
	senderName, senderEmail := mailparse.ParseAddress(params.From)

	var dedupKey *string
	if id := mailparse.MessageID(params.Headers); id != "" {
		dedupKey = &id
	}

	rawBody := mailparse.ExtractPlainText(params.Text, params.HTML)
	cleanedBody := mailparse.CleanBody(rawBody)

	message = &model.Message{
		SenderEmail:    senderEmail,
		Subject:        params.Subject,
		RawBody:        rawBody,
		CleanedBody:    cleanedBody,
		VestaboardText: board.Compose(board.Normalize(cleanedBody), board.Rows, board.Cols),
		DedupKey:       dedupKey,
	}
	if senderName != "" {
		message.SenderName = &senderName
	}

	if err := s.store.Create(message); err != nil {
		if errors.Is(err, model.ErrorDuplicateMessage) {
			log.Infof("duplicate email discarded: %s", params.Subject)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storing email message: %w", err)
	}

	// best-effort: a failed auto-reply never fails the ingestion
	if senderEmail != "" {
		if err := s.mailer.SendAutoReply(ctx, senderEmail, params.Subject); err != nil {
			log.Errorf("sending auto-reply to %s: %v", senderEmail, err)
		}
	}

	return message, true, nil
}

// SubmitWeb records a web-form submission as a pending message. Form
// submissions carry no external identifier, so they are never deduplicated.
func (s *service) SubmitWeb(ctx context.Context, params WebParams) (*model.Message, error) {
	cleanedBody := strings.TrimSpace(params.Text)

	message := &model.Message{
		SenderEmail:    strings.TrimSpace(params.Email),
		Subject:        "Web Submission",
		RawBody:        cleanedBody,
		CleanedBody:    cleanedBody,
		VestaboardText: board.Compose(board.Normalize(cleanedBody), board.Rows, board.Cols),
	}
	if name := strings.TrimSpace(params.Name); name != "" {
		message.SenderName = &name
	}

	if err := s.store.Create(message); err != nil {
		return nil, fmt.Errorf("storing web message: %w", err)
	}

	return message, nil
}

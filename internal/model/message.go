package model

import (
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

type MessageID string

// Status is a message's position in the moderation lifecycle. The stored
// value changes only through the moderation service's transitions.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPosted   Status = "posted"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

type Message struct {
	ID             MessageID  `db:"ID"`
	CreatedAt      time.Time  `db:"CreatedAt"`
	ReviewedAt     *time.Time `db:"ReviewedAt"`
	PostedAt       *time.Time `db:"PostedAt"`
	Status         Status     `db:"Status"`
	SenderEmail    string     `db:"SenderEmail"`
	SenderName     *string    `db:"SenderName"`
	Subject        string     `db:"Subject"`
	RawBody        string     `db:"RawBody"`
	CleanedBody    string     `db:"CleanedBody"`
	VestaboardText string     `db:"VestaboardText"`
	DedupKey       *string    `db:"DedupKey"` // e.g. an email Message-ID
	ErrorMessage   *string    `db:"ErrorMessage"`
}

func CreateID() MessageID {
	uuid, _ := uuid.NewRandom()
	return MessageID(base58.Encode(uuid[:]))
}

package message

import (
	"errors"
	"strings"
	"time"
)

// Validation errors reported before anything touches persistence.
var (
	ErrMissingParty = errors.New("message: from and to are required")
	ErrEmptyBody    = errors.New("message: text must not be empty")
)

// Message is an immutable entry in the conversation between From and To.
// ID and CreatedAt are assigned by the store on insert.
type Message struct {
	ID        string    `db:"id"`
	From      string    `db:"from_id"`
	To        string    `db:"to_id"`
	Text      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
func NewMessage(from, to, text string) (*Message, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, ErrMissingParty
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyBody
	}
	return &Message{From: from, To: to, Text: text}, nil
}

// IsValidationError tells whether err is one of the pre-persistence
// validation failures, so transports can map it to a client error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingParty) || errors.Is(err, ErrEmptyBody)
}

package repository

import (
	"context"

	message "go-chatline/internal/pkg/message/domain"
)

// MessageRepository defines persistence operations for the message store.
// SaveMessage is append-only; stored messages are never updated in place,
// so concurrent saves cannot corrupt history.
type MessageRepository interface {
	// SaveMessage persists m and returns it with the store-assigned ID and
	// CreatedAt filled in.
	SaveMessage(ctx context.Context, m message.Message) (message.Message, error)

	// GetMessagesBetween returns every message whose unordered {from,to} pair
	// equals {userA,userB}, in creation order. The result is symmetric in its
	// arguments and empty (not nil error) when no messages exist.
	GetMessagesBetween(ctx context.Context, userA, userB string) ([]message.Message, error)
}

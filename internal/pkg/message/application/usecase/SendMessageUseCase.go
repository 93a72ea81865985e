package usecase

import (
	"context"
	"fmt"

	message "go-chatline/internal/pkg/message/domain"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

// SendMessageInput carries the data needed to append a message to the store.
type SendMessageInput struct {
	From string
	To   string
	Text string
}

// SendMessageUseCase validates and persists a new message. The store assigns
// the ID and timestamp; a storage failure is wrapped in ErrPersistence and
// nothing is written.
type SendMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewSendMessageUseCase(repo repository.MessageRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

// Execute persists the message and returns it with store-assigned fields.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*message.Message, error) {
	msg, err := message.NewMessage(in.From, in.To, in.Text)
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &saved, nil
}

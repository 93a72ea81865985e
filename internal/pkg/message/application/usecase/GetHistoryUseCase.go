package usecase

import (
	"context"
	"fmt"

	message "go-chatline/internal/pkg/message/domain"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

// GetHistoryInput identifies the conversation pair. From is the requesting
// user; presentation layers compute fromSelf relative to it.
type GetHistoryInput struct {
	From string
	To   string
}

// GetHistoryUseCase fetches the full conversation between two users in
// creation order. The pair lookup is symmetric: swapping From and To returns
// the same messages.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

// Execute returns the conversation history relative to in.From.
func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]message.Message, error) {
	if in.From == "" || in.To == "" {
		return nil, message.ErrMissingParty
	}
	msgs, err := uc.Repo.GetMessagesBetween(ctx, in.From, in.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}

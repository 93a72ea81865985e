package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	qport "go-chatline/internal/infrastructure/queue/port"
	"go-chatline/internal/pkg/message/application/usecase"
	message "go-chatline/internal/pkg/message/domain"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

// ArchiveExchangeTaskType is the queue task name for persisting a completed
// question/answer exchange off the request path.
const ArchiveExchangeTaskType = "chat:archive_exchange"

// ArchiveExchangePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid coupling queue wire format to
// domain JSON tags.
type ArchiveExchangePayload struct {
	Username    string `json:"username"`
	AssistantID string `json:"assistantId"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
}

// NewArchiveExchangeHandler builds the handler persisting both directions of
// the exchange: the question from the user and the answer from the
// assistant. Both saves go through the regular send use case so validation
// and store-assigned timestamps apply.
func NewArchiveExchangeHandler(repo repository.MessageRepository, logger *logrus.Logger) qport.Handler {
	uc := usecase.NewSendMessageUseCase(repo)
	return func(ctx context.Context, t qport.Task) error {
		var p ArchiveExchangePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload will never succeed; log and drop.
			logger.WithError(err).Error("archive exchange: bad payload")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if _, err := uc.Execute(ctx, usecase.SendMessageInput{
			From: p.Username, To: p.AssistantID, Text: p.Question,
		}); err != nil {
			if message.IsValidationError(err) {
				// A payload that fails validation fails on every retry; drop it.
				logger.WithError(err).Error("archive exchange: invalid question")
				return nil
			}
			return err
		}
		if _, err := uc.Execute(ctx, usecase.SendMessageInput{
			From: p.AssistantID, To: p.Username, Text: p.Answer,
		}); err != nil {
			if message.IsValidationError(err) {
				logger.WithError(err).Error("archive exchange: invalid answer")
				return nil
			}
			return err
		}
		return nil
	}
}

// RegisterArchiveExchangeTask binds the handler to the queue server.
func RegisterArchiveExchangeTask(srv qport.Server, repo repository.MessageRepository, logger *logrus.Logger) {
	srv.Register(ArchiveExchangeTaskType, NewArchiveExchangeHandler(repo, logger))
}

package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-chatline/internal/pkg/message/application/usecase"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

// ChatHistoryController returns the stored exchange between a user and the
// assistant as {sender, message} entries.
type ChatHistoryController struct {
	UC     *usecase.GetHistoryUseCase
	logger *logrus.Logger
}

func NewChatHistoryController(repo repository.MessageRepository, logger *logrus.Logger) *ChatHistoryController {
	return &ChatHistoryController{UC: usecase.NewGetHistoryUseCase(repo), logger: logger}
}

func (h *ChatHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{From: username, To: AssistantID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
				h.logger.WithError(err).Error("chat history failed")
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			sender := "ai"
			if m.From == username {
				sender = "user"
			}
			out = append(out, gin.H{"sender": sender, "message": m.Text})
		}
		c.JSON(http.StatusOK, out)
	}
}

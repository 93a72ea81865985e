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

// GetMessagesController handles the conversation-history endpoint (one
// controller per endpoint). fromSelf in the response is computed relative to
// the requesting user.
type GetMessagesController struct {
	UC     *usecase.GetHistoryUseCase
	logger *logrus.Logger
}

func NewGetMessagesController(repo repository.MessageRepository, logger *logrus.Logger) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetHistoryUseCase(repo), logger: logger}
}

type getMessagesRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req getMessagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{From: req.From, To: req.To})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
				h.logger.WithError(err).Error("get messages failed")
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"fromSelf": m.From == req.From,
				"message":  m.Text,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

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

// AddMessageController handles the send-message endpoint only (one controller
// per endpoint). Persistence is synchronous: the timestamp in the response is
// the store-assigned one.
type AddMessageController struct {
	UC     *usecase.SendMessageUseCase
	logger *logrus.Logger
}

func NewAddMessageController(repo repository.MessageRepository, logger *logrus.Logger) *AddMessageController {
	return &AddMessageController{UC: usecase.NewSendMessageUseCase(repo), logger: logger}
}

// addMessageRequest is the DTO for the HTTP request body.
type addMessageRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *AddMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			From: req.From,
			To:   req.To,
			Text: req.Message,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
				h.logger.WithError(err).Error("add message failed")
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    true,
			"id":        msg.ID,
			"timestamp": msg.CreatedAt,
		})
	}
}

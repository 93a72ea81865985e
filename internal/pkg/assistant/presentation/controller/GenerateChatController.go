package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	qport "go-chatline/internal/infrastructure/queue/port"
	"go-chatline/internal/pkg/assistant/application/task"
	responder "go-chatline/internal/pkg/assistant/responder/port"
)

// AssistantID is the peer identity under which generated exchanges are
// stored in the message store.
const AssistantID = "assistant"

// GenerateChatController handles the request/response chat variant: it asks
// the responder synchronously, replies, and archives the exchange through
// the background queue. Archival is best-effort and never delays or fails
// the reply.
type GenerateChatController struct {
	responder responder.Responder
	queue     qport.Client
	logger    *logrus.Logger
}

func NewGenerateChatController(r responder.Responder, q qport.Client, logger *logrus.Logger) *GenerateChatController {
	return &GenerateChatController{responder: r, queue: q, logger: logger}
}

type generateChatRequest struct {
	Username string `json:"username" binding:"required"`
	Question string `json:"question" binding:"required"`
}

func (h *GenerateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		answer, err := h.responder.Generate(ctx, req.Username, req.Question)
		if err != nil {
			h.logger.WithField("user", req.Username).WithError(err).Error("generate failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate a response"})
			return
		}

		h.archive(c.Request.Context(), req.Username, req.Question, answer)

		c.JSON(http.StatusOK, gin.H{"generated_text": answer})
	}
}

func (h *GenerateChatController) archive(ctx context.Context, username, question, answer string) {
	payload, err := json.Marshal(task.ArchiveExchangePayload{
		Username:    username,
		AssistantID: AssistantID,
		Question:    question,
		Answer:      answer,
	})
	if err != nil {
		h.logger.WithError(err).Error("archive exchange: encode payload")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	opts := qport.EnqueueOption{Queue: "chat", MaxRetry: 20}
	if _, err := h.queue.Enqueue(ctx, qport.Task{Type: task.ArchiveExchangeTaskType, Payload: payload}, opts); err != nil {
		h.logger.WithField("user", username).WithError(err).Error("archive exchange: enqueue failed")
	}
}

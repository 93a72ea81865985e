package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	qport "go-chatline/internal/infrastructure/queue/port"
	"go-chatline/internal/infrastructure/realtime"
	assistantHandler "go-chatline/internal/pkg/assistant/presentation/http"
	responder "go-chatline/internal/pkg/assistant/responder/port"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
	messageHandler "go-chatline/internal/pkg/message/presentation/http"
)

// RegisterRoutes mounts all API routes under /api.
func RegisterRoutes(r *gin.Engine, repo repository.MessageRepository, presence *realtime.Presence, relay *realtime.Relay, rsp responder.Responder, queue qport.Client, logger *logrus.Logger) {
	api := r.Group("/api")
	messageHandler.RegisterRoutes(api, repo, presence, relay, logger)
	assistantHandler.RegisterRoutes(api, rsp, queue, repo, logger)
}

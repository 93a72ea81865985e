package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	qport "go-chatline/internal/infrastructure/queue/port"
	"go-chatline/internal/pkg/assistant/presentation/controller"
	responder "go-chatline/internal/pkg/assistant/responder/port"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

// RegisterRoutes registers the request/response chat variant endpoints.
// The generate route is only mounted when a responder is configured.
func RegisterRoutes(g *gin.RouterGroup, r responder.Responder, q qport.Client, repo repository.MessageRepository, logger *logrus.Logger) {
	historyCtl := controller.NewChatHistoryController(repo, logger)

	// GET /api/chat/history/:username -> stored assistant exchange
	g.GET("/chat/history/:username", historyCtl.Handle())

	if r != nil && q != nil {
		generateCtl := controller.NewGenerateChatController(r, q, logger)

		// POST /api/chat/generate -> synchronous generate-and-respond
		g.POST("/chat/generate", generateCtl.Handle())
	}
}

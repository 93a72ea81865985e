package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-chatline/internal/infrastructure/realtime"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
	"go-chatline/internal/pkg/message/presentation/controller"
)

// RegisterRoutes registers message endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, repo repository.MessageRepository, presence *realtime.Presence, relay *realtime.Relay, logger *logrus.Logger) {
	addCtl := controller.NewAddMessageController(repo, logger)
	getCtl := controller.NewGetMessagesController(repo, logger)
	liveCtl := controller.NewLiveSocketController(presence, relay, logger)

	// POST /api/messages/addmsg -> persist a message
	g.POST("/messages/addmsg", addCtl.Handle())

	// POST /api/messages/getmsg -> conversation history for a pair
	g.POST("/messages/getmsg", getCtl.Handle())

	// GET /api/messages/ws -> websocket endpoint for live delivery
	g.GET("/messages/ws", liveCtl.Handle())
}

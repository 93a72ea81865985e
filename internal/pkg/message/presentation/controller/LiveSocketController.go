package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"go-chatline/internal/infrastructure/realtime"
)

// LiveSocketController handles the websocket endpoint for live message
// traffic. The socket path only relays: the durable record is the addmsg
// call the client issues alongside the live send.
type LiveSocketController struct {
	presence *realtime.Presence
	relay    *realtime.Relay
	logger   *logrus.Logger
}

func NewLiveSocketController(presence *realtime.Presence, relay *realtime.Relay, logger *logrus.Logger) *LiveSocketController {
	return &LiveSocketController{presence: presence, relay: relay, logger: logger}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

// ReceiveFrame is the payload pushed to a recipient's connection.
type ReceiveFrame struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type ackFrame struct {
	Type string `json:"type"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection, binds it in the presence directory and
// relays send frames until the client disconnects.
func (ctl *LiveSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Query("user_id"))
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		ctl.presence.Bind(userID, conn)
		defer func() {
			ctl.presence.Unbind(userID, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ctl.logger.WithFields(logrus.Fields{"user": userID, "conn": conn.ID}).Info("live session opened")

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.logger.WithField("user", userID).WithError(err).Debug("live session read failed")
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "register":
				ctl.handleRegister(conn, userID, frame)
			case "send":
				ctl.handleSend(conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleRegister rebinds the connection. The bind already happened at
// upgrade time from the query param; an explicit frame refreshes it, which
// matters after the server evicted the entry for a dead handle.
func (ctl *LiveSocketController) handleRegister(conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.UserID != "" && frame.UserID != userID {
		ctl.replyError(conn, "forbidden", "cannot register as another user")
		return
	}
	ctl.presence.Bind(userID, conn)
	if payload, err := json.Marshal(ackFrame{Type: "registered"}); err == nil {
		_ = conn.Send(payload)
	}
}

// handleSend relays the message to the recipient's connection if one is
// bound. An offline recipient is a silent drop; the sender learns nothing.
func (ctl *LiveSocketController) handleSend(conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.To == "" || frame.Message == "" {
		ctl.replyError(conn, "bad_request", "to and message are required")
		return
	}
	from := frame.From
	if from == "" {
		from = userID
	}

	payload, err := json.Marshal(ReceiveFrame{Type: "receive", From: from, Message: frame.Message})
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}
	ctl.relay.Push(frame.To, payload)
}

func (ctl *LiveSocketController) replyError(conn *realtime.Connection, code string, message string) {
	if payload, err := json.Marshal(errorFrame{Type: "error", Code: code, Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}

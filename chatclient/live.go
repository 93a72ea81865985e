package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// LiveSender pushes a message over the realtime channel. Delivery is
// best-effort: an offline recipient is dropped server-side without notice.
type LiveSender interface {
	Send(to, from, text string) error
	Close() error
}

// LiveClient is the websocket side of a chat session. Reads run on their
// own goroutine and are handed to a receive handler; writes are serialized
// under a mutex because the underlying connection allows one writer.
type LiveClient struct {
	conn   *websocket.Conn
	logger *logrus.Logger

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

var _ LiveSender = (*LiveClient)(nil)

type liveFrame struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

// DialLive connects to the backend's websocket endpoint and registers
// userID in the server's presence directory.
func DialLive(ctx context.Context, baseURL, userID string, logger *logrus.Logger) (*LiveClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/api/messages/ws")
	if err != nil {
		return nil, fmt.Errorf("chatclient: parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("chatclient: dial live: %w", err)
	}

	c := &LiveClient{conn: conn, logger: logger, done: make(chan struct{})}
	if err := c.writeFrame(liveFrame{Type: "register", UserID: userID}); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Listen consumes incoming frames and invokes onReceive for each pushed
// message. It blocks until the connection closes, so run it on its own
// goroutine.
func (c *LiveClient) Listen(onReceive func(from, text string)) {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.WithError(err).Debug("live connection closed")
			}
			return
		}

		var frame liveFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.WithError(err).Debug("dropping unreadable live frame")
			continue
		}
		if frame.Type == "receive" {
			onReceive(frame.From, frame.Message)
		}
	}
}

// Send pushes a live message toward the recipient.
func (c *LiveClient) Send(to, from, text string) error {
	return c.writeFrame(liveFrame{Type: "send", To: to, From: from, Message: text})
}

// Close terminates the connection. Safe to call more than once.
func (c *LiveClient) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *LiveClient) writeFrame(frame liveFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("chatclient: encode frame: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

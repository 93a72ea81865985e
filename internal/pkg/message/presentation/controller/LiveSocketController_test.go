package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"go-chatline/internal/infrastructure/realtime"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newLiveServer(t *testing.T) (*httptest.Server, *realtime.Presence) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	presence := realtime.NewPresence()
	relay := realtime.NewRelay(presence, testLogger())
	ctl := NewLiveSocketController(presence, relay, testLogger())

	r := gin.New()
	r.GET("/api/messages/ws", ctl.Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, presence
}

func dialLive(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	req := require.New(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/messages/ws?user_id=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	t.Cleanup(func() { conn.Close() })

	// Consume the handshake ack.
	var ack map[string]any
	req.NoError(conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	req.NoError(conn.ReadJSON(&ack))
	req.Equal("connected", ack["type"])
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	req := require.New(t)
	var frame map[string]any
	req.NoError(conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	req.NoError(conn.ReadJSON(&frame))
	return frame
}

func TestLiveSocket_DeliversToOnlineRecipient(t *testing.T) {
	req := require.New(t)
	srv, _ := newLiveServer(t)

	alice := dialLive(t, srv, "alice")
	bob := dialLive(t, srv, "bob")

	payload, err := json.Marshal(map[string]string{
		"type": "send", "to": "bob", "from": "alice", "message": "hi",
	})
	req.NoError(err)
	req.NoError(alice.WriteMessage(websocket.TextMessage, payload))

	frame := readFrame(t, bob)
	req.Equal("receive", frame["type"])
	req.Equal("alice", frame["from"])
	req.Equal("hi", frame["message"])
}

func TestLiveSocket_OfflineRecipientIsSilentlyDropped(t *testing.T) {
	req := require.New(t)
	srv, _ := newLiveServer(t)

	alice := dialLive(t, srv, "alice")
	bob := dialLive(t, srv, "bob")

	// A message to an unknown recipient vanishes without an error frame.
	drop, err := json.Marshal(map[string]string{
		"type": "send", "to": "ghost", "from": "alice", "message": "anyone there?",
	})
	req.NoError(err)
	req.NoError(alice.WriteMessage(websocket.TextMessage, drop))

	// The connection is still healthy: a follow-up to bob arrives, and it is
	// the first and only frame bob sees.
	hello, err := json.Marshal(map[string]string{
		"type": "send", "to": "bob", "from": "alice", "message": "hello bob",
	})
	req.NoError(err)
	req.NoError(alice.WriteMessage(websocket.TextMessage, hello))

	frame := readFrame(t, bob)
	req.Equal("hello bob", frame["message"])
}

func TestLiveSocket_RejectsMissingUserID(t *testing.T) {
	req := require.New(t)
	srv, _ := newLiveServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/messages/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.Error(err)
	req.NotNil(resp)
	req.Equal(400, resp.StatusCode)
}

func TestLiveSocket_BadFrameGetsErrorReply(t *testing.T) {
	req := require.New(t)
	srv, _ := newLiveServer(t)

	alice := dialLive(t, srv, "alice")
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json")))

	frame := readFrame(t, alice)
	req.Equal("error", frame["type"])
	req.Equal("bad_request", frame["code"])
}

func TestLiveSocket_DisconnectUnbindsPresence(t *testing.T) {
	req := require.New(t)
	srv, presence := newLiveServer(t)

	alice := dialLive(t, srv, "alice")
	req.Eventually(func() bool {
		_, ok := presence.Resolve("alice")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	req.NoError(alice.Close())
	req.Eventually(func() bool {
		_, ok := presence.Resolve("alice")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

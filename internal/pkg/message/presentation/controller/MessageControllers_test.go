package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	message "go-chatline/internal/pkg/message/domain"
)

type memRepo struct {
	mu      sync.Mutex
	msgs    []message.Message
	saveErr error
}

func (r *memRepo) SaveMessage(ctx context.Context, m message.Message) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return message.Message{}, r.saveErr
	}
	m.ID = fmt.Sprintf("m-%d", len(r.msgs)+1)
	m.CreatedAt = time.Now()
	r.msgs = append(r.msgs, m)
	return m, nil
}

func (r *memRepo) GetMessagesBetween(ctx context.Context, userA, userB string) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]message.Message, 0)
	for _, m := range r.msgs {
		if (m.From == userA && m.To == userB) || (m.From == userB && m.To == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newMessageRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/messages/addmsg", NewAddMessageController(repo, testLogger()).Handle())
	r.POST("/api/messages/getmsg", NewGetMessagesController(repo, testLogger()).Handle())
	return r
}

func TestAddMessage_PersistsAndAcks(t *testing.T) {
	req := require.New(t)
	repo := &memRepo{}
	r := newMessageRouter(repo)

	w := postJSON(t, r, "/api/messages/addmsg", map[string]string{
		"from": "alice", "to": "bob", "message": "hi",
	})
	req.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Equal(true, resp["status"])
	req.NotEmpty(resp["id"])
	req.NotEmpty(resp["timestamp"])

	msgs, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("hi", msgs[0].Text)
}

func TestAddMessage_MissingFieldsRejected(t *testing.T) {
	req := require.New(t)
	repo := &memRepo{}
	r := newMessageRouter(repo)

	w := postJSON(t, r, "/api/messages/addmsg", map[string]string{"from": "alice"})
	req.Equal(http.StatusBadRequest, w.Code)
	req.Empty(repo.msgs)
}

func TestAddMessage_StorageUnavailableIsServerError(t *testing.T) {
	req := require.New(t)
	repo := &memRepo{saveErr: fmt.Errorf("connection refused")}
	r := newMessageRouter(repo)

	w := postJSON(t, r, "/api/messages/addmsg", map[string]string{
		"from": "alice", "to": "bob", "message": "hi",
	})
	req.Equal(http.StatusInternalServerError, w.Code)
}

func TestGetMessages_FromSelfRelativeToRequester(t *testing.T) {
	req := require.New(t)
	repo := &memRepo{}
	r := newMessageRouter(repo)

	_, err := repo.SaveMessage(context.Background(), message.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)
	_, err = repo.SaveMessage(context.Background(), message.Message{From: "bob", To: "alice", Text: "hello"})
	req.NoError(err)

	w := postJSON(t, r, "/api/messages/getmsg", map[string]string{"from": "bob", "to": "alice"})
	req.Equal(http.StatusOK, w.Code)

	var resp []struct {
		FromSelf bool   `json:"fromSelf"`
		Message  string `json:"message"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Len(resp, 2)
	req.False(resp[0].FromSelf)
	req.Equal("hi", resp[0].Message)
	req.True(resp[1].FromSelf)
	req.Equal("hello", resp[1].Message)
}

func TestGetMessages_EmptyConversation(t *testing.T) {
	req := require.New(t)
	r := newMessageRouter(&memRepo{})

	w := postJSON(t, r, "/api/messages/getmsg", map[string]string{"from": "alice", "to": "bob"})
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq("[]", w.Body.String())
}

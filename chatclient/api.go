package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// API is the request/response surface the session persists and loads
// through. Implementations must be safe for concurrent use.
type API interface {
	// AddMessage persists a message; the server assigns the timestamp.
	AddMessage(ctx context.Context, from, to, text string) error

	// GetMessages returns the conversation history between from and to,
	// with FromSelf computed relative to from.
	GetMessages(ctx context.Context, from, to string) ([]HistoryEntry, error)
}

// HistoryEntry is one message of a fetched conversation.
type HistoryEntry struct {
	FromSelf bool   `json:"fromSelf"`
	Message  string `json:"message"`
}

// HTTPAPI talks to the messaging backend's REST endpoints.
type HTTPAPI struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAPI constructs an API client for the given base URL
// (e.g. "http://localhost:8080").
func NewHTTPAPI(baseURL string) *HTTPAPI {
	return &HTTPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ API = (*HTTPAPI)(nil)

type addMessageRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type getMessagesRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (a *HTTPAPI) AddMessage(ctx context.Context, from, to, text string) error {
	return a.post(ctx, "/api/messages/addmsg", addMessageRequest{From: from, To: to, Message: text}, nil)
}

func (a *HTTPAPI) GetMessages(ctx context.Context, from, to string) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := a.post(ctx, "/api/messages/getmsg", getMessagesRequest{From: from, To: to}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HTTPAPI) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("chatclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chatclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("chatclient: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chatclient: %s: unexpected status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("chatclient: decode response: %w", err)
		}
	}
	return nil
}

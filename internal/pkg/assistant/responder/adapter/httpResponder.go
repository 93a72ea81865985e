package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-chatline/internal/pkg/assistant/responder/port"
)

// HTTPResponder calls the external generate service over HTTP. The service
// accepts {username, question} and answers {generated_text}.
type HTTPResponder struct {
	url    string
	client *http.Client
}

func NewHTTPResponder(url string) (*HTTPResponder, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("responder: url is required")
	}
	return &HTTPResponder{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var _ port.Responder = (*HTTPResponder)(nil)

type generateRequest struct {
	Username string `json:"username"`
	Question string `json:"question"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (r *HTTPResponder) Generate(ctx context.Context, username, question string) (string, error) {
	body, err := json.Marshal(generateRequest{Username: username, Question: question})
	if err != nil {
		return "", fmt.Errorf("responder: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("responder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("responder: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("responder: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("responder: decode response: %w", err)
	}
	if out.GeneratedText == "" {
		return "", errors.New("responder: empty generated_text")
	}
	return out.GeneratedText, nil
}

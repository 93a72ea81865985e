// Package chatclient implements the client side of the chat application:
// a per-user session holding the local view of one open conversation,
// backed by the REST endpoints for history and persistence and the
// websocket channel for live delivery.
package chatclient

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Open dials the live channel, starts a session for user and routes pushed
// messages into it. The caller owns the returned session and must Close it.
func Open(ctx context.Context, baseURL, user string, logger *logrus.Logger) (*Session, error) {
	live, err := DialLive(ctx, baseURL, user, logger)
	if err != nil {
		return nil, err
	}
	s := NewSession(user, NewHTTPAPI(baseURL), live, logger)
	go live.Listen(s.Deliver)
	return s, nil
}

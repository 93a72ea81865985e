package port

import "context"

// Responder produces an answer to a user's question. The actual model
// service is an external collaborator behind this port.
type Responder interface {
	Generate(ctx context.Context, username, question string) (string, error)
}

package realtime

import "github.com/sirupsen/logrus"

// Relay pushes payloads to online recipients through the presence directory.
// An offline recipient is a silent best-effort drop: callers rely on the
// message store as the durable record, not on the relay.
type Relay struct {
	presence *Presence
	logger   *logrus.Logger
}

func NewRelay(presence *Presence, logger *logrus.Logger) *Relay {
	return &Relay{presence: presence, logger: logger}
}

// Push delivers payload to toUserID's connection if one is bound. It returns
// whether the payload was accepted for delivery; a dead or missing handle is
// a no-op, never an error.
func (r *Relay) Push(toUserID string, payload []byte) bool {
	sender, ok := r.presence.Resolve(toUserID)
	if !ok {
		r.logger.WithField("to", toUserID).Debug("relay drop: recipient offline")
		return false
	}
	if err := sender.Send(payload); err != nil {
		r.logger.WithField("to", toUserID).WithError(err).Debug("relay drop: dead connection")
		return false
	}
	return true
}

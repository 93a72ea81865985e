package realtime

import "sync"

// CloseReplaced is the close code sent to a connection displaced by a newer
// bind for the same user.
const CloseReplaced = 4001

// Presence is the process-wide directory from user ID to live connection.
// One handle per user, last write wins. All operations are atomic under a
// single mutex; a bind for one user is never observably torn by another.
type Presence struct {
	mu    sync.RWMutex
	users map[string]Sender
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]Sender)}
}

// Bind registers sender as the live connection for userID, overwriting any
// prior binding. The displaced handle, if any, is closed after the swap so
// it is no longer addressable.
func (p *Presence) Bind(userID string, sender Sender) {
	p.mu.Lock()
	previous := p.users[userID]
	p.users[userID] = sender
	p.mu.Unlock()

	if previous != nil && previous != sender {
		previous.Close(CloseReplaced, "session replaced")
	}
}

// Resolve returns the live connection for userID, if any.
func (p *Presence) Resolve(userID string) (Sender, bool) {
	p.mu.RLock()
	sender, ok := p.users[userID]
	p.mu.RUnlock()
	return sender, ok
}

// Unbind removes the entry for userID only while it still maps to sender.
// A disconnect racing a newer bind must not evict the newer session.
func (p *Presence) Unbind(userID string, sender Sender) {
	p.mu.Lock()
	if current, ok := p.users[userID]; ok && current == sender {
		delete(p.users, userID)
	}
	p.mu.Unlock()
}

// Online reports the number of bound users.
func (p *Presence) Online() int {
	p.mu.RLock()
	n := len(p.users)
	p.mu.RUnlock()
	return n
}

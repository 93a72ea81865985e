package chatclient

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle of the open conversation.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Entry is one line of the local chat state. The ID is assigned at append
// time so the entry has a stable identity from the moment it is shown.
type Entry struct {
	ID       string
	FromSelf bool
	Text     string
}

// ErrNotReady is returned by Send when no conversation is open.
var ErrNotReady = errors.New("chatclient: no conversation is ready")

// ErrClosed is returned when the session was closed before or while an
// operation was in flight.
var ErrClosed = errors.New("chatclient: session closed")

// Session is the client-side controller for one user's chat view. All state
// lives on a single event loop goroutine: public methods and network
// completions post onto that loop, so local chat state mutations are never
// concurrent even with several requests in flight.
//
// Sending is optimistic: the entry is appended before the persist and live
// push are attempted, and neither failure rolls it back.
type Session struct {
	user   string
	api    API
	live   LiveSender
	logger *logrus.Logger

	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once

	// owned by the event loop
	state      State
	peer       string
	entries    []Entry
	generation uint64
}

// NewSession constructs a session for user. live may be nil for the
// request/response-only variant; Send then persists without a live push.
func NewSession(user string, api API, live LiveSender, logger *logrus.Logger) *Session {
	s := &Session{
		user:   user,
		api:    api,
		live:   live,
		logger: logger,
		cmds:   make(chan func(), 64),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.cmds:
			cmd()
		}
	}
}

// post runs fn on the event loop and waits for it to finish. It reports
// ErrClosed when the session shut down before fn completed.
func (s *Session) post(fn func()) error {
	ran := make(chan struct{})
	select {
	case <-s.done:
		return ErrClosed
	case s.cmds <- func() { fn(); close(ran) }:
	}
	select {
	case <-s.done:
		return ErrClosed
	case <-ran:
		return nil
	}
}

// send posts fn without waiting; used by completions arriving from
// network goroutines.
func (s *Session) send(fn func()) {
	select {
	case <-s.done:
	case s.cmds <- fn:
	}
}

// Select opens the conversation with peer: local chat state is discarded,
// the session enters Loading, and history is fetched. It blocks until the
// load finishes; on a fetch failure the session returns to Idle and the
// error is returned. A session closed before the load finishes reports
// ErrClosed.
func (s *Session) Select(ctx context.Context, peer string) error {
	var gen uint64
	if err := s.post(func() {
		s.state = StateLoading
		s.peer = peer
		s.entries = nil
		s.generation++
		gen = s.generation
	}); err != nil {
		return err
	}

	history, err := s.api.GetMessages(ctx, s.user, peer)

	result := make(chan error, 1)
	s.send(func() {
		// A newer Select supersedes this load; its result no longer applies.
		if s.generation != gen {
			result <- nil
			return
		}
		if err != nil {
			s.state = StateIdle
			result <- err
			return
		}
		entries := make([]Entry, 0, len(history))
		for _, h := range history {
			entries = append(entries, Entry{ID: uuid.NewString(), FromSelf: h.FromSelf, Text: h.Message})
		}
		s.entries = entries
		s.state = StateReady
		result <- nil
	})

	select {
	case <-s.done:
		return ErrClosed
	case err := <-result:
		return err
	}
}

// Send appends the message optimistically and fires the persist call and
// the live push as two independent background operations. Their failures
// are logged, never surfaced, and never undo the local append.
func (s *Session) Send(ctx context.Context, text string) error {
	var (
		peer string
		err  error
	)
	if perr := s.post(func() {
		if s.state != StateReady {
			err = ErrNotReady
			return
		}
		peer = s.peer
		s.entries = append(s.entries, Entry{ID: uuid.NewString(), FromSelf: true, Text: text})
	}); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	go func() {
		if err := s.api.AddMessage(ctx, s.user, peer, text); err != nil {
			s.logger.WithFields(logrus.Fields{"to": peer}).WithError(err).Error("persist failed; message kept locally")
		}
	}()
	if s.live != nil {
		go func() {
			if err := s.live.Send(peer, s.user, text); err != nil {
				s.logger.WithFields(logrus.Fields{"to": peer}).WithError(err).Error("live push failed")
			}
		}()
	}
	return nil
}

// Deliver hands a pushed payload to the session. It appends only while a
// matching conversation is Ready; everything else is dropped.
func (s *Session) Deliver(from, text string) {
	s.send(func() {
		if s.state != StateReady || from != s.peer {
			s.logger.WithFields(logrus.Fields{"from": from, "state": s.state.String()}).Debug("dropping live message")
			return
		}
		s.entries = append(s.entries, Entry{ID: uuid.NewString(), FromSelf: false, Text: text})
	})
}

// Entries returns a snapshot of the local chat state in append order.
func (s *Session) Entries() []Entry {
	var out []Entry
	s.post(func() {
		out = make([]Entry, len(s.entries))
		copy(out, s.entries)
	})
	return out
}

// State reports the current conversation state.
func (s *Session) State() State {
	var st State
	s.post(func() { st = s.state })
	return st
}

// Peer reports the currently open conversation partner, if any.
func (s *Session) Peer() string {
	var p string
	s.post(func() { p = s.peer })
	return p
}

// Close stops the event loop. The live connection, if any, is closed too.
// Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.live != nil {
			err = s.live.Close()
		}
	})
	return err
}

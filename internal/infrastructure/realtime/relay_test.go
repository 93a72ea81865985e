package realtime

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRelay_PushDeliversInOrder(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	relay := NewRelay(p, testLogger())
	sender := &fakeSender{}
	p.Bind("bob", sender)

	req.True(relay.Push("bob", []byte("one")))
	req.True(relay.Push("bob", []byte("two")))
	req.True(relay.Push("bob", []byte("three")))

	req.Equal([][]byte{[]byte("one"), []byte("two"), []byte("three")}, sender.payloads)
}

func TestRelay_PushToOfflineUserIsSilentDrop(t *testing.T) {
	req := require.New(t)
	relay := NewRelay(NewPresence(), testLogger())

	// Nobody is bound: no panic, no delivery, just false.
	req.False(relay.Push("ghost", []byte("hello")))
}

func TestRelay_PushToDeadHandleIsNoOp(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	relay := NewRelay(p, testLogger())
	sender := &fakeSender{sendErr: errors.New("connection closed")}
	p.Bind("bob", sender)

	req.False(relay.Push("bob", []byte("hello")))
	req.Empty(sender.payloads)
}

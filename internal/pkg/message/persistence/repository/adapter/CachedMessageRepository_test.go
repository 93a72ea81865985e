package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	cacheport "go-chatline/internal/infrastructure/cache/port"
	message "go-chatline/internal/pkg/message/domain"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	sets    int
	dels    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels++
	var n int64
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }
func (c *memCache) Close() error                   { return nil }

type memStore struct {
	mu    sync.Mutex
	msgs  []message.Message
	reads int
}

func (r *memStore) SaveMessage(ctx context.Context, m message.Message) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = fmt.Sprintf("m-%d", len(r.msgs)+1)
	m.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.msgs = append(r.msgs, m)
	return m, nil
}

func (r *memStore) GetMessagesBetween(ctx context.Context, userA, userB string) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	out := make([]message.Message, 0)
	for _, m := range r.msgs {
		if (m.From == userA && m.To == userB) || (m.From == userB && m.To == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCachedRepository_MissPopulatesThenHits(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	cache := newMemCache()
	repo := NewCachedMessageRepository(store, cache, testLogger())

	_, err := repo.SaveMessage(context.Background(), message.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)

	// First read misses the cache and hits the store.
	first, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(first, 1)
	req.Equal(1, store.reads)
	req.Equal(1, cache.sets)

	// Second read is served from the cache.
	second, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(second, 1)
	req.Equal(first[0].ID, second[0].ID)
	req.Equal(first[0].Text, second[0].Text)
	req.Equal(1, store.reads)
}

func TestCachedRepository_SymmetricKeySharing(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	cache := newMemCache()
	repo := NewCachedMessageRepository(store, cache, testLogger())

	_, err := repo.SaveMessage(context.Background(), message.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)

	ab, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	ba, err := repo.GetMessagesBetween(context.Background(), "bob", "alice")
	req.NoError(err)

	// history(A,B) and history(B,A) share one cache entry.
	req.Len(ab, 1)
	req.Len(ba, 1)
	req.Equal(ab[0].ID, ba[0].ID)
	req.Equal(1, store.reads)
}

func TestCachedRepository_SaveInvalidatesPairHistory(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	cache := newMemCache()
	repo := NewCachedMessageRepository(store, cache, testLogger())

	_, err := repo.SaveMessage(context.Background(), message.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)

	warm, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(warm, 1)

	_, err = repo.SaveMessage(context.Background(), message.Message{From: "bob", To: "alice", Text: "hello"})
	req.NoError(err)

	// The append dropped the cached history; the next read sees both.
	fresh, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(fresh, 2)
}

func TestCachedRepository_CacheFailureFallsThrough(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	repo := NewCachedMessageRepository(store, failingCache{}, testLogger())

	_, err := repo.SaveMessage(context.Background(), message.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)

	msgs, err := repo.GetMessagesBetween(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Len(msgs, 1)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("redis down")
}
func (failingCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return errors.New("redis down")
}
func (failingCache) Del(ctx context.Context, keys ...string) (int64, error) {
	return 0, errors.New("redis down")
}
func (failingCache) Ping(ctx context.Context) error { return errors.New("redis down") }
func (failingCache) Close() error                   { return nil }

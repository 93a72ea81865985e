package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	cacheport "go-chatline/internal/infrastructure/cache/port"
	message "go-chatline/internal/pkg/message/domain"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

const historyTTL = 30 * time.Second

// CachedMessageRepository decorates a MessageRepository with a short-lived
// pair-history cache. Cache failures degrade to the inner repository and
// are logged, never surfaced: the store stays the source of truth.
type CachedMessageRepository struct {
	inner  repository.MessageRepository
	cache  cacheport.Cache
	logger *logrus.Logger
}

func NewCachedMessageRepository(inner repository.MessageRepository, cache cacheport.Cache, logger *logrus.Logger) *CachedMessageRepository {
	return &CachedMessageRepository{inner: inner, cache: cache, logger: logger}
}

var _ repository.MessageRepository = (*CachedMessageRepository)(nil)

// SaveMessage writes through to the inner repository and drops the cached
// history for the pair so the next fetch observes the new message.
func (r *CachedMessageRepository) SaveMessage(ctx context.Context, m message.Message) (message.Message, error) {
	saved, err := r.inner.SaveMessage(ctx, m)
	if err != nil {
		return message.Message{}, err
	}
	if _, err := r.cache.Del(ctx, historyKey(saved.From, saved.To)); err != nil {
		r.logger.WithError(err).Warn("history cache invalidation failed")
	}
	return saved, nil
}

func (r *CachedMessageRepository) GetMessagesBetween(ctx context.Context, userA, userB string) ([]message.Message, error) {
	key := historyKey(userA, userB)

	if raw, err := r.cache.Get(ctx, key); err == nil {
		var msgs []message.Message
		if err := json.Unmarshal([]byte(raw), &msgs); err == nil {
			return msgs, nil
		}
		// Unreadable entry; fall through and rebuild it.
		_, _ = r.cache.Del(ctx, key)
	} else if !errors.Is(err, cacheport.ErrMiss) {
		r.logger.WithError(err).Warn("history cache read failed")
	}

	msgs, err := r.inner.GetMessagesBetween(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(msgs); err == nil {
		if err := r.cache.Set(ctx, key, string(raw), historyTTL); err != nil {
			r.logger.WithError(err).Warn("history cache write failed")
		}
	}
	return msgs, nil
}

// historyKey is canonical in the pair so history(A,B) and history(B,A)
// share one entry.
func historyKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return "history:" + userA + ":" + userB
}

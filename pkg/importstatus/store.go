package importstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("no import recorded for kind")

// Store caches the most recent import summary per source kind so the API
// can answer "what happened last time" without touching the database.
// A nil client disables caching; every method becomes a no-op.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(kind string) string {
	return fmt.Sprintf("import:last:%s", kind)
}

func (s *Store) SaveLastRun(ctx context.Context, kind string, summary interface{}) {
	if s == nil || s.client == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to marshal import summary")
		return
	}
	if err := s.client.Set(ctx, key(kind), payload, s.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("kind", kind).Warn("failed to cache import summary")
	}
}

func (s *Store) LastRun(ctx context.Context, kind string) (map[string]interface{}, error) {
	if s == nil || s.client == nil {
		return nil, ErrNotFound
	}
	payload, err := s.client.Get(ctx, key(kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var summary map[string]interface{}
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

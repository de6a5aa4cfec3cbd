// Package maintenance exposes the platform maintenance flag.
package maintenance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// FlagKey is the Redis key toggling maintenance mode. Any non-empty
// value other than "0" activates it.
const FlagKey = "sitecrew:maintenance"

// Source reads the maintenance flag from Redis.
type Source struct {
	client *redis.Client
	logger *slog.Logger
}

// NewSource constructs a Source.
func NewSource(client *redis.Client, logger *slog.Logger) *Source {
	return &Source{client: client, logger: logger}
}

// Active reports whether maintenance mode is on. A missing key means
// off; a Redis failure is logged and also reads as off, so a broken
// cache cannot lock every user out.
func (s *Source) Active(ctx context.Context) bool {
	val, err := s.client.Get(ctx, FlagKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read maintenance flag", slog.Any("error", err))
		}
		return false
	}
	return val != "" && val != "0"
}

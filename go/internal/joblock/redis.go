package joblock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcdev12/arena/go/internal/apperrors"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired holder cannot free a lock someone else took over.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every instance pointing at the same Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed locker; keys are stored under prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// TryAcquire sets the key with NX and a PX expiry.
func (r *Redis) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	fullKey := r.prefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire job lock %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	if !ok {
		return nil, apperrors.ErrSyncInProgress
	}

	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, r.client, []string{fullKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to release job lock %s: %w", key, err)
		}
		return nil
	}, nil
}

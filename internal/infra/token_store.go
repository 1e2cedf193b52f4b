package infra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "auth:refresh:"

// RefreshTokenStore keeps a fingerprint per outstanding refresh token in
// Redis, keyed by token ID with the token's TTL. A token absent from the
// store is revoked (or already used — refresh tokens are single-use).
type RefreshTokenStore struct {
	rdb *redis.Client
}

func NewRefreshTokenStore(rdb *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{rdb: rdb}
}

func (s *RefreshTokenStore) Save(ctx context.Context, tokenID, fingerprint string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKeyPrefix+tokenID, fingerprint, ttl).Err()
}

// Consume atomically fetches and deletes the fingerprint for a token ID.
// Returns "" when the token is unknown, expired, or already consumed.
func (s *RefreshTokenStore) Consume(ctx context.Context, tokenID string) (string, error) {
	fp, err := s.rdb.GetDel(ctx, refreshKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fp, nil
}

package auth

import (
	"context"
	"time"

	"agrimap/internal/cache"
)

const revokedTokenKeyPrefix = "revoked_token:"

// RevocationStore is the shared revocation set for issued tokens. Entries are
// keyed by jti and live at least as long as the token could still verify, so
// revocation holds across restarts and multiple worker processes.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps the revocation set in Redis.
type RedisRevocationStore struct {
	cache *cache.Client
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// NewRevocationStore creates a Redis-backed revocation store.
func NewRevocationStore(cache *cache.Client) *RedisRevocationStore {
	return &RedisRevocationStore{cache: cache}
}

// Revoke adds a token identifier to the revocation set until the token's own
// expiry would reject it anyway.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing left to revoke.
		return nil
	}
	key := revokedTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, []byte("1"), ttl)
}

// IsRevoked checks membership in the revocation set. It fails open: a Redis
// outage reads as a miss, so tokens keep working until their own expiry
// rather than every authenticated request returning 500. The token TTL is
// the hard upper bound on how long a revoked-but-unreadable entry can slip
// through.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revokedTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}

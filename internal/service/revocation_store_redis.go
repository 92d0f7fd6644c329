package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

type RedisRevocationStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRevocationStore(client redis.UniversalClient, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = "revoked_access"
	}
	return &RedisRevocationStore{client: client, prefix: prefix}
}

// Revoke writes the token under its digest for ttl; the entry expires with the
// token itself.
func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 || token == "" {
		return nil
	}
	if err := s.client.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		observability.RecordRevocationEvent(ctx, "write_error")
		return err
	}
	observability.RecordRevocationEvent(ctx, "revoked")
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil && err != redis.Nil {
		observability.RecordRevocationEvent(ctx, "read_error")
		return false, err
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) key(token string) string {
	return s.prefix + ":" + tokenDigest(token)
}

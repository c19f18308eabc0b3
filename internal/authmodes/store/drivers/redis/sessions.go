// Package redis stores sessions in Redis, one key per session with a TTL
// equal to the session's remaining lifetime.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/redis/go-redis/v9"
)

var _ store.Sessions = (*Sessions)(nil)

// ErrUnavailable wraps transport failures talking to Redis.
var ErrUnavailable = errors.New("redis unavailable")

const defaultPrefix = "authmodes"

// Sessions implements store.Sessions on top of a go-redis client.
type Sessions struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewSessions returns a session store using keys of the form
// "<prefix>:session:<id>". An empty prefix falls back to "authmodes".
func NewSessions(client redis.UniversalClient, prefix string) *Sessions {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Sessions{redis: client, prefix: prefix, now: time.Now}
}

type record struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (s *Sessions) key(id string) string {
	return s.prefix + ":session:" + id
}

func (s *Sessions) CreateSession(ctx context.Context, sess domain.Session) error {
	now := s.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	ttl := sess.ExpiresAt.Sub(now)
	if ttl <= 0 {
		// redis cannot hold a key with no lifetime left.
		return fmt.Errorf("%w: session %s expired at %s", store.ErrConflict, sess.ID, sess.ExpiresAt.Format(time.RFC3339))
	}

	data, err := json.Marshal(record{
		UserID:    sess.UserID,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt.UnixMilli(),
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.key(sess.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Sessions) GetSession(ctx context.Context, id string) (domain.Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, store.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}

	sess := domain.Session{
		ID:        id,
		UserID:    rec.UserID,
		Email:     rec.Email,
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC(),
	}
	// Key TTLs have second granularity on some servers; the stored expiry
	// is authoritative.
	if sess.Expired(s.now()) {
		return domain.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) DeleteSession(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions is a no-op: Redis evicts expired keys itself.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context) error {
	return nil
}

// Ping reports whether Redis is reachable, for readiness checks.
func (s *Sessions) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

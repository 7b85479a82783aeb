// Package session implements server-side sessions keyed by an opaque client
// token. A session is created on login, destroyed on logout, and expires on
// its own after the configured TTL; nothing about it lives in the client
// beyond the cookie value.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campusmap/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the token does not map to a live session.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:%s"

// Store persists sessions in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store with the given lifetime.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores the identity under a fresh random token and returns the token.
func (s *Store) Create(ctx context.Context, identity models.Identity) (string, error) {
	if s.rdb == nil {
		return "", errors.New("session store unavailable")
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, key(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its identity, sliding the expiry forward.
// Returns ErrNotFound for unknown or expired tokens.
func (s *Store) Get(ctx context.Context, token string) (*models.Identity, error) {
	if s.rdb == nil || token == "" {
		return nil, ErrNotFound
	}

	payload, err := s.rdb.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return nil, err
	}

	// Sliding expiration: active sessions stay alive.
	s.rdb.Expire(ctx, key(token), s.ttl)

	return &identity, nil
}

// Refresh rewrites the stored identity for a live session (e.g. after an
// avatar change) without rotating the token.
func (s *Store) Refresh(ctx context.Context, token string, identity models.Identity) error {
	if s.rdb == nil || token == "" {
		return ErrNotFound
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(token), payload, s.ttl).Err()
}

// Destroy removes the session. Destroying an unknown token is a no-op.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if s.rdb == nil || token == "" {
		return nil
	}
	return s.rdb.Del(ctx, key(token)).Err()
}

func key(token string) string {
	return fmt.Sprintf(keyPrefix, token)
}

// newToken returns 64 hex characters of cryptographic randomness.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

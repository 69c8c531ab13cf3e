// Package session holds the operator's identity for the lifetime of a login.
// Sessions are created on login, resolved once per request by the API layer,
// threaded through context, and deleted on logout; nothing reads them
// ambiently.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Session identifies one logged-in operator.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps sessions in Redis with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(token string) string {
	return "session:" + token
}

// Create opens a session and returns it with a fresh token.
func (s *Store) Create(ctx context.Context, userID, name, role string) (Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return Session{}, err
	}
	if err := s.client.Set(ctx, key(sess.Token), data, s.ttl).Err(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get resolves a token. Each hit refreshes the TTL.
func (s *Store) Get(ctx context.Context, token string) (Session, error) {
	data, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, ErrNotFound
	}
	s.client.Expire(ctx, key(token), s.ttl)
	return sess, nil
}

// Delete tears the session down. Deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, key(token)).Err()
}

type contextKey struct{}

// WithSession attaches a resolved session to the request context.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by the API middleware, if any.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}

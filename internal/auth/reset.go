package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidResetToken covers unknown, used, and expired reset tokens
// uniformly.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetTokens issues single-use password-reset tokens with a bounded
// lifetime, keyed in redis.
type ResetTokens struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokens creates a token store.
func NewResetTokens(client *redis.Client, ttl time.Duration) *ResetTokens {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokens{client: client, ttl: ttl}
}

func resetKey(token string) string {
	return "portal:reset:" + token
}

// Create issues a token bound to an email.
func (r *ResetTokens) Create(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	if err := r.client.Set(ctx, resetKey(token), email, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves and invalidates a token, returning the bound email.
func (r *ResetTokens) Consume(ctx context.Context, token string) (string, error) {
	email, err := r.client.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidResetToken
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

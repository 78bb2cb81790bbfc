package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sertantai/hub-client/internal/core/domain"
)

// CredentialStore keeps the credential as a plain string value.
// Key format: credential:<namespace>
type CredentialStore struct {
	client *redis.Client
	key    string
}

// NewCredentialStore creates a CredentialStore wrapping the given Redis client.
func NewCredentialStore(client *redis.Client, namespace string) *CredentialStore {
	return &CredentialStore{client: client, key: "credential:" + namespace}
}

// Load returns the stored credential.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// Save stores credential without expiry; the credential carries its own.
func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	if err := s.client.Set(ctx, s.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the credential.
func (s *CredentialStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

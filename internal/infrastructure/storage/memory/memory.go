// Package memory keeps the credential in process memory. Nothing survives a
// restart; it backs tests and hosts that opt out of persistence.
package memory

import (
	"context"
	"sync"

	"github.com/sertantai/hub-client/internal/core/domain"
)

type CredentialStore struct {
	mu    sync.RWMutex
	value string
	set   bool
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return "", domain.ErrCredentialNotFound
	}
	return s.value, nil
}

func (s *CredentialStore) Save(_ context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = credential, true
	return nil
}

func (s *CredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = "", false
	return nil
}

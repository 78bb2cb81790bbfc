package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/infrastructure/storage/memory"
)

// ── credentials ──────────────────────────────────────────────────────────────

func mint(t *testing.T, sub string, expiresIn time.Duration) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    sub,
		"email":  sub + "@example.com",
		"org_id": "org-" + sub,
		"role":   "member",
		"exp":    time.Now().Add(expiresIn).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func grantFor(t *testing.T, sub string, expiresIn time.Duration) *domain.AuthGrant {
	t.Helper()
	return &domain.AuthGrant{
		Token:          mint(t, sub, expiresIn),
		User:           domain.Identity{ID: sub, Email: sub + "@example.com"},
		OrganizationID: "org-" + sub,
		Role:           "member",
	}
}

// ── stub refresher ───────────────────────────────────────────────────────────

type stubRefresher struct {
	calls   atomic.Int32
	release chan struct{} // nil means answer immediately
	grant   func() *domain.AuthGrant
	err     error
	seen    []string
	mu      sync.Mutex
}

func (r *stubRefresher) Refresh(ctx context.Context, credential string) (*domain.AuthGrant, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.seen = append(r.seen, credential)
	r.mu.Unlock()
	if r.release != nil {
		<-r.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.grant(), nil
}

// ── stub storage ─────────────────────────────────────────────────────────────

type flakyStorage struct {
	*memory.CredentialStore
	loadErr error
	saveErr error
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{CredentialStore: memory.NewCredentialStore()}
}

func (s *flakyStorage) Load(ctx context.Context) (string, error) {
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.CredentialStore.Load(ctx)
}

func (s *flakyStorage) Save(ctx context.Context, credential string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.CredentialStore.Save(ctx, credential)
}

var errDisk = errors.New("disk unavailable")

// ── recorder ─────────────────────────────────────────────────────────────────

type recorder struct {
	mu   sync.Mutex
	seen []domain.Session
}

func (r *recorder) record(s domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
}

func (r *recorder) states() []domain.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionState, len(r.seen))
	for i, s := range r.seen {
		out[i] = s.State()
	}
	return out
}

func (r *recorder) last() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

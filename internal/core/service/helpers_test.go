package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

// ── stub requester ───────────────────────────────────────────────────────────

type sentRequest struct {
	method string
	path   string
	body   string
	opts   ports.RequestOptions
}

type stubRequester struct {
	status int
	body   string
	err    error
	sent   []sentRequest
}

func respond(status int, body string) *stubRequester {
	return &stubRequester{status: status, body: body}
}

func unreachable() *stubRequester {
	return &stubRequester{err: fmt.Errorf("%w: dial tcp: connection refused", domain.ErrTransport)}
}

func (s *stubRequester) Request(_ context.Context, method, path string, body any, opts ...ports.RequestOption) (*ports.Response, error) {
	var o ports.RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	s.sent = append(s.sent, sentRequest{method: method, path: path, body: string(raw), opts: o})
	if s.err != nil {
		return nil, s.err
	}
	return &ports.Response{StatusCode: s.status, Body: []byte(s.body)}, nil
}

// ── stub session ─────────────────────────────────────────────────────────────

type stubSession struct {
	mu          sync.Mutex
	current     domain.Session
	established []domain.AuthGrant
	cleared     []string
}

func (s *stubSession) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *stubSession) Establish(_ context.Context, credential string, identity domain.Identity, organizationID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := identity
	s.current = domain.Session{Credential: credential, Identity: &id, OrganizationID: organizationID, Role: role, Authenticated: true}
	s.established = append(s.established, domain.AuthGrant{Token: credential, User: identity, OrganizationID: organizationID, Role: role})
}

func (s *stubSession) ClearWith(_ context.Context, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = domain.Session{}
	s.cleared = append(s.cleared, reason)
}

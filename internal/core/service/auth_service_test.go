package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sertantai/hub-client/internal/core/domain"
)

const grantBody = `{"token":"tok-1","user":{"id":"u1","email":"a@b.com"},"organization_id":"org1","role":"owner"}`

func newAuth(r *stubRequester, session *stubSession) *AuthService {
	return NewAuthService(r, session, session, session, NewValidator(), zerolog.Nop())
}

func TestAuthService_LoginEstablishesSession(t *testing.T) {
	r := respond(http.StatusOK, grantBody)
	session := &stubSession{}

	res := newAuth(r, session).Login(context.Background(), "a@b.com", "secret")
	require.True(t, res.OK, res.Error)

	require.Len(t, r.sent, 1)
	assert.Equal(t, http.MethodPost, r.sent[0].method)
	assert.Equal(t, "/api/auth/login", r.sent[0].path)
	assert.JSONEq(t, `{"user":{"email":"a@b.com","password":"secret"}}`, r.sent[0].body)
	assert.True(t, r.sent[0].opts.SkipAuth)

	require.Len(t, session.established, 1)
	assert.Equal(t, domain.AuthGrant{
		Token:          "tok-1",
		User:           domain.Identity{ID: "u1", Email: "a@b.com"},
		OrganizationID: "org1",
		Role:           "owner",
	}, session.established[0])
}

func TestAuthService_RegisterUsesRegisterEndpoint(t *testing.T) {
	r := respond(http.StatusCreated, grantBody)
	session := &stubSession{}

	res := newAuth(r, session).Register(context.Background(), "a@b.com", "secret")
	require.True(t, res.OK)
	assert.Equal(t, "/api/auth/register", r.sent[0].path)
	assert.True(t, session.Current().Authenticated)
}

func TestAuthService_FailureMessages(t *testing.T) {
	cases := []struct {
		name string
		r    *stubRequester
		want string
	}{
		{"error field", respond(http.StatusUnauthorized, `{"error":"Invalid credentials"}`), "Invalid credentials"},
		{"message field", respond(http.StatusUnprocessableEntity, `{"message":"Email taken"}`), "Email taken"},
		{"default", respond(http.StatusInternalServerError, `{}`), "Login failed"},
		{"transport", unreachable(), domain.NetworkErrorMessage},
		{"success without token", respond(http.StatusOK, `{"user":{"id":"u1"}}`), "Login failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &stubSession{}
			res := newAuth(tc.r, session).Login(context.Background(), "a@b.com", "secret")
			assert.False(t, res.OK)
			assert.Equal(t, tc.want, res.Error)
			assert.Empty(t, session.established)
		})
	}
}

func TestAuthService_ValidationSkipsNetwork(t *testing.T) {
	r := respond(http.StatusOK, grantBody)
	svc := newAuth(r, &stubSession{})

	res := svc.Login(context.Background(), "", "secret")
	assert.Equal(t, "email is required", res.Error)

	res = svc.Register(context.Background(), "a@b.com", "")
	assert.Equal(t, "password is required", res.Error)

	res = svc.RequestMagicLink(context.Background(), "nope")
	assert.Equal(t, "email must be a valid email", res.Error)

	res = svc.CompleteMagicLink(context.Background(), "")
	assert.Equal(t, "token is required", res.Error)

	assert.Empty(t, r.sent)
}

func TestAuthService_MagicLink(t *testing.T) {
	t.Run("request leaves session alone", func(t *testing.T) {
		r := respond(http.StatusOK, `{"status":"sent"}`)
		session := &stubSession{}

		res := newAuth(r, session).RequestMagicLink(context.Background(), "a@b.com")
		require.True(t, res.OK)
		assert.Equal(t, "/api/auth/magic-link/request", r.sent[0].path)
		assert.JSONEq(t, `{"user":{"email":"a@b.com"}}`, r.sent[0].body)
		assert.Empty(t, session.established)
		assert.Empty(t, session.cleared)
	})

	t.Run("request failure default", func(t *testing.T) {
		res := newAuth(respond(http.StatusBadGateway, `bad gateway`), &stubSession{}).
			RequestMagicLink(context.Background(), "a@b.com")
		assert.Equal(t, "Failed to send magic link", res.Error)
	})

	t.Run("callback establishes", func(t *testing.T) {
		r := respond(http.StatusOK, grantBody)
		session := &stubSession{}

		res := newAuth(r, session).CompleteMagicLink(context.Background(), "ml-token")
		require.True(t, res.OK)
		assert.JSONEq(t, `{"token":"ml-token"}`, r.sent[0].body)
		assert.Equal(t, "tok-1", session.Current().Credential)
	})

	t.Run("callback failure default", func(t *testing.T) {
		res := newAuth(respond(http.StatusGone, `{}`), &stubSession{}).
			CompleteMagicLink(context.Background(), "ml-token")
		assert.Equal(t, "Magic link authentication failed", res.Error)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("presents credential and clears", func(t *testing.T) {
		r := respond(http.StatusOK, `{}`)
		session := &stubSession{current: domain.Session{Credential: "tok-1", Authenticated: true}}

		res := newAuth(r, session).Logout(context.Background())
		assert.True(t, res.OK)

		require.Len(t, r.sent, 1)
		assert.Equal(t, "/api/auth/logout", r.sent[0].path)
		assert.True(t, r.sent[0].opts.SkipAuth)
		assert.Equal(t, "tok-1", r.sent[0].opts.Bearer)
		assert.Equal(t, []string{domain.ReasonLogout}, session.cleared)
	})

	t.Run("clears even when the hub is unreachable", func(t *testing.T) {
		session := &stubSession{current: domain.Session{Credential: "tok-1", Authenticated: true}}

		res := newAuth(unreachable(), session).Logout(context.Background())
		assert.True(t, res.OK)
		assert.False(t, session.Current().Authenticated)
		assert.Len(t, session.cleared, 1)
	})

	t.Run("clears even when the hub rejects", func(t *testing.T) {
		session := &stubSession{current: domain.Session{Credential: "tok-1", Authenticated: true}}

		newAuth(respond(http.StatusUnauthorized, `{}`), session).Logout(context.Background())
		assert.Len(t, session.cleared, 1)
	})

	t.Run("no credential means no call", func(t *testing.T) {
		r := respond(http.StatusOK, `{}`)
		session := &stubSession{}

		newAuth(r, session).Logout(context.Background())
		assert.Empty(t, r.sent)
		assert.Len(t, session.cleared, 1)
	})
}

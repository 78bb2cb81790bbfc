package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeSession struct {
	mu         sync.Mutex
	credential string
	cleared    []string
}

func (f *fakeSession) Current() domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Session{Credential: f.credential, Authenticated: f.credential != ""}
}

func (f *fakeSession) ClearIf(_ context.Context, expected, reason string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credential != expected {
		return false
	}
	f.credential = ""
	f.cleared = append(f.cleared, reason)
	return true
}

func (f *fakeSession) set(credential string) {
	f.mu.Lock()
	f.credential = credential
	f.mu.Unlock()
}

type fakeRenewer struct {
	calls    atomic.Int32
	session  *fakeSession
	next     string // empty means renewal fails
	rejected []string
	during   func() // runs inside a failing renewal
}

func (r *fakeRenewer) RenewFrom(_ context.Context, rejected string) bool {
	r.calls.Add(1)
	r.rejected = append(r.rejected, rejected)
	if r.next == "" {
		if r.during != nil {
			r.during()
		}
		return false
	}
	r.session.mu.Lock()
	r.session.credential = r.next
	r.session.mu.Unlock()
	return true
}

type hit struct {
	auth      string
	requestID string
	body      string
	ctype     string
}

// hub is an echo server recording every request it sees.
type hub struct {
	mu   sync.Mutex
	hits []hit
	srv  *httptest.Server
}

func newHub(t *testing.T, register func(e *echo.Echo)) *hub {
	t.Helper()
	h := &hub{}
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, _ := io.ReadAll(c.Request().Body)
			c.Request().Body = io.NopCloser(bytes.NewReader(body))
			h.mu.Lock()
			h.hits = append(h.hits, hit{
				auth:      c.Request().Header.Get(echo.HeaderAuthorization),
				requestID: c.Request().Header.Get(HeaderRequestID),
				body:      string(body),
				ctype:     c.Request().Header.Get(echo.HeaderContentType),
			})
			h.mu.Unlock()
			return next(c)
		}
	})
	register(e)
	h.srv = httptest.NewServer(e)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *hub) seen() []hit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]hit(nil), h.hits...)
}

// requireBearer answers 401 unless the request carries "Bearer good".
func requireBearer(c echo.Context) error {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer good" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func newGateway(h *hub, session *fakeSession, renewer *fakeRenewer) *Gateway {
	transport := NewTransport(h.srv.URL, h.srv.Client(), zerolog.Nop())
	return New(transport, session, renewer, session, zerolog.Nop())
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestGateway_NoCredentialSendsNoAuthorization(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) {
		e.GET("/public", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	})
	session := &fakeSession{}
	g := newGateway(h, session, &fakeRenewer{session: session})

	resp, err := g.Request(context.Background(), http.MethodGet, "/public", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	hits := h.seen()
	require.Len(t, hits, 1)
	assert.Empty(t, hits[0].auth)
	assert.NotEmpty(t, hits[0].requestID)
}

func TestGateway_AttachesCredentialAndEncodesBody(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.POST("/things", requireBearer) })
	session := &fakeSession{credential: "good"}
	g := newGateway(h, session, &fakeRenewer{session: session})

	resp, err := g.Request(context.Background(), http.MethodPost, "/things", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var out map[string]string
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "ok", out["status"])

	hits := h.seen()
	require.Len(t, hits, 1)
	assert.Equal(t, "Bearer good", hits[0].auth)
	assert.JSONEq(t, `{"name":"x"}`, hits[0].body)
	assert.Equal(t, "application/json", hits[0].ctype)
}

func TestGateway_RenewsOnceAndRetriesOnce(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.GET("/me", requireBearer) })
	session := &fakeSession{credential: "stale"}
	renewer := &fakeRenewer{session: session, next: "good"}
	g := newGateway(h, session, renewer)

	resp, err := g.Request(context.Background(), http.MethodGet, "/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, renewer.calls.Load())

	hits := h.seen()
	require.Len(t, hits, 2)
	assert.Equal(t, "Bearer stale", hits[0].auth)
	assert.Equal(t, "Bearer good", hits[1].auth)
	assert.Equal(t, hits[0].requestID, hits[1].requestID, "retry keeps the request id")
	assert.Equal(t, []string{"stale"}, renewer.rejected)
	assert.Empty(t, session.cleared)
}

func TestGateway_FailedRenewalClearsAndReturnsOriginal401(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.GET("/me", requireBearer) })
	session := &fakeSession{credential: "stale"}
	renewer := &fakeRenewer{session: session}
	g := newGateway(h, session, renewer)

	resp, err := g.Request(context.Background(), http.MethodGet, "/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, string(resp.Body))

	assert.Len(t, h.seen(), 1, "no retry after failed renewal")
	assert.EqualValues(t, 1, renewer.calls.Load())
	assert.Equal(t, []string{domain.ReasonRejected}, session.cleared)
	assert.False(t, session.Current().Authenticated)
}

func TestGateway_FailedRenewalKeepsLoginThatLandedMeanwhile(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.GET("/me", requireBearer) })
	session := &fakeSession{credential: "stale"}
	renewer := &fakeRenewer{session: session}
	renewer.during = func() {
		session.set("")
		session.set("fresh-login")
	}
	g := newGateway(h, session, renewer)

	resp, err := g.Request(context.Background(), http.MethodGet, "/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Empty(t, session.cleared, "the newer session is not torn down")
	assert.Equal(t, "fresh-login", session.Current().Credential)
}

func TestGateway_SecondRejectionIsReturnedAsIs(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) {
		e.GET("/me", func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "still no"})
		})
	})
	session := &fakeSession{credential: "stale"}
	renewer := &fakeRenewer{session: session, next: "fresh"}
	g := newGateway(h, session, renewer)

	resp, err := g.Request(context.Background(), http.MethodGet, "/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, h.seen(), 2)
	assert.EqualValues(t, 1, renewer.calls.Load())
	assert.Empty(t, session.cleared)
}

func TestGateway_SkipAuthNeverRenews(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.POST("/api/auth/login", requireBearer) })
	session := &fakeSession{credential: "stale"}
	renewer := &fakeRenewer{session: session, next: "good"}
	g := newGateway(h, session, renewer)

	resp, err := g.Request(context.Background(), http.MethodPost, "/api/auth/login", map[string]string{}, ports.SkipAuth())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	hits := h.seen()
	require.Len(t, hits, 1)
	assert.Empty(t, hits[0].auth, "skip-auth calls carry no session credential")
	assert.Zero(t, renewer.calls.Load())
	assert.Empty(t, session.cleared)
}

func TestGateway_ExplicitBearer(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) { e.POST("/api/auth/logout", requireBearer) })
	session := &fakeSession{}
	g := newGateway(h, session, &fakeRenewer{session: session})

	resp, err := g.Request(context.Background(), http.MethodPost, "/api/auth/logout", nil,
		ports.SkipAuth(), ports.WithBearer("good"), ports.WithHeader("X-Client", "cli"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer good", h.seen()[0].auth)
}

func TestGateway_TransportFailure(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) {})
	url := h.srv.URL
	h.srv.Close()

	session := &fakeSession{credential: "good"}
	renewer := &fakeRenewer{session: session}
	g := New(NewTransport(url, nil, zerolog.Nop()), session, renewer, session, zerolog.Nop())

	_, err := g.Request(context.Background(), http.MethodGet, "/me", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Zero(t, renewer.calls.Load())
	assert.Empty(t, session.cleared)
}

func TestTransport_JoinsBaseURL(t *testing.T) {
	h := newHub(t, func(e *echo.Echo) {
		e.GET("/api/profile", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	})
	tr := NewTransport(h.srv.URL+"/", h.srv.Client(), zerolog.Nop())

	resp, err := tr.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/profile"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

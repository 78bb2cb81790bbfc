// Package hubtest runs an in-process Sertantai hub for tests: the identity
// endpoints issue real signed credentials and the resource endpoints keep
// their state in memory. Controls on Hub let a test expire, revoke or reject
// credentials to drive the client's renewal paths.
package hubtest

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sertantai/hub-client/internal/core/domain"
)

const (
	// ValidTotpCode is the only code the hub accepts for enable and disable.
	ValidTotpCode = "123456"

	defaultSecret = "hubtest-secret"
	defaultTTL    = time.Hour
)

// Options configures a Hub.
type Options struct {
	Secret string
	// TTL is the lifetime of issued credentials.
	TTL time.Duration
	Log zerolog.Logger
}

type account struct {
	user         domain.ProfileUser
	passwordHash []byte
	totp         domain.TotpStatus
}

// Accounts live for one test process, so the cheapest bcrypt cost will do.
const passwordCost = bcrypt.MinCost

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), passwordCost)
}

func (a *account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// Hub is a running fake hub.
type Hub struct {
	secret []byte
	ttl    time.Duration
	srv    *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by email
	orgs          map[string]*domain.Organization
	subscriptions map[string]*domain.Subscription
	subOrder      []string
	events        []domain.LawChangeEvent
	magicLinks    map[string]string // link token → email
	revoked       map[string]struct{}
	rejectNext    int
	hits          map[string]int
	nextID        int
}

// New starts a hub on a loopback listener. Call Close when done.
func New(opts Options) *Hub {
	if opts.Secret == "" {
		opts.Secret = defaultSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}

	h := &Hub{
		secret:        []byte(opts.Secret),
		ttl:           opts.TTL,
		accounts:      make(map[string]*account),
		orgs:          make(map[string]*domain.Organization),
		subscriptions: make(map[string]*domain.Subscription),
		magicLinks:    make(map[string]string),
		revoked:       make(map[string]struct{}),
		hits:          make(map[string]int),
	}
	h.srv = httptest.NewServer(h.router(opts.Log))
	return h
}

func (h *Hub) router(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newHTTPErrorHandler(log)

	e.Use(echomiddleware.Recover())
	e.Use(h.countHits)

	auth := h.authenticate()

	// --- Identity (public) ---
	e.POST("/api/auth/register", h.register)
	e.POST("/api/auth/login", h.login)
	e.POST("/api/auth/magic-link/request", h.requestMagicLink)
	e.POST("/api/auth/magic-link/callback", h.completeMagicLink)

	// --- Identity (credential required, never subject to RejectNext) ---
	e.POST("/api/auth/logout", h.logout, auth)
	e.POST("/api/auth/refresh", h.refresh, auth)

	// --- Resources ---
	api := e.Group("/api", h.rejectInjected, auth)
	api.GET("/auth/profile", h.getProfile)
	api.PATCH("/auth/profile", h.updateProfile)
	api.POST("/auth/profile/change-password", h.changePassword)
	api.GET("/auth/organization", h.getOrganization)
	api.PATCH("/auth/organization", h.updateOrganization, requireRole("owner", "admin"))
	api.GET("/auth/totp/status", h.totpStatus)
	api.POST("/auth/totp/setup", h.totpSetup)
	api.POST("/auth/totp/enable", h.totpEnable)
	api.POST("/auth/totp/disable", h.totpDisable)
	api.GET("/subscriptions", h.listSubscriptions)
	api.POST("/subscriptions", h.createSubscription)
	api.GET("/subscriptions/:id", h.getSubscription)
	api.PATCH("/subscriptions/:id", h.updateSubscription)
	api.DELETE("/subscriptions/:id", h.deleteSubscription)
	api.GET("/notification-events", h.listEvents)

	return e
}

// URL is the hub base URL.
func (h *Hub) URL() string { return h.srv.URL }

// Close shuts the hub down.
func (h *Hub) Close() { h.srv.Close() }

// Issue signs a credential for an existing account, expiring after ttl
// (negative for an already expired one).
func (h *Hub) Issue(email string, ttl time.Duration) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	acc, ok := h.accounts[email]
	if !ok {
		return ""
	}
	return h.sign(acc, ttl)
}

// Revoke makes the hub refuse credential from now on, refresh included.
func (h *Hub) Revoke(credential string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revoked[credential] = struct{}{}
}

// RejectNext answers the next n resource calls with 401 regardless of the
// credential presented. Refresh is unaffected.
func (h *Hub) RejectNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rejectNext = n
}

// Hits reports how many requests reached path.
func (h *Hub) Hits(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

// MagicLinkToken returns the last link token mailed to email.
func (h *Hub) MagicLinkToken(email string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tok, addr := range h.magicLinks {
		if addr == email {
			return tok
		}
	}
	return ""
}

// AddEvent appends an event to the notification feed. An event without an
// organization is visible to every account.
func (h *Hub) AddEvent(ev domain.LawChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *Hub) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h.mu.Lock()
		h.hits[c.Request().URL.Path]++
		h.mu.Unlock()
		return next(c)
	}
}

// sign issues a credential for acc. Callers hold mu.
func (h *Hub) sign(acc *account, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    acc.user.ID,
		"email":  acc.user.Email,
		"org_id": acc.user.OrganizationID,
		"role":   acc.user.Role,
		"iss":    "hubtest",
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
		"jti":    h.id("tok"),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		panic("hubtest: sign credential: " + err.Error())
	}
	return signed
}

// id returns a fresh identifier. Callers hold mu.
func (h *Hub) id(prefix string) string {
	h.nextID++
	return fmt.Sprintf("%s-%d", prefix, h.nextID)
}

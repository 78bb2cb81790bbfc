package hubtest

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sertantai/hub-client/internal/core/domain"
)

type credentialsRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type grantResponse struct {
	Status         string          `json:"status"`
	Token          string          `json:"token"`
	User           domain.Identity `json:"user"`
	OrganizationID string          `json:"organization_id"`
	Role           string          `json:"role"`
}

func (h *Hub) grant(acc *account) grantResponse {
	return grantResponse{
		Status:         "success",
		Token:          h.sign(acc, h.ttl),
		User:           domain.Identity{ID: acc.user.ID, Email: acc.user.Email},
		OrganizationID: acc.user.OrganizationID,
		Role:           acc.user.Role,
	}
}

func (h *Hub) register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.User.Email))
	if email == "" || req.User.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "Email and password are required"})
	}
	hash, err := hashPassword(req.User.Password)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.accounts[email]; exists {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "Email has already been taken"})
	}

	org := &domain.Organization{
		ID:   h.id("org"),
		Name: email[strings.IndexByte(email, '@')+1:],
		Slug: h.id("slug"),
		Tier: "free",
	}
	h.orgs[org.ID] = org

	acc := &account{
		user:         domain.ProfileUser{
			ID:             h.id("user"),
			Email:          email,
			Role:           "owner",
			OrganizationID: org.ID,
		},
		passwordHash: hash,
	}
	h.accounts[email] = acc

	return c.JSON(http.StatusCreated, h.grant(acc))
}

func (h *Hub) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	acc, ok := h.accounts[strings.ToLower(strings.TrimSpace(req.User.Email))]
	if !ok || !acc.checkPassword(req.User.Password) {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid email or password"})
	}
	return c.JSON(http.StatusOK, h.grant(acc))
}

func (h *Hub) logout(c echo.Context) error {
	credential, _ := c.Get(ctxCredential).(string)
	h.Revoke(credential)
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (h *Hub) refresh(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	acc, ok := h.accountFor(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
	}
	return c.JSON(http.StatusOK, h.grant(acc))
}

func (h *Hub) requestMagicLink(c echo.Context) error {
	var req struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.User.Email))
	if _, ok := h.accounts[email]; ok {
		h.magicLinks[h.id("ml")] = email
	}
	// Unknown addresses get the same answer.
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "If an account exists, a magic link has been sent",
	})
}

func (h *Hub) completeMagicLink(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	email, ok := h.magicLinks[req.Token]
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid or expired magic link"})
	}
	delete(h.magicLinks, req.Token)

	acc := h.accounts[email]
	now := time.Now().UTC().Format(time.RFC3339)
	if acc.user.ConfirmedAt == nil {
		acc.user.ConfirmedAt = &now
	}
	return c.JSON(http.StatusOK, h.grant(acc))
}

// accountFor resolves the authenticated account. Callers hold mu.
func (h *Hub) accountFor(c echo.Context) (*account, bool) {
	email, _ := c.Get(ctxEmail).(string)
	acc, ok := h.accounts[email]
	return acc, ok
}

package hubtest

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sertantai/hub-client/internal/core/domain"
)

const totpSecret = "JBSWY3DPEHPK3PXP"

// withAccount runs fn under mu with the authenticated account.
func (h *Hub) withAccount(c echo.Context, fn func(acc *account) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	acc, ok := h.accountFor(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
	}
	return fn(acc)
}

// ── profile ──────────────────────────────────────────────────────────────────

func (h *Hub) getProfile(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "success", "user": acc.user})
	})
}

func (h *Hub) updateProfile(c echo.Context) error {
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.withAccount(c, func(acc *account) error {
		if req.Email != nil {
			email := strings.ToLower(*req.Email)
			if other, taken := h.accounts[email]; taken && other != acc {
				return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "Email has already been taken"})
			}
			delete(h.accounts, acc.user.Email)
			acc.user.Email = email
			h.accounts[email] = acc
		}
		if req.Name != nil {
			name := *req.Name
			acc.user.Name = &name
		}
		return c.JSON(http.StatusOK, map[string]any{"status": "success", "user": acc.user})
	})
}

func (h *Hub) changePassword(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return h.withAccount(c, func(acc *account) error {
		if !acc.checkPassword(req.CurrentPassword) {
			return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "Current password is incorrect"})
		}
		acc.passwordHash = hash
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	})
}

// ── organization ─────────────────────────────────────────────────────────────

func (h *Hub) getOrganization(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "success", "organization": h.orgs[acc.user.OrganizationID]})
	})
}

func (h *Hub) updateOrganization(c echo.Context) error {
	var req struct {
		Organization domain.OrganizationUpdate `json:"organization"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.withAccount(c, func(acc *account) error {
		org := h.orgs[acc.user.OrganizationID]
		if req.Organization.Name != nil {
			if strings.TrimSpace(*req.Organization.Name) == "" {
				return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "Name can't be blank"})
			}
			org.Name = *req.Organization.Name
		}
		return c.JSON(http.StatusOK, map[string]any{"status": "success", "organization": org})
	})
}

// ── totp ─────────────────────────────────────────────────────────────────────

func (h *Hub) totpStatus(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		return c.JSON(http.StatusOK, acc.totp)
	})
}

func (h *Hub) totpSetup(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		if acc.totp.TotpEnabled {
			return c.JSON(http.StatusConflict, errorResponse{Error: "TOTP is already enabled"})
		}
		codes := make([]string, 8)
		for i := range codes {
			codes[i] = h.id("backup")
		}
		return c.JSON(http.StatusOK, domain.TotpSetup{
			Status:      "success",
			Secret:      totpSecret,
			URI:         "otpauth://totp/Sertantai:" + acc.user.Email + "?secret=" + totpSecret + "&issuer=Sertantai",
			BackupCodes: codes,
		})
	})
}

func (h *Hub) totpEnable(c echo.Context) error {
	return h.totpToggle(c, true)
}

func (h *Hub) totpDisable(c echo.Context) error {
	return h.totpToggle(c, false)
}

func (h *Hub) totpToggle(c echo.Context, enable bool) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.withAccount(c, func(acc *account) error {
		if req.Code != ValidTotpCode {
			return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "Invalid verification code"})
		}
		if enable {
			now := time.Now().UTC().Format(time.RFC3339)
			acc.totp = domain.TotpStatus{TotpEnabled: true, EnabledAt: &now, BackupCodesRemaining: 8}
		} else {
			acc.totp = domain.TotpStatus{}
		}
		return c.JSON(http.StatusOK, domain.TotpToggle{Status: "success", Enabled: enable})
	})
}

// ── subscriptions ────────────────────────────────────────────────────────────

func (h *Hub) listSubscriptions(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		out := make([]domain.Subscription, 0, len(h.subOrder))
		for _, id := range h.subOrder {
			if sub := h.subscriptions[id]; sub.OrganizationID == acc.user.OrganizationID {
				out = append(out, *sub)
			}
		}
		return c.JSON(http.StatusOK, map[string]any{"data": out})
	})
}

func (h *Hub) getSubscription(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		sub, ok := h.ownedSubscription(acc, c.Param("id"))
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Subscription not found"})
		}
		return c.JSON(http.StatusOK, map[string]any{"data": sub})
	})
}

func (h *Hub) createSubscription(c echo.Context) error {
	var req domain.CreateSubscriptionParams
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusUnprocessableEntity, fieldErrors{Error: []fieldMessage{{Field: "name", Message: "name is required"}}})
	}
	if req.Frequency == "" {
		req.Frequency = domain.FrequencyImmediate
	}

	return h.withAccount(c, func(acc *account) error {
		now := time.Now().UTC().Format(time.RFC3339)
		userID := acc.user.ID
		sub := &domain.Subscription{
			ID:              h.id("sub"),
			OrganizationID:  acc.user.OrganizationID,
			UserID:          &userID,
			Name:            req.Name,
			LawFamilies:     orEmpty(req.LawFamilies),
			GeoExtent:       orEmpty(req.GeoExtent),
			ChangeTypes:     orEmpty(req.ChangeTypes),
			Keywords:        orEmpty(req.Keywords),
			TypeCodes:       orEmpty(req.TypeCodes),
			Frequency:       req.Frequency,
			DeliveryMethods: orEmpty(req.DeliveryMethods),
			Enabled:         true,
			InsertedAt:      now,
			UpdatedAt:       now,
		}
		h.subscriptions[sub.ID] = sub
		h.subOrder = append(h.subOrder, sub.ID)
		return c.JSON(http.StatusCreated, map[string]any{"data": sub})
	})
}

func (h *Hub) updateSubscription(c echo.Context) error {
	var req domain.UpdateSubscriptionParams
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.withAccount(c, func(acc *account) error {
		sub, ok := h.ownedSubscription(acc, c.Param("id"))
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Subscription not found"})
		}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return c.JSON(http.StatusUnprocessableEntity, fieldErrors{Error: []fieldMessage{{Field: "name", Message: "name is required"}}})
			}
			sub.Name = *req.Name
		}
		if req.LawFamilies != nil {
			sub.LawFamilies = req.LawFamilies
		}
		if req.GeoExtent != nil {
			sub.GeoExtent = req.GeoExtent
		}
		if req.ChangeTypes != nil {
			sub.ChangeTypes = req.ChangeTypes
		}
		if req.Keywords != nil {
			sub.Keywords = req.Keywords
		}
		if req.TypeCodes != nil {
			sub.TypeCodes = req.TypeCodes
		}
		if req.Frequency != "" {
			sub.Frequency = req.Frequency
		}
		if req.DeliveryMethods != nil {
			sub.DeliveryMethods = req.DeliveryMethods
		}
		if req.Enabled != nil {
			sub.Enabled = *req.Enabled
		}
		sub.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return c.JSON(http.StatusOK, map[string]any{"data": sub})
	})
}

func (h *Hub) deleteSubscription(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		sub, ok := h.ownedSubscription(acc, c.Param("id"))
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Subscription not found"})
		}
		delete(h.subscriptions, sub.ID)
		for i, id := range h.subOrder {
			if id == sub.ID {
				h.subOrder = append(h.subOrder[:i], h.subOrder[i+1:]...)
				break
			}
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// ownedSubscription looks id up within the account's organization. Callers
// hold mu.
func (h *Hub) ownedSubscription(acc *account, id string) (*domain.Subscription, bool) {
	sub, ok := h.subscriptions[id]
	if !ok || sub.OrganizationID != acc.user.OrganizationID {
		return nil, false
	}
	return sub, true
}

// ── notification events ──────────────────────────────────────────────────────

func (h *Hub) listEvents(c echo.Context) error {
	return h.withAccount(c, func(acc *account) error {
		out := make([]domain.LawChangeEvent, 0, len(h.events))
		for _, ev := range h.events {
			if ev.OrganizationID == "" || ev.OrganizationID == acc.user.OrganizationID {
				out = append(out, ev)
			}
		}
		return c.JSON(http.StatusOK, map[string]any{"data": out})
	})
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

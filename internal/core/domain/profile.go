package domain

import "encoding/json"

// ProfileUser is the user record returned by the profile endpoints.
type ProfileUser struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	Role           string  `json:"role"`
	OrganizationID string  `json:"organization_id"`
	ConfirmedAt    *string `json:"confirmed_at"`
}

// ProfileUpdate is sent unwrapped as the PATCH body. Nil fields are omitted.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Organization is the tenant record returned by the organization endpoints.
type Organization struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	Slug     string                     `json:"slug"`
	Tier     string                     `json:"tier"`
	Settings map[string]json.RawMessage `json:"settings"`
}

// OrganizationUpdate is sent wrapped as {"organization": {...}}.
type OrganizationUpdate struct {
	Name *string `json:"name,omitempty"`
}

// TotpStatus reports whether two-factor authentication is on.
type TotpStatus struct {
	TotpEnabled          bool    `json:"totp_enabled"`
	EnabledAt            *string `json:"enabled_at"`
	BackupCodesRemaining int     `json:"backup_codes_remaining"`
}

// TotpSetup carries the provisioning secret and backup codes.
type TotpSetup struct {
	Status      string   `json:"status"`
	Secret      string   `json:"secret"`
	URI         string   `json:"uri"`
	BackupCodes []string `json:"backup_codes"`
}

// TotpToggle is the response to enable and disable.
type TotpToggle struct {
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}

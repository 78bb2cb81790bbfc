package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the unverified payload of a hub credential. Only the identity
// service can vouch for it; the client reads it for display and for restoring
// a session at startup.
type Claims struct {
	jwt.RegisteredClaims
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	OrgID          string `json:"org_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	Role           string `json:"role,omitempty"`
}

// Organization returns the organization identifier. Older tokens carry it as
// organization_id, current ones as org_id.
func (c *Claims) Organization() string {
	if c.OrgID != "" {
		return c.OrgID
	}
	return c.OrganizationID
}

// Expires returns the exp claim, or the zero time when absent.
func (c *Claims) Expires() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the iat claim, or the zero time when absent.
func (c *Claims) Issued() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// Claims that are read as strings. Numbers are kept in their literal form and
// any other shape is ignored, so an odd issuer never hides the expiry.
var stringClaims = []string{"sub", "iss", "jti", "email", "name", "org_id", "organization_id", "role"}

// UnmarshalJSON decodes the payload leniently: string claims may arrive as
// numbers and an aud that is neither a string nor a list of strings is
// dropped. Timestamps keep their strict numeric form.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for _, key := range stringClaims {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if s, ok := looseString(v); ok {
			fields[key] = s
		} else {
			delete(fields, key)
		}
	}
	if aud, ok := fields["aud"]; ok {
		var list jwt.ClaimStrings
		if json.Unmarshal(aud, &list) != nil {
			delete(fields, "aud")
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	type plain Claims
	return json.Unmarshal(normalized, (*plain)(c))
}

func looseString(v json.RawMessage) (json.RawMessage, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return nil, false
	}
	switch {
	case v[0] == '"' || bytes.Equal(v, []byte("null")):
		return v, true
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		return json.RawMessage(strconv.Quote(string(v))), true
	}
	return nil, false
}

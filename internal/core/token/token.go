// Package token reads the claims of a compact three-segment credential
// without verifying it. Verification belongs to the identity service; every
// result produced here is for display and session bookkeeping only.
package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sertantai/hub-client/internal/core/domain"
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// toURLAlphabet maps the standard base64 alphabet onto the URL-safe one so
// that payloads produced by either encoder decode the same way.
var toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

// Decode returns the claims in the middle segment of credential. It reports
// false for anything that is not three dot-separated segments, does not
// base64-decode, or is not a JSON object.
func Decode(credential string) (*domain.Claims, bool) {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return nil, false
	}

	raw, err := parser.DecodeSegment(toURLAlphabet.Replace(parts[1]))
	if err != nil {
		return nil, false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	var claims domain.Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}

// IsExpired reports whether credential is expired, or will be within grace.
func IsExpired(credential string, grace time.Duration) bool {
	return IsExpiredAt(credential, grace, time.Now())
}

// IsExpiredAt is IsExpired evaluated at now. Undecodable credentials and
// credentials without exp count as expired.
func IsExpiredAt(credential string, grace time.Duration, now time.Time) bool {
	claims, ok := Decode(credential)
	if !ok || claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Add(-grace))
}

// ExpiresIn returns the time left before credential expires at now. It is
// zero or negative for expired or undecodable credentials.
func ExpiresIn(credential string, now time.Time) time.Duration {
	claims, ok := Decode(credential)
	if !ok || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(now)
}

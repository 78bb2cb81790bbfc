package ports

import (
	"context"

	"github.com/sertantai/hub-client/internal/core/domain"
)

// SessionReader exposes the current session snapshot.
type SessionReader interface {
	Current() domain.Session
}

// SessionClearer tears the session down, recording why.
type SessionClearer interface {
	ClearWith(ctx context.Context, reason string)
}

// ConditionalClearer tears the session down only while it still holds the
// expected credential.
type ConditionalClearer interface {
	ClearIf(ctx context.Context, expected, reason string) bool
}

// SessionEstablisher is the entry point into the authenticated state used by
// the login flows.
type SessionEstablisher interface {
	Establish(ctx context.Context, credential string, identity domain.Identity, organizationID, role string)
}

// Renewer replaces the current credential with a fresh one.
type Renewer interface {
	// Renew reports whether the session now holds a renewed credential.
	Renew(ctx context.Context) bool
}

// CredentialRenewer renews on behalf of a call that was rejected while
// carrying a specific credential.
type CredentialRenewer interface {
	// RenewFrom reports whether the session holds a credential newer than
	// rejected afterwards. It only refreshes while rejected is still current.
	RenewFrom(ctx context.Context, rejected string) bool
}

// Refresher exchanges a still-accepted credential for a new grant.
type Refresher interface {
	Refresh(ctx context.Context, credential string) (*domain.AuthGrant, error)
}

package domain

// SessionState is one of the two states a client session can be in.
type SessionState string

const (
	StateEmpty         SessionState = "empty"
	StateAuthenticated SessionState = "authenticated"
)

// Transition reasons, attached to logs and metrics.
const (
	ReasonLogin          = "login"
	ReasonRestore        = "restore"
	ReasonRenewal        = "renewal"
	ReasonLogout         = "logout"
	ReasonRenewalFailure = "renewal_failure"
	ReasonRejected       = "rejected"
	ReasonExpired        = "expired"
	ReasonCorrupt        = "corrupt"
	ReasonStorage        = "storage"
)

// Identity is the authenticated user as reported by the identity service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the process-wide authentication state. The zero value is the
// empty, unauthenticated session.
type Session struct {
	Credential     string
	Identity       *Identity
	OrganizationID string
	Role           string
	Authenticated  bool
}

// State reports which state the session is in.
func (s Session) State() SessionState {
	if s.Authenticated {
		return StateAuthenticated
	}
	return StateEmpty
}

// HasCredential reports whether a credential is held, regardless of whether
// it was accepted.
func (s Session) HasCredential() bool {
	return s.Credential != ""
}

// AuthGrant is the success payload of register, login, refresh and magic-link
// completion.
type AuthGrant struct {
	Token          string   `json:"token"`
	User           Identity `json:"user"`
	OrganizationID string   `json:"organization_id"`
	Role           string   `json:"role"`
}

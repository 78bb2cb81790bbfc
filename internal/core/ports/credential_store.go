package ports

import "context"

// CredentialStore persists the current credential across process restarts.
// Implementations hold a single value under a fixed key.
type CredentialStore interface {
	// Load returns the stored credential, or domain.ErrCredentialNotFound.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	// Delete removes the credential. Deleting nothing is not an error.
	Delete(ctx context.Context) error
}

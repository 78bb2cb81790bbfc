package domain

import "errors"

// ErrTransport wraps failures where no response was obtained at all.
var ErrTransport = errors.New("transport failure")

// ErrCredentialNotFound is returned by credential stores holding nothing.
var ErrCredentialNotFound = errors.New("credential not found")

// ErrRefreshRejected is returned when the identity service refuses a refresh.
var ErrRefreshRejected = errors.New("refresh rejected")

// ErrInvalidResponse is returned when a success response cannot be decoded.
var ErrInvalidResponse = errors.New("invalid response")

// NetworkErrorMessage is what callers see for transport failures.
const NetworkErrorMessage = "Network error"

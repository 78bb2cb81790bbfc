package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

// Renewer exchanges the current credential for a fresh one. Concurrent
// callers holding the same credential share a single refresh call.
type Renewer struct {
	store     *Store
	refresher ports.Refresher
	group     singleflight.Group
	log       zerolog.Logger
}

var (
	_ ports.Renewer           = (*Renewer)(nil)
	_ ports.CredentialRenewer = (*Renewer)(nil)
)

func NewRenewer(store *Store, refresher ports.Refresher, log zerolog.Logger) *Renewer {
	return &Renewer{store: store, refresher: refresher, log: log}
}

// Renew reports whether the session holds a renewed credential afterwards.
// Without a credential it fails immediately and changes nothing. A rejected
// or failed refresh clears the session.
func (r *Renewer) Renew(ctx context.Context) bool {
	return r.RenewFrom(ctx, r.store.Current().Credential)
}

// RenewFrom is Renew for a call that was rejected while carrying rejected.
// Once the session has moved past that credential there is nothing to
// refresh and the caller can resend straight away.
func (r *Renewer) RenewFrom(ctx context.Context, rejected string) bool {
	credential := r.store.Current().Credential
	if credential == "" {
		metrics.RenewalsTotal.WithLabelValues("no_credential").Inc()
		return false
	}
	if credential != rejected {
		metrics.RenewalsTotal.WithLabelValues("already_renewed").Inc()
		r.log.Debug().Msg("session moved past the rejected credential, skipping refresh")
		return true
	}

	// The shared call must not die with whichever caller happened to start it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do(credential, func() (any, error) {
		return r.refresh(shared, credential), nil
	})
	return v.(bool)
}

func (r *Renewer) refresh(ctx context.Context, credential string) bool {
	start := time.Now()
	grant, err := r.refresher.Refresh(ctx, credential)
	metrics.RenewalDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		result := "rejected"
		if errors.Is(err, domain.ErrTransport) {
			result = "transport_error"
		}
		metrics.RenewalsTotal.WithLabelValues(result).Inc()
		r.log.Warn().Err(err).Str("result", result).Msg("credential renewal failed")

		if !r.store.ClearIf(ctx, credential, domain.ReasonRenewalFailure) {
			return r.superseded()
		}
		return false
	}

	if !r.store.EstablishIf(ctx, credential, *grant, domain.ReasonRenewal) {
		return r.superseded()
	}

	metrics.RenewalsTotal.WithLabelValues("success").Inc()
	r.log.Debug().Str("subject", grant.User.ID).Msg("credential renewed")
	return true
}

// superseded handles a refresh that finished after the session moved on
// (a new login or a logout). The outcome follows the newer session.
func (r *Renewer) superseded() bool {
	metrics.RenewalsTotal.WithLabelValues("superseded").Inc()
	return r.store.Current().Authenticated
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/core/token"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

// Manager ties the store, renewer and scheduler into the session lifecycle:
// restore at startup, establish on login, and stop scheduling on clear.
type Manager struct {
	store     *Store
	renewer   *Renewer
	scheduler *Scheduler
	grace     time.Duration
	log       zerolog.Logger
}

var _ ports.SessionEstablisher = (*Manager)(nil)

func NewManager(store *Store, renewer *Renewer, scheduler *Scheduler, log zerolog.Logger) *Manager {
	store.OnClear(scheduler.Stop)
	return &Manager{
		store:     store,
		renewer:   renewer,
		scheduler: scheduler,
		grace:     scheduler.grace,
		log:       log,
	}
}

// Establish enters the authenticated state and (re)arms the scheduler.
func (m *Manager) Establish(ctx context.Context, credential string, identity domain.Identity, organizationID, role string) {
	m.store.Establish(ctx, credential, identity, organizationID, role)
	m.scheduler.Start()
}

// Restore rebuilds the session from the persisted credential without
// contacting the server, unless the credential is about to expire, in which
// case one renewal is attempted first. Any storage or decoding problem leaves
// the session empty.
func (m *Manager) Restore(ctx context.Context) {
	credential, err := m.store.storage.Load(ctx)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return
	}
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("load").Inc()
		m.log.Warn().Err(err).Msg("failed to read persisted credential")
		m.store.ClearWith(ctx, domain.ReasonStorage)
		return
	}

	claims, ok := token.Decode(credential)
	if !ok {
		m.log.Warn().Msg("persisted credential undecodable")
		m.store.ClearWith(ctx, domain.ReasonCorrupt)
		return
	}

	if token.IsExpired(credential, 0) {
		m.log.Info().Msg("persisted credential expired")
		m.store.ClearWith(ctx, domain.ReasonExpired)
		return
	}

	m.store.restore(credential, claims)

	if token.IsExpired(credential, m.grace) {
		m.renewer.Renew(ctx)
	}
	m.scheduler.Start()
}

// Store returns the underlying store.
func (m *Manager) Store() *Store { return m.store }

// Renewer returns the underlying renewer.
func (m *Manager) Renewer() *Renewer { return m.renewer }

// Scheduler returns the underlying scheduler.
func (m *Manager) Scheduler() *Scheduler { return m.scheduler }

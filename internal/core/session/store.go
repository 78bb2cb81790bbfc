// Package session owns the client's single authentication session: the
// observable state, the persisted credential, credential renewal and the
// background renewal schedule.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

type subscriber struct {
	fn    func(domain.Session)
	since uint64
}

type delivery struct {
	seq     uint64
	target  uint64 // 0 means every subscriber
	session domain.Session
}

// Store is the single source of truth for "is the caller authenticated".
// All mutations go through Establish and Clear (and their conditional forms);
// each one is applied atomically and published to subscribers in order.
type Store struct {
	storage ports.CredentialStore
	log     zerolog.Logger

	// writeMu serialises mutations including their storage I/O so that the
	// persisted credential and the in-memory session agree on the last write.
	writeMu sync.Mutex

	mu         sync.Mutex
	current    domain.Session
	onClear    []func()
	subs       map[uint64]subscriber
	nextSubID  uint64
	seq        uint64
	queue      []delivery
	delivering bool
}

var (
	_ ports.SessionClearer     = (*Store)(nil)
	_ ports.ConditionalClearer = (*Store)(nil)
)

// NewStore returns an empty store persisting through storage.
func NewStore(storage ports.CredentialStore, log zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		log:     log,
		subs:    make(map[uint64]subscriber),
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.current)
}

// Subscribe registers fn. It is called with the current session first, then
// once per transition, in the order transitions were applied. fn may call
// back into the store. The returned function unsubscribes; a delivery already
// in progress may still reach fn once.
func (s *Store) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.seq++
	s.subs[id] = subscriber{fn: fn, since: s.seq}
	s.queue = append(s.queue, delivery{seq: s.seq, target: id, session: snapshot(s.current)})
	s.mu.Unlock()

	s.drain()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnClear registers a hook run after every Clear.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Establish persists credential and enters the authenticated state. It is the
// only way into that state.
func (s *Store) Establish(ctx context.Context, credential string, identity domain.Identity, organizationID, role string) {
	s.establish(ctx, nil, credential, identity, organizationID, role, domain.ReasonLogin)
}

// EstablishIf is Establish applied only while the session still holds
// expected. It reports whether the swap happened.
func (s *Store) EstablishIf(ctx context.Context, expected string, grant domain.AuthGrant, reason string) bool {
	return s.establish(ctx, &expected, grant.Token, grant.User, grant.OrganizationID, grant.Role, reason)
}

// Clear removes the persisted credential, empties the session and runs the
// clear hooks. Safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) {
	s.clear(ctx, nil, domain.ReasonLogout)
}

// ClearWith is Clear recording reason.
func (s *Store) ClearWith(ctx context.Context, reason string) {
	s.clear(ctx, nil, reason)
}

// ClearIf is Clear applied only while the session still holds expected.
func (s *Store) ClearIf(ctx context.Context, expected, reason string) bool {
	return s.clear(ctx, &expected, reason)
}

func (s *Store) establish(ctx context.Context, expected *string, credential string, identity domain.Identity, organizationID, role, reason string) bool {
	defer s.drain()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if expected != nil && s.Current().Credential != *expected {
		s.log.Debug().Str("reason", reason).Msg("establish skipped, session superseded")
		return false
	}

	if err := s.storage.Save(ctx, credential); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("save").Inc()
		s.log.Warn().Err(err).Msg("failed to persist credential, session kept in memory")
	}

	id := identity
	s.apply(domain.Session{
		Credential:     credential,
		Identity:       &id,
		OrganizationID: organizationID,
		Role:           role,
		Authenticated:  true,
	}, reason)

	s.log.Info().
		Str("subject", identity.ID).
		Str("organization_id", organizationID).
		Str("reason", reason).
		Msg("session established")
	return true
}

func (s *Store) clear(ctx context.Context, expected *string, reason string) bool {
	defer s.drain()
	s.writeMu.Lock()

	if expected != nil && s.Current().Credential != *expected {
		s.writeMu.Unlock()
		s.log.Debug().Str("reason", reason).Msg("clear skipped, session superseded")
		return false
	}

	if err := s.storage.Delete(ctx); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("delete").Inc()
		s.log.Warn().Err(err).Msg("failed to delete persisted credential")
	}

	if s.Current().HasCredential() {
		s.apply(domain.Session{}, reason)
		s.log.Info().Str("reason", reason).Msg("session cleared")
	}

	s.mu.Lock()
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()
	s.writeMu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// restore populates the session from an already persisted credential without
// writing it back.
func (s *Store) restore(credential string, claims *domain.Claims) {
	defer s.drain()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.apply(domain.Session{
		Credential:     credential,
		Identity:       &domain.Identity{ID: claims.Subject, Email: claims.Email},
		OrganizationID: claims.Organization(),
		Role:           claims.Role,
		Authenticated:  true,
	}, domain.ReasonRestore)

	s.log.Info().Str("subject", claims.Subject).Msg("session restored from storage")
}

// apply swaps the session and queues the transition. Callers hold writeMu
// and drain after releasing it.
func (s *Store) apply(next domain.Session, reason string) {
	s.mu.Lock()
	s.current = next
	s.seq++
	s.queue = append(s.queue, delivery{seq: s.seq, session: snapshot(next)})
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(string(next.State()), reason).Inc()
	if next.Authenticated {
		metrics.SessionAuthenticated.Set(1)
	} else {
		metrics.SessionAuthenticated.Set(0)
	}
}

// drain delivers queued transitions. Only one goroutine delivers at a time;
// others enqueue and return, leaving the active deliverer to pick their
// entries up in order.
func (s *Store) drain() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]

		var fns []func(domain.Session)
		if d.target != 0 {
			if sub, ok := s.subs[d.target]; ok {
				fns = append(fns, sub.fn)
			}
		} else {
			for _, sub := range s.subs {
				if sub.since < d.seq {
					fns = append(fns, sub.fn)
				}
			}
		}

		s.mu.Unlock()
		for _, fn := range fns {
			fn(snapshot(d.session))
		}
		s.mu.Lock()
	}

	s.delivering = false
	s.mu.Unlock()
}

func snapshot(in domain.Session) domain.Session {
	if in.Identity != nil {
		id := *in.Identity
		in.Identity = &id
	}
	return in
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/core/token"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

const (
	DefaultInterval = 60 * time.Second
	DefaultGrace    = 5 * time.Minute
)

// Scheduler renews the credential shortly before it expires, so the
// gateway's reactive renewal stays a fallback.
type Scheduler struct {
	sessions ports.SessionReader
	renewer  ports.Renewer
	interval time.Duration
	grace    time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewScheduler returns a stopped scheduler. Non-positive interval or negative
// grace fall back to the defaults.
func NewScheduler(sessions ports.SessionReader, renewer ports.Renewer, interval, grace time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if grace < 0 {
		grace = DefaultGrace
	}
	return &Scheduler{
		sessions: sessions,
		renewer:  renewer,
		interval: interval,
		grace:    grace,
		log:      log,
		now:      time.Now,
	}
}

// Start begins ticking, cancelling any loop already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	s.cancel = cancel

	go s.run(ctx, s.gen)
	s.log.Debug().Dur("interval", s.interval).Msg("renewal scheduler started")
}

// Stop cancels the loop. It does not wait for an in-flight tick and is safe
// to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.log.Debug().Msg("renewal scheduler stopped")
}

// Running reports whether a loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.tick(ctx) {
				s.stopGen(gen)
				return
			}
		}
	}
}

// tick reports whether the loop should keep going.
func (s *Scheduler) tick(ctx context.Context) bool {
	credential := s.sessions.Current().Credential
	if credential == "" {
		metrics.SchedulerTicksTotal.WithLabelValues("stop").Inc()
		return false
	}

	if !token.IsExpiredAt(credential, s.grace, s.now()) {
		metrics.SchedulerTicksTotal.WithLabelValues("idle").Inc()
		return true
	}

	metrics.SchedulerTicksTotal.WithLabelValues("renew").Inc()
	s.log.Debug().
		Dur("expires_in", token.ExpiresIn(credential, s.now())).
		Msg("credential inside grace window, renewing")

	if !s.renewer.Renew(ctx) {
		s.log.Info().Msg("scheduled renewal failed, scheduler stopping")
		return false
	}
	return true
}

// stopGen stops the loop only if it is still the one identified by gen, so a
// loop replaced by a newer Start cannot cancel its successor.
func (s *Scheduler) stopGen(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Package engine runs every write through the derivation rules before it
// reaches the store, so denormalized fields stay consistent across
// independently arriving requests.
package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"p9e.in/sitecore/pkg/metrics"
	"p9e.in/sitecore/pkg/store"
)

// RoleAdmin may amend any progress report and reach admin routes.
const RoleAdmin = "admin"

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Role   string
	Name   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Service is the consistency engine.
type Service struct {
	store   store.Store
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service on st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   log.Logger,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "engine").Logger()
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

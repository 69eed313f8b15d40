package services

import (
	"time"

	"usertemplate/backend/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultResetTokenTTL is how long a password-reset token stays valid.
const DefaultResetTokenTTL = time.Hour

// Option customises a UserService.
type Option func(*UserService)

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) {
		if l != nil {
			s.logger = l.Named("user-service")
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *UserService) { s.metrics = m }
}

// WithClock replaces time.Now. Returned instants are normalised to UTC.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithResetTokenTTL(ttl time.Duration) Option {
	return func(s *UserService) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithTokenGenerator replaces the UUID generator used for reset tokens.
func WithTokenGenerator(gen func() string) Option {
	return func(s *UserService) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// WithEnvironment records the deployment environment; "production" disables Initialise.
func WithEnvironment(env string) Option {
	return func(s *UserService) { s.environment = env }
}

func defaultOptions(s *UserService) {
	s.logger = zap.NewNop()
	s.now = time.Now
	s.resetTTL = DefaultResetTokenTTL
	s.newToken = uuid.NewString
}

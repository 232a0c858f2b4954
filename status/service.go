package status

import (
	"time"

	"go.uber.org/zap"
)

// Service exposes a Registry through the service lifecycle and logs a
// session summary when stopped
type Service struct {
	registry *Registry
	logger   *zap.Logger
	started  time.Time
	stopped  bool
}

// NewService creates a status service with an empty registry
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: NewRegistry(), logger: logger}
}

func (s *Service) Name() string           { return "status" }
func (s *Service) Dependencies() []string { return nil }
func (s *Service) Init(...any) error      { return nil }

// Start records the session start
func (s *Service) Start() error {
	s.started = time.Now()
	s.stopped = false
	return nil
}

// Stop logs the summary once
func (s *Service) Stop() error {
	if s.stopped {
		return nil
	}
	s.stopped = true

	fields := append([]zap.Field{zap.Duration("uptime", time.Since(s.started))}, s.registry.Fields()...)
	s.logger.Info("session summary", fields...)
	return nil
}

// Registry returns the underlying registry
func (s *Service) Registry() *Registry {
	return s.registry
}

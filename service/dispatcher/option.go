package dispatcher

import (
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/progress"
	"github.com/viant/hamal/service/event"
	"go.uber.org/zap"
)

// Option is used to customise the dispatcher instance.
type Option func(*Service)

// WithResolver sets the policy registry used to build phase chains
func WithResolver(resolver policy.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEventService publishes phase events to the supplied service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithProgress sets dispatch counters tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithListener sets a listener invoked after every forwarded phase action. Passing nil disables it.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

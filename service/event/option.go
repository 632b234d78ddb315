package event

import (
	"github.com/viant/hamal/service/messaging/memory"
)

type Option func(s *Service)

// WithNewMemoryQueueConfig sets the memory queue configuration factory
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}

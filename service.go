package hamal

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/hamal/extension"
	"github.com/viant/hamal/internal/logging"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/policy/builtin"
	"github.com/viant/hamal/progress"
	dpolicy "github.com/viant/hamal/service/dao/policy"
	"github.com/viant/hamal/service/dispatcher"
	"github.com/viant/hamal/service/event"
	"github.com/viant/hamal/service/messaging/memory"
	"github.com/viant/hamal/service/meta"
	"github.com/viant/hamal/service/store"
	"github.com/viant/hamal/tracing"
	"github.com/viant/scy"
	"github.com/viant/x"
	"go.uber.org/zap"
)

type Service struct {
	policies       *extension.Policies
	types          *extension.Types
	builder        *builtin.Builder
	declarations   *dpolicy.Service
	metaService    *meta.Service
	eventService   *event.Service
	progress       *progress.Progress
	secrets        *scy.Service
	logger         *zap.Logger
	listener       dispatcher.Listener
	extensionTypes []*x.Type
	metaBaseURL    string
	metaFsOptions  []storage.Option
	loaded         map[string][]string
	mux            sync.Mutex
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.policies = extension.NewPolicies()
	s.types = extension.NewTypes()
	for _, aType := range s.extensionTypes {
		s.types.Register(aType)
	}
	s.builder = builtin.New(builtin.WithTypes(s.types), builtin.WithSecrets(s.secrets))
	s.declarations = dpolicy.New(dpolicy.WithMetaService(s.metaService))
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.progress == nil {
		s.progress = progress.New("hamal")
	}
	if s.secrets == nil {
		s.secrets = scy.New()
	}
}

// Policies returns the policy registry
func (s *Service) Policies() *extension.Policies {
	return s.policies
}

// Types returns the payload type registry
func (s *Service) Types() *extension.Types {
	return s.types
}

// Builder returns the declared policy builder
func (s *Service) Builder() *builtin.Builder {
	return s.builder
}

// Progress returns the dispatch progress tracker
func (s *Service) Progress() *progress.Progress {
	return s.progress
}

// Events returns the event service or nil when events are disabled
func (s *Service) Events() *event.Service {
	return s.eventService
}

// Logger returns the service logger
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Register registers a policy func under name, a previous registration is replaced
func (s *Service) Register(name string, point policy.Point, fn policy.Func) error {
	return s.policies.RegisterFunc(name, point, fn)
}

// RegisterExtensionTypes registers payload types after construction, decode policies built later can reference them
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.types.Register(types[i])
	}
}

// RegisterPolicy builds a declared policy and registers it
func (s *Service) RegisterPolicy(ctx context.Context, config *policy.Config) error {
	aPolicy, err := s.builder.Build(ctx, config)
	if err != nil {
		return err
	}
	if err = s.policies.Register(aPolicy.Name, aPolicy); err != nil {
		return err
	}
	s.logger.Debug("registered policy", zap.String("policy", aPolicy.Name), zap.String("kind", config.Kind), zap.String("applyPoint", config.ApplyPoint))
	return nil
}

// LoadPolicies loads policy declarations from URL and registers them. Reloading the same URL
// unregisters policies no longer declared there; a reload with any invalid declaration changes nothing.
func (s *Service) LoadPolicies(ctx context.Context, URL string) error {
	configs, err := s.declarations.Load(ctx, URL)
	if err != nil {
		return err
	}
	policies := make([]*policy.Policy, 0, len(configs))
	for _, config := range configs {
		aPolicy, err := s.builder.Build(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to build policy from %v: %w", URL, err)
		}
		policies = append(policies, aPolicy)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	current := make(map[string]bool, len(policies))
	names := make([]string, 0, len(policies))
	for i, aPolicy := range policies {
		if err = s.policies.Register(aPolicy.Name, aPolicy); err != nil {
			return fmt.Errorf("failed to register policy from %v: %w", URL, err)
		}
		s.logger.Debug("registered policy", zap.String("policy", aPolicy.Name), zap.String("kind", configs[i].Kind), zap.String("applyPoint", configs[i].ApplyPoint))
		if !current[aPolicy.Name] {
			names = append(names, aPolicy.Name)
		}
		current[aPolicy.Name] = true
	}
	for _, name := range s.loaded[URL] {
		if !current[name] {
			s.policies.Unregister(name)
			s.logger.Debug("unregistered policy", zap.String("policy", name), zap.String("URL", URL))
		}
	}
	s.loaded[URL] = names
	s.logger.Info("loaded policies", zap.String("URL", URL), zap.Int("count", len(configs)))
	return nil
}

// Dispatcher creates a dispatcher running task for every compound action
func (s *Service) Dispatcher(task dispatcher.Task) *dispatcher.Service {
	options := []dispatcher.Option{
		dispatcher.WithResolver(s.policies),
		dispatcher.WithLogger(s.logger),
		dispatcher.WithProgress(s.progress),
	}
	if s.eventService != nil {
		options = append(options, dispatcher.WithEventService(s.eventService))
	}
	if s.listener != nil {
		options = append(options, dispatcher.WithListener(s.listener))
	}
	return dispatcher.New(task, options...)
}

// Middleware returns store middleware running task for every compound action
func (s *Service) Middleware(task dispatcher.Task) store.Middleware {
	return s.Dispatcher(task).Middleware()
}

// NewStore creates a store with the dispatch middleware as the outermost one
func (s *Service) NewStore(reducer store.Reducer, initial interface{}, task dispatcher.Task, middlewares ...store.Middleware) *store.Store {
	middlewares = append([]store.Middleware{s.Middleware(task)}, middlewares...)
	return store.New(reducer, initial, store.WithMiddlewares(middlewares...))
}

// Close releases event listeners and flushes the logger
func (s *Service) Close() {
	if s.eventService != nil {
		s.eventService.Close()
	}
	_ = s.logger.Sync()
}

func New(options ...Option) *Service {
	ret := &Service{loaded: make(map[string][]string)}
	ret.init(options)
	return ret
}

// NewFromConfig creates a service from config; options are applied after the config derived ones
func NewFromConfig(ctx context.Context, cfg *Config, options ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var configured []Option
	if cfg.Logging != nil {
		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		configured = append(configured, WithLogger(logger))
	}
	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.ServiceVersion, cfg.Tracing.OutputFile); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if cfg.Events.Enabled {
		queueConfig := memory.DefaultConfig()
		if cfg.Events.QueueBuffer > 0 {
			queueConfig.QueueBuffer = cfg.Events.QueueBuffer
		}
		events, err := event.New(event.VendorMemory, event.WithNewMemoryQueueConfig(func(string) memory.Config { return queueConfig }))
		if err != nil {
			return nil, fmt.Errorf("failed to create event service: %w", err)
		}
		configured = append(configured, WithEventService(events))
	}
	ret := New(append(configured, options...)...)
	if cfg.PolicyURL != "" {
		if err := ret.LoadPolicies(ctx, cfg.PolicyURL); err != nil {
			ret.Close()
			return nil, err
		}
	}
	return ret, nil
}

package builtin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/hamal/extension"
	"github.com/viant/hamal/policy"
	"github.com/viant/scy"
	"github.com/viant/structology/conv"
)

// Factory creates a policy func from a declaration
type Factory func(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error)

// Builder turns policy declarations into policies
type Builder struct {
	types     *extension.Types
	secrets   *scy.Service
	converter *conv.Converter
	factories map[string]Factory
	points    map[string][]policy.Point
	mux       sync.RWMutex
}

// Types returns payload type registry
func (b *Builder) Types() *extension.Types {
	return b.types
}

// Register registers a factory for kind; points lists where the kind can apply, none means any
func (b *Builder) Register(kind string, factory Factory, points ...policy.Point) {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.factories[kind] = factory
	b.points[kind] = points
}

// Kinds returns sorted registered kinds
func (b *Builder) Kinds() []string {
	b.mux.RLock()
	defer b.mux.RUnlock()
	ret := make([]string, 0, len(b.factories))
	for kind := range b.factories {
		ret = append(ret, kind)
	}
	sort.Strings(ret)
	return ret
}

// Build creates a policy from declaration
func (b *Builder) Build(ctx context.Context, config *policy.Config) (*policy.Policy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b.mux.RLock()
	factory, ok := b.factories[config.Kind]
	points := b.points[config.Kind]
	b.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("policy %v: unsupported kind: %v", config.Name, config.Kind)
	}
	if !supports(points, config.Point()) {
		return nil, fmt.Errorf("policy %v: %w: %v does not apply at %v", config.Name, policy.ErrInvalidApplyPoint, config.Kind, config.ApplyPoint)
	}
	fn, err := factory(ctx, b, config)
	if err != nil {
		return nil, fmt.Errorf("policy %v: %w", config.Name, err)
	}
	return policy.New(config.Name, config.Point(), fn), nil
}

// Params converts declaration params into dest
func (b *Builder) Params(config *policy.Config, dest interface{}) error {
	if len(config.Params) == 0 {
		return nil
	}
	if err := b.converter.Convert(config.Params, dest); err != nil {
		return fmt.Errorf("invalid %v params: %w", config.Kind, err)
	}
	return nil
}

func supports(points []policy.Point, point policy.Point) bool {
	if len(points) == 0 {
		return true
	}
	for _, candidate := range points {
		if candidate == point {
			return true
		}
	}
	return false
}

// New creates a builder with builtin kinds registered
func New(opts ...Option) *Builder {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	ret := &Builder{
		converter: conv.NewConverter(options),
		factories: make(map[string]Factory),
		points:    make(map[string][]policy.Point),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.types == nil {
		ret.types = extension.NewTypes()
	}
	if ret.secrets == nil {
		ret.secrets = scy.New()
	}
	ret.Register(KindMeta, newMeta)
	ret.Register(KindTimestamp, newTimestamp)
	ret.Register(KindCorrelate, newCorrelate, policy.BeforeRequest)
	ret.Register(KindError, newError, policy.OnResponse)
	ret.Register(KindDecode, newDecode, policy.OnResponse)
	ret.Register(KindSecret, newSecret, policy.BeforeRequest)
	return ret
}

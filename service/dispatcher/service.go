package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/hamal/internal/clock"
	"github.com/viant/hamal/internal/idgen"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/progress"
	"github.com/viant/hamal/service/event"
	"github.com/viant/hamal/service/store"
	"github.com/viant/hamal/tracing"
	"go.uber.org/zap"
)

// Service represents the async dispatch middleware
type Service struct {
	task     Task
	resolver policy.Resolver
	logger   *zap.Logger
	events   *event.Service
	progress *progress.Progress
	listener Listener
}

// dispatch holds the state of a single compound dispatch
type dispatch struct {
	id        string
	compound  *action.Compound
	names     []string
	api       policy.Store
	next      store.Dispatch
	span      *tracing.Span
	logger    *zap.Logger
	startedAt time.Time
}

// Middleware returns the store middleware
func (s *Service) Middleware() store.Middleware {
	return func(api policy.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(ctx context.Context, anAction interface{}) interface{} {
				return s.Dispatch(ctx, api, next, anAction)
			}
		}
	}
}

// Dispatch intercepts a compound action and returns a *Promise settled with the task outcome.
// Any other action, including a compound with a malformed type, is forwarded to next unchanged
// and next's result is returned.
func (s *Service) Dispatch(ctx context.Context, api policy.Store, next store.Dispatch, anAction interface{}) interface{} {
	if ctx == nil {
		ctx = context.Background()
	}
	compound, ok := action.Decode(anAction)
	if !ok {
		return next(ctx, anAction)
	}
	if err := compound.Validate(); err != nil {
		s.logger.Debug("forwarding malformed compound action", zap.Error(err))
		return next(ctx, anAction)
	}
	return s.dispatch(ctx, api, next, compound)
}

func (s *Service) dispatch(ctx context.Context, api policy.Store, next store.Dispatch, compound *action.Compound) *Promise {
	d := &dispatch{
		id:        idgen.New(),
		compound:  compound,
		names:     compound.Policies(),
		api:       api,
		next:      next,
		startedAt: clock.Now(),
	}
	d.logger = s.logger.With(
		zap.String("dispatchID", d.id),
		zap.String("request", compound.RequestType()),
		zap.String("response", compound.ResponseType()))

	ctx = WithDispatchID(ctx, d.id)
	ctx = progress.WithTracker(ctx, s.progress)
	ctx, d.span = tracing.StartDispatch(ctx, d.id, compound.RequestType(), compound.ResponseType())
	s.progress.Update(progress.Delta{Total: 1, Running: 1})

	meta := compound.Meta
	if forwarded := s.runPhase(ctx, d, policy.BeforeRequest, compound.Request(), nil, nil); forwarded != nil {
		meta = forwarded.Meta
	}

	promise := newPromise()
	go func() {
		value, err := s.execute(ctx, d)
		s.runPhase(ctx, d, policy.OnResponse, compound.Response(meta, value), err, value)
		s.complete(d, err)
		promise.settle(value, err)
	}()
	return promise
}

// execute runs the task; exactly one of value and err is returned
func (s *Service) execute(ctx context.Context, d *dispatch) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		if err != nil {
			value = nil
		}
	}()
	if s.task == nil {
		return nil, ErrTaskNotDefined
	}
	return s.task(ctx, d.api, s.notifier(ctx, d), d.compound)
}

func (s *Service) notifier(ctx context.Context, d *dispatch) Notify {
	return func(err error, value interface{}) {
		d.logger.Debug("task notified", zap.Error(err), zap.Any("value", value))
		s.publish(ctx, d, PhaseResponse, event.TypeNotified, d.compound.Response(d.compound.Meta, value))
	}
}

// runPhase runs the point chain over the phase action; the returned action is the one forwarded
// to next, or nil when a policy suppressed the phase.
func (s *Service) runPhase(ctx context.Context, d *dispatch, point policy.Point, anAction *action.Action, err error, response interface{}) *action.Action {
	phase := phaseOf(point)
	applicable, skipped := policy.Filter(s.resolver, d.names, point)
	if len(skipped) > 0 {
		d.logger.Debug("policies not applicable", zap.String("phase", phase), zap.Strings("policies", skipped))
	}

	forwarded, panicked := s.runChain(ctx, d, policy.Compose(applicable...), anAction, err, response)
	if panicked != nil {
		d.logger.Error("phase chain panicked", zap.String("phase", phase), zap.Any("panic", panicked))
		d.span.AddEvent(phase+".panic", map[string]string{"panic": fmt.Sprint(panicked)})
	}
	if forwarded == nil {
		d.logger.Debug("phase suppressed by policy", zap.String("phase", phase))
		d.span.AddEvent(phase+".suppressed", nil)
		progress.UpdateCtx(ctx, progress.Delta{Suppressed: 1})
		s.publish(ctx, d, phase, event.TypeSuppressed, anAction)
		return nil
	}
	d.span.AddEvent(phase, map[string]string{"type": forwarded.Type})
	s.publish(ctx, d, phase, event.TypeDispatched, forwarded)
	if s.listener != nil {
		s.listener(phase, forwarded)
	}
	return forwarded
}

// runChain runs chain synchronously; only the first continuation made while the chain runs reaches next
func (s *Service) runChain(ctx context.Context, d *dispatch, chain policy.Chain, anAction *action.Action, err error, response interface{}) (forwarded *action.Action, panicked interface{}) {
	var mux sync.Mutex
	closed := false
	terminal := func(rewritten *action.Action, _ error, _ interface{}) {
		mux.Lock()
		if closed || forwarded != nil {
			mux.Unlock()
			d.logger.Warn("ignoring repeated or late phase continuation", zap.String("type", anAction.Type))
			return
		}
		if rewritten == nil {
			rewritten = anAction
		}
		forwarded = rewritten
		mux.Unlock()
		d.next(ctx, rewritten)
	}
	defer func() {
		panicked = recover()
		mux.Lock()
		closed = true
		mux.Unlock()
	}()
	chain(d.api, anAction, err, response, terminal)
	return forwarded, nil
}

func (s *Service) complete(d *dispatch, err error) {
	delta := progress.Delta{Running: -1, Completed: 1}
	if err != nil {
		delta = progress.Delta{Running: -1, Failed: 1}
	}
	s.progress.Update(delta)
	tracing.EndSpan(d.span, err)
	d.logger.Debug("dispatch settled", zap.Duration("elapsed", clock.Since(d.startedAt)), zap.Error(err))
}

func (s *Service) publish(ctx context.Context, d *dispatch, phase, eventType string, anAction *action.Action) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[*action.Action](s.events)
	if err != nil {
		d.logger.Warn("failed to get event publisher", zap.Error(err))
		return
	}
	anEvent := event.NewEvent[*action.Action](&event.Context{
		DispatchID:  d.id,
		Phase:       phase,
		ActionType:  anAction.Type,
		EventType:   eventType,
		TimeTakenMs: int(clock.Since(d.startedAt).Milliseconds()),
	}, anAction)
	if err = publisher.Publish(ctx, anEvent); err != nil {
		d.logger.Warn("failed to publish dispatch event", zap.Error(err))
	}
}

// New creates a dispatcher running task for every compound action
func New(task Task, opts ...Option) *Service {
	s := &Service{task: task}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

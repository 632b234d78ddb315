// Package progress provides a lightweight tracker that keeps aggregated
// dispatch counters (total, running, completed, failed, suppressed phases).
// The tracker can be attached to a dispatcher or carried in a context; every
// component that receives it can atomically update the counters via the Delta
// helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/hamal/internal/clock"
)

// Delta represents an incremental counter change emitted by the dispatcher.
// The fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Total      int
	Running    int
	Completed  int
	Failed     int
	Suppressed int
}

// Progress keeps aggregated dispatch counters. It is safe for concurrent use.
type Progress struct {
	Name      string
	StartedAt time.Time

	TotalDispatches     int
	RunningDispatches   int
	CompletedDispatches int
	FailedDispatches    int
	SuppressedPhases    int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta to the tracker.  It is safe to call from
// multiple goroutines.  If an onChange callback has been registered it will be
// invoked with a copy of the updated tracker outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.TotalDispatches += d.Total
	p.RunningDispatches += d.Running
	p.CompletedDispatches += d.Completed
	p.FailedDispatches += d.Failed
	p.SuppressedPhases += d.Suppressed

	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the current counters
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

func (p *Progress) copy() Progress {
	return Progress{
		Name:                p.Name,
		StartedAt:           p.StartedAt,
		TotalDispatches:     p.TotalDispatches,
		RunningDispatches:   p.RunningDispatches,
		CompletedDispatches: p.CompletedDispatches,
		FailedDispatches:    p.FailedDispatches,
		SuppressedPhases:    p.SuppressedPhases,
	}
}

// OnChange registers a callback that is invoked after every successful
// Update.  Passing nil disables the callback.  Only one callback can be
// active; subsequent calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

// New creates a tracker
func New(name string) *Progress {
	return &Progress{Name: name, StartedAt: clock.Now()}
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in a derived context
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the Progress tracker from ctx.  The second return
// value is false when the context carries no tracker.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx is a helper that looks up the tracker in ctx (if any) and applies
// the supplied delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}

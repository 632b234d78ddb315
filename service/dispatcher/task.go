package dispatcher

import (
	"context"

	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
)

// Notify lets a task report an intermediate outcome. It is best effort: the
// value returned by the task is what settles the dispatch.
type Notify func(err error, value interface{})

// Task runs the asynchronous operation of a compound action. It receives the
// original compound, before it was split into phases.
type Task func(ctx context.Context, store policy.Store, notify Notify, compound *action.Compound) (interface{}, error)

// Listener is invoked once a phase action was forwarded to the store
type Listener func(phase string, anAction *action.Action)

// Phase names used in logs, events and listener calls.
const (
	PhaseRequest  = "request"
	PhaseResponse = "response"
)

func phaseOf(point policy.Point) string {
	if point == policy.OnResponse {
		return PhaseResponse
	}
	return PhaseRequest
}

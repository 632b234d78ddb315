package event

import (
	"time"

	"github.com/viant/hamal/internal/clock"
)

// Event types published by the dispatcher.
const (
	TypeDispatched = "dispatched" // phase action reached the store
	TypeSuppressed = "suppressed" // a policy did not continue the phase
	TypeNotified   = "notified"   // task reported through its continuation
)

// Context describes where an event originated
type Context struct {
	DispatchID  string `json:"dispatchID"`
	Phase       string `json:"phase"`
	ActionType  string `json:"actionType"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

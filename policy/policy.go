package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/hamal/model/action"
)

// Point represents an extension point of the dispatch pipeline
type Point string

// Extension points recognised by the dispatcher.
const (
	BeforeRequest Point = "beforeRequest" // before the request phase action reaches the store
	OnResponse    Point = "onResponse"    // before the response phase action reaches the store
)

var (
	// ErrPolicyNotFound is returned when a policy name has no registry entry
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrInvalidApplyPoint is returned for an unknown extension point
	ErrInvalidApplyPoint = errors.New("invalid apply point")
)

// ParsePoint converts a declared apply point into Point
func ParsePoint(value string) (Point, error) {
	switch point := Point(value); point {
	case BeforeRequest, OnResponse:
		return point, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidApplyPoint, value)
}

// Store represents the host store view handed to policies and tasks
type Store interface {
	State() interface{}
	Dispatch(ctx context.Context, anAction interface{}) interface{}
}

// Done continues the chain with a (possibly rewritten) action, error and response.
type Done func(anAction *action.Action, err error, response interface{})

// Func wraps done with the policy transformation. The returned Done must run
// synchronously; not calling done suppresses the rest of the phase.
type Func func(store Store, done Done) Done

// Policy represents a registered policy
type Policy struct {
	Name       string
	ApplyPoint Point
	Func       Func
}

// Validate checks the policy can be registered
func (p *Policy) Validate() error {
	if p == nil {
		return fmt.Errorf("policy was nil")
	}
	if p.Func == nil {
		return fmt.Errorf("policy %v: func was nil", p.Name)
	}
	if _, err := ParsePoint(string(p.ApplyPoint)); err != nil {
		return fmt.Errorf("policy %v: %w", p.Name, err)
	}
	return nil
}

// AppliesTo returns true if policy is tagged for the point
func (p *Policy) AppliesTo(point Point) bool {
	return p != nil && p.ApplyPoint == point
}

// New creates a policy
func New(name string, point Point, fn Func) *Policy {
	return &Policy{Name: name, ApplyPoint: point, Func: fn}
}

// ---------------------------------------------------------------------------
// Config is the serialisable part used when a policy is declared in a
// document rather than registered from code; policy/builtin turns it into Policy.
// ---------------------------------------------------------------------------

// Config represents a declarative policy
type Config struct {
	Name       string                 `json:"name" yaml:"name"`
	Kind       string                 `json:"kind" yaml:"kind"`
	ApplyPoint string                 `json:"applyPoint" yaml:"applyPoint"`
	Params     map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
}

// Validate checks declaration fields
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("policy config was nil")
	}
	if c.Name == "" {
		return fmt.Errorf("policy name was empty")
	}
	if c.Kind == "" {
		return fmt.Errorf("policy %v: kind was empty", c.Name)
	}
	if _, err := ParsePoint(c.ApplyPoint); err != nil {
		return fmt.Errorf("policy %v: %w", c.Name, err)
	}
	return nil
}

// Point returns declared apply point
func (c *Config) Point() Point {
	return Point(c.ApplyPoint)
}

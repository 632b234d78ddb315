package action

import "fmt"

// Compound represents an asynchronous operation dispatched as a single action.
// Type holds the request and response action types, in that order.
type Compound struct {
	Type    []string    `json:"type" yaml:"type"`
	Meta    Meta        `json:"meta,omitempty" yaml:"meta,omitempty"`
	Payload interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Validate checks that the compound carries exactly two distinct, non-empty types
func (c *Compound) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil", ErrMalformedCompound)
	}
	if len(c.Type) != 2 {
		return fmt.Errorf("%w: expected 2 types, but had %d", ErrMalformedCompound, len(c.Type))
	}
	if c.Type[0] == "" || c.Type[1] == "" {
		return fmt.Errorf("%w: empty type in %v", ErrMalformedCompound, c.Type)
	}
	if c.Type[0] == c.Type[1] {
		return fmt.Errorf("%w: request and response types are both %q", ErrMalformedCompound, c.Type[0])
	}
	return nil
}

// RequestType returns request action type
func (c *Compound) RequestType() string {
	return c.Type[0]
}

// ResponseType returns response action type
func (c *Compound) ResponseType() string {
	return c.Type[1]
}

// Policies returns policy names listed in meta
func (c *Compound) Policies() []string {
	return c.Meta.Policies()
}

// Request builds the request phase action, the compound payload is not carried over
func (c *Compound) Request() *Action {
	return &Action{Type: c.RequestType(), Meta: c.Meta}
}

// Response builds the response phase action with the supplied meta and task value
func (c *Compound) Response(meta Meta, value interface{}) *Action {
	return &Action{Type: c.ResponseType(), Meta: meta, Payload: value}
}

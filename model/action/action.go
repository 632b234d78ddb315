package action

// Action represents a plain action with a scalar type, either dispatched directly
// or derived from a compound action as a request or response phase.
type Action struct {
	Type    string      `json:"type" yaml:"type"`
	Meta    Meta        `json:"meta,omitempty" yaml:"meta,omitempty"`
	Payload interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// WithMeta returns a copy of the action with meta replaced
func (a *Action) WithMeta(meta Meta) *Action {
	return &Action{Type: a.Type, Meta: meta, Payload: a.Payload}
}

// WithPayload returns a copy of the action with payload replaced
func (a *Action) WithPayload(payload interface{}) *Action {
	return &Action{Type: a.Type, Meta: a.Meta, Payload: payload}
}

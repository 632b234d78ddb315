package extension

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/hamal/policy"
)

// Policies provides the named policy registry
type Policies struct {
	policies map[string]*policy.Policy
	mux      sync.RWMutex
}

// Resolve returns a policy by name or policy.ErrPolicyNotFound
func (s *Policies) Resolve(name string) (*policy.Policy, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret, ok := s.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", policy.ErrPolicyNotFound, name)
	}
	return ret, nil
}

// Register registers a policy under name, a previous registration is replaced
func (s *Policies) Register(name string, aPolicy *policy.Policy) error {
	if name == "" {
		return fmt.Errorf("policy name was empty")
	}
	if err := aPolicy.Validate(); err != nil {
		return err
	}
	registered := *aPolicy
	registered.Name = name
	s.mux.Lock()
	defer s.mux.Unlock()
	s.policies[name] = &registered
	return nil
}

// RegisterFunc registers fn under name for the point
func (s *Policies) RegisterFunc(name string, point policy.Point, fn policy.Func) error {
	return s.Register(name, policy.New(name, point, fn))
}

// Unregister removes a policy
func (s *Policies) Unregister(name string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.policies, name)
}

// Names returns sorted registered policy names
func (s *Policies) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.policies))
	for name := range s.policies {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NewPolicies creates a new policy registry
func NewPolicies() *Policies {
	return &Policies{policies: make(map[string]*policy.Policy)}
}

package policy

import "github.com/viant/hamal/model/action"

// Resolver resolves a policy by name, returning ErrPolicyNotFound when absent
type Resolver interface {
	Resolve(name string) (*Policy, error)
}

// Chain runs the composed policies over the triple and finishes with terminal
type Chain func(store Store, anAction *action.Action, err error, response interface{}, terminal Done)

// Filter resolves names in order and keeps the policies tagged for point.
// Names that do not resolve or apply elsewhere are returned as skipped.
func Filter(resolver Resolver, names []string, point Point) (applicable []*Policy, skipped []string) {
	for _, name := range names {
		if resolver == nil {
			skipped = append(skipped, name)
			continue
		}
		aPolicy, err := resolver.Resolve(name)
		if err != nil || !aPolicy.AppliesTo(point) || aPolicy.Func == nil {
			skipped = append(skipped, name)
			continue
		}
		applicable = append(applicable, aPolicy)
	}
	return applicable, skipped
}

// Build composes policies listed by names for point; the first listed policy is the outermost one.
func Build(resolver Resolver, names []string, point Point) Chain {
	applicable, _ := Filter(resolver, names, point)
	return Compose(applicable...)
}

// Compose composes policies in order, policy[0] wraps policy[1] ... wraps terminal
func Compose(policies ...*Policy) Chain {
	return func(store Store, anAction *action.Action, err error, response interface{}, terminal Done) {
		done := terminal
		for i := len(policies) - 1; i >= 0; i-- {
			done = policies[i].Func(store, done)
		}
		done(anAction, err, response)
	}
}

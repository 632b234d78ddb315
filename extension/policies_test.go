package extension

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/x"
)

func passThrough(store policy.Store, done policy.Done) policy.Done {
	return done
}

func TestPolicies_RegisterResolve(t *testing.T) {
	registry := NewPolicies()
	require.NoError(t, registry.RegisterFunc("stamp", policy.BeforeRequest, passThrough))

	actual, err := registry.Resolve("stamp")
	require.NoError(t, err)
	assert.Equal(t, "stamp", actual.Name)
	assert.Equal(t, policy.BeforeRequest, actual.ApplyPoint)

	_, err = registry.Resolve("missing")
	assert.True(t, errors.Is(err, policy.ErrPolicyNotFound))
}

func TestPolicies_LastRegistrationWins(t *testing.T) {
	registry := NewPolicies()
	require.NoError(t, registry.RegisterFunc("stamp", policy.BeforeRequest, passThrough))
	require.NoError(t, registry.RegisterFunc("stamp", policy.OnResponse, passThrough))
	actual, err := registry.Resolve("stamp")
	require.NoError(t, err)
	assert.Equal(t, policy.OnResponse, actual.ApplyPoint)
	assert.Equal(t, []string{"stamp"}, registry.Names())
}

func TestPolicies_RegisterInvalid(t *testing.T) {
	registry := NewPolicies()
	assert.Error(t, registry.Register("", policy.New("x", policy.BeforeRequest, passThrough)))
	assert.Error(t, registry.Register("nil", nil))
	assert.Error(t, registry.Register("nofunc", &policy.Policy{ApplyPoint: policy.OnResponse}))
	assert.Error(t, registry.RegisterFunc("badpoint", "later", passThrough))
	assert.Empty(t, registry.Names())
}

func TestPolicies_Unregister(t *testing.T) {
	registry := NewPolicies()
	require.NoError(t, registry.RegisterFunc("stamp", policy.BeforeRequest, passThrough))
	registry.Unregister("stamp")
	_, err := registry.Resolve("stamp")
	assert.Error(t, err)
}

func TestPolicies_ConcurrentRegister(t *testing.T) {
	registry := NewPolicies()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	wg := sync.WaitGroup{}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_ = registry.RegisterFunc(name, policy.OnResponse, passThrough)
			_, _ = registry.Resolve(name)
		}(name)
	}
	wg.Wait()
	assert.Equal(t, names, registry.Names())
}

func TestPolicies_Chain(t *testing.T) {
	registry := NewPolicies()
	require.NoError(t, registry.RegisterFunc("onRequest", policy.BeforeRequest, func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			done(anAction.WithMeta(anAction.Meta.With("onRequest", true)), err, response)
		}
	}))
	var actual *action.Action
	chain := policy.Build(registry, []string{"unknown", "onRequest"}, policy.BeforeRequest)
	chain(nil, &action.Action{Type: "REQUEST_ACTION", Meta: action.Meta{"url": "test"}}, nil, nil, func(anAction *action.Action, err error, response interface{}) {
		actual = anAction
	})
	assert.Equal(t, action.Meta{"url": "test", "onRequest": true}, actual.Meta)
}

type Account struct {
	ID   int
	Name string
}

func TestTypes_Lookup(t *testing.T) {
	types := NewTypes()
	types.Register(x.NewType(reflect.TypeOf(Account{})))

	actual := types.Lookup("Account")
	require.NotNil(t, actual)
	assert.Equal(t, reflect.TypeOf(Account{}), actual.Type)

	actual = types.Lookup("extension.Account")
	require.NotNil(t, actual)

	actual = types.Lookup("[]Account")
	require.NotNil(t, actual)
	assert.Equal(t, reflect.SliceOf(reflect.TypeOf(Account{})), actual.Type)

	assert.Nil(t, types.Lookup("Missing"))
}

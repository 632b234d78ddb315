package builtin

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/hamal/extension"
	"github.com/viant/hamal/internal/clock"
	"github.com/viant/hamal/internal/idgen"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/scy"
	"github.com/viant/x"
)

type Quote struct {
	Symbol string
	Price  float64
}

// run applies a built policy once and returns what reached the terminal continuation
func run(t *testing.T, aPolicy *policy.Policy, anAction *action.Action, err error, response interface{}) (*action.Action, error, interface{}) {
	var (
		actual         *action.Action
		actualErr      error
		actualResponse interface{}
	)
	chain := policy.Compose(aPolicy)
	chain(nil, anAction, err, response, func(rewritten *action.Action, err error, response interface{}) {
		actual, actualErr, actualResponse = rewritten, err, response
	})
	require.NotNil(t, actual)
	return actual, actualErr, actualResponse
}

func TestBuilder_Build(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	nowFunc, newFunc := clock.NowFunc, idgen.NewFunc
	clock.NowFunc = func() time.Time { return fixed }
	idgen.NewFunc = func() string { return "id-1" }
	defer func() {
		clock.NowFunc, idgen.NewFunc = nowFunc, newFunc
	}()
	failure := errors.New("upstream failed")

	testCases := []struct {
		description string
		config      *policy.Config
		input       *action.Action
		err         error
		expectMeta  action.Meta
	}{
		{
			description: "meta merges values",
			config:      &policy.Config{Name: "tag", Kind: KindMeta, ApplyPoint: "beforeRequest", Params: map[string]interface{}{"values": map[string]interface{}{"source": "api"}}},
			input:       &action.Action{Type: "REQUEST", Meta: action.Meta{"url": "test"}},
			expectMeta:  action.Meta{"url": "test", "source": "api"},
		},
		{
			description: "timestamp default response key",
			config:      &policy.Config{Name: "stamp", Kind: KindTimestamp, ApplyPoint: "onResponse"},
			input:       &action.Action{Type: "RESPONSE"},
			expectMeta:  action.Meta{"respondedAt": fixed},
		},
		{
			description: "timestamp custom key and format",
			config:      &policy.Config{Name: "stamp", Kind: KindTimestamp, ApplyPoint: "beforeRequest", Params: map[string]interface{}{"key": "sentAt", "format": "unix"}},
			input:       &action.Action{Type: "REQUEST"},
			expectMeta:  action.Meta{"sentAt": fixed.Unix()},
		},
		{
			description: "correlate assigns id",
			config:      &policy.Config{Name: "correlate", Kind: KindCorrelate, ApplyPoint: "beforeRequest"},
			input:       &action.Action{Type: "REQUEST"},
			expectMeta:  action.Meta{"correlationId": "id-1"},
		},
		{
			description: "correlate keeps existing id",
			config:      &policy.Config{Name: "correlate", Kind: KindCorrelate, ApplyPoint: "beforeRequest"},
			input:       &action.Action{Type: "REQUEST", Meta: action.Meta{"correlationId": "given"}},
			expectMeta:  action.Meta{"correlationId": "given"},
		},
		{
			description: "error marks failure",
			config:      &policy.Config{Name: "failure", Kind: KindError, ApplyPoint: "onResponse"},
			input:       &action.Action{Type: "RESPONSE"},
			err:         failure,
			expectMeta:  action.Meta{"error": true, "errorMessage": "upstream failed"},
		},
		{
			description: "error ignores success",
			config:      &policy.Config{Name: "failure", Kind: KindError, ApplyPoint: "onResponse"},
			input:       &action.Action{Type: "RESPONSE", Meta: action.Meta{"url": "test"}},
			expectMeta:  action.Meta{"url": "test"},
		},
	}

	builder := New()
	for _, testCase := range testCases {
		aPolicy, err := builder.Build(context.Background(), testCase.config)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.config.Point(), aPolicy.ApplyPoint, testCase.description)
		actual, actualErr, _ := run(t, aPolicy, testCase.input, testCase.err, nil)
		assert.Equal(t, testCase.expectMeta, actual.Meta, testCase.description)
		assert.Equal(t, testCase.err, actualErr, testCase.description)
	}
}

func TestBuilder_Build_Invalid(t *testing.T) {
	testCases := []struct {
		description string
		config      *policy.Config
	}{
		{description: "unknown kind", config: &policy.Config{Name: "x", Kind: "unknown", ApplyPoint: "onResponse"}},
		{description: "point not supported", config: &policy.Config{Name: "x", Kind: KindCorrelate, ApplyPoint: "onResponse"}},
		{description: "invalid point", config: &policy.Config{Name: "x", Kind: KindMeta, ApplyPoint: "later"}},
		{description: "decode without type", config: &policy.Config{Name: "x", Kind: KindDecode, ApplyPoint: "onResponse"}},
		{description: "decode unknown type", config: &policy.Config{Name: "x", Kind: KindDecode, ApplyPoint: "onResponse", Params: map[string]interface{}{"type": "Missing"}}},
		{description: "secret without url", config: &policy.Config{Name: "x", Kind: KindSecret, ApplyPoint: "beforeRequest"}},
	}
	builder := New()
	for _, testCase := range testCases {
		_, err := builder.Build(context.Background(), testCase.config)
		assert.Error(t, err, testCase.description)
	}
}

func TestBuilder_Decode(t *testing.T) {
	types := extension.NewTypes()
	types.Register(x.NewType(reflect.TypeOf(Quote{})))
	builder := New(WithTypes(types))
	aPolicy, err := builder.Build(context.Background(), &policy.Config{Name: "quote", Kind: KindDecode, ApplyPoint: "onResponse", Params: map[string]interface{}{"type": "Quote"}})
	require.NoError(t, err)

	actual, actualErr, response := run(t, aPolicy, &action.Action{Type: "RESPONSE", Payload: map[string]interface{}{"Symbol": "ABC", "Price": 12.5}}, nil, nil)
	require.NoError(t, actualErr)
	assert.Equal(t, &Quote{Symbol: "ABC", Price: 12.5}, actual.Payload)
	assert.Equal(t, actual.Payload, response)

	failure := errors.New("failed")
	actual, actualErr, _ = run(t, aPolicy, &action.Action{Type: "RESPONSE"}, failure, nil)
	assert.Equal(t, failure, actualErr)
	assert.Nil(t, actual.Payload)
}

func TestBuilder_Secret(t *testing.T) {
	ctx := context.Background()
	secrets := scy.New()
	const URL = "mem://localhost/hamal/secret/token.txt"
	resource := scy.NewResource(nil, URL, "blowfish://default")
	require.NoError(t, secrets.Store(ctx, scy.NewSecret("s3cr3t", resource)))

	builder := New(WithSecrets(secrets))
	aPolicy, err := builder.Build(ctx, &policy.Config{Name: "token", Kind: KindSecret, ApplyPoint: "beforeRequest", Params: map[string]interface{}{
		"url": URL,
		"key": "blowfish://default",
		"as":  "token",
	}})
	require.NoError(t, err)
	actual, _, _ := run(t, aPolicy, &action.Action{Type: "REQUEST"}, nil, nil)
	assert.Equal(t, "s3cr3t", actual.Meta["token"])
}

func TestBuilder_Register(t *testing.T) {
	builder := New()
	builder.Register("noop", func(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
		return func(store policy.Store, done policy.Done) policy.Done { return done }, nil
	}, policy.OnResponse)
	assert.Equal(t, []string{"correlate", "decode", "error", "meta", "noop", "secret", "timestamp"}, builder.Kinds())
	_, err := builder.Build(context.Background(), &policy.Config{Name: "n", Kind: "noop", ApplyPoint: "onResponse"})
	assert.NoError(t, err)
}

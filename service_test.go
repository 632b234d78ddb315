package hamal_test

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/hamal"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/service/dispatcher"
	"github.com/viant/x"
)

const declarations = `policies:
  - name: correlate
    kind: correlate
    applyPoint: beforeRequest
  - name: source
    kind: meta
    applyPoint: beforeRequest
    params:
      values:
        source: ${env.HAMAL_SOURCE}
  - name: failure
    kind: error
    applyPoint: onResponse
`

type log struct {
	actions []*action.Action
}

func (l *log) reduce(state interface{}, anAction interface{}) interface{} {
	if typed, ok := anAction.(*action.Action); ok {
		l.actions = append(l.actions, typed)
	}
	return len(l.actions)
}

func fetch(ctx context.Context, store policy.Store, notify dispatcher.Notify, compound *action.Compound) (interface{}, error) {
	value := "fetched:" + compound.Meta["url"].(string)
	notify(nil, value)
	return value, nil
}

func TestService(t *testing.T) {
	ctx := context.Background()
	t.Setenv("HAMAL_SOURCE", "e2e")
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/hamal/policies.yaml", 0644, strings.NewReader(declarations)))

	srv := hamal.New(hamal.WithMetaBaseURL("mem://localhost/hamal"))
	defer srv.Close()
	require.NoError(t, srv.LoadPolicies(ctx, "policies"))
	require.NoError(t, srv.Register("audit", policy.OnResponse, func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			done(anAction.WithMeta(anAction.Meta.With("audited", store.State())), err, response)
		}
	}))
	assert.Equal(t, []string{"audit", "correlate", "failure", "source"}, srv.Policies().Names())

	reducer := &log{}
	st := srv.NewStore(reducer.reduce, 0, fetch)
	result := st.Dispatch(ctx, &action.Compound{
		Type: []string{"FETCH", "FETCHED"},
		Meta: action.Meta{"url": "test", "policies": []string{"correlate", "source", "failure", "audit", "missing"}},
	})
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	value, err := dispatcher.Await(waitCtx, result)
	require.NoError(t, err)
	assert.Equal(t, "fetched:test", value)

	require.Len(t, reducer.actions, 2)
	request, response := reducer.actions[0], reducer.actions[1]
	assert.Equal(t, "FETCH", request.Type)
	assert.Equal(t, "e2e", request.Meta["source"])
	assert.NotEmpty(t, request.Meta["correlationId"])
	assert.Equal(t, "FETCHED", response.Type)
	assert.Equal(t, "fetched:test", response.Payload)
	assert.Equal(t, request.Meta["correlationId"], response.Meta["correlationId"])
	assert.Equal(t, 1, response.Meta["audited"])
	assert.NotContains(t, response.Meta, "error")

	snapshot := srv.Progress().Snapshot()
	assert.Equal(t, 1, snapshot.TotalDispatches)
	assert.Equal(t, 1, snapshot.CompletedDispatches)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/hamal/config/policies.yaml", 0644, strings.NewReader(declarations)))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/hamal/config/config.yaml", 0644, strings.NewReader(`logging:
  level: debug
  format: json
  outputs: [stderr]
events:
  enabled: true
  queueBuffer: 10
policyURL: mem://localhost/hamal/config/policies.yaml
`)))

	cfg, err := hamal.LoadConfig(ctx, "mem://localhost/hamal/config/config.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 10, cfg.Events.QueueBuffer)
	assert.Equal(t, "debug", cfg.Logging.Level)

	srv, err := hamal.NewFromConfig(ctx, cfg)
	require.NoError(t, err)
	defer srv.Close()
	assert.NotNil(t, srv.Events())
	assert.Equal(t, []string{"correlate", "failure", "source"}, srv.Policies().Names())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		adjust      func(cfg *hamal.Config)
		expectErr   bool
	}{
		{description: "default", adjust: func(cfg *hamal.Config) {}},
		{description: "tracing without name", adjust: func(cfg *hamal.Config) {
			cfg.Tracing.Enabled = true
			cfg.Tracing.ServiceName = ""
		}, expectErr: true},
		{description: "negative buffer", adjust: func(cfg *hamal.Config) { cfg.Events.QueueBuffer = -1 }, expectErr: true},
		{description: "unknown log format", adjust: func(cfg *hamal.Config) { cfg.Logging.Format = "xml" }, expectErr: true},
	}
	for _, testCase := range testCases {
		cfg := hamal.DefaultConfig()
		testCase.adjust(cfg)
		err := cfg.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestNewFromConfig_InvalidPolicies(t *testing.T) {
	cfg := hamal.DefaultConfig()
	cfg.Logging = nil
	cfg.PolicyURL = "mem://localhost/hamal/none/missing.yaml"
	_, err := hamal.NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func metaDeclaration(name string) string {
	return "  - name: " + name + "\n    kind: meta\n    applyPoint: beforeRequest\n    params:\n      values:\n        tag: " + name + "\n"
}

func TestService_LoadPolicies_FailedReload(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/hamal/reload/policies.yaml"
	upload := func(content string) {
		require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader("policies:\n"+content)))
	}
	srv := hamal.New()
	defer srv.Close()

	upload(metaDeclaration("a"))
	require.NoError(t, srv.LoadPolicies(ctx, URL))
	assert.Equal(t, []string{"a"}, srv.Policies().Names())

	upload(metaDeclaration("b") + "  - name: c\n    kind: decode\n    applyPoint: onResponse\n    params:\n      type: Unregistered\n")
	assert.Error(t, srv.LoadPolicies(ctx, URL))
	assert.Equal(t, []string{"a"}, srv.Policies().Names())

	upload(metaDeclaration("d"))
	require.NoError(t, srv.LoadPolicies(ctx, URL))
	assert.Equal(t, []string{"d"}, srv.Policies().Names())
}

type Price struct {
	Symbol string
	Amount float64
}

func TestService_RegisterExtensionTypes(t *testing.T) {
	ctx := context.Background()
	srv := hamal.New()
	defer srv.Close()
	config := &policy.Config{Name: "price", Kind: "decode", ApplyPoint: "onResponse", Params: map[string]interface{}{"type": "Price"}}
	assert.Error(t, srv.RegisterPolicy(ctx, config))

	srv.RegisterExtensionTypes(x.NewType(reflect.TypeOf(Price{})))
	require.NoError(t, srv.RegisterPolicy(ctx, config))
	assert.Equal(t, []string{"price"}, srv.Policies().Names())

	reducer := &log{}
	st := srv.NewStore(reducer.reduce, 0, func(ctx context.Context, store policy.Store, notify dispatcher.Notify, compound *action.Compound) (interface{}, error) {
		return map[string]interface{}{"Symbol": "ABC", "Amount": 1.5}, nil
	})
	result := st.Dispatch(ctx, &action.Compound{
		Type: []string{"QUOTE", "QUOTED"},
		Meta: action.Meta{"policies": []string{"price"}},
	})
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := dispatcher.Await(waitCtx, result)
	require.NoError(t, err)
	require.Len(t, reducer.actions, 2)
	assert.Equal(t, &Price{Symbol: "ABC", Amount: 1.5}, reducer.actions[1].Payload)
}

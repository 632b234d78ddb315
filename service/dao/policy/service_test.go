package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/service/meta"
)

const validDeclarations = `policies:
  - name: stamp
    kind: timestamp
    applyPoint: onResponse
    params:
      key: receivedAt
  - name: correlate
    kind: correlate
    applyPoint: beforeRequest
`

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/policies/valid.yaml", 0644, strings.NewReader(validDeclarations)))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/policies/invalid.yaml", 0644, strings.NewReader("policies:\n  - name: broken\n    kind: meta\n    applyPoint: later\n")))

	testCases := []struct {
		description string
		URL         string
		expect      []*policy.Config
		expectErr   bool
	}{
		{
			description: "valid declarations, extension appended",
			URL:         "valid",
			expect: []*policy.Config{
				{Name: "stamp", Kind: "timestamp", ApplyPoint: "onResponse", Params: map[string]interface{}{"key": "receivedAt"}},
				{Name: "correlate", Kind: "correlate", ApplyPoint: "beforeRequest"},
			},
		},
		{description: "invalid apply point", URL: "invalid.yaml", expectErr: true},
		{description: "missing document", URL: "missing.yaml", expectErr: true},
	}

	srv := New(WithMetaService(meta.New(fs, "mem://localhost/policies")))
	for _, testCase := range testCases {
		actual, err := srv.Load(ctx, testCase.URL)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestService_DecodeYAML(t *testing.T) {
	srv := New()
	actual, err := srv.DecodeYAML([]byte(validDeclarations))
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assert.Equal(t, policy.OnResponse, actual[0].Point())

	_, err = srv.DecodeYAML([]byte("policies:\n  - kind: meta\n    applyPoint: onResponse\n"))
	assert.Error(t, err)
}

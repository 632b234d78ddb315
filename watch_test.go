package hamal_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/hamal"
)

func TestService_WatchPolicies(t *testing.T) {
	location := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(location, []byte(declarations), 0644))

	srv := hamal.New()
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan error, 8)
	done := make(chan error, 1)
	go func() {
		done <- srv.WatchPolicies(ctx, location, func(err error) {
			select {
			case reloaded <- err:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		return len(srv.Policies().Names()) == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"correlate", "failure", "source"}, srv.Policies().Names())

	updated := []byte("policies:\n  - name: stamp\n    kind: timestamp\n    applyPoint: onResponse\n")
	require.NoError(t, os.WriteFile(location, updated, 0644))
	require.Eventually(t, func() bool {
		names := srv.Policies().Names()
		return len(names) == 1 && names[0] == "stamp"
	}, 3*time.Second, 10*time.Millisecond)
	// a truncating write can report a failed reload of the empty file first
	require.Eventually(t, func() bool {
		select {
		case err := <-reloaded:
			return err == nil
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}

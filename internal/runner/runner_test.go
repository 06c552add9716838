package runner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	method string
	params map[string]any
	result string
	err    error
}

func (f *fakeRPC) Call(_ context.Context, method string, params any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &f.params); err != nil {
		return err
	}
	f.method = method
	if f.err != nil {
		return f.err
	}
	if out != nil && f.result != "" {
		return json.Unmarshal([]byte(f.result), out)
	}
	return nil
}

func TestLaunchBuildsWindowParams(t *testing.T) {
	t.Parallel()

	fake := &fakeRPC{result: `{"window_id":"w-7","url":"https://runtime.example/w-7"}`}
	l := NewLauncher(fake, "https://runner.example/app", nil)

	win, err := l.Launch(context.Background(), "bioimage-io/affable-shark", "runner-affable-shark", "zooreview-1")
	require.NoError(t, err)
	require.Equal(t, "w-7", win.ID)
	require.Equal(t, "https://runtime.example/w-7", win.URL)

	require.Equal(t, "window_manager.create_window", fake.method)
	require.Equal(t, "runner-affable-shark", fake.params["name"])
	require.Equal(t, "zooreview-1", fake.params["window_id"])

	src, _ := fake.params["src"].(string)
	require.Contains(t, src, "model=affable-shark", "the runner app is addressed by the trailing id segment")
	require.True(t, strings.HasPrefix(src, "https://runner.example/app"))
}

func TestLaunchFallsBackToRequestedIdentity(t *testing.T) {
	t.Parallel()

	// some runtimes echo nothing back; the fabricated id and src remain valid
	fake := &fakeRPC{result: `{}`}
	l := NewLauncher(fake, "https://runner.example/app", nil)

	win, err := l.Launch(context.Background(), "c/m", "runner-m", "zooreview-2")
	require.NoError(t, err)
	require.Equal(t, "zooreview-2", win.ID)
	require.Contains(t, win.URL, "model=m")
}

func TestLaunchWrapsFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("runtime unavailable")
	fake := &fakeRPC{err: boom}
	l := NewLauncher(fake, "https://runner.example/app", nil)

	_, err := l.Launch(context.Background(), "c/m", "runner-m", "zooreview-3")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "c/m")
}

func TestNewWindowIDsAreFresh(t *testing.T) {
	t.Parallel()

	a, b := NewWindowID(), NewWindowID()
	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "zooreview-"))
}

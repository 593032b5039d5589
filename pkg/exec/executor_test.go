package exec

import (
	"context"
	"errors"
	osexec "os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealCommandExecutor(t *testing.T) {
	if _, err := osexec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	e := &RealCommandExecutor{}
	ctx := context.Background()

	tests := []struct {
		name       string
		script     string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "Success with output",
			script:     "echo hello",
			wantCode:   0,
			wantStdout: "hello",
		},
		{
			name:       "Nonzero exit is a result, not an error",
			script:     "echo broken >&2; exit 3",
			wantCode:   3,
			wantStderr: "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Execute(ctx, t.TempDir(), "sh", "-c", tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Equal(t, tt.wantCode == 0, result.Success())
			assert.Equal(t, tt.wantStdout, result.Output())
			assert.Equal(t, tt.wantStderr, result.ErrorOutput())
		})
	}
}

func TestRealCommandExecutorLaunchFailure(t *testing.T) {
	e := &RealCommandExecutor{}

	result, err := e.Execute(context.Background(), t.TempDir(), "grove-sync-no-such-binary", "--version")
	require.Error(t, err)
	assert.Nil(t, result)

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "grove-sync-no-such-binary --version", launchErr.Command)
}

func TestRealCommandExecutorCancelledBeforeStart(t *testing.T) {
	e := &RealCommandExecutor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, t.TempDir(), "sh", "-c", "true")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockCommandExecutor(t *testing.T) {
	m := &MockCommandExecutor{
		ExecuteFunc: func(name string, arg ...string) (*Result, error) {
			if len(arg) > 0 && arg[0] == "push" {
				return &Result{ExitCode: 1, Stderr: "denied"}, nil
			}
			return nil, nil
		},
	}
	ctx := context.Background()

	r, err := m.Execute(ctx, "/repo", "git", "fetch", "upstream")
	require.NoError(t, err)
	assert.True(t, r.Success())

	r, err = m.Execute(ctx, "/repo", "git", "push", "origin", "main")
	require.NoError(t, err)
	assert.False(t, r.Success())
	assert.Equal(t, "denied", r.ErrorOutput())

	assert.Equal(t, []string{"git fetch upstream", "git push origin main"}, m.Commands)
	assert.Equal(t, []string{"/repo", "/repo"}, m.Dirs)
	assert.True(t, m.Ran("git fetch upstream"))
	assert.Equal(t, 0, m.Count("git merge upstream/main"))

	path, err := m.LookPath("git")
	require.NoError(t, err)
	assert.Equal(t, "/path/to/git", path)
}

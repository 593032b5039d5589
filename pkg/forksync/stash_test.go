package forksync

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStashRestorer(t *testing.T) {
	tests := []struct {
		name         string
		stash        bool
		responses    fakeGit
		wantRestored bool
		wantErr      error
		wantPop      int
	}{
		{
			name:  "Nothing stashed",
			stash: false,
		},
		{
			name:         "Pops own entry",
			stash:        true,
			responses:    fakeGit{"git stash list": ok("stash@{0}: On main: " + stashMessage + "\nstash@{1}: WIP on main: old\n")},
			wantRestored: true,
			wantPop:      1,
		},
		{
			name:      "Newest entry belongs to someone else",
			stash:     true,
			responses: fakeGit{"git stash list": ok("stash@{0}: WIP on main: 1234 other work\n")},
		},
		{
			name:      "Empty stash list",
			stash:     true,
			responses: fakeGit{"git stash list": ok("")},
		},
		{
			name:  "Pop conflicts",
			stash: true,
			responses: fakeGit{
				"git stash list": ok("stash@{0}: On main: " + stashMessage + "\n"),
				"git stash pop":  fail(1, "CONFLICT"),
			},
			wantErr: ErrStashRestore,
			wantPop: 1,
		},
		{
			name:      "Listing fails",
			stash:     true,
			responses: fakeGit{"git stash list": fail(128, "fatal")},
			wantErr:   ErrStashRestore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := tt.responses
			if responses == nil {
				responses = fakeGit{}
			}
			mock := responses.executor()
			out := &bytes.Buffer{}
			runner := newTestRunner(mock, out)
			s := NewStashRestorer(runner, runner.rep, stashMessage)

			if tt.stash {
				require.NoError(t, s.Stash(context.Background()))
				assert.True(t, s.Stashed())
				assert.True(t, mock.Ran("git stash push --include-untracked -m "+stashMessage))
			}

			restored, err := s.Restore(context.Background())
			assert.Equal(t, tt.wantRestored, restored)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, out.String(), "still saved in the stash")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPop, mock.Count("git stash pop"))

			// A second restore never pops again.
			restored, err = s.Restore(context.Background())
			assert.False(t, restored)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPop, mock.Count("git stash pop"))
		})
	}
}

func TestStashFails(t *testing.T) {
	mock := fakeGit{"git stash push --include-untracked -m " + stashMessage: fail(1, "error: could not write index")}.executor()
	runner := newTestRunner(mock, &bytes.Buffer{})
	s := NewStashRestorer(runner, runner.rep, stashMessage)

	err := s.Stash(context.Background())
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "stash", stepErr.Step)
	assert.False(t, s.Stashed())

	restored, err := s.Restore(context.Background())
	assert.False(t, restored)
	assert.NoError(t, err)
	assert.False(t, mock.Ran("git stash list"))
}

func TestStashRestoreIgnoresCancellation(t *testing.T) {
	mock := fakeGit{"git stash list": ok("stash@{0}: On main: " + stashMessage)}.executor()
	runner := newTestRunner(mock, &bytes.Buffer{})
	s := NewStashRestorer(runner, runner.rep, stashMessage)
	require.NoError(t, s.Stash(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	restored, err := s.Restore(context.WithoutCancel(ctx))
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, []string{
		"git stash push --include-untracked -m " + stashMessage,
		"git stash list",
		"git stash pop",
	}, mock.Commands)
}

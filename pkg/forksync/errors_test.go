package forksync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-sync/pkg/config"
	"github.com/mattsolo1/grove-sync/pkg/exec"
)

func TestClassifyAndExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode int
	}{
		{"Success", nil, KindNone, 0},
		{"Declined", ErrDeclined, KindDeclined, 0},
		{"Interrupted", ErrInterrupted, KindInterrupted, 130},
		{"Wrapped interrupt", fmt.Errorf("prompt: %w", ErrInterrupted), KindInterrupted, 130},
		{"Git missing", fmt.Errorf("%w: not found", ErrGitNotFound), KindEnvironment, 1},
		{"Not a repository", ErrNotRepository, KindEnvironment, 1},
		{"No origin", ErrNoOrigin, KindEnvironment, 1},
		{"Upstream missing", ErrUpstreamMissing, KindEnvironment, 1},
		{"Invalid config", fmt.Errorf("%w: empty branch", config.ErrInvalid), KindEnvironment, 1},
		{"Launch failure", &exec.LaunchError{Command: "git fetch", Err: errors.New("boom")}, KindEnvironment, 1},
		{"Validation command", &StepError{Step: "status", Result: &exec.Result{ExitCode: 128}}, KindEnvironment, 1},
		{"Pipeline step", &StepError{Index: 2, Step: "checkout", Result: &exec.Result{ExitCode: 1}}, KindStepFailure, 1},
		{"Stash restore", fmt.Errorf("%w: conflict", ErrStashRestore), KindRestore, 1},
		{"Recovered panic", fmt.Errorf("%w: nil map", ErrUnexpected), KindUnexpected, 1},
		{"Unknown", errors.New("something else"), KindUnexpected, 1},
		{"Reported", markReported(ErrDeclined), KindDeclined, 0},
		{"Declined then restore failed", errors.Join(ErrDeclined, ErrStashRestore), KindRestore, 1},
		{"Interrupted then restore failed", errors.Join(ErrInterrupted, ErrStashRestore), KindRestore, 1},
		{"Step failed then restore failed", errors.Join(&StepError{Index: 4, Step: "push"}, ErrStashRestore), KindRestore, 1},
		{"Panic then restore failed", errors.Join(ErrUnexpected, ErrStashRestore), KindUnexpected, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, Classify(tt.err))
			assert.Equal(t, tt.wantCode, ExitCode(tt.err))
		})
	}
}

func TestStepErrorMessage(t *testing.T) {
	err := &StepError{Index: 4, Step: "push", Result: &exec.Result{ExitCode: 128, Stderr: "fatal: denied\n"}}
	assert.Equal(t, "step 4 (push) failed with exit status 128: fatal: denied", err.Error())

	err = &StepError{Step: "stash"}
	assert.Equal(t, "stash failed", err.Error())
}

func TestMarkReported(t *testing.T) {
	assert.Nil(t, markReported(nil))
	assert.False(t, IsReported(ErrNoOrigin))

	err := markReported(ErrNoOrigin)
	assert.True(t, IsReported(err))
	assert.ErrorIs(t, err, ErrNoOrigin)
	assert.Equal(t, err, markReported(err), "marking twice does not wrap again")
	assert.False(t, IsReported(context.Canceled))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "step_failure", KindStepFailure.String())
	assert.Equal(t, "stash_restore", KindRestore.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

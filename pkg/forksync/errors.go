package forksync

import (
	"errors"
	"fmt"

	"github.com/mattsolo1/grove-sync/pkg/config"
	"github.com/mattsolo1/grove-sync/pkg/exec"
)

var (
	// ErrGitNotFound means the git executable is not on PATH.
	ErrGitNotFound = errors.New("git executable not found")
	// ErrNotRepository means the directory is not inside a git working tree.
	ErrNotRepository = errors.New("not a git working tree")
	// ErrNoOrigin means the origin remote is not configured.
	ErrNoOrigin = errors.New("origin remote not configured")
	// ErrUpstreamMissing means the upstream remote is absent and may not be added.
	ErrUpstreamMissing = errors.New("upstream remote not configured")
	// ErrDeclined means the operator answered no to a prompt.
	ErrDeclined = errors.New("sync cancelled by operator")
	// ErrInterrupted means the run was interrupted by a signal.
	ErrInterrupted = errors.New("sync interrupted")
	// ErrStashRestore means automatically stashed changes could not be popped.
	ErrStashRestore = errors.New("could not restore stashed changes")
	// ErrUnexpected wraps a fault recovered at the top of a run.
	ErrUnexpected = errors.New("unexpected failure")
)

// StepError reports a git command that ran and exited nonzero.
type StepError struct {
	// Index is the 1-based pipeline position, or 0 for a command run
	// while validating the checkout.
	Index  int
	Step   string
	Result *exec.Result
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Step)
	if e.Index > 0 {
		msg = fmt.Sprintf("step %d (%s) failed", e.Index, e.Step)
	}
	if e.Result != nil {
		msg += fmt.Sprintf(" with exit status %d", e.Result.ExitCode)
		if out := e.Result.ErrorOutput(); out != "" {
			msg += ": " + out
		}
	}
	return msg
}

// Kind classifies an error for reporting and exit status.
type Kind int

const (
	KindNone Kind = iota
	KindEnvironment
	KindDeclined
	KindInterrupted
	KindStepFailure
	KindRestore
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEnvironment:
		return "environment"
	case KindDeclined:
		return "declined"
	case KindInterrupted:
		return "interrupted"
	case KindStepFailure:
		return "step_failure"
	case KindRestore:
		return "stash_restore"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by a run to its Kind. A run can end with
// several joined errors; the most severe one decides.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var stepErr *StepError
	var launchErr *exec.LaunchError
	switch {
	case errors.Is(err, ErrUnexpected):
		return KindUnexpected
	case errors.Is(err, ErrStashRestore):
		// Changes left in the stash outrank a decline or an interrupt.
		return KindRestore
	case errors.Is(err, ErrDeclined):
		return KindDeclined
	case errors.Is(err, ErrInterrupted):
		return KindInterrupted
	case errors.As(err, &stepErr):
		if stepErr.Index > 0 {
			return KindStepFailure
		}
		return KindEnvironment
	case errors.Is(err, ErrGitNotFound),
		errors.Is(err, ErrNotRepository),
		errors.Is(err, ErrNoOrigin),
		errors.Is(err, ErrUpstreamMissing),
		errors.Is(err, config.ErrInvalid),
		errors.As(err, &launchErr):
		return KindEnvironment
	default:
		return KindUnexpected
	}
}

// ExitCode returns the process exit status for the outcome of a run.
func ExitCode(err error) int {
	switch Classify(err) {
	case KindNone, KindDeclined:
		return 0
	case KindInterrupted:
		return 130
	default:
		return 1
	}
}

// reportedError marks an error whose details were already shown to the operator.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func markReported(err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already printed for the operator.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

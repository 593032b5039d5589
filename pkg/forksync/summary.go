package forksync

import (
	"errors"
	"fmt"
	"time"
)

// Status is the terminal state of a run.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusAborted
	StatusFailed
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusAborted:
		return "aborted"
	case StatusFailed:
		return "failed"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Summary describes one run. It lives only for the duration of the process.
type Summary struct {
	RunID     string
	Project   string
	Started   time.Time
	Elapsed   time.Duration
	Total     int
	Attempted int
	Succeeded int
	Stage     Stage
	Status    Status

	// FailedIndex and FailedStep identify the pipeline step that failed.
	FailedIndex int
	FailedStep  string

	// Stashed is set when local changes were stashed during the run and
	// Restored once they were popped back.
	Stashed  bool
	Restored bool

	Err error
}

// finish records the terminal status for err.
func (s *Summary) finish(err error, elapsed time.Duration) {
	s.Elapsed = elapsed
	s.Err = err

	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.Index > 0 {
		s.FailedIndex = stepErr.Index
		s.FailedStep = stepErr.Step
	}

	switch Classify(err) {
	case KindNone:
		s.Status = StatusSuccess
	case KindDeclined:
		s.Status = StatusAborted
	case KindInterrupted:
		s.Status = StatusInterrupted
	default:
		s.Status = StatusFailed
		s.Stage = StageFailed
	}
}

// Describe renders the status with the failing step when there is one, and
// says so when stashed changes were left in the stash.
func (s *Summary) Describe() string {
	restoreFailed := errors.Is(s.Err, ErrStashRestore)

	var desc string
	switch {
	case s.FailedIndex > 0:
		desc = fmt.Sprintf("failed at step %d (%s)", s.FailedIndex, s.FailedStep)
	case errors.Is(s.Err, ErrDeclined):
		desc = "aborted by operator"
	case errors.Is(s.Err, ErrInterrupted):
		desc = StatusInterrupted.String()
	case s.Status == StatusFailed && s.Err != nil && !restoreFailed:
		desc = fmt.Sprintf("failed: %v", s.Err)
	default:
		desc = s.Status.String()
	}

	if restoreFailed {
		desc += "; local changes are still in the stash"
	}
	return desc
}

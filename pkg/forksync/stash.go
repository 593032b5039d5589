package forksync

import (
	"context"
	"fmt"
	"strings"
)

// StashRestorer shelves local changes before a sync and puts them back
// afterwards. Restore acts at most once per run.
type StashRestorer struct {
	runner  *Runner
	rep     *Reporter
	marker  string
	stashed bool
	done    bool
}

// NewStashRestorer returns a restorer whose stash entries carry marker in
// their message, so only an entry created by this run is ever popped.
func NewStashRestorer(runner *Runner, rep *Reporter, marker string) *StashRestorer {
	return &StashRestorer{runner: runner, rep: rep, marker: marker}
}

// Stashed reports whether changes were stashed during this run.
func (s *StashRestorer) Stashed() bool {
	return s.stashed
}

// Stash shelves tracked and untracked changes.
func (s *StashRestorer) Stash(ctx context.Context) error {
	result, err := s.runner.Run(ctx, "Stash local changes",
		"stash", "push", "--include-untracked", "-m", s.marker)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &StepError{Step: "stash", Result: result}
	}
	s.stashed = true
	return nil
}

// Restore pops the stash entry created by Stash. It is a no-op when nothing
// was stashed, when it already ran, or when the newest entry is not ours.
func (s *StashRestorer) Restore(ctx context.Context) (restored bool, err error) {
	if s.done || !s.stashed {
		return false, nil
	}
	s.done = true

	s.rep.Section("Restoring stashed changes")
	list, err := s.runner.RunQuiet(ctx, "stash", "list")
	if err != nil {
		s.manualRecovery()
		return false, fmt.Errorf("%w: %v", ErrStashRestore, err)
	}
	if !list.Success() {
		s.manualRecovery()
		return false, fmt.Errorf("%w: %v", ErrStashRestore, &StepError{Step: "stash list", Result: list})
	}

	first, _, _ := strings.Cut(list.Output(), "\n")
	if first == "" || !strings.Contains(first, s.marker) {
		s.rep.Warning("No stash entry from this run was found; nothing to restore.")
		return false, nil
	}

	pop, err := s.runner.Run(ctx, "Restore stashed changes", "stash", "pop")
	if err != nil {
		s.manualRecovery()
		return false, fmt.Errorf("%w: %v", ErrStashRestore, err)
	}
	if !pop.Success() {
		s.manualRecovery()
		return false, fmt.Errorf("%w: %v", ErrStashRestore, &StepError{Step: "stash pop", Result: pop})
	}
	return true, nil
}

func (s *StashRestorer) manualRecovery() {
	s.rep.Hints("Your changes are still saved in the stash. To recover them:", []string{
		"git stash list    (look for \"" + s.marker + "\")",
		"git stash pop     (resolve any conflicts it reports)",
	})
}

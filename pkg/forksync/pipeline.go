package forksync

import (
	"context"
	"fmt"

	"github.com/mattsolo1/grove-sync/pkg/config"
)

// Stage is a position in the pipeline's state machine:
// Start → Fetched → CheckedOut → Merged → Pushed, or Failed from any of them.
type Stage int

const (
	StageStart Stage = iota
	StageFetched
	StageCheckedOut
	StageMerged
	StagePushed
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageFetched:
		return "fetched"
	case StageCheckedOut:
		return "checked-out"
	case StageMerged:
		return "merged"
	case StagePushed:
		return "pushed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is one git command of the pipeline.
type Step struct {
	Name        string
	Description string
	Args        []string
	// Reaches is the stage entered when the step succeeds.
	Reaches Stage
	// Hints are printed when the step fails. They are fixed suggestions;
	// git's error text is never inspected to choose between them.
	Hints []string
}

// Steps returns the four pipeline steps for cfg, in execution order.
func Steps(cfg config.Config) []Step {
	return []Step{
		{
			Name:        "fetch",
			Description: fmt.Sprintf("Fetch latest changes from %s", cfg.UpstreamRemote),
			Args:        []string{"fetch", cfg.UpstreamRemote},
			Reaches:     StageFetched,
			Hints: []string{
				"check your network connection",
				fmt.Sprintf("check that %s is reachable", cfg.UpstreamURL),
			},
		},
		{
			Name:        "checkout",
			Description: fmt.Sprintf("Switch to branch %s", cfg.MainBranch),
			Args:        []string{"checkout", cfg.MainBranch},
			Reaches:     StageCheckedOut,
			Hints: []string{
				"local changes may conflict with the branch switch; commit or stash them",
				fmt.Sprintf("make sure a local branch named %q exists", cfg.MainBranch),
			},
		},
		{
			Name:        "merge",
			Description: fmt.Sprintf("Merge %s into %s", cfg.UpstreamBranch(), cfg.MainBranch),
			Args:        []string{"merge", cfg.UpstreamBranch()},
			Reaches:     StageMerged,
			Hints: []string{
				fmt.Sprintf("if the merge stopped on conflicts, resolve them, commit, then run: git push %s %s", cfg.OriginRemote, cfg.MainBranch),
				"to undo the merge instead: git merge --abort",
			},
		},
		{
			Name:        "push",
			Description: fmt.Sprintf("Push %s to %s (your fork)", cfg.MainBranch, cfg.OriginRemote),
			Args:        []string{"push", cfg.OriginRemote, cfg.MainBranch},
			Reaches:     StagePushed,
			Hints: []string{
				"network problems: check your connection and retry",
				"permissions: make sure you can push to your fork",
				"credentials: make sure your git credentials or SSH key are set up",
			},
		},
	}
}

// Pipeline runs the sync steps in order and stops at the first failure.
// Steps are never retried.
type Pipeline struct {
	runner *Runner
	rep    *Reporter
	steps  []Step
}

// NewPipeline returns a pipeline for steps.
func NewPipeline(runner *Runner, rep *Reporter, steps []Step) *Pipeline {
	return &Pipeline{runner: runner, rep: rep, steps: steps}
}

// Run executes the steps, recording progress in summary. It returns a
// *StepError for the first step that exits nonzero.
func (p *Pipeline) Run(ctx context.Context, summary *Summary) error {
	summary.Total = len(p.steps)
	summary.Stage = StageStart

	for i, step := range p.steps {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		summary.Attempted++
		result, err := p.runner.Run(ctx, step.Description, step.Args...)
		if err != nil {
			return err
		}
		if !result.Success() {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			p.rep.Failure("Sync failed at step %d/%d: %s", i+1, len(p.steps), step.Description)
			p.rep.Hints("Possible causes:", step.Hints)
			return &StepError{Index: i + 1, Step: step.Name, Result: result}
		}

		summary.Succeeded++
		summary.Stage = step.Reaches
	}
	return nil
}

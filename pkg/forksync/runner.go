package forksync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-sync/pkg/exec"
)

const gitProgram = "git"

// Runner runs git commands in one directory and reports each one.
type Runner struct {
	exec exec.CommandExecutor
	dir  string
	rep  *Reporter
	log  *logrus.Entry
}

// NewRunner returns a Runner executing git in dir.
func NewRunner(e exec.CommandExecutor, dir string, rep *Reporter, log *logrus.Entry) *Runner {
	return &Runner{exec: e, dir: dir, rep: rep, log: log}
}

// Dir returns the directory commands run in.
func (r *Runner) Dir() string {
	return r.dir
}

// WithDir returns a copy of the runner that executes in dir.
func (r *Runner) WithDir(dir string) *Runner {
	c := *r
	c.dir = dir
	return &c
}

// Run executes git with args, printing a status line for description
// followed by the command's output. A nonzero exit is returned as a result
// with Success() false, never as an error. The error is non-nil only when git
// could not be launched or the run was interrupted before it started.
func (r *Runner) Run(ctx context.Context, description string, args ...string) (*exec.Result, error) {
	r.rep.Running(description)
	result, err := r.run(ctx, args...)
	if err != nil {
		if !errors.Is(err, ErrInterrupted) {
			r.rep.Failure("%s: %v", description, err)
		}
		return nil, err
	}

	if result.Success() {
		r.rep.Success("%s", description)
		r.rep.Detail("", result.Output())
	} else {
		r.rep.Failure("%s (exit status %d)", description, result.ExitCode)
		r.rep.Detail("", result.ErrorOutput())
	}
	return result, nil
}

// RunQuiet executes git like Run without printing anything.
func (r *Runner) RunQuiet(ctx context.Context, args ...string) (*exec.Result, error) {
	return r.run(ctx, args...)
}

func (r *Runner) run(ctx context.Context, args ...string) (*exec.Result, error) {
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	command := exec.CommandLine(gitProgram, args...)
	start := time.Now()
	result, err := r.exec.Execute(ctx, r.dir, gitProgram, args...)
	fields := logrus.Fields{
		"command":  command,
		"dir":      r.dir,
		"duration": time.Since(start),
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrInterrupted
		}
		r.log.WithFields(fields).WithError(err).Warn("command could not be launched")
		return nil, fmt.Errorf("run %s: %w", command, err)
	}

	fields["exit_code"] = result.ExitCode
	r.log.WithFields(fields).Debug("command finished")
	return result, nil
}

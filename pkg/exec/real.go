package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// LaunchError reports that a command could not be started, as opposed to a
// command that ran and returned a nonzero status.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// RealCommandExecutor implements CommandExecutor using the actual os/exec package.
// This is the production implementation that executes real system commands.
type RealCommandExecutor struct{}

// LookPath searches for an executable named file in the directories
// named by the PATH environment variable.
func (e *RealCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Execute runs the command and captures stdout and stderr separately.
//
// The context is only consulted before the process starts. A running command
// is never killed: an interrupt reaches the child through the terminal's
// process group and the caller decides what to do once it has exited.
func (e *RealCommandExecutor) Execute(ctx context.Context, dir, name string, arg ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(name, arg...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, &LaunchError{Command: CommandLine(name, arg...), Err: err}
	}
	return result, nil
}

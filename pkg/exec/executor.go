package exec

import (
	"context"
	"strings"
)

// CommandExecutor defines an interface for running external commands.
// This abstraction allows for easier testing by providing a mockable interface.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the directories
	// named by the PATH environment variable.
	LookPath(file string) (string, error)

	// Execute runs the command with the given name and arguments in dir and
	// waits for it to exit. A command that ran and exited nonzero is not an
	// error: it is reported through Result.ExitCode. The returned error is
	// non-nil only when the process could not be started at all.
	Execute(ctx context.Context, dir, name string, arg ...string) (*Result, error)
}

// Result holds the captured output and exit status of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Output returns stdout with surrounding whitespace removed.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Stdout)
}

// ErrorOutput returns stderr with surrounding whitespace removed.
func (r *Result) ErrorOutput() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Stderr)
}

// CommandLine renders a command the way it is recorded and logged.
func CommandLine(name string, arg ...string) string {
	if len(arg) == 0 {
		return name
	}
	return name + " " + strings.Join(arg, " ")
}

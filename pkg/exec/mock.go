package exec

import (
	"context"
)

// MockCommandExecutor is a mock implementation of CommandExecutor for testing.
// It records all commands that would be executed without actually running them.
type MockCommandExecutor struct {
	// Commands records all commands that were executed
	Commands []string

	// Dirs records the working directory of each entry in Commands
	Dirs []string

	// LookPathFunc allows custom behavior for LookPath in tests
	LookPathFunc func(file string) (string, error)

	// ExecuteFunc allows custom behavior for Execute in tests. A nil result
	// with a nil error is treated as a successful run with no output.
	ExecuteFunc func(name string, arg ...string) (*Result, error)
}

// LookPath implements the CommandExecutor interface for testing.
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	// By default, assume commands exist
	return "/path/to/" + file, nil
}

// Execute implements the CommandExecutor interface for testing.
// It records the command that would be executed.
func (m *MockCommandExecutor) Execute(ctx context.Context, dir, name string, arg ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Commands = append(m.Commands, CommandLine(name, arg...))
	m.Dirs = append(m.Dirs, dir)

	if m.ExecuteFunc != nil {
		result, err := m.ExecuteFunc(name, arg...)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
	return &Result{}, nil
}

// Ran reports whether a command line was recorded.
func (m *MockCommandExecutor) Ran(command string) bool {
	return m.Count(command) > 0
}

// Count returns how many times a command line was recorded.
func (m *MockCommandExecutor) Count(command string) int {
	n := 0
	for _, c := range m.Commands {
		if c == command {
			n++
		}
	}
	return n
}

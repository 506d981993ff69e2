package core

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrJobIDParse is returned when a submit tool succeeds but its output
// does not contain a recognizable job identifier.
var ErrJobIDParse = errors.New("cannot parse job id from scheduler output")

// ToolError is a tool-reported failure: the external command ran and
// exited non-zero. Output holds combined stdout/stderr for the caller.
type ToolError struct {
	Cmd      string
	ExitCode int
	Output   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited %d: %s", e.Cmd, e.ExitCode, strings.TrimSpace(e.Output))
}

// CommError is a communication failure: the external command could not
// be located or started at all.
type CommError struct {
	Cmd string
	Err error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Cmd, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

// Runner executes an external tool and returns its combined output.
// Failures come back as *ToolError or *CommError so callers can tell a
// broken tool from a missing one.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(name string, args ...string) (string, error)

func (f RunnerFunc) Run(name string, args ...string) (string, error) {
	return f(name, args...)
}

type execRunner struct{}

func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(name string, args ...string) (string, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return "", &CommError{Cmd: name, Err: err}
	}
	out, err := exec.Command(bin, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), &ToolError{
				Cmd:      name,
				ExitCode: exitErr.ExitCode(),
				Output:   string(out),
			}
		}
		return string(out), &CommError{Cmd: name, Err: err}
	}
	return string(out), nil
}

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExternalToolFailure matches errors raised when an external tool fails.
var ErrExternalToolFailure = errors.New("external tool failure")

// ExternalToolFailure reports an external tool that could not be started or exited with a non-zero status.
type ExternalToolFailure struct {
	Tool string
	Args []string

	// ExitCode is the exit status of the tool, or -1 if it never ran to completion.
	ExitCode int
	Err      error
}

func (e *ExternalToolFailure) Error() string {
	cmdline := strings.Join(append([]string{e.Tool}, e.Args...), " ")
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: `%s`: %s", ErrExternalToolFailure, cmdline, e.Err)
	}
	return fmt.Sprintf("%s: `%s` exited with status %d", ErrExternalToolFailure, cmdline, e.ExitCode)
}

func (e *ExternalToolFailure) Is(target error) bool {
	return target == ErrExternalToolFailure
}

func (e *ExternalToolFailure) Unwrap() error {
	return e.Err
}

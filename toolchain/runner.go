package toolchain

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/TomKeddie/luna/log"
)

// Command is one invocation of an external tool.
type Command struct {
	Tool string
	Args []string
	Dir  string
}

// Runner runs external tools. Failures are reported as *ExternalToolFailure.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs tools as child processes.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner forwarding tool output to the terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts the tool and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	log.Debug("Running `%s` %v in '%s'\n", cmd.Tool, cmd.Args, cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Tool, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	err := c.Run()
	if err == nil {
		return nil
	}
	failure := &ExternalToolFailure{Tool: cmd.Tool, Args: cmd.Args, ExitCode: -1, Err: err}
	if exitErr, ok := err.(*exec.ExitError); ok {
		failure.ExitCode = exitErr.ExitCode()
	}
	return failure
}

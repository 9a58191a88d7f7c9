package toolchain

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/util"
)

// Environment variables overriding the tool commands.
const (
	ProgrammerEnvVar = "XC3SPROG"
	VivadoEnvVar     = "VIVADO"
)

// Defaults used when neither the environment nor the configuration name a tool.
const (
	DefaultProgrammer = "xc3sprog"
	DefaultCable      = "xpc"
	DefaultVivado     = "vivado"
)

// Tools runs the external programs of the flow. The configured commands are
// used when the environment does not override them.
type Tools struct {
	Runner     Runner
	Programmer string
	Vivado     string
}

// resolveCommand picks the command line from the environment, then the
// configuration, then the default. Command lines follow shell quoting rules.
func resolveCommand(envVar, configured, fallback string) ([]string, error) {
	cmdline := os.Getenv(envVar)
	if cmdline == "" {
		cmdline = configured
	}
	if cmdline == "" {
		cmdline = fallback
	}
	words, err := shlex.Split(cmdline)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command line %q", cmdline)
	}
	if len(words) == 0 {
		return nil, errors.Errorf("empty command line for %s", envVar)
	}
	return words, nil
}

// ProgrammerCommand returns the programmer command line.
func (t Tools) ProgrammerCommand() ([]string, error) {
	return resolveCommand(ProgrammerEnvVar, t.Programmer, DefaultProgrammer)
}

// VivadoCommand returns the Vivado command line.
func (t Tools) VivadoCommand() ([]string, error) {
	return resolveCommand(VivadoEnvVar, t.Vivado, DefaultVivado)
}

func (t Tools) run(ctx context.Context, cmd Command) error {
	log.Spinner.Start()
	defer log.Spinner.Stop()
	return t.Runner.Run(ctx, cmd)
}

// Program loads `bitstream` into the device through `cable`.
func (t Tools) Program(ctx context.Context, bitstream, cable string) error {
	if !util.FileExists(bitstream) {
		return errors.Errorf("bitstream '%s' does not exist", bitstream)
	}
	if cable == "" {
		cable = DefaultCable
	}
	words, err := t.ProgrammerCommand()
	if err != nil {
		return err
	}

	cmd := Command{Tool: words[0], Args: append(words[1:], "-c", cable, bitstream)}
	log.Log("Programming '%s' with %s.\n", bitstream, cmd.Tool)
	if err := t.run(ctx, cmd); err != nil {
		return err
	}
	log.Success("Programmed '%s'.\n", bitstream)
	return nil
}

// Build runs the batch build script `script` in its directory.
func (t Tools) Build(ctx context.Context, script string) error {
	if !util.FileExists(script) {
		return errors.Errorf("build script '%s' does not exist", script)
	}
	words, err := t.VivadoCommand()
	if err != nil {
		return err
	}

	dir, base := filepath.Split(script)
	cmd := Command{
		Tool: words[0],
		Args: append(words[1:], "-mode", "batch", "-nojournal", "-nolog", "-source", base),
		Dir:  dir,
	}
	log.Log("Running %s on '%s'.\n", cmd.Tool, script)
	if err := t.run(ctx, cmd); err != nil {
		return err
	}
	log.Success("Build script '%s' completed.\n", script)
	return nil
}

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomKeddie/luna/platform"
)

type fakeRunner struct {
	commands []Command
	err      error
}

func (r *fakeRunner) Run(ctx context.Context, cmd Command) error {
	r.commands = append(r.commands, cmd)
	return r.err
}

func writeFile(t *testing.T, name string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte{0}, 0644))
	return path
}

func TestPrepareArcticSerdes(t *testing.T) {
	p := platform.ArcticSerdes35()
	c, err := p.Elaborate()
	require.NoError(t, err)

	o := Prepare(&p, "top", c)
	assert.Equal(t, "set_property BITSTREAM.CONFIG.SPI_BUSWIDTH 4 [current_design]", o.ScriptBeforeBitstream)
	assert.Equal(t, `write_cfgmem -force -format bin -interface spix4 -size 16 -loadbit "up 0x0 top.bit" -file top.bin`, o.ScriptAfterBitstream)

	lines := strings.Split(strings.TrimSpace(o.AddConstraints), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "set_clock_groups -asynchronous"+
		" -group [get_clocks -of_objects [get_pins -regexp .*/usb_pll/CLKOUT0]]"+
		" -group [get_clocks -of_objects [get_pins -regexp .*/usb_pll/CLKOUT1]]", lines[0])
	assert.Contains(t, lines[1], ".*/sync_pll/CLKOUT1]]")
}

func TestPrepareWithoutFlash(t *testing.T) {
	p := platform.ArcticSerdes35()
	p.Toolchain = platform.Toolchain{}
	p.Domains = p.Domains[:1]
	p.RequiredDomains = nil
	c, err := p.Elaborate()
	require.NoError(t, err)

	o := Prepare(&p, "top", c)
	assert.Empty(t, o.ScriptBeforeBitstream)
	assert.Empty(t, o.ScriptAfterBitstream)
	// A single output has nothing to be asynchronous to.
	assert.Empty(t, o.AddConstraints)
}

func TestWriteBuildScript(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteBuildScript(buf, ScriptParams{
		Name:        "top",
		Part:        "xc7a35tfgg484-3",
		Stamp:       "0123456789ab",
		Version:     "v1.2.0",
		Sources:     []string{"top_clocks.v", "top.v"},
		Constraints: []string{"top_pins.xdc", "top_clocks.xdc"},
		Overrides: Overrides{
			ScriptBeforeBitstream: "BEFORE",
			ScriptAfterBitstream:  "AFTER",
		},
	})
	require.NoError(t, err)

	script := buf.String()
	assert.Contains(t, script, "read_verilog {top_clocks.v}\n")
	assert.Contains(t, script, "read_xdc {top_clocks.xdc}\n")
	assert.Contains(t, script, "synth_design -top top -part xc7a35tfgg484-3\n")

	before := strings.Index(script, "BEFORE")
	write := strings.Index(script, "write_bitstream -force top.bit")
	after := strings.Index(script, "AFTER")
	route := strings.Index(script, "route_design")
	assert.True(t, route < before && before < write && write < after, script)
}

func TestProgram(t *testing.T) {
	t.Setenv(ProgrammerEnvVar, "")
	bitstream := writeFile(t, "top.bit")
	runner := &fakeRunner{}

	require.NoError(t, Tools{Runner: runner}.Program(context.Background(), bitstream, ""))
	require.Len(t, runner.commands, 1)
	assert.Equal(t, Command{Tool: "xc3sprog", Args: []string{"-c", "xpc", bitstream}}, runner.commands[0])
}

func TestProgramCommandResolution(t *testing.T) {
	bitstream := writeFile(t, "top.bit")

	t.Setenv(ProgrammerEnvVar, "")
	runner := &fakeRunner{}
	require.NoError(t, Tools{Runner: runner, Programmer: "/opt/xc3sprog/bin/xc3sprog"}.Program(context.Background(), bitstream, "jtaghs1"))
	assert.Equal(t, "/opt/xc3sprog/bin/xc3sprog", runner.commands[0].Tool)
	assert.Equal(t, []string{"-c", "jtaghs1", bitstream}, runner.commands[0].Args)

	t.Setenv(ProgrammerEnvVar, `"/opt/my tools/xc3sprog" -v`)
	runner = &fakeRunner{}
	require.NoError(t, Tools{Runner: runner, Programmer: "ignored"}.Program(context.Background(), bitstream, "xpc"))
	assert.Equal(t, "/opt/my tools/xc3sprog", runner.commands[0].Tool)
	assert.Equal(t, []string{"-v", "-c", "xpc", bitstream}, runner.commands[0].Args)
}

func TestProgramMissingBitstream(t *testing.T) {
	runner := &fakeRunner{}
	err := Tools{Runner: runner}.Program(context.Background(), filepath.Join(t.TempDir(), "missing.bit"), "")
	assert.Error(t, err)
	assert.Empty(t, runner.commands)
}

func TestProgramFailure(t *testing.T) {
	t.Setenv(ProgrammerEnvVar, "")
	bitstream := writeFile(t, "top.bit")
	runner := &fakeRunner{err: &ExternalToolFailure{Tool: "xc3sprog", ExitCode: 3}}

	err := Tools{Runner: runner}.Program(context.Background(), bitstream, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternalToolFailure))

	var failure *ExternalToolFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 3, failure.ExitCode)
	assert.Contains(t, err.Error(), "exited with status 3")
}

func TestBuild(t *testing.T) {
	t.Setenv(VivadoEnvVar, "")
	script := writeFile(t, "top_build.tcl")
	runner := &fakeRunner{}

	require.NoError(t, Tools{Runner: runner, Vivado: "/tools/Xilinx/Vivado/2020.2/bin/vivado"}.Build(context.Background(), script))
	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "/tools/Xilinx/Vivado/2020.2/bin/vivado", cmd.Tool)
	assert.Equal(t, []string{"-mode", "batch", "-nojournal", "-nolog", "-source", "top_build.tcl"}, cmd.Args)
	assert.Equal(t, filepath.Dir(script)+string(filepath.Separator), cmd.Dir)
}

func TestBadCommandLine(t *testing.T) {
	t.Setenv(VivadoEnvVar, `"unterminated`)
	_, err := Tools{}.VivadoCommand()
	assert.Error(t, err)
}

func TestExternalToolFailureMessage(t *testing.T) {
	err := &ExternalToolFailure{Tool: "vivado", Args: []string{"-mode", "batch"}, ExitCode: -1, Err: errors.New("not found")}
	assert.Equal(t, "external tool failure: `vivado -mode batch`: not found", err.Error())
}

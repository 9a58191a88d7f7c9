package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/hdl"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/platform"
	"github.com/TomKeddie/luna/stamp"
	"github.com/TomKeddie/luna/toolchain"
	"github.com/TomKeddie/luna/util"
)

var generateOutputDir string
var designName string
var designSources []string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Args:  cobra.NoArgs,
	Short: "Generates the clock generator, constraints and build script",
	Long: `Generates <name>_clocks.v, <name>_pins.xdc, <name>_clocks.xdc and
<name>_build.tcl for the platform in the output directory.`,
	Run: runGenerate,
}

func init() {
	addDesignFlags(generateCmd, &generateOutputDir)
	rootCmd.AddCommand(generateCmd)
}

func addDesignFlags(cmd *cobra.Command, outputDir *string) {
	cmd.Flags().StringVarP(outputDir, "output", "o", "", "Output directory")
	cmd.Flags().StringVarP(&designName, "name", "n", "top", "Name of the top-level module")
	cmd.Flags().StringSliceVarP(&designSources, "source", "s", nil, "HDL sources of the design (defaults to <name>.v)")
}

// artifacts are the files generated for one design.
type artifacts struct {
	Dir       string
	Verilog   string
	Pins      string
	Clocks    string
	Script    string
	Bitstream string
}

func newArtifacts(dir, name string) artifacts {
	return artifacts{
		Dir:       dir,
		Verilog:   filepath.Join(dir, name+"_clocks.v"),
		Pins:      filepath.Join(dir, name+"_pins.xdc"),
		Clocks:    filepath.Join(dir, name+"_clocks.xdc"),
		Script:    filepath.Join(dir, name+"_build.tcl"),
		Bitstream: filepath.Join(dir, name+".bit"),
	}
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, util.FileMode)
	if err != nil {
		return errors.Wrapf(err, "creating '%s'", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing '%s'", path)
	}
	log.Debug("Wrote '%s'.\n", path)
	return f.Close()
}

func absolutePaths(paths []string) ([]string, error) {
	result := []string{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		result = append(result, abs)
	}
	return result, nil
}

// generate writes every file the build needs for design `name` into `dir`.
func generate(p *platform.Platform, name, dir string, sources []string) (artifacts, error) {
	out := newArtifacts(dir, name)

	c, err := p.Elaborate()
	if err != nil {
		return out, err
	}
	logPlanSummary(c)
	table, err := p.Table()
	if err != nil {
		return out, err
	}
	clk, err := table.Lookup(p.DefaultClock, 0)
	if err != nil {
		return out, err
	}
	if len(sources) == 0 {
		sources = []string{name + ".v"}
	}
	sources, err = absolutePaths(sources)
	if err != nil {
		return out, err
	}

	header := hdl.Header{
		Version:  util.ToolVersion.String(),
		Stamp:    stamp.Describe(".").String(),
		Platform: p.Name,
	}
	overrides := toolchain.Prepare(p, name, c)

	if err := util.EnsureDir(dir); err != nil {
		return out, errors.Wrapf(err, "creating output directory '%s'", dir)
	}
	steps := []struct {
		path  string
		write func(w io.Writer) error
	}{
		{out.Verilog, func(w io.Writer) error {
			return hdl.WriteClockGenerator(w, name+"_clocks", clk, c, header)
		}},
		{out.Pins, func(w io.Writer) error { return hdl.WritePinConstraints(w, table, header) }},
		{out.Clocks, func(w io.Writer) error { return hdl.WriteClockConstraints(w, overrides, header) }},
		{out.Script, func(w io.Writer) error {
			return toolchain.WriteBuildScript(w, toolchain.ScriptParams{
				Name:        name,
				Part:        p.PartName(),
				Top:         name,
				Stamp:       header.Stamp,
				Version:     header.Version,
				Sources:     append([]string{filepath.Base(out.Verilog)}, sources...),
				Constraints: []string{filepath.Base(out.Pins), filepath.Base(out.Clocks)},
				Overrides:   overrides,
			})
		}},
	}
	for _, step := range steps {
		if err := writeFile(step.path, step.write); err != nil {
			return out, err
		}
	}
	return out, nil
}

func logPlanSummary(c *clocking.Clocking) {
	log.IndentationLevel++
	defer func() { log.IndentationLevel-- }()
	for _, b := range c.Bindings() {
		log.Debug("%s -> %s CLKOUT%d, reset by %s\n", b.Domain, b.Instance, b.OutputIndex, b.LockNet)
	}
}

func runGenerate(cmd *cobra.Command, args []string) {
	p := selectPlatform()
	dir := outputDirectory(generateOutputDir)
	out, err := generate(&p, designName, dir, designSources)
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	log.Success("Generated files for '%s' in '%s'.\n", p.Name, out.Dir)
}

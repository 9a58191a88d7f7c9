package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/config"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/toolchain"
)

var buildOutputDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Args:  cobra.NoArgs,
	Short: "Generates the design files and builds the bitstream",
	Long: `Generates the design files like 'generate' does and runs Vivado on the
build script. The VIVADO environment variable overrides the Vivado command.`,
	Run: runBuild,
}

func init() {
	addDesignFlags(buildCmd, &buildOutputDir)
	rootCmd.AddCommand(buildCmd)
}

func newTools() toolchain.Tools {
	cfg := config.GetConfig()
	return toolchain.Tools{
		Runner:     toolchain.NewExecRunner(),
		Programmer: cfg.Programmer,
		Vivado:     cfg.Vivado,
	}
}

func runBuild(cmd *cobra.Command, args []string) {
	p := selectPlatform()
	dir := outputDirectory(buildOutputDir)
	out, err := generate(&p, designName, dir, designSources)
	if err != nil {
		log.Fatal("%s.\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newTools().Build(ctx, out.Script); err != nil {
		log.Fatal("%s.\n", err)
	}
	log.Success("Built '%s'.\n", out.Bitstream)
}

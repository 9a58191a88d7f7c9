package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/config"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/platform"
)

var platformName string
var boardFile string

var rootCmd = &cobra.Command{
	Use:   "luna",
	Short: "FPGA platform clocking and resource integration",
	Long: `luna resolves the clock domains a board asks for into PLL configurations,
wires every domain to its PLL output and lock-gated reset, and generates the
HDL, constraints and build scripts needed to build and program the board.

The platform is selected with --board-file, --platform, the LUNA_PLATFORM
environment variable or the 'platform' key of the configuration file, in
that order.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	rootCmd.PersistentFlags().StringVarP(&platformName, "platform", "p", "", "Name of a built-in platform")
	rootCmd.PersistentFlags().StringVarP(&boardFile, "board-file", "f", "", "YAML board file describing the platform")
	rootCmd.RegisterFlagCompletionFunc("platform", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return platform.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

func selectPlatform() platform.Platform {
	p, err := platform.Select(boardFile, platformName, config.GetConfig().Platform)
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	log.Debug("Using platform '%s' (%s).\n", p.Name, p.PartName())
	return p
}

func outputDirectory(flag string) string {
	if flag != "" {
		return flag
	}
	return config.GetConfig().OutputDir
}

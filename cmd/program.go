package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/config"
	"github.com/TomKeddie/luna/log"
)

var programOutputDir string
var programCable string

var programCmd = &cobra.Command{
	Use:   "program [bitstream]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Programs the device with a bitstream",
	Long: `Programs the device with a bitstream, by default <output>/<name>.bit.
The XC3SPROG environment variable overrides the programmer command.`,
	Run: runProgram,
}

func init() {
	programCmd.Flags().StringVarP(&programOutputDir, "output", "o", "", "Output directory")
	programCmd.Flags().StringVarP(&designName, "name", "n", "top", "Name of the top-level module")
	programCmd.Flags().StringVarP(&programCable, "cable", "c", "", "Programming cable")
	rootCmd.AddCommand(programCmd)
}

func cable(platformCable string) string {
	if programCable != "" {
		return programCable
	}
	if cfg := config.GetConfig().Cable; cfg != "" {
		return cfg
	}
	return platformCable
}

func runProgram(cmd *cobra.Command, args []string) {
	p := selectPlatform()
	bitstream := newArtifacts(outputDirectory(programOutputDir), designName).Bitstream
	if len(args) > 0 {
		bitstream = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newTools().Program(ctx, bitstream, cable(p.Programmer.Cable)); err != nil {
		log.Fatal("%s.\n", err)
	}
}

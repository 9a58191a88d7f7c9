package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/stamp"
	"github.com/TomKeddie/luna/util"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Args:  cobra.NoArgs,
	Short: "Prints the version of this tool",
	Long:  `Prints the version of this tool and the revision of the current directory.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("luna %s (sources: %s)\n", util.ToolVersion, stamp.Describe("."))
}

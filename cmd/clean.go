package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/util"
)

var cleanOutputDir string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Args:  cobra.NoArgs,
	Short: "Removes all generated files and build results",
	Long:  `Removes the output directory with all generated files and build results.`,
	Run:   runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutputDir, "output", "o", "", "Output directory")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	dir := outputDirectory(cleanOutputDir)
	if !util.DirExists(dir) {
		log.Debug("Output directory '%s' does not exist.\n", dir)
		return
	}
	log.Debug("Removing output directory '%s'.\n", dir)
	if err := os.RemoveAll(dir); err != nil {
		log.Fatal("Failed to remove '%s': %s.\n", dir, err)
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/resource"
	"github.com/TomKeddie/luna/util"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Args:  cobra.NoArgs,
	Short: "Lists the I/O resources of the platform",
	Long:  `Lists the I/O resources of the platform with their package pins and attributes.`,
	Run:   runResources,
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}

func printResources(w io.Writer, table *resource.Table) {
	for _, pin := range table.PinConstraints() {
		attrs := util.MappedSlice(pin.Attrs, func(attr util.OrderedMapEntry[string, string]) string {
			return attr.Key + "=" + attr.Value
		})
		invert := ""
		if pin.Invert {
			invert = " inverted"
		}
		fmt.Fprintf(w, "%-24s %-6s %-3s %s%s\n", pin.Port, pin.Pin, pin.Dir, strings.Join(attrs, " "), invert)
	}
	for _, clk := range table.ClockConstraints() {
		fmt.Fprintf(w, "%-24s clock %s\n", clk.Port, clocking.FormatHz(1e9/clk.PeriodNs))
	}
}

func runResources(cmd *cobra.Command, args []string) {
	p := selectPlatform()
	table, err := p.Table()
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	printResources(os.Stdout, table)
}

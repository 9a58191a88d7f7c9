package toolchain

import (
	"fmt"
	"strings"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/platform"
	"github.com/TomKeddie/luna/util"
)

// Overrides are the Tcl fragments the board injects into the Vivado flow.
type Overrides struct {
	ScriptBeforeBitstream string
	ScriptAfterBitstream  string
	AddConstraints        string
}

// Prepare computes the overrides for building design `name` on platform `p`.
func Prepare(p *platform.Platform, name string, c *clocking.Clocking) Overrides {
	o := Overrides{AddConstraints: ClockGroups(c.Instances())}
	if width := p.Toolchain.SPIBusWidth; width > 0 {
		o.ScriptBeforeBitstream = fmt.Sprintf("set_property BITSTREAM.CONFIG.SPI_BUSWIDTH %d [current_design]", width)
		if p.Toolchain.FlashSizeMB > 0 {
			o.ScriptAfterBitstream = fmt.Sprintf(
				"write_cfgmem -force -format bin -interface %s -size %d -loadbit \"up 0x0 %s.bit\" -file %s.bin",
				p.Toolchain.FlashInterface(), p.Toolchain.FlashSizeMB, name, name)
		}
	}
	return o
}

// ClockGroups declares the outputs of every PLL with more than one output
// asynchronous to each other, one set_clock_groups command per PLL.
func ClockGroups(instances []clocking.Instance) string {
	lines := []string{}
	for _, inst := range instances {
		outputs := util.FilteredSlice(inst.Ports, func(port clocking.Port) bool {
			return port.Dir == clocking.Out && strings.HasPrefix(port.Name, "CLKOUT")
		})
		groups := util.MappedSlice(outputs, func(port clocking.Port) string {
			return fmt.Sprintf("-group [get_clocks -of_objects [get_pins -regexp .*/%s/%s]]", inst.Name, port.Name)
		})
		if len(groups) < 2 {
			continue
		}
		lines = append(lines, "set_clock_groups -asynchronous "+strings.Join(groups, " "))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

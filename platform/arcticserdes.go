package platform

import (
	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/resource"
)

// ArcticSerdes35 is the ArcticSerdes board (artix7.tomk.in) with an xc7a35t.
func ArcticSerdes35() Platform {
	lvcmos33 := resource.Attrs{"IOSTANDARD": "LVCMOS33"}
	return Platform{
		Name:    "arcticserdes35",
		Device:  "xc7a35t",
		Package: "fgg484",
		Speed:   "3",

		DefaultClock:         "clkin",
		DefaultUSBConnection: "usb_micro",

		Resources: []resource.Resource{
			resource.ClockResource("clkin", 0, "Y18", "Y19", 50e6, resource.Attrs{"IOSTANDARD": "LVDS_25"}),
			resource.RGBLEDResource(0, "P15", "P16", "P14", true, lvcmos33),
			resource.DirectUSBResource("usb_micro", 0, "V18", "V19", "U18", lvcmos33),
			resource.UARTResource(0, "W19", "V17", lvcmos33),
			resource.UARTResource(1, "W20", "W17", lvcmos33),
		},
		Domains: []clocking.DomainRequest{
			{Name: "usb", TargetHz: 12e6},
			{Name: "usb_io", TargetHz: 48e6},
			{Name: "sync", TargetHz: 125e6},
			{Name: "ss", TargetHz: 125e6},
			{Name: "fast", TargetHz: 250e6},
		},
		RequiredDomains: []string{"usb", "usb_io", "sync"},

		Toolchain:  Toolchain{SPIBusWidth: 4, FlashSizeMB: 16},
		Programmer: Programmer{Cable: "xpc"},
	}
}

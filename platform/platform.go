package platform

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/TomKeddie/luna/clocking"
	"github.com/TomKeddie/luna/device"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/resource"
	"github.com/TomKeddie/luna/util"
)

// Toolchain holds the board options of the bitstream build.
type Toolchain struct {
	// SPIBusWidth is the configuration flash bus width (1, 2 or 4).
	SPIBusWidth int `yaml:"spi_buswidth"`

	// FlashSizeMB is the size of the configuration flash in megabytes.
	FlashSizeMB int `yaml:"flash_size_mb"`
}

// FlashInterface is the write_cfgmem interface name for the bus width.
func (t Toolchain) FlashInterface() string {
	return fmt.Sprintf("spix%d", t.SPIBusWidth)
}

// Programmer holds the board options of device programming.
type Programmer struct {
	Cable string `yaml:"cable"`
}

// Platform describes one FPGA board.
type Platform struct {
	Name     string `yaml:"name"`
	Requires string `yaml:"requires,omitempty"`

	Device  string `yaml:"device"`
	Package string `yaml:"package"`
	Speed   string `yaml:"speed"`

	DefaultClock         string `yaml:"default_clock"`
	DefaultUSBConnection string `yaml:"default_usb_connection,omitempty"`

	Resources       []resource.Resource       `yaml:"resources"`
	Domains         []clocking.DomainRequest `yaml:"domains"`
	RequiredDomains []string                  `yaml:"required_domains,omitempty"`

	Toolchain  Toolchain  `yaml:"toolchain"`
	Programmer Programmer `yaml:"programmer"`

	// PLL overrides fields of the built-in device metadata.
	PLL device.PLL `yaml:"pll,omitempty"`
}

// PartName is the full part name as the vendor tools expect it.
func (p *Platform) PartName() string {
	return fmt.Sprintf("%s%s-%s", p.Device, p.Package, p.Speed)
}

// ReferenceNet is the net carrying the buffered default clock.
func (p *Platform) ReferenceNet() string {
	return p.DefaultClock
}

// DeviceInfo returns the device metadata with the platform's overrides applied.
func (p *Platform) DeviceInfo() (device.Device, error) {
	dev, err := device.Lookup(p.Device, p.Speed)
	if err != nil {
		return device.Device{}, errors.Wrapf(err, "platform '%s'", p.Name)
	}
	dev.PLL = dev.PLL.Override(p.PLL)
	if err := dev.PLL.Validate(); err != nil {
		return device.Device{}, errors.Wrapf(err, "platform '%s': PLL metadata", p.Name)
	}
	return dev, nil
}

// Table builds the validated resource table of the board.
func (p *Platform) Table() (*resource.Table, error) {
	table, err := resource.NewTable(p.Resources...)
	if err != nil {
		return nil, errors.Wrapf(err, "platform '%s'", p.Name)
	}
	return table, nil
}

// Reference returns the reference clock read from the default clock resource.
func (p *Platform) Reference() (clocking.ReferenceClock, error) {
	table, err := p.Table()
	if err != nil {
		return clocking.ReferenceClock{}, err
	}
	hz, err := table.Clock(p.DefaultClock)
	if err != nil {
		return clocking.ReferenceClock{}, errors.Wrapf(err, "platform '%s': default clock", p.Name)
	}
	return clocking.ReferenceClock{FrequencyHz: hz}, nil
}

// Validate checks everything that can be checked without resolving clocks.
func (p *Platform) Validate() error {
	if p.Name == "" {
		return errors.New("platform without a name")
	}
	if p.Requires != "" {
		required, err := util.ParseVersion(p.Requires)
		if err != nil {
			return errors.Wrapf(err, "platform '%s': requires", p.Name)
		}
		if util.ToolVersion.Less(required) {
			return errors.Errorf("platform '%s' requires version %s, this is %s", p.Name, required, util.ToolVersion)
		}
	}
	if _, err := p.DeviceInfo(); err != nil {
		return err
	}
	if _, err := p.Reference(); err != nil {
		return err
	}
	if len(p.Domains) == 0 {
		return errors.Errorf("platform '%s' has no clock domains", p.Name)
	}
	if p.DefaultUSBConnection != "" {
		table, _ := p.Table()
		if _, err := table.Lookup(p.DefaultUSBConnection, 0); err != nil {
			return errors.Wrapf(err, "platform '%s': default USB connection", p.Name)
		}
	}
	switch p.Toolchain.SPIBusWidth {
	case 0, 1, 2, 4:
	default:
		return errors.Errorf("platform '%s' has invalid SPI bus width %d", p.Name, p.Toolchain.SPIBusWidth)
	}
	return nil
}

// Elaborate resolves, emits and wires the clock domains of the platform.
func (p *Platform) Elaborate() (*clocking.Clocking, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dev, _ := p.DeviceInfo()
	ref, _ := p.Reference()

	log.Debug("Resolving %d clock domains of '%s' on %s from %s\n",
		len(p.Domains), p.Name, dev, clocking.FormatHz(ref.FrequencyHz))
	c, err := clocking.Synthesize(ref, p.Domains, dev.PLL, p.ReferenceNet())
	if err != nil {
		return nil, errors.Wrapf(err, "platform '%s'", p.Name)
	}
	if err := c.Require(p.RequiredDomains...); err != nil {
		return nil, errors.Wrapf(err, "platform '%s': required domains", p.Name)
	}
	return c, nil
}

package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomKeddie/luna/clocking"
)

const boardFile = `
name: tinyboard
requires: v1.0.0
device: xc7a35t
package: csg324
speed: "1"
default_clock: clk100
resources:
  - name: clk100
    number: 0
    pins: {names: [E3], dir: i}
    clock_hz: 100000000
    attrs: {iostandard: LVCMOS33}
  - name: led
    number: 0
    pins: {names: [H5, J5], dir: o}
    attrs: {IOSTANDARD: LVCMOS33}
domains:
  - name: sync
    frequency: 100000000
  - name: pixel
    frequency: 25000000
    tolerance_ppm: 1000
required_domains: [sync]
toolchain:
  spi_buswidth: 1
  flash_size_mb: 4
programmer:
  cable: digilent
pll:
  count: 1
`

func writeBoard(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestArcticSerdesElaborates(t *testing.T) {
	p, err := Lookup("arcticserdes35")
	require.NoError(t, err)
	assert.Equal(t, "xc7a35tfgg484-3", p.PartName())

	ref, err := p.Reference()
	require.NoError(t, err)
	assert.Equal(t, 50e6, ref.FrequencyHz)

	c, err := p.Elaborate()
	require.NoError(t, err)
	plan := c.Plan()
	require.Len(t, plan.PLLs, 2)
	assert.Equal(t, 24, plan.PLLs[0].FeedbackMultiplier)
	assert.Equal(t, 20, plan.PLLs[1].FeedbackMultiplier)

	clkin, _ := c.Instances()[0].Port("CLKIN1")
	assert.Equal(t, "clkin", clkin.Net)
}

func TestLookupReturnsCopies(t *testing.T) {
	p, err := Lookup("ArcticSerdes35")
	require.NoError(t, err)
	p.Domains[0].TargetHz = 1

	again, err := Lookup("arcticserdes35")
	require.NoError(t, err)
	assert.Equal(t, 12e6, again.Domains[0].TargetHz)

	_, err = Lookup("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, Names(), "arcticserdes35")
}

func TestLoadBoardFile(t *testing.T) {
	p, err := Load(writeBoard(t, boardFile))
	require.NoError(t, err)
	assert.Equal(t, "tinyboard", p.Name)
	assert.Equal(t, "spix1", p.Toolchain.FlashInterface())
	assert.Equal(t, "digilent", p.Programmer.Cable)

	dev, err := p.DeviceInfo()
	require.NoError(t, err)
	assert.Equal(t, 1, dev.PLL.Count)
	assert.Equal(t, 6, dev.PLL.OutputsPerPLL)

	c, err := p.Elaborate()
	require.NoError(t, err)
	assert.Len(t, c.Plan().PLLs, 1)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeBoard(t, boardFile+"colour: blue\n"))
	assert.Error(t, err)
}

func TestLoadNameDefaultsToFileName(t *testing.T) {
	content := boardFile[len("\nname: tinyboard"):]
	p, err := Load(writeBoard(t, content))
	require.NoError(t, err)
	assert.Equal(t, "board", p.Name)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(p *Platform){
		"future version":     func(p *Platform) { p.Requires = "v99.0.0" },
		"bad version":        func(p *Platform) { p.Requires = "latest" },
		"unknown part":       func(p *Platform) { p.Device = "xc7z020" },
		"missing clock":      func(p *Platform) { p.DefaultClock = "clk100" },
		"clock without freq": func(p *Platform) { p.DefaultClock = "uart" },
		"no domains":         func(p *Platform) { p.Domains = nil },
		"bad usb":            func(p *Platform) { p.DefaultUSBConnection = "usb_c" },
		"bad bus width":      func(p *Platform) { p.Toolchain.SPIBusWidth = 3 },
	}
	for name, mutate := range cases {
		p := ArcticSerdes35()
		mutate(&p)
		assert.Error(t, p.Validate(), name)
	}
}

func TestRequiredDomains(t *testing.T) {
	p := ArcticSerdes35()
	p.RequiredDomains = append(p.RequiredDomains, "hdmi")
	_, err := p.Elaborate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, clocking.ErrUnboundClockDomain))
}

func TestElaborateReportsUnreachable(t *testing.T) {
	p := ArcticSerdes35()
	p.Domains = append(p.Domains, clocking.DomainRequest{Name: "odd", TargetHz: 13.7e6, TolerancePPM: 10})
	_, err := p.Elaborate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, clocking.ErrFrequencyUnreachable))
}

func TestSelect(t *testing.T) {
	path := writeBoard(t, boardFile)

	p, err := Select(path, "arcticserdes35", "")
	require.NoError(t, err)
	assert.Equal(t, "tinyboard", p.Name)

	t.Setenv(EnvVar, "")
	p, err = Select("", "", "arcticserdes35")
	require.NoError(t, err)
	assert.Equal(t, "arcticserdes35", p.Name)

	_, err = Select("", "", "")
	assert.Error(t, err)

	t.Setenv(EnvVar, "arcticserdes35")
	p, err = Select("", "", "unknown")
	require.NoError(t, err)
	assert.Equal(t, "arcticserdes35", p.Name)

	_, err = Select("", "unknown", "")
	assert.Error(t, err)
}

func TestLoadRejectsNaNTolerance(t *testing.T) {
	content := strings.Replace(boardFile, "tolerance_ppm: 1000", "tolerance_ppm: .nan", 1)
	require.Contains(t, content, ".nan")

	p, err := Load(writeBoard(t, content))
	if err == nil {
		_, err = p.Elaborate()
	}
	assert.Error(t, err)
}

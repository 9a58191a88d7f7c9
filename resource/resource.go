package resource

import (
	"fmt"
	"strings"

	"github.com/TomKeddie/luna/util"
)

// Direction of a pin as seen from the FPGA.
type Direction string

const (
	Input         Direction = "i"
	Output        Direction = "o"
	Bidirectional Direction = "io"
)

func (d Direction) valid() bool {
	return d == Input || d == Output || d == Bidirectional
}

// Pins is a group of single-ended package pins.
type Pins struct {
	Names  []string  `yaml:"names"`
	Dir    Direction `yaml:"dir"`
	Invert bool      `yaml:"invert"`
}

// DiffPairs is a group of differential package pin pairs.
type DiffPairs struct {
	P   []string  `yaml:"p"`
	N   []string  `yaml:"n"`
	Dir Direction `yaml:"dir"`
}

// Attrs are the I/O attributes of a resource. Keys are upper-case once normalized.
type Attrs map[string]string

// Resource is one named, numbered piece of board I/O.
type Resource struct {
	Name       string     `yaml:"name"`
	Number     int        `yaml:"number"`
	Pins       *Pins      `yaml:"pins,omitempty"`
	DiffPairs  *DiffPairs `yaml:"diff_pairs,omitempty"`
	Subsignals []Resource `yaml:"subsignals,omitempty"`
	ClockHz    float64    `yaml:"clock_hz,omitempty"`
	Attrs      Attrs      `yaml:"attrs,omitempty"`
}

// Normalize upper-cases the attribute keys of the resource and its subsignals.
func (r *Resource) Normalize() {
	if len(r.Attrs) > 0 {
		attrs := Attrs{}
		for key, value := range r.Attrs {
			attrs[strings.ToUpper(key)] = value
		}
		r.Attrs = attrs
	}
	for i := range r.Subsignals {
		r.Subsignals[i].Normalize()
	}
}

// Validate checks the shape of the resource. Top-level resources must
// carry exactly one of pins, differential pairs or subsignals.
func (r *Resource) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("resource without a name")
	}

	kinds := 0
	if r.Pins != nil {
		kinds++
		if len(r.Pins.Names) == 0 {
			return fmt.Errorf("resource '%s' has an empty pin list", r.Name)
		}
		if !r.Pins.Dir.valid() {
			return fmt.Errorf("resource '%s' has invalid direction '%s'", r.Name, r.Pins.Dir)
		}
	}
	if r.DiffPairs != nil {
		kinds++
		if len(r.DiffPairs.P) == 0 || len(r.DiffPairs.P) != len(r.DiffPairs.N) {
			return fmt.Errorf("resource '%s' has %d positive and %d negative pins",
				r.Name, len(r.DiffPairs.P), len(r.DiffPairs.N))
		}
		if !r.DiffPairs.Dir.valid() {
			return fmt.Errorf("resource '%s' has invalid direction '%s'", r.Name, r.DiffPairs.Dir)
		}
	}
	if len(r.Subsignals) > 0 {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("resource '%s' must have exactly one of pins, diff_pairs or subsignals", r.Name)
	}
	if r.ClockHz < 0 {
		return fmt.Errorf("resource '%s' has negative clock frequency", r.Name)
	}
	if std, ok := r.Attrs["IOSTANDARD"]; ok {
		if err := ValidateIOStandard(std); err != nil {
			return fmt.Errorf("resource '%s': %w", r.Name, err)
		}
	}

	names := util.NewOrderedMap[string, bool]()
	for i := range r.Subsignals {
		sub := &r.Subsignals[i]
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("resource '%s': %w", r.Name, err)
		}
		if err := names.Insert(sub.Name, true); err != nil {
			return fmt.Errorf("resource '%s' has subsignal '%s' twice", r.Name, sub.Name)
		}
	}
	return nil
}

// PortName is the top-level port name of the resource.
func (r *Resource) PortName() string {
	return fmt.Sprintf("%s_%d", r.Name, r.Number)
}

// Subsignal returns the named subsignal.
func (r *Resource) Subsignal(name string) (*Resource, bool) {
	for i := range r.Subsignals {
		if r.Subsignals[i].Name == name {
			return &r.Subsignals[i], true
		}
	}
	return nil, false
}

var ioStandards = []string{
	"LVCMOS12", "LVCMOS15", "LVCMOS18", "LVCMOS25", "LVCMOS33", "LVTTL",
	"LVDS_25", "LVDS", "TMDS_33", "SSTL15", "DIFF_SSTL15", "HSTL_I",
}

// IOStandards lists the accepted values of the IOSTANDARD attribute.
func IOStandards() []string {
	return append([]string(nil), ioStandards...)
}

// ValidateIOStandard checks an IOSTANDARD attribute value.
func ValidateIOStandard(std string) error {
	for _, allowed := range ioStandards {
		if std == allowed {
			return nil
		}
	}
	return fmt.Errorf("unknown IOSTANDARD '%s', allowed values are: %s", std, strings.Join(ioStandards, ", "))
}

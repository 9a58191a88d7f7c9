// Package device holds the PLL metadata of the FPGA parts a platform can target.
//
// All limits come from the vendor datasheets. The resolver never invents
// frequencies outside of these ranges; a plan that would need them fails.
package device

import (
	"fmt"
	"strings"

	"github.com/TomKeddie/luna/util"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// PLL describes the PLL primitives available on a device.
type PLL struct {
	// Primitive is the name of the vendor primitive instantiated for each PLL.
	Primitive string `yaml:"primitive"`

	// Count is the number of PLL primitives on the device.
	Count int `yaml:"count"`

	// OutputsPerPLL is the number of independently divided outputs of one PLL.
	OutputsPerPLL int `yaml:"outputs_per_pll"`

	VCOMinHz   float64 `yaml:"vco_min_hz"`
	VCOMaxHz   float64 `yaml:"vco_max_hz"`
	PFDMinHz   float64 `yaml:"pfd_min_hz"`
	PFDMaxHz   float64 `yaml:"pfd_max_hz"`
	InputMinHz float64 `yaml:"input_min_hz"`
	InputMaxHz float64 `yaml:"input_max_hz"`

	InputDivider       Range `yaml:"input_divider"`
	FeedbackMultiplier Range `yaml:"feedback_multiplier"`
	OutputDivider      Range `yaml:"output_divider"`

	// PhaseStepsPerVCOPeriod is the static phase shift resolution, in steps per VCO period.
	PhaseStepsPerVCOPeriod int `yaml:"phase_steps_per_vco_period"`
}

// Validate checks that the metadata is self-consistent.
func (p PLL) Validate() error {
	switch {
	case p.Primitive == "":
		return fmt.Errorf("PLL primitive name is not set")
	case p.Count < 1:
		return fmt.Errorf("PLL count must be positive, got %d", p.Count)
	case p.OutputsPerPLL < 1:
		return fmt.Errorf("PLL outputs per PLL must be positive, got %d", p.OutputsPerPLL)
	case p.VCOMinHz <= 0 || p.VCOMaxHz <= p.VCOMinHz:
		return fmt.Errorf("invalid VCO range [%g, %g] Hz", p.VCOMinHz, p.VCOMaxHz)
	case p.PFDMinHz <= 0 || p.PFDMaxHz <= p.PFDMinHz:
		return fmt.Errorf("invalid PFD range [%g, %g] Hz", p.PFDMinHz, p.PFDMaxHz)
	case p.InputMinHz <= 0 || p.InputMaxHz <= p.InputMinHz:
		return fmt.Errorf("invalid input frequency range [%g, %g] Hz", p.InputMinHz, p.InputMaxHz)
	case p.InputDivider.Min < 1 || p.InputDivider.Max < p.InputDivider.Min:
		return fmt.Errorf("invalid input divider range %s", p.InputDivider)
	case p.FeedbackMultiplier.Min < 1 || p.FeedbackMultiplier.Max < p.FeedbackMultiplier.Min:
		return fmt.Errorf("invalid feedback multiplier range %s", p.FeedbackMultiplier)
	case p.OutputDivider.Min < 1 || p.OutputDivider.Max < p.OutputDivider.Min:
		return fmt.Errorf("invalid output divider range %s", p.OutputDivider)
	case p.PhaseStepsPerVCOPeriod < 1:
		return fmt.Errorf("phase steps per VCO period must be positive, got %d", p.PhaseStepsPerVCOPeriod)
	}
	return nil
}

// Override returns a copy of p where every non-zero field of o replaces the corresponding field.
func (p PLL) Override(o PLL) PLL {
	if o.Primitive != "" {
		p.Primitive = o.Primitive
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setRange := func(dst *Range, v Range) {
		setInt(&dst.Min, v.Min)
		setInt(&dst.Max, v.Max)
	}
	setInt(&p.Count, o.Count)
	setInt(&p.OutputsPerPLL, o.OutputsPerPLL)
	setFloat(&p.VCOMinHz, o.VCOMinHz)
	setFloat(&p.VCOMaxHz, o.VCOMaxHz)
	setFloat(&p.PFDMinHz, o.PFDMinHz)
	setFloat(&p.PFDMaxHz, o.PFDMaxHz)
	setFloat(&p.InputMinHz, o.InputMinHz)
	setFloat(&p.InputMaxHz, o.InputMaxHz)
	setRange(&p.InputDivider, o.InputDivider)
	setRange(&p.FeedbackMultiplier, o.FeedbackMultiplier)
	setRange(&p.OutputDivider, o.OutputDivider)
	setInt(&p.PhaseStepsPerVCOPeriod, o.PhaseStepsPerVCOPeriod)
	return p
}

// Device identifies a part and its PLL resources.
type Device struct {
	Part  string
	Speed string
	PLL   PLL
}

func (d Device) String() string {
	return fmt.Sprintf("%s-%s", d.Part, d.Speed)
}

// Lookup returns the built-in metadata for `part` in speed grade `speed`.
func Lookup(part, speed string) (Device, error) {
	part = strings.ToLower(part)
	speed = strings.TrimPrefix(speed, "-")

	family, ok := partFamilies[part]
	if !ok {
		return Device{}, fmt.Errorf("unknown part '%s', known parts are: %s", part, strings.Join(KnownParts(), ", "))
	}
	pll, ok := family.pll(speed)
	if !ok {
		return Device{}, fmt.Errorf("unknown speed grade '%s' for part '%s'", speed, part)
	}
	pll.Count = family.cmts[part]
	return Device{Part: part, Speed: speed, PLL: pll}, nil
}

// KnownParts lists the parts with built-in metadata.
func KnownParts() []string {
	return util.OrderedKeys(partFamilies)
}

package device

const mhz = 1e6

type family struct {
	cmts map[string]int
	pll  func(speed string) (PLL, bool)
}

// PLLE2_ADV switching characteristics, DS181 (Artix-7), per speed grade.
func xilinx7PLL(speed string) (PLL, bool) {
	base := PLL{
		Primitive:              "PLLE2_ADV",
		OutputsPerPLL:          6,
		VCOMinHz:               800 * mhz,
		PFDMinHz:               19 * mhz,
		InputMinHz:             19 * mhz,
		InputDivider:           Range{1, 56},
		FeedbackMultiplier:     Range{2, 64},
		OutputDivider:          Range{1, 128},
		PhaseStepsPerVCOPeriod: 8,
	}
	switch speed {
	case "1":
		base.VCOMaxHz, base.PFDMaxHz, base.InputMaxHz = 1600*mhz, 450*mhz, 800*mhz
	case "2":
		base.VCOMaxHz, base.PFDMaxHz, base.InputMaxHz = 1866*mhz, 500*mhz, 933*mhz
	case "3":
		base.VCOMaxHz, base.PFDMaxHz, base.InputMaxHz = 2133*mhz, 550*mhz, 1066*mhz
	default:
		return PLL{}, false
	}
	return base, true
}

var artix7 = family{
	cmts: map[string]int{
		"xc7a35t":  5,
		"xc7a50t":  5,
		"xc7a75t":  6,
		"xc7a100t": 6,
		"xc7a200t": 10,
	},
	pll: xilinx7PLL,
}

var partFamilies = func() map[string]family {
	result := map[string]family{}
	for part := range artix7.cmts {
		result[part] = artix7
	}
	return result
}()

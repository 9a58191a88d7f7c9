package resource

func pin(name string, dir Direction, invert bool) *Pins {
	return &Pins{Names: []string{name}, Dir: dir, Invert: invert}
}

// ClockResource is a differential clock input running at `hz`.
func ClockResource(name string, number int, p, n string, hz float64, attrs Attrs) Resource {
	return Resource{
		Name:      name,
		Number:    number,
		DiffPairs: &DiffPairs{P: []string{p}, N: []string{n}, Dir: Input},
		ClockHz:   hz,
		Attrs:     attrs,
	}
}

// RGBLEDResource is a three-colour LED with one output per colour.
func RGBLEDResource(number int, r, g, b string, invert bool, attrs Attrs) Resource {
	return Resource{
		Name:   "rgb_led",
		Number: number,
		Subsignals: []Resource{
			{Name: "r", Pins: pin(r, Output, invert)},
			{Name: "g", Pins: pin(g, Output, invert)},
			{Name: "b", Pins: pin(b, Output, invert)},
		},
		Attrs: attrs,
	}
}

// DirectUSBResource is a USB port whose data lines connect straight to FPGA pins.
// An empty `pullup` leaves the pull-up subsignal out.
func DirectUSBResource(name string, number int, dp, dn, pullup string, attrs Attrs) Resource {
	res := Resource{
		Name:   name,
		Number: number,
		Subsignals: []Resource{
			{Name: "d_p", Pins: pin(dp, Bidirectional, false)},
			{Name: "d_n", Pins: pin(dn, Bidirectional, false)},
		},
		Attrs: attrs,
	}
	if pullup != "" {
		res.Subsignals = append(res.Subsignals, Resource{Name: "pullup", Pins: pin(pullup, Output, false)})
	}
	return res
}

// UARTResource is a serial port with receive and transmit lines.
func UARTResource(number int, rx, tx string, attrs Attrs) Resource {
	return Resource{
		Name:   "uart",
		Number: number,
		Subsignals: []Resource{
			{Name: "rx", Pins: pin(rx, Input, false)},
			{Name: "tx", Pins: pin(tx, Output, false)},
		},
		Attrs: attrs,
	}
}

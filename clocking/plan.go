package clocking

// OutputPlan is one divided output of a PLL.
type OutputPlan struct {
	Index         int
	OutputDivider int

	// PhaseDegrees is the phase actually produced, quantised to the device's phase step.
	PhaseDegrees float64
	DutyCycle    float64
	ResultingHz  float64

	// ErrorPPM is the deviation of ResultingHz from the requested frequency.
	ErrorPPM float64

	// Domains lists the clock domains driven by this output, in request order.
	Domains []string
}

// PLLPlan is the configuration of one physical PLL.
type PLLPlan struct {
	ID   int
	Name string

	InputDivider       int
	FeedbackMultiplier int
	VCOHz              float64
	Outputs            []OutputPlan
}

// Domains lists every clock domain served by the PLL, in output order.
func (p PLLPlan) Domains() []string {
	domains := []string{}
	for _, out := range p.Outputs {
		domains = append(domains, out.Domains...)
	}
	return domains
}

// Plan is the resolved frequency plan of a platform.
type Plan struct {
	Reference ReferenceClock
	PLLs      []PLLPlan
}

func (p Plan) clone() Plan {
	result := Plan{Reference: p.Reference, PLLs: make([]PLLPlan, len(p.PLLs))}
	for i, pll := range p.PLLs {
		outputs := make([]OutputPlan, len(pll.Outputs))
		for j, out := range pll.Outputs {
			out.Domains = append([]string(nil), out.Domains...)
			outputs[j] = out
		}
		pll.Outputs = outputs
		result.PLLs[i] = pll
	}
	return result
}

package clocking

import (
	"fmt"
	"math"

	"github.com/TomKeddie/luna/util"
)

// DefaultTolerancePPM is the frequency tolerance applied to requests that do not set one.
const DefaultTolerancePPM = 100

// DefaultDutyCycle is the duty cycle applied to requests that do not set one.
const DefaultDutyCycle = 0.5

// ReferenceClock is the board clock feeding every PLL.
type ReferenceClock struct {
	FrequencyHz float64
}

// PeriodNs returns the period of the reference clock in nanoseconds.
func (r ReferenceClock) PeriodNs() float64 {
	return 1e9 / r.FrequencyHz
}

// DomainRequest asks for one named clock domain running at a target frequency.
type DomainRequest struct {
	Name     string  `yaml:"name"`
	TargetHz float64 `yaml:"frequency"`

	// TolerancePPM is the largest accepted deviation from TargetHz. Zero selects DefaultTolerancePPM.
	TolerancePPM float64 `yaml:"tolerance_ppm"`

	// PhaseDegrees is the requested phase offset relative to the feedback clock.
	PhaseDegrees float64 `yaml:"phase"`

	// DutyCycle is the requested duty cycle. Zero selects DefaultDutyCycle.
	DutyCycle float64 `yaml:"duty_cycle"`
}

func (r DomainRequest) withDefaults() DomainRequest {
	if r.TolerancePPM == 0 {
		r.TolerancePPM = DefaultTolerancePPM
	}
	if r.DutyCycle == 0 {
		r.DutyCycle = DefaultDutyCycle
	}
	return r
}

func (r DomainRequest) validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("clock domain without a name")
	case !(r.TargetHz > 0) || math.IsInf(r.TargetHz, 0):
		return fmt.Errorf("clock domain '%s' has invalid frequency %g Hz", r.Name, r.TargetHz)
	case !(r.TolerancePPM >= 0) || math.IsInf(r.TolerancePPM, 0):
		return fmt.Errorf("clock domain '%s' has invalid tolerance %g ppm", r.Name, r.TolerancePPM)
	case !(r.DutyCycle > 0 && r.DutyCycle < 1):
		return fmt.Errorf("clock domain '%s' has duty cycle %g outside of (0, 1)", r.Name, r.DutyCycle)
	case !(r.PhaseDegrees > -360 && r.PhaseDegrees < 360):
		return fmt.Errorf("clock domain '%s' has phase %g outside of (-360, 360) degrees", r.Name, r.PhaseDegrees)
	}
	return nil
}

// normalizeRequests applies defaults and checks that names are unique.
func normalizeRequests(requests []DomainRequest) ([]DomainRequest, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("no clock domains requested")
	}

	names := util.NewOrderedMap[string, int]()
	result := make([]DomainRequest, 0, len(requests))
	for idx, req := range requests {
		req = req.withDefaults()
		if err := req.validate(); err != nil {
			return nil, err
		}
		if err := names.Insert(req.Name, idx); err != nil {
			return nil, fmt.Errorf("clock domain '%s' is requested more than once", req.Name)
		}
		result = append(result, req)
	}
	return result, nil
}

// errorPPM returns the deviation of `actual` from `target` in parts per million.
func errorPPM(actual, target float64) float64 {
	return math.Abs(actual-target) / target * 1e6
}

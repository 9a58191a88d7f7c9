package clocking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFrequencyUnreachable matches errors raised when no integer divider combination meets a tolerance.
	ErrFrequencyUnreachable = errors.New("frequency unreachable")

	// ErrInsufficientPLLResources matches errors raised when a plan needs more PLLs than the device has.
	ErrInsufficientPLLResources = errors.New("insufficient PLL resources")

	// ErrUnboundClockDomain matches errors raised when a domain is referenced that the plan does not provide.
	ErrUnboundClockDomain = errors.New("unbound clock domain")
)

// FrequencyUnreachableError names the domain that cannot be clocked and the closest frequency the device can produce.
type FrequencyUnreachableError struct {
	Domain       string
	TargetHz     float64
	TolerancePPM float64

	// BestHz is the closest achievable frequency, or zero if the reference clock cannot drive any PLL.
	BestHz float64
}

func (e *FrequencyUnreachableError) Error() string {
	if e.BestHz == 0 {
		return fmt.Sprintf("%s: clock domain '%s' (%s): no valid PLL configuration for this reference clock",
			ErrFrequencyUnreachable, e.Domain, FormatHz(e.TargetHz))
	}
	return fmt.Sprintf("%s: clock domain '%s' wants %s within %g ppm, best achievable is %s (%.1f ppm off)",
		ErrFrequencyUnreachable, e.Domain, FormatHz(e.TargetHz), e.TolerancePPM,
		FormatHz(e.BestHz), errorPPM(e.BestHz, e.TargetHz))
}

func (e *FrequencyUnreachableError) Is(target error) bool {
	return target == ErrFrequencyUnreachable
}

// InsufficientPLLResourcesError reports the frequency groups that did not fit on the device.
type InsufficientPLLResourcesError struct {
	Available int
	Required  int

	// Unsatisfied lists, per group left without a PLL, the domains of that group.
	Unsatisfied [][]string
}

func (e *InsufficientPLLResourcesError) Error() string {
	groups := []string{}
	for _, group := range e.Unsatisfied {
		groups = append(groups, "{"+strings.Join(group, ", ")+"}")
	}
	return fmt.Sprintf("%s: the requested clock domains need %d PLLs, the device has %d; unsatisfied groups: %s",
		ErrInsufficientPLLResources, e.Required, e.Available, strings.Join(groups, " "))
}

func (e *InsufficientPLLResourcesError) Is(target error) bool {
	return target == ErrInsufficientPLLResources
}

// UnboundClockDomainError is returned when a consumer references a domain that has no binding.
type UnboundClockDomainError struct {
	Domain string
	Known  []string
}

func (e *UnboundClockDomainError) Error() string {
	return fmt.Sprintf("%s: '%s' (known domains: %s)", ErrUnboundClockDomain, e.Domain, strings.Join(e.Known, ", "))
}

func (e *UnboundClockDomainError) Is(target error) bool {
	return target == ErrUnboundClockDomain
}

// FormatHz renders a frequency with a readable unit.
func FormatHz(hz float64) string {
	switch {
	case hz >= 1e9:
		return fmt.Sprintf("%g GHz", hz/1e9)
	case hz >= 1e6:
		return fmt.Sprintf("%g MHz", hz/1e6)
	case hz >= 1e3:
		return fmt.Sprintf("%g kHz", hz/1e3)
	}
	return fmt.Sprintf("%g Hz", hz)
}

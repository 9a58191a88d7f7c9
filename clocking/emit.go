package clocking

import (
	"fmt"
	"strconv"

	"github.com/TomKeddie/luna/device"
)

// Fixed policy defaults for every emitted PLL.
const (
	Bandwidth    = "OPTIMIZED"
	Compensation = "ZHOLD"
	StartupWait  = "FALSE"
)

// Param is one named configuration parameter of a primitive instance.
type Param struct {
	Name  string
	Value interface{}
}

// Literal renders the parameter value the way HDL and Tcl expect it: strings
// quoted, integers verbatim, reals with three decimals.
func (p Param) Literal() string {
	switch v := p.Value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return fmt.Sprintf("%v", p.Value)
}

// PortDir is the direction of an instance port.
type PortDir string

const (
	In  PortDir = "i"
	Out PortDir = "o"
)

// Port connects one instance port to a net.
type Port struct {
	Dir  PortDir
	Name string
	Net  string
}

// Instance describes one primitive to be instantiated by the build system.
type Instance struct {
	Primitive string
	Name      string
	Params    []Param
	Ports     []Port
}

// Param returns the named parameter.
func (i Instance) Param(name string) (Param, bool) {
	for _, p := range i.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Port returns the named port.
func (i Instance) Port(name string) (Port, bool) {
	for _, p := range i.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// FeedbackNet names the net closing the feedback loop of a PLL.
func FeedbackNet(pll PLLPlan) string {
	return pll.Name + "_feedback"
}

// LockNet names the lock indicator of a PLL.
func LockNet(pll PLLPlan) string {
	return pll.Name + "_locked"
}

// OutputNet names the net driven by output `index` of a PLL.
func OutputNet(pll PLLPlan, index int) string {
	return fmt.Sprintf("%s_clkout%d", pll.Name, index)
}

// Emit turns a PLL plan into an instance of `primitive` driven by the net `refNet`.
func Emit(pll PLLPlan, ref ReferenceClock, primitive, refNet string) Instance {
	inst := Instance{
		Primitive: primitive,
		Name:      pll.Name,
		Params: []Param{
			{"BANDWIDTH", Bandwidth},
			{"COMPENSATION", Compensation},
			{"STARTUP_WAIT", StartupWait},
			{"DIVCLK_DIVIDE", pll.InputDivider},
			{"CLKFBOUT_MULT", pll.FeedbackMultiplier},
			{"CLKFBOUT_PHASE", 0.0},
		},
	}
	for _, out := range pll.Outputs {
		inst.Params = append(inst.Params,
			Param{fmt.Sprintf("CLKOUT%d_DIVIDE", out.Index), out.OutputDivider},
			Param{fmt.Sprintf("CLKOUT%d_PHASE", out.Index), out.PhaseDegrees},
			Param{fmt.Sprintf("CLKOUT%d_DUTY_CYCLE", out.Index), out.DutyCycle},
		)
	}
	inst.Params = append(inst.Params, Param{"CLKIN1_PERIOD", ref.PeriodNs()})

	// The feedback output always loops back into the same PLL.
	feedback := FeedbackNet(pll)
	inst.Ports = []Port{
		{In, "CLKFBIN", feedback},
		{Out, "CLKFBOUT", feedback},
		{In, "CLKIN1", refNet},
	}
	for _, out := range pll.Outputs {
		inst.Ports = append(inst.Ports, Port{Out, fmt.Sprintf("CLKOUT%d", out.Index), OutputNet(pll, out.Index)})
	}
	inst.Ports = append(inst.Ports, Port{Out, "LOCKED", LockNet(pll)})
	return inst
}

// EmitAll emits one instance per PLL of the plan, refusing plans larger than the device.
func EmitAll(plan Plan, pll device.PLL, refNet string) ([]Instance, error) {
	if len(plan.PLLs) > pll.Count {
		unsatisfied := [][]string{}
		for _, p := range plan.PLLs[pll.Count:] {
			unsatisfied = append(unsatisfied, p.Domains())
		}
		return nil, &InsufficientPLLResourcesError{
			Available:   pll.Count,
			Required:    len(plan.PLLs),
			Unsatisfied: unsatisfied,
		}
	}

	instances := []Instance{}
	for _, p := range plan.PLLs {
		instances = append(instances, Emit(p, plan.Reference, pll.Primitive, refNet))
	}
	return instances, nil
}

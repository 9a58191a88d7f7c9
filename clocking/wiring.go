package clocking

import (
	"fmt"

	"github.com/TomKeddie/luna/device"
	"github.com/TomKeddie/luna/util"
)

// Binding ties a clock domain to the PLL output driving it.
type Binding struct {
	Domain      string
	PLL         int
	Instance    string
	OutputIndex int

	// ClockNet is the PLL output; ClockSignal is the domain clock it drives.
	ClockNet    string
	ClockSignal string
	LockNet     string

	// ResetNet is driven by the negated LockNet: asserted until the PLL locks.
	ResetNet string
}

// ClockSignal names the clock net of a domain.
func ClockSignal(domain string) string {
	return domain + "_clk"
}

// ResetSignal names the reset net of a domain.
func ResetSignal(domain string) string {
	return domain + "_rst"
}

// LockState is the state of a lock group.
type LockState int

const (
	// Unlocked holds every domain of the group in reset.
	Unlocked LockState = iota
	// Locked releases the resets of the group.
	Locked
)

func (s LockState) String() string {
	if s == Locked {
		return "LOCKED"
	}
	return "UNLOCKED"
}

// DomainReset is the reset level of one domain.
type DomainReset struct {
	Domain   string
	Asserted bool
}

// Transition is the effect of one lock observation on a group.
type Transition struct {
	From, To LockState
	Resets   []DomainReset
}

// Changed reports whether the observation moved the group to another state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// LockGroup is the set of domains sharing one PLL's lock signal. The domains
// leave and re-enter reset together; there is no per-domain reset.
type LockGroup struct {
	PLL      int
	Instance string
	LockNet  string
	Domains  []string

	state LockState
}

// State returns the current state of the group. Groups start unlocked.
func (g *LockGroup) State() LockState {
	return g.state
}

// ResetAsserted reports the reset level shared by every domain in the group.
func (g *LockGroup) ResetAsserted() bool {
	return g.state != Locked
}

// Observe feeds one sample of the PLL lock indicator into the group.
func (g *LockGroup) Observe(locked bool) Transition {
	t := Transition{From: g.state}
	if locked {
		g.state = Locked
	} else {
		g.state = Unlocked
	}
	t.To = g.state
	for _, domain := range g.Domains {
		t.Resets = append(t.Resets, DomainReset{Domain: domain, Asserted: g.ResetAsserted()})
	}
	return t
}

// Clocking is the frozen result of resolving, emitting, and wiring a platform's clocks.
type Clocking struct {
	plan      Plan
	instances []Instance
	order     []string
	bindings  util.OrderedMap[string, Binding]
	groups    []LockGroup
}

// Wire binds every domain of the plan to its PLL output and lock signal.
func Wire(plan Plan, instances []Instance) (*Clocking, error) {
	if len(instances) != len(plan.PLLs) {
		return nil, fmt.Errorf("%d PLL instances for %d planned PLLs", len(instances), len(plan.PLLs))
	}

	c := &Clocking{
		plan:      plan.clone(),
		instances: instances,
		bindings:  util.NewOrderedMap[string, Binding](),
	}
	for _, pll := range c.plan.PLLs {
		group := LockGroup{PLL: pll.ID, Instance: pll.Name, LockNet: LockNet(pll)}
		for _, out := range pll.Outputs {
			for _, domain := range out.Domains {
				binding := Binding{
					Domain:      domain,
					PLL:         pll.ID,
					Instance:    pll.Name,
					OutputIndex: out.Index,
					ClockNet:    OutputNet(pll, out.Index),
					ClockSignal: ClockSignal(domain),
					LockNet:     LockNet(pll),
					ResetNet:    ResetSignal(domain),
				}
				if err := c.bindings.Insert(domain, binding); err != nil {
					return nil, fmt.Errorf("clock domain '%s' is bound twice", domain)
				}
				c.order = append(c.order, domain)
				group.Domains = append(group.Domains, domain)
			}
		}
		c.groups = append(c.groups, group)
	}
	return c, nil
}

// Synthesize resolves, emits, and wires the requested domains in one step.
func Synthesize(ref ReferenceClock, requests []DomainRequest, pll device.PLL, refNet string) (*Clocking, error) {
	plan, err := NewResolver(ref, pll).Resolve(requests)
	if err != nil {
		return nil, err
	}
	instances, err := EmitAll(plan, pll, refNet)
	if err != nil {
		return nil, err
	}
	c, err := Wire(plan, instances)
	if err != nil {
		return nil, err
	}

	// Bindings are in PLL order; report them in request order.
	order := []string{}
	for _, req := range requests {
		order = append(order, req.Name)
	}
	c.order = order
	return c, nil
}

// Plan returns a copy of the resolved plan.
func (c *Clocking) Plan() Plan {
	return c.plan.clone()
}

// Instances returns the emitted PLL instances.
func (c *Clocking) Instances() []Instance {
	result := make([]Instance, len(c.instances))
	for i, inst := range c.instances {
		inst.Params = append([]Param(nil), inst.Params...)
		inst.Ports = append([]Port(nil), inst.Ports...)
		result[i] = inst
	}
	return result
}

// Binding returns the binding of a domain.
func (c *Clocking) Binding(domain string) (Binding, error) {
	binding, ok := c.bindings.Lookup(domain)
	if !ok {
		return Binding{}, &UnboundClockDomainError{Domain: domain, Known: c.bindings.Keys()}
	}
	return binding, nil
}

// Bindings returns every binding in request order.
func (c *Clocking) Bindings() []Binding {
	result := []Binding{}
	for _, domain := range c.order {
		binding, _ := c.bindings.Lookup(domain)
		result = append(result, binding)
	}
	return result
}

// Require checks that every named domain is bound.
func (c *Clocking) Require(domains ...string) error {
	for _, domain := range domains {
		if _, err := c.Binding(domain); err != nil {
			return err
		}
	}
	return nil
}

// LockGroups returns fresh, unlocked copies of the lock groups in PLL order.
func (c *Clocking) LockGroups() []LockGroup {
	result := make([]LockGroup, len(c.groups))
	for i, g := range c.groups {
		g.Domains = append([]string(nil), g.Domains...)
		g.state = Unlocked
		result[i] = g
	}
	return result
}

// LockGroupOf returns the lock group a domain belongs to.
func (c *Clocking) LockGroupOf(domain string) (LockGroup, error) {
	binding, err := c.Binding(domain)
	if err != nil {
		return LockGroup{}, err
	}
	return c.LockGroups()[binding.PLL], nil
}

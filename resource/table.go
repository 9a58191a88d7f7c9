package resource

import (
	"fmt"
	"sort"

	"github.com/TomKeddie/luna/util"
)

// Table holds the resources of a board in declaration order.
type Table struct {
	byKey util.OrderedMap[string, int]
	order []Resource
}

func key(name string, number int) string {
	return fmt.Sprintf("%s#%d", name, number)
}

// NewTable validates and adds every resource.
func NewTable(resources ...Resource) (*Table, error) {
	t := &Table{byKey: util.NewOrderedMap[string, int]()}
	for _, r := range resources {
		if err := t.Add(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add appends a resource, rejecting a second resource with the same name and number.
func (t *Table) Add(r Resource) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	if err := t.byKey.Insert(key(r.Name, r.Number), len(t.order)); err != nil {
		return fmt.Errorf("resource '%s' number %d is declared twice", r.Name, r.Number)
	}
	t.order = append(t.order, r)
	return nil
}

// Len returns the number of resources.
func (t *Table) Len() int {
	return len(t.order)
}

// Resources returns the resources in declaration order.
func (t *Table) Resources() []Resource {
	return append([]Resource(nil), t.order...)
}

// Lookup returns the resource with the given name and number.
func (t *Table) Lookup(name string, number int) (Resource, error) {
	idx, ok := t.byKey.Lookup(key(name, number))
	if !ok {
		return Resource{}, fmt.Errorf("no resource '%s' number %d", name, number)
	}
	return t.order[idx], nil
}

// Clock returns the frequency annotation of the clock resource `name` number 0.
func (t *Table) Clock(name string) (float64, error) {
	r, err := t.Lookup(name, 0)
	if err != nil {
		return 0, err
	}
	if r.ClockHz == 0 {
		return 0, fmt.Errorf("resource '%s' has no clock frequency", name)
	}
	return r.ClockHz, nil
}

// PinConstraint places one top-level port bit on a package pin.
type PinConstraint struct {
	Port   string
	Pin    string
	Dir    Direction
	Invert bool
	Attrs  []util.OrderedMapEntry[string, string]
}

// ClockConstraint declares the period of a clock input port.
type ClockConstraint struct {
	Port     string
	PeriodNs float64
}

// PinConstraints flattens every resource into per-pin constraints in declaration order.
func (t *Table) PinConstraints() []PinConstraint {
	result := []PinConstraint{}
	for i := range t.order {
		r := &t.order[i]
		result = flatten(result, r, r.PortName(), nil)
	}
	return result
}

// ClockConstraints lists the clock inputs of the board in declaration order.
func (t *Table) ClockConstraints() []ClockConstraint {
	result := []ClockConstraint{}
	for _, r := range t.order {
		if r.ClockHz == 0 {
			continue
		}
		port := r.PortName()
		if r.DiffPairs != nil {
			port = bitName(port+"_p", 0, len(r.DiffPairs.P))
		} else if r.Pins != nil {
			port = bitName(port, 0, len(r.Pins.Names))
		}
		result = append(result, ClockConstraint{Port: port, PeriodNs: 1e9 / r.ClockHz})
	}
	return result
}

func bitName(port string, idx, width int) string {
	if width == 1 {
		return port
	}
	return fmt.Sprintf("%s[%d]", port, idx)
}

func mergeAttrs(parent, own Attrs) Attrs {
	merged := Attrs{}
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

func sortedAttrs(attrs Attrs) []util.OrderedMapEntry[string, string] {
	m := util.NewOrderedMapFrom(map[string]string(attrs))
	entries := m.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		// IOSTANDARD leads so the constraint files read like hand-written ones.
		return entries[i].Key == "IOSTANDARD" && entries[j].Key != "IOSTANDARD"
	})
	return entries
}

func flatten(result []PinConstraint, r *Resource, port string, inherited Attrs) []PinConstraint {
	attrs := mergeAttrs(inherited, r.Attrs)
	switch {
	case r.Pins != nil:
		for idx, name := range r.Pins.Names {
			result = append(result, PinConstraint{
				Port:   bitName(port, idx, len(r.Pins.Names)),
				Pin:    name,
				Dir:    r.Pins.Dir,
				Invert: r.Pins.Invert,
				Attrs:  sortedAttrs(attrs),
			})
		}
	case r.DiffPairs != nil:
		width := len(r.DiffPairs.P)
		for idx := range r.DiffPairs.P {
			result = append(result,
				PinConstraint{Port: bitName(port+"_p", idx, width), Pin: r.DiffPairs.P[idx], Dir: r.DiffPairs.Dir, Attrs: sortedAttrs(attrs)},
				PinConstraint{Port: bitName(port+"_n", idx, width), Pin: r.DiffPairs.N[idx], Dir: r.DiffPairs.Dir, Attrs: sortedAttrs(attrs)},
			)
		}
	}
	for i := range r.Subsignals {
		sub := &r.Subsignals[i]
		result = flatten(result, sub, port+"__"+sub.Name, attrs)
	}
	return result
}

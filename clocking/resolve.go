package clocking

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/TomKeddie/luna/device"
	"github.com/TomKeddie/luna/log"
	"github.com/TomKeddie/luna/util"
)

// maxDistinctOutputs bounds the exhaustive grouping search.
const maxDistinctOutputs = 16

// Comparisons of accumulated float costs ignore differences below this.
const costEpsilon = 1e-9

// Resolver computes PLL configurations for a set of clock domain requests.
type Resolver struct {
	ref ReferenceClock
	pll device.PLL
}

// NewResolver creates a resolver for PLLs of kind `pll` fed by `ref`.
func NewResolver(ref ReferenceClock, pll device.PLL) *Resolver {
	return &Resolver{ref: ref, pll: pll}
}

// output is one distinct (frequency, phase, duty) combination. Requests that
// agree on all three share a single PLL output.
type output struct {
	targetHz     float64
	phaseDegrees float64
	dutyCycle    float64
	tolerancePPM float64
	requests     []int
}

func (o output) first() int {
	return o.requests[0]
}

// cost orders candidate solutions; see less.
type cost struct {
	plls       int
	phaseError float64
	errorPPM   float64
	vcoHz      float64
}

func (c cost) add(o cost) cost {
	return cost{
		plls:       c.plls + o.plls,
		phaseError: c.phaseError + o.phaseError,
		errorPPM:   c.errorPPM + o.errorPPM,
		vcoHz:      c.vcoHz + o.vcoHz,
	}
}

// less prefers fewer PLLs, then less phase error, then less frequency error, then lower VCO frequencies.
func (c cost) less(o cost) bool {
	if c.plls != o.plls {
		return c.plls < o.plls
	}
	if math.Abs(c.phaseError-o.phaseError) > costEpsilon {
		return c.phaseError < o.phaseError
	}
	if math.Abs(c.errorPPM-o.errorPPM) > costEpsilon {
		return c.errorPPM < o.errorPPM
	}
	if math.Abs(c.vcoHz-o.vcoHz) > costEpsilon {
		return c.vcoHz < o.vcoHz
	}
	return false
}

// groupSolution is the best configuration of one PLL serving a set of outputs.
type groupSolution struct {
	inputDivider       int
	feedbackMultiplier int
	vcoHz              float64
	dividers           map[int]int
	phases             map[int]float64
	cost               cost
}

// Resolve groups the requests onto as few PLLs as possible and computes every divider.
func (r *Resolver) Resolve(requests []DomainRequest) (Plan, error) {
	if err := r.pll.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid PLL metadata: %w", err)
	}
	if r.ref.FrequencyHz < r.pll.InputMinHz || r.ref.FrequencyHz > r.pll.InputMaxHz {
		return Plan{}, fmt.Errorf("reference clock %s is outside of the PLL input range [%s, %s]",
			FormatHz(r.ref.FrequencyHz), FormatHz(r.pll.InputMinHz), FormatHz(r.pll.InputMaxHz))
	}

	requests, err := normalizeRequests(requests)
	if err != nil {
		return Plan{}, err
	}

	outputs := collectOutputs(requests)
	if len(outputs) > maxDistinctOutputs {
		return Plan{}, fmt.Errorf("%d distinct clock outputs requested, at most %d are supported", len(outputs), maxDistinctOutputs)
	}
	log.Debug("Resolving %d clock domains onto %d distinct outputs.\n", len(requests), len(outputs))

	// Every output must at least be reachable on a dedicated PLL.
	for idx, out := range outputs {
		if r.solveGroup(outputs, 1<<idx) == nil {
			req := requests[out.first()]
			return Plan{}, &FrequencyUnreachableError{
				Domain:       req.Name,
				TargetHz:     req.TargetHz,
				TolerancePPM: out.tolerancePPM,
				BestHz:       r.closest(out),
			}
		}
	}

	groups := r.searchGroups(outputs)
	log.Debug("Smallest grouping uses %d PLLs, %d available.\n", len(groups), r.pll.Count)

	if len(groups) > r.pll.Count {
		unsatisfied := [][]string{}
		for _, group := range groups[r.pll.Count:] {
			unsatisfied = append(unsatisfied, groupDomains(requests, outputs, group.mask))
		}
		return Plan{}, &InsufficientPLLResourcesError{
			Available:   r.pll.Count,
			Required:    len(groups),
			Unsatisfied: unsatisfied,
		}
	}

	plan := Plan{Reference: r.ref}
	for id, group := range groups {
		plan.PLLs = append(plan.PLLs, r.buildPLL(id, requests, outputs, group))
	}
	return plan, nil
}

func collectOutputs(requests []DomainRequest) []output {
	outputs := []output{}
	for idx, req := range requests {
		shared := false
		for i := range outputs {
			out := &outputs[i]
			if out.targetHz == req.TargetHz && out.phaseDegrees == req.PhaseDegrees && out.dutyCycle == req.DutyCycle {
				out.requests = append(out.requests, idx)
				out.tolerancePPM = math.Min(out.tolerancePPM, req.TolerancePPM)
				shared = true
				break
			}
		}
		if !shared {
			outputs = append(outputs, output{
				targetHz:     req.TargetHz,
				phaseDegrees: req.PhaseDegrees,
				dutyCycle:    req.DutyCycle,
				tolerancePPM: req.TolerancePPM,
				requests:     []int{idx},
			})
		}
	}
	return outputs
}

type chosenGroup struct {
	mask     uint32
	solution *groupSolution
}

// searchGroups finds the cheapest partition of the outputs into PLL-sized groups.
// Partitions are built by dynamic programming over subsets: best[mask] is the
// cheapest way to cover exactly the outputs in mask.
func (r *Resolver) searchGroups(outputs []output) []chosenGroup {
	n := len(outputs)
	full := uint32(1)<<n - 1

	solutions := make([]*groupSolution, full+1)
	for mask := uint32(1); mask <= full; mask++ {
		if bits.OnesCount32(mask) > r.pll.OutputsPerPLL {
			continue
		}
		// A group is only feasible if every smaller group inside it is.
		feasible := true
		for rest := mask; rest != 0; rest &= rest - 1 {
			sub := mask &^ (rest & -rest)
			if sub != 0 && solutions[sub] == nil {
				feasible = false
				break
			}
		}
		if feasible {
			solutions[mask] = r.solveGroup(outputs, mask)
		}
	}

	type cover struct {
		valid  bool
		cost   cost
		choice uint32
	}
	best := make([]cover, full+1)
	best[0] = cover{valid: true}
	for mask := uint32(1); mask <= full; mask++ {
		low := mask & -mask
		rest := mask ^ low
		for sub := rest; ; sub = (sub - 1) & rest {
			group := sub | low
			if solutions[group] != nil && best[mask^group].valid {
				candidate := best[mask^group].cost.add(solutions[group].cost)
				if !best[mask].valid || candidate.less(best[mask].cost) {
					best[mask] = cover{valid: true, cost: candidate, choice: group}
				}
			}
			if sub == 0 {
				break
			}
		}
	}

	groups := []chosenGroup{}
	for mask := full; mask != 0; mask ^= best[mask].choice {
		group := best[mask].choice
		groups = append(groups, chosenGroup{mask: group, solution: solutions[group]})
	}
	// PLLs are numbered by the earliest request they serve.
	return util.SliceOrderedBy(groups, func(g *chosenGroup) int {
		return firstRequest(outputs, g.mask)
	})
}

func firstRequest(outputs []output, mask uint32) int {
	first := math.MaxInt32
	for idx := range outputs {
		if mask&(1<<idx) != 0 && outputs[idx].first() < first {
			first = outputs[idx].first()
		}
	}
	return first
}

func groupDomains(requests []DomainRequest, outputs []output, mask uint32) []string {
	indices := []int{}
	for idx, out := range outputs {
		if mask&(1<<idx) != 0 {
			indices = append(indices, out.requests...)
		}
	}
	sort.Ints(indices)
	domains := []string{}
	for _, idx := range indices {
		domains = append(domains, requests[idx].Name)
	}
	return domains
}

// validVCOs calls fn for every legal (input divider, feedback multiplier) pair, in ascending order.
func (r *Resolver) validVCOs(fn func(d, m int, vcoHz float64)) {
	for d := r.pll.InputDivider.Min; d <= r.pll.InputDivider.Max; d++ {
		pfd := r.ref.FrequencyHz / float64(d)
		if pfd < r.pll.PFDMinHz || pfd > r.pll.PFDMaxHz {
			continue
		}
		for m := r.pll.FeedbackMultiplier.Min; m <= r.pll.FeedbackMultiplier.Max; m++ {
			vco := r.ref.FrequencyHz * float64(m) / float64(d)
			if vco < r.pll.VCOMinHz || vco > r.pll.VCOMaxHz {
				continue
			}
			fn(d, m, vco)
		}
	}
}

// divider returns the smallest output divider producing out.targetHz from vcoHz within tolerance.
func (r *Resolver) divider(out output, vcoHz float64) (int, bool) {
	tolerance := out.tolerancePPM * 1e-6
	lowest := int(math.Ceil(vcoHz/(out.targetHz*(1+tolerance)) - costEpsilon))
	if lowest < r.pll.OutputDivider.Min {
		lowest = r.pll.OutputDivider.Min
	}
	for o := lowest; o <= r.pll.OutputDivider.Max; o++ {
		hz := vcoHz / float64(o)
		if hz < out.targetHz*(1-tolerance)*(1-costEpsilon) {
			break
		}
		if errorPPM(hz, out.targetHz) > out.tolerancePPM+costEpsilon {
			continue
		}
		// The datasheet only allows a 50% duty cycle when the output is not divided.
		if o == 1 && out.dutyCycle != DefaultDutyCycle {
			continue
		}
		return o, true
	}
	return 0, false
}

// quantizePhase rounds a phase to the resolution available on an output divided by o.
func (r *Resolver) quantizePhase(phase float64, o int) float64 {
	steps := float64(r.pll.PhaseStepsPerVCOPeriod * o)
	return math.Round(phase*steps/360) * 360 / steps
}

// solveGroup finds the best single-PLL configuration for the outputs in mask, or nil.
func (r *Resolver) solveGroup(outputs []output, mask uint32) *groupSolution {
	var best *groupSolution
	r.validVCOs(func(d, m int, vco float64) {
		candidate := &groupSolution{
			inputDivider:       d,
			feedbackMultiplier: m,
			vcoHz:              vco,
			dividers:           map[int]int{},
			phases:             map[int]float64{},
			cost:               cost{plls: 1, vcoHz: vco},
		}
		for idx, out := range outputs {
			if mask&(1<<idx) == 0 {
				continue
			}
			o, ok := r.divider(out, vco)
			if !ok {
				return
			}
			phase := r.quantizePhase(out.phaseDegrees, o)
			candidate.dividers[idx] = o
			candidate.phases[idx] = phase
			candidate.cost.phaseError += math.Abs(phase - out.phaseDegrees)
			candidate.cost.errorPPM += errorPPM(vco/float64(o), out.targetHz)
		}
		if best == nil || candidate.cost.less(best.cost) {
			best = candidate
		}
	})
	return best
}

// closest returns the achievable frequency nearest to out.targetHz, ignoring tolerance.
func (r *Resolver) closest(out output) float64 {
	best := 0.0
	r.validVCOs(func(d, m int, vco float64) {
		for o := r.pll.OutputDivider.Min; o <= r.pll.OutputDivider.Max; o++ {
			hz := vco / float64(o)
			if best == 0 || math.Abs(hz-out.targetHz) < math.Abs(best-out.targetHz) {
				best = hz
			}
		}
	})
	return best
}

func (r *Resolver) buildPLL(id int, requests []DomainRequest, outputs []output, group chosenGroup) PLLPlan {
	members := []int{}
	for idx := range outputs {
		if group.mask&(1<<idx) != 0 {
			members = append(members, idx)
		}
	}
	sort.Slice(members, func(i, j int) bool { return outputs[members[i]].first() < outputs[members[j]].first() })

	sol := group.solution
	pll := PLLPlan{
		ID:                 id,
		Name:               requests[outputs[members[0]].first()].Name + "_pll",
		InputDivider:       sol.inputDivider,
		FeedbackMultiplier: sol.feedbackMultiplier,
		VCOHz:              sol.vcoHz,
	}
	for index, idx := range members {
		out := outputs[idx]
		domains := []string{}
		for _, req := range out.requests {
			domains = append(domains, requests[req].Name)
		}
		hz := sol.vcoHz / float64(sol.dividers[idx])
		pll.Outputs = append(pll.Outputs, OutputPlan{
			Index:         index,
			OutputDivider: sol.dividers[idx],
			PhaseDegrees:  sol.phases[idx],
			DutyCycle:     out.dutyCycle,
			ResultingHz:   hz,
			ErrorPPM:      errorPPM(hz, out.targetHz),
			Domains:       domains,
		})
	}
	return pll
}

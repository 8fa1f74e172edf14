package trajectory

import (
	"fmt"

	"carrymap/internal/core"
)

// Outcome is the terminal state of one trajectory.
type Outcome int

const (
	// Converged means the orbit reached 1, or dropped below its seed when
	// the sweep runs under the drop rule.
	Converged Outcome = iota
	// CycleDetected means a value recurred without the orbit reaching 1.
	CycleDetected
	// CapExceeded means the odd-step budget or the pair-width cap ran out.
	CapExceeded
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "CONVERGED"
	case CycleDetected:
		return "CYCLE-DETECTED"
	default:
		return "CAP-EXCEEDED"
	}
}

// Result summarizes one seed's walk to its terminal.
type Result struct {
	Outcome      Outcome
	OddSteps     uint64
	Halvings     uint64 // sum of d over the walk
	StoppingTime uint64 // OddSteps + Halvings when settled, else 0
	CycleLength  uint64 // set when Outcome == CycleDetected
	MaxPairs     int    // widest value met, in pairs
	Detail       string // anomaly detail for non-converged outcomes
}

// Walker steps seeds to their terminals through the three tiers: native
// double-word arithmetic while x*n+1 fits 128 bits, four-word arithmetic to
// 256, then the packed scan. Promotion happens in place and is invisible in
// the results.
type Walker struct {
	m         core.MapConstant
	maxSteps  uint64
	rule      core.StopRule
	useNative bool
	limit     core.Uint128 // largest native value x*n+1 still fits
}

// NewWalker builds a walker for one sweep configuration.
func NewWalker(m core.MapConstant, cfg core.SweepConfig) *Walker {
	return &Walker{
		m:         m,
		maxSteps:  cfg.MaxSteps,
		rule:      cfg.Rule,
		useNative: cfg.UseNative,
		limit:     core.MaxMapInput128(m.X()),
	}
}

// Seed walks one odd seed to its terminal. When tally is non-nil every
// step's classification and shift fold into it; the caller's batching
// decides which whole seeds a tally covers, never partial ones.
//
// Cycles are caught with Brent's method: compare against a checkpoint that
// moves forward at power-of-two step counts, so any cycle of length L is
// found within 2L steps of entering it.
func (w *Walker) Seed(n uint64, tally *Tally) Result {
	res := Result{MaxPairs: 1}
	if n == 1 {
		res.Outcome = Converged
		return res
	}

	cur := valueFrom64(n)
	if !w.useNative {
		cur = cur.toPacked()
	}
	res.MaxPairs = cur.pairWidth()

	check := cur
	var power, lam uint64 = 1, 0

	for res.OddSteps < w.maxSteps {
		d := w.step(&cur, tally)
		res.OddSteps++
		res.Halvings += uint64(d)
		if tally != nil {
			tally.addD(d)
		}
		if pw := cur.pairWidth(); pw > res.MaxPairs {
			res.MaxPairs = pw
		}

		if cur.isOne() || (w.rule == core.StopBelowStart && cur.below64(n)) {
			res.Outcome = Converged
			res.StoppingTime = res.OddSteps + res.Halvings
			return res
		}
		if cur.pairWidth() > core.MaxPairCount {
			res.Outcome = CapExceeded
			res.Detail = fmt.Sprintf("width cap: %d pairs after %d odd steps", cur.pairWidth(), res.OddSteps)
			return res
		}

		if cur.equal(check) {
			res.Outcome = CycleDetected
			res.CycleLength = lam + 1
			res.Detail = fmt.Sprintf("cycle of length %d through %s", lam+1, cur)
			return res
		}
		lam++
		if lam == power {
			check = cur
			power <<= 1
			lam = 0
		}
	}

	res.Outcome = CapExceeded
	res.Detail = fmt.Sprintf("odd-step cap %d reached", w.maxSteps)
	return res
}

// step advances v by one map application, promoting tiers as needed, and
// returns d. The result of a step is always odd.
func (w *Walker) step(v *value, tally *Tally) int {
	if v.tier == tierNative {
		if v.u128.Cmp(w.limit) <= 0 {
			if tally != nil {
				tally.Stats.AccumulateValue(w.m, v.u128.Bit, v.u128.BitLen())
			}
			xn1, ok := v.u128.Mul64(w.m.X())
			if ok {
				xn1, ok = xn1.Add64(1)
			}
			if !ok {
				panic("trajectory: native multiply overflowed under its guard")
			}
			d := xn1.TrailingZeros()
			v.u128 = xn1.Shr(d)
			return d
		}
		v.tier = tierWide
		v.u256 = core.U256From128(v.u128)
	}

	if v.tier == tierWide {
		// Stats fold in only if the step happens in this tier; otherwise
		// the packed step below classifies the same value.
		xn1, ok := v.u256.Mul64(w.m.X())
		if ok {
			var okAdd bool
			xn1, okAdd = xn1.AddOne()
			if okAdd {
				if tally != nil {
					tally.Stats.AccumulateValue(w.m, v.u256.Bit, v.u256.BitLen())
				}
				d := xn1.TrailingZeros()
				v.u256 = xn1.Shr(d)
				return d
			}
		}
		v.tier = tierPacked
		v.pair = v.u256.Pair()
	}

	collect := tally != nil
	var res core.StepResult
	switch w.m.X() {
	case 3:
		res = core.PackedStep3(v.pair, collect)
	case 5:
		res = core.PackedStep5(v.pair, collect)
	default:
		res = core.PackedStep(v.pair, w.m, collect)
	}
	if collect {
		tally.Stats.Accumulate(res.Gpk)
	}
	if !res.Next.IsOdd() {
		panic("trajectory: packed step produced an even value")
	}
	v.pair = res.Next
	return res.D
}

package trajectory

import (
	"context"
	"math/big"

	"carrymap/internal/core"
)

// Step is one odd map application in a recorded trajectory: the value the
// step produced, the shift it took, and its classification.
type Step struct {
	Pair      *core.PairNumber
	D         int
	Exchanged bool
	Gpk       *core.GpkInfo
}

// Value returns the step's resulting odd value.
func (s Step) Value() *big.Int { return s.Pair.Big() }

// Trajectory is the full decomposition of one seed's orbit.
type Trajectory struct {
	Start        *big.Int
	X            uint64
	Outcome      Outcome
	Cancelled    bool
	OddSteps     uint64
	Halvings     uint64
	StoppingTime uint64 // OddSteps + Halvings when converged
	MaxValue     *big.Int
	MaxPairs     int
	CycleLength  uint64
	Steps        []Step // one per odd step when recording is on
	Stats        core.GpkStats
	DHist        map[int]uint64 // shift histogram, when collection is on
	Final        *big.Int
}

// CycleValues returns the member values of a detected cycle, oldest first.
// Empty unless the outcome is CycleDetected and steps were recorded.
func (t *Trajectory) CycleValues() []*big.Int {
	if t.Outcome != CycleDetected || t.CycleLength == 0 || uint64(len(t.Steps)) < t.CycleLength {
		return nil
	}
	tail := t.Steps[uint64(len(t.Steps))-t.CycleLength:]
	out := make([]*big.Int, len(tail))
	for i, s := range tail {
		out[i] = s.Value()
	}
	return out
}

// Trace walks one value to its terminal with the sequential engine,
// recording every step. progress may be nil; it receives the step ordinal,
// the current width in pairs and the step's d. Cancellation through ctx
// returns the partial trajectory with Cancelled set.
func Trace(ctx context.Context, start *big.Int, m core.MapConstant, cfg core.AnalyzeConfig, progress func(step uint64, pairs int, d int)) *Trajectory {
	pair := core.PairFromBig(start)
	traj := &Trajectory{
		Start:    new(big.Int).Set(start),
		X:        m.X(),
		MaxValue: new(big.Int).Set(start),
		MaxPairs: pair.Pairs(),
		DHist:    make(map[int]uint64),
		Final:    new(big.Int).Set(start),
	}
	if pair.IsOne() {
		traj.Outcome = Converged
		return traj
	}

	maxPair := pair
	check := pair
	var power, lam uint64 = 1, 0

	for traj.OddSteps < cfg.MaxSteps {
		select {
		case <-ctx.Done():
			traj.Cancelled = true
			traj.Outcome = CapExceeded
			traj.Final = pair.Big()
			return traj
		default:
		}

		var res core.StepResult
		switch m.X() {
		case 3:
			res = core.ScanStep3(pair)
		case 5:
			res = core.ScanStep5(pair)
		default:
			res = core.ScanStep(pair, m)
		}

		traj.OddSteps++
		traj.Halvings += uint64(res.D)
		if cfg.CollectGpk {
			traj.Stats.Accumulate(res.Gpk)
			traj.DHist[res.D]++
		}
		if cfg.RecordSteps {
			traj.Steps = append(traj.Steps, Step{
				Pair:      res.Next,
				D:         res.D,
				Exchanged: res.Exchanged,
				Gpk:       res.Gpk,
			})
		}
		if progress != nil {
			progress(traj.OddSteps, res.Next.Pairs(), res.D)
		}

		if res.Next.Pairs() > traj.MaxPairs {
			traj.MaxPairs = res.Next.Pairs()
		}
		if res.Next.Cmp(maxPair) > 0 {
			maxPair = res.Next
		}

		if res.Next.IsOne() {
			pair = res.Next
			traj.Outcome = Converged
			traj.StoppingTime = traj.OddSteps + traj.Halvings
			break
		}
		if res.Next.Pairs() > core.MaxPairCount {
			pair = res.Next
			traj.Outcome = CapExceeded
			break
		}

		if res.Next.Equal(check) {
			pair = res.Next
			traj.Outcome = CycleDetected
			traj.CycleLength = lam + 1
			break
		}
		lam++
		if lam == power {
			check = res.Next
			power <<= 1
			lam = 0
		}

		pair = res.Next
	}

	// A non-terminal exit here means the odd-step budget ran out.
	if traj.Outcome == Converged && !pair.IsOne() {
		traj.Outcome = CapExceeded
	}
	traj.MaxValue = maxPair.Big()
	traj.Final = pair.Big()
	return traj
}

package carrymap

import (
	"math/big"
	"math/rand"

	"github.com/pkg/errors"

	"carrymap/internal/core"
	"carrymap/internal/trajectory"
)

// Fixed spot checks for the self-check corpus; deterministic random odds
// are appended at run time.
var selfCheckSeeds = []uint64{
	1, 3, 5, 7, 27, 31, 97, 255, 871, 6171, 77031,
	1<<32 + 1, 1<<61 - 1, 1<<62 + 7, 1<<64 - 1,
}

var selfCheckWideBound = new(big.Int).Lsh(big.NewInt(1), 700)

// SelfCheck cross-validates the engines against each other and against
// direct big-integer arithmetic: the sequential scan, the packed scan, and
// the native tiers must produce identical values, shifts and classification
// counts on a fixed corpus plus deterministically random values. Any
// disagreement comes back wrapping ErrCrossTierMismatch.
func SelfCheck() error {
	if err := core.ValidateTable(); err != nil {
		return errors.Wrap(err, "classification table")
	}

	maps := []core.MapConstant{core.Map3, core.Map5, core.Map9, core.Map17, core.Map33, core.Map65}
	rng := rand.New(rand.NewSource(0x5eed))
	seeds := append([]uint64{}, selfCheckSeeds...)
	for i := 0; i < 64; i++ {
		seeds = append(seeds, rng.Uint64()|1)
	}

	for _, m := range maps {
		for _, n := range seeds {
			if err := checkStep(m, new(big.Int).SetUint64(n)); err != nil {
				return err
			}
		}
		for i := 0; i < 8; i++ {
			v := new(big.Int).Rand(rng, selfCheckWideBound)
			v.SetBit(v, 0, 1)
			if err := checkStep(m, v); err != nil {
				return err
			}
		}
		if err := checkWalk(m); err != nil {
			return err
		}
	}
	return nil
}

// checkStep runs one map application through every engine that can take v
// and compares the outcomes.
func checkStep(m core.MapConstant, v *big.Int) error {
	p := core.PairFromBig(v)
	seq := core.ScanStep(p, m)
	pck := core.PackedStep(p, m, true)
	if !seq.Next.Equal(pck.Next) || seq.D != pck.D || seq.Exchanged != pck.Exchanged {
		return errors.Wrapf(ErrCrossTierMismatch,
			"x=%d n=%s: sequential (%s, d=%d) vs packed (%s, d=%d)",
			m.X(), v, seq.Next, seq.D, pck.Next, pck.D)
	}
	var ss, ps core.GpkStats
	ss.Accumulate(seq.Gpk)
	ps.Accumulate(pck.Gpk)
	if ss != ps {
		return errors.Wrapf(ErrCrossTierMismatch, "x=%d n=%s: classification counts diverge", m.X(), v)
	}

	switch m.X() {
	case 3:
		fast := core.ScanStep3(p)
		if !fast.Next.Equal(seq.Next) || fast.D != seq.D {
			return errors.Wrapf(ErrCrossTierMismatch, "x=3 n=%s: fast scan diverges from generic", v)
		}
	case 5:
		fast := core.PackedStep5(p, false)
		if !fast.Next.Equal(seq.Next) || fast.D != seq.D {
			return errors.Wrapf(ErrCrossTierMismatch, "x=5 n=%s: fast packed path diverges from generic", v)
		}
	}

	// Both engines against the arithmetic they claim to avoid.
	direct := new(big.Int).Mul(v, new(big.Int).SetUint64(m.X()))
	direct.Add(direct, big.NewInt(1))
	direct.Rsh(direct, uint(seq.D))
	if direct.Bit(0) == 0 || direct.Cmp(seq.Next.Big()) != 0 {
		return errors.Wrapf(ErrCrossTierMismatch,
			"x=%d n=%s: scan gave %s with d=%d, direct arithmetic disagrees",
			m.X(), v, seq.Next, seq.D)
	}
	return nil
}

// checkWalk compares short tiered walks against packed-only walks, results
// and statistics both.
func checkWalk(m core.MapConstant) error {
	cfg := core.DefaultSweepConfig()
	cfg.X = m.X()
	cfg.MaxSteps = 64
	packedCfg := cfg
	packedCfg.UseNative = false

	wn := trajectory.NewWalker(m, cfg)
	wp := trajectory.NewWalker(m, packedCfg)
	tn, tp := trajectory.NewTally(), trajectory.NewTally()
	for n := uint64(3); n < 130; n += 2 {
		rn := wn.Seed(n, tn)
		rp := wp.Seed(n, tp)
		if rn != rp {
			return errors.Wrapf(ErrCrossTierMismatch, "x=%d n=%d: tier walks disagree", m.X(), n)
		}
	}
	if tn.Stats != tp.Stats || !trajectory.EqualHist(tn.DHist, tp.DHist) {
		return errors.Wrapf(ErrCrossTierMismatch, "x=%d: tier statistics disagree", m.X())
	}
	return nil
}

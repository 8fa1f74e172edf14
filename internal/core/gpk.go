package core

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Gpk classifies one pair position of the sum n + (n << s) + 1 by its effect
// on an incoming carry: Generate emits a carry regardless, Propagate forwards
// the incoming carry, Kill absorbs it.
type Gpk uint8

const (
	Kill      Gpk = 0
	Propagate Gpk = 1
	Generate  Gpk = 2
)

func (g Gpk) String() string {
	switch g {
	case Generate:
		return "G"
	case Propagate:
		return "P"
	default:
		return "K"
	}
}

// gpkTable maps the four context bits of a pair position to its class.
// Index layout: pr<<3 | qr<<2 | pl<<1 | ql, where (pr, qr) are the right-slot
// addends and (pl, ql) the left-slot addends. Built once at init and checked
// against the two-stage adder by ValidateTable before first use.
var gpkTable [16]Gpk

func init() {
	for ctx := 0; ctx < 16; ctx++ {
		pr := uint64(ctx>>3) & 1
		qr := uint64(ctx>>2) & 1
		pl := uint64(ctx>>1) & 1
		ql := uint64(ctx) & 1
		gpkTable[ctx] = classifyBits(pr, qr, pl, ql)
	}
	if err := ValidateTable(); err != nil {
		panic("core: gpk table failed self-validation: " + err.Error())
	}
}

// classifyBits derives the class from first principles: compose the
// generate/propagate signals of the right stage and the left stage in series.
func classifyBits(pr, qr, pl, ql uint64) Gpk {
	gMid := pr & qr
	pMid := pr ^ qr
	gOut := pl & ql
	pOut := pl ^ ql
	switch {
	case gOut|(pOut&gMid) != 0:
		return Generate
	case pOut&pMid != 0:
		return Propagate
	default:
		return Kill
	}
}

// Classify looks up the class of a pair position from its four context bits.
func Classify(pr, qr, pl, ql uint64) Gpk {
	return gpkTable[pr<<3|qr<<2|pl<<1|ql]
}

// carryOut runs the pair position as a two-stage ripple adder: the right
// slot sums pr+qr+carryIn, its carry feeds the left slot's pl+ql.
func carryOut(pr, qr, pl, ql, carryIn uint64) uint64 {
	sumR := pr + qr + carryIn
	sumL := pl + ql + sumR>>1
	return sumL >> 1
}

// ValidateTable replays every context row through the two-stage adder and
// checks the class predicts the carry behaviour exactly:
//
//	Generate rows emit a carry for both values of the incoming carry;
//	Kill rows emit none for either;
//	Propagate rows copy the incoming carry through;
//
// and each row lands in exactly one class. A violation means the classifier
// cannot be trusted for any scan, so callers treat it as fatal.
func ValidateTable() error {
	for ctx := 0; ctx < 16; ctx++ {
		pr := uint64(ctx>>3) & 1
		qr := uint64(ctx>>2) & 1
		pl := uint64(ctx>>1) & 1
		ql := uint64(ctx) & 1
		out0 := carryOut(pr, qr, pl, ql, 0)
		out1 := carryOut(pr, qr, pl, ql, 1)
		cls := gpkTable[ctx]
		switch cls {
		case Generate:
			if out0 != 1 || out1 != 1 {
				return errors.Errorf("context %04b classed G but carry-out is (%d,%d)", ctx, out0, out1)
			}
		case Propagate:
			if out0 != 0 || out1 != 1 {
				return errors.Errorf("context %04b classed P but carry-out is (%d,%d)", ctx, out0, out1)
			}
		case Kill:
			if out0 != 0 || out1 != 0 {
				return errors.Errorf("context %04b classed K but carry-out is (%d,%d)", ctx, out0, out1)
			}
		default:
			return errors.Errorf("context %04b has class %d outside {K,P,G}", ctx, cls)
		}
		if cls != classifyBits(pr, qr, pl, ql) {
			return errors.Errorf("context %04b table entry disagrees with direct classification", ctx)
		}
	}
	return nil
}

// GpkInfo records the per-pair classification of one map step as packed G/P
// masks, with summary counts and the longest run of surviving carry.
type GpkInfo struct {
	gMasks      []uint64
	pMasks      []uint64
	activePairs int
	gCount      uint32
	pCount      uint32
	kCount      uint32
	maxChain    uint32
}

// NewGpkInfo allocates mask storage for pairCount classified positions.
func NewGpkInfo(pairCount int) *GpkInfo {
	wc := laneWords(pairCount)
	return &GpkInfo{
		gMasks:      make([]uint64, wc),
		pMasks:      make([]uint64, wc),
		activePairs: pairCount,
	}
}

// Set records the class of pair i. K pairs leave both masks clear.
func (gi *GpkInfo) Set(i int, g Gpk) {
	switch g {
	case Generate:
		gi.gCount++
		gi.gMasks[i/64] |= 1 << uint(i%64)
	case Propagate:
		gi.pCount++
		gi.pMasks[i/64] |= 1 << uint(i%64)
	default:
		gi.kCount++
	}
}

// SetMaskWord records a whole word of classes at once from packed G and P
// masks; valid marks which bits of the word fall inside the active range.
func (gi *GpkInfo) SetMaskWord(w int, g, p, valid uint64) {
	g &= valid
	p &= valid &^ g
	gi.gMasks[w] |= g
	gi.pMasks[w] |= p
	gi.gCount += uint32(bits.OnesCount64(g))
	gi.pCount += uint32(bits.OnesCount64(p))
	gi.kCount += uint32(bits.OnesCount64(valid &^ (g | p)))
}

// Finalize computes the longest carry chain: the initial +1 carry counts as
// live, G restarts a chain, P extends it only while live, K ends it.
func (gi *GpkInfo) Finalize() {
	var chain, max uint32
	carry := true
	for i := 0; i < gi.activePairs; i++ {
		w, b := i/64, uint(i%64)
		switch {
		case (gi.gMasks[w]>>b)&1 != 0:
			chain++
			carry = true
		case (gi.pMasks[w]>>b)&1 != 0:
			if carry {
				chain++
			}
		default:
			if chain > max {
				max = chain
			}
			chain = 0
			carry = false
		}
	}
	if chain > max {
		max = chain
	}
	gi.maxChain = max
}

// At returns the class of pair i.
func (gi *GpkInfo) At(i int) Gpk {
	w, b := i/64, uint(i%64)
	if (gi.gMasks[w]>>b)&1 != 0 {
		return Generate
	}
	if (gi.pMasks[w]>>b)&1 != 0 {
		return Propagate
	}
	return Kill
}

// Seq expands the masks to one symbol per pair.
func (gi *GpkInfo) Seq() []Gpk {
	out := make([]Gpk, gi.activePairs)
	for i := range out {
		out[i] = gi.At(i)
	}
	return out
}

// GpkString renders the classification symbols in ascending pair order.
// A positive limit truncates with a "..." suffix; zero or less renders all.
func (gi *GpkInfo) GpkString(limit int) string {
	n := gi.activePairs
	if limit > 0 && n > limit {
		n = limit
	}
	buf := make([]byte, 0, n+3)
	for i := 0; i < n; i++ {
		buf = append(buf, gi.At(i).String()[0])
	}
	if n < gi.activePairs {
		buf = append(buf, '.', '.', '.')
	}
	return string(buf)
}

func (gi *GpkInfo) ActivePairs() int      { return gi.activePairs }
func (gi *GpkInfo) GCount() uint32        { return gi.gCount }
func (gi *GpkInfo) PCount() uint32        { return gi.pCount }
func (gi *GpkInfo) KCount() uint32        { return gi.kCount }
func (gi *GpkInfo) MaxCarryChain() uint32 { return gi.maxChain }

// GpkStats aggregates classification counts across many steps. Merge is
// commutative and associative, so partial aggregates from concurrent workers
// combine to the same totals in any order.
type GpkStats struct {
	TotalG         uint64
	TotalP         uint64
	TotalK         uint64
	TotalPairs     uint64
	TotalSteps     uint64
	CarryChainHist [128]uint64
}

// Accumulate folds one finalized step into the aggregate.
func (st *GpkStats) Accumulate(info *GpkInfo) {
	st.TotalG += uint64(info.gCount)
	st.TotalP += uint64(info.pCount)
	st.TotalK += uint64(info.kCount)
	st.TotalPairs += uint64(info.activePairs)
	st.TotalSteps++
	idx := int(info.maxChain)
	if idx > 127 {
		idx = 127
	}
	st.CarryChainHist[idx]++
}

// Merge folds another aggregate into this one.
func (st *GpkStats) Merge(other *GpkStats) {
	st.TotalG += other.TotalG
	st.TotalP += other.TotalP
	st.TotalK += other.TotalK
	st.TotalPairs += other.TotalPairs
	st.TotalSteps += other.TotalSteps
	for i := range st.CarryChainHist {
		st.CarryChainHist[i] += other.CarryChainHist[i]
	}
}

// AccumulateValue classifies one step of value v without decomposing it into
// lanes: bit reads value bit pos, bitLen is the value's bit length. The
// narrow tiers use this to keep statistics identical to the packed tier.
func (st *GpkStats) AccumulateValue(m MapConstant, bit func(pos int) uint64, bitLen int) {
	if bitLen == 0 {
		return
	}
	pairs := (bitLen + 1) / 2
	leftBit := func(i int) uint64 {
		if i < 0 || i >= pairs {
			return 0
		}
		return bit(2*i + 1)
	}
	rightBit := func(i int) uint64 {
		if i < 0 || i >= pairs {
			return 0
		}
		return bit(2 * i)
	}

	var gc, pc, kc, chain, max uint32
	carry := true
	for i := 0; i < pairs; i++ {
		qr := rightBit(i)
		ql := leftBit(i)
		var pr, pl uint64
		if m.s%2 == 0 {
			pr = rightBit(i - m.t)
			pl = leftBit(i - m.t)
		} else {
			pr = leftBit(i - m.t - 1)
			pl = rightBit(i - m.t)
		}
		switch Classify(pr, qr, pl, ql) {
		case Generate:
			gc++
			chain++
			carry = true
		case Propagate:
			pc++
			if carry {
				chain++
			}
		default:
			kc++
			if chain > max {
				max = chain
			}
			chain = 0
			carry = false
		}
	}
	if chain > max {
		max = chain
	}

	st.TotalG += uint64(gc)
	st.TotalP += uint64(pc)
	st.TotalK += uint64(kc)
	st.TotalPairs += uint64(pairs)
	st.TotalSteps++
	idx := int(max)
	if idx > 127 {
		idx = 127
	}
	st.CarryChainHist[idx]++
}

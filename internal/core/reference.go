package core

import (
	"math/bits"

	"github.com/pkg/errors"
)

// MapConstant describes one affine map n -> (x*n+1)/2^d for an admissible
// multiplier x. Admissible means x-1 is a power of two: only then does the
// product x*n decompose into n plus a pure shift of n, which is what lets a
// full step run as a single carry-resolved pass over the pair lanes.
type MapConstant struct {
	x uint64
	s int // x - 1 == 2^s
	t int // s / 2, the pair-aligned part of the shift
}

// Admissible multipliers up to the largest one the packed windows support.
var (
	Map3  = MapConstant{x: 3, s: 1, t: 0}
	Map5  = MapConstant{x: 5, s: 2, t: 1}
	Map9  = MapConstant{x: 9, s: 3, t: 1}
	Map17 = MapConstant{x: 17, s: 4, t: 2}
	Map33 = MapConstant{x: 33, s: 5, t: 2}
	Map65 = MapConstant{x: 65, s: 6, t: 3}
)

// NewMapConstant validates x and derives the shift split.
func NewMapConstant(x uint64) (MapConstant, error) {
	if x < 3 {
		return MapConstant{}, errors.Errorf("multiplier %d too small: need x >= 3", x)
	}
	if (x-1)&(x-2) != 0 {
		return MapConstant{}, errors.Errorf("multiplier %d not admissible: x-1 must be a power of two", x)
	}
	s := bits.TrailingZeros64(x - 1)
	return MapConstant{x: x, s: s, t: s / 2}, nil
}

// X returns the multiplier.
func (m MapConstant) X() uint64 { return m.x }

// S returns the shift exponent, x-1 == 2^s.
func (m MapConstant) S() int { return m.s }

// ShiftedOperand returns the lane and pair index holding the bit that lands
// in the right (weight 4^i) slot of pair i after the 2^s shift. The partner
// for the left slot is returned by ShiftedOperandLeft. For even s the shift
// stays lane-aligned; for odd s the lanes cross.
func (m MapConstant) ShiftedOperand(i int) (fromLeft bool, index int) {
	if m.s%2 == 0 {
		return false, i - m.t
	}
	return true, i - m.t - 1
}

// ShiftedOperandLeft is the left-slot counterpart of ShiftedOperand.
func (m MapConstant) ShiftedOperandLeft(i int) (fromLeft bool, index int) {
	if m.s%2 == 0 {
		return true, i - m.t
	}
	return false, i - m.t
}

// ContextBits returns the four operand bits feeding pair i of the sum
// n + (n << s): the right-slot addends (pr, qr) and left-slot addends
// (pl, ql). Out-of-range reads are zero.
func (m MapConstant) ContextBits(p *PairNumber, i int) (pr, qr, pl, ql uint64) {
	qr = p.RightBit(i)
	ql = p.LeftBit(i)
	if m.s%2 == 0 {
		pr = p.RightBit(i - m.t)
		pl = p.LeftBit(i - m.t)
	} else {
		pr = p.LeftBit(i - m.t - 1)
		pl = p.RightBit(i - m.t)
	}
	return
}

// MaxScanIndex returns the highest pair index the carry pass must visit for
// an input of k pairs: the shifted operand extends (s+1)/2 pairs past the top.
func (m MapConstant) MaxScanIndex(k int) int { return k + (m.s+1)/2 }

// SafeEnd returns the pair index past which a dead carry cannot revive:
// beyond it every remaining addend bit of at most one operand is set, so the
// pass can stop as soon as the carry drops to zero.
func (m MapConstant) SafeEnd(k int) int { return k + (m.s-1)/2 }

// OutPairs returns the pair capacity a packed step must allocate for a
// k-pair input.
func (m MapConstant) OutPairs(k int) int { return m.MaxScanIndex(k) + 1 }

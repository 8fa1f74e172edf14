package core

import (
	"math/big"
	"math/bits"
)

// PairNumber is an unsigned integer decomposed into bit pairs: bit 2i of the
// value lives in the right lane at position i, bit 2i+1 in the left lane.
// Pairs are indexed LSB-first, packed 64 per word. The top pair of a
// normalized PairNumber is never (0,0) unless the value is zero; bits at and
// above the pair count are zero in both lanes.
//
// This is the batch-tier representation: the carry scans operate on the lane
// words directly, so one map application touches each word a constant number
// of times instead of walking individual bits.
type PairNumber struct {
	left  []uint64
	right []uint64
	pairs int
}

// PairFromWords builds a PairNumber from raw lane words. The caller must
// supply normalized input: top pair non-zero (or the canonical zero/one
// forms) and no bits at or above pairs. The slices are retained, not copied.
func PairFromWords(left, right []uint64, pairs int) *PairNumber {
	return &PairNumber{left: left, right: right, pairs: pairs}
}

// PairFromUint64 decomposes a native value.
func PairFromUint64(v uint64) *PairNumber {
	if v == 0 {
		return &PairNumber{left: []uint64{0}, right: []uint64{0}, pairs: 1}
	}
	pairs := (bits.Len64(v) + 1) / 2
	left := make([]uint64, 1)
	right := make([]uint64, 1)
	for i := 0; i < pairs; i++ {
		right[0] |= ((v >> uint(2*i)) & 1) << uint(i)
		left[0] |= ((v >> uint(2*i+1)) & 1) << uint(i)
	}
	return &PairNumber{left: left, right: right, pairs: pairs}
}

// PairFromBig decomposes an arbitrary-precision value. Negative input is not
// meaningful here and panics.
func PairFromBig(v *big.Int) *PairNumber {
	if v.Sign() < 0 {
		panic("PairFromBig: negative value")
	}
	if v.Sign() == 0 {
		return &PairNumber{left: []uint64{0}, right: []uint64{0}, pairs: 1}
	}
	pairs := (v.BitLen() + 1) / 2
	words := laneWords(pairs)
	left := make([]uint64, words)
	right := make([]uint64, words)
	for i := 0; i < pairs; i++ {
		setLaneBit(right, i, uint64(v.Bit(2*i)))
		setLaneBit(left, i, uint64(v.Bit(2*i+1)))
	}
	return &PairNumber{left: left, right: right, pairs: pairs}
}

// Big reassembles the numeric value.
func (p *PairNumber) Big() *big.Int {
	if p.pairs == 0 {
		return new(big.Int)
	}
	totalBits := 2 * p.pairs
	buf := make([]byte, (totalBits+7)/8)
	last := len(buf) - 1
	for i := 0; i < p.pairs; i++ {
		posR := 2 * i
		posL := 2*i + 1
		buf[last-posR/8] |= byte(laneBit(p.right, p.pairs, i)) << (uint(posR) % 8)
		buf[last-posL/8] |= byte(laneBit(p.left, p.pairs, i)) << (uint(posL) % 8)
	}
	return new(big.Int).SetBytes(buf)
}

// Pairs returns the pair count k.
func (p *PairNumber) Pairs() int { return p.pairs }

// LeftBit reads the left-lane bit (value bit 2i+1) at position i.
// Out-of-range positions read as zero.
func (p *PairNumber) LeftBit(i int) uint64 { return laneBit(p.left, p.pairs, i) }

// RightBit reads the right-lane bit (value bit 2i) at position i.
// Out-of-range positions read as zero.
func (p *PairNumber) RightBit(i int) uint64 { return laneBit(p.right, p.pairs, i) }

// LeftWords exposes the left lane words. Callers must not modify them.
func (p *PairNumber) LeftWords() []uint64 { return p.left }

// RightWords exposes the right lane words. Callers must not modify them.
func (p *PairNumber) RightWords() []uint64 { return p.right }

// IsOne reports whether the value is exactly 1 (single pair, left 0 right 1)
// without reassembling it.
func (p *PairNumber) IsOne() bool {
	return p.pairs == 1 && p.left[0] == 0 && p.right[0] == 1
}

// IsOdd reports whether value bit 0 is set.
func (p *PairNumber) IsOdd() bool {
	return p.pairs > 0 && p.right[0]&1 == 1
}

// Cmp compares numerically: -1 if p < o, 0 if equal, +1 if p > o. Both
// values must be normalized; a larger pair count wins outright, otherwise
// the topmost differing pair decides, left bit before right.
func (p *PairNumber) Cmp(o *PairNumber) int {
	if p.pairs != o.pairs {
		if p.pairs < o.pairs {
			return -1
		}
		return 1
	}
	for w := len(p.left) - 1; w >= 0; w-- {
		diff := (p.left[w] ^ o.left[w]) | (p.right[w] ^ o.right[w])
		if diff == 0 {
			continue
		}
		mask := uint64(1) << uint(63-bits.LeadingZeros64(diff))
		if pl, ol := p.left[w]&mask, o.left[w]&mask; pl != ol {
			if pl != 0 {
				return 1
			}
			return -1
		}
		if p.right[w]&mask != 0 {
			return 1
		}
		return -1
	}
	return 0
}

// Equal reports numeric equality.
func (p *PairNumber) Equal(o *PairNumber) bool { return p.Cmp(o) == 0 }

// BitsLSB returns the interleaved bit expansion, LSB first:
// right[0], left[0], right[1], left[1], ...
func (p *PairNumber) BitsLSB() []uint8 {
	out := make([]uint8, 0, 2*p.pairs)
	for i := 0; i < p.pairs; i++ {
		out = append(out, uint8(p.RightBit(i)), uint8(p.LeftBit(i)))
	}
	return out
}

// PairFromBitsLSB rebuilds a PairNumber from an interleaved LSB-first bit
// sequence, normalizing away top (0,0) pairs.
func PairFromBitsLSB(in []uint8) *PairNumber {
	if len(in) == 0 {
		return &PairNumber{left: []uint64{0}, right: []uint64{0}, pairs: 1}
	}
	padded := in
	if len(padded)%2 != 0 {
		padded = append(append([]uint8(nil), in...), 0)
	}
	k := len(padded) / 2
	words := laneWords(k)
	left := make([]uint64, words)
	right := make([]uint64, words)
	for i := 0; i < k; i++ {
		setLaneBit(right, i, uint64(padded[2*i]))
		setLaneBit(left, i, uint64(padded[2*i+1]))
	}
	k = trimPairs(left, right, k)
	wc := laneWords(k)
	left = left[:wc]
	right = right[:wc]
	maskTopWord(left, k)
	maskTopWord(right, k)
	return &PairNumber{left: left, right: right, pairs: k}
}

// String formats the value in decimal.
func (p *PairNumber) String() string { return p.Big().String() }

// trimPairs returns the normalized pair count: positions above the topmost
// non-zero pair are dropped, but at least one pair remains.
func trimPairs(left, right []uint64, pairs int) int {
	k := pairs
	for k > 1 {
		i := k - 1
		if laneBit(left, pairs, i) == 0 && laneBit(right, pairs, i) == 0 {
			k--
		} else {
			break
		}
	}
	return k
}

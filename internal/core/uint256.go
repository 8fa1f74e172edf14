package core

import (
	"math/big"
	"math/bits"
)

// Uint256 is the double-width tier: four little-endian words. It covers the
// gap between the native tier and the packed-batch tier so that values a few
// words wide never pay for pair decomposition.
type Uint256 struct {
	n [4]uint64 // n[0] is the least significant word
}

// U256From128 lifts a native-tier value.
func U256From128(v Uint128) Uint256 {
	return Uint256{n: [4]uint64{v.Lo, v.Hi, 0, 0}}
}

// U256FromWords builds a value from four little-endian words.
func U256FromWords(words [4]uint64) Uint256 { return Uint256{n: words} }

// IsOne reports v == 1.
func (u Uint256) IsOne() bool {
	return u.n[0] == 1 && u.n[1] == 0 && u.n[2] == 0 && u.n[3] == 0
}

// IsUint128 reports whether the value fits the native tier.
func (u Uint256) IsUint128() bool { return u.n[2] == 0 && u.n[3] == 0 }

// Uint128 returns the low 128 bits; meaningful when IsUint128.
func (u Uint256) Uint128() Uint128 { return Uint128{Hi: u.n[1], Lo: u.n[0]} }

// Mul64 multiplies by a single word, reporting overflow instead of wrapping.
func (u Uint256) Mul64(x uint64) (Uint256, bool) {
	var r Uint256
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(u.n[i], x)
		lo, c := bits.Add64(lo, carry, 0)
		r.n[i] = lo
		carry = hi + c // hi <= 2^64-2, so no wrap
	}
	if carry != 0 {
		return Uint256{}, false
	}
	return r, true
}

// AddOne adds 1, reporting overflow instead of wrapping.
func (u Uint256) AddOne() (Uint256, bool) {
	var r Uint256
	carry := uint64(1)
	for i := 0; i < 4; i++ {
		r.n[i], carry = bits.Add64(u.n[i], 0, carry)
	}
	return r, carry == 0
}

// TrailingZeros returns the number of trailing zero bits (256 for zero).
func (u Uint256) TrailingZeros() int {
	for i := 0; i < 4; i++ {
		if u.n[i] != 0 {
			return i*64 + bits.TrailingZeros64(u.n[i])
		}
	}
	return 256
}

// Shr shifts right by d bits, d in [0, 256).
func (u Uint256) Shr(d int) Uint256 {
	if d == 0 {
		return u
	}
	var r Uint256
	skip := d / 64
	off := uint(d % 64)
	for i := 0; i+skip < 4; i++ {
		w := u.n[i+skip] >> off
		if off != 0 && i+skip+1 < 4 {
			w |= u.n[i+skip+1] << (64 - off)
		}
		r.n[i] = w
	}
	return r
}

// BitLen returns the minimal number of bits to represent the value.
func (u Uint256) BitLen() int {
	for i := 3; i >= 0; i-- {
		if u.n[i] != 0 {
			return i*64 + bits.Len64(u.n[i])
		}
	}
	return 0
}

// Bit reads bit pos (0 = LSB); positions >= 256 read as zero.
func (u Uint256) Bit(pos int) uint64 {
	if pos < 0 || pos >= 256 {
		return 0
	}
	return (u.n[pos/64] >> uint(pos%64)) & 1
}

// Words returns the four little-endian words.
func (u Uint256) Words() [4]uint64 { return u.n }

// Pair decomposes the value into zipper form.
func (u Uint256) Pair() *PairNumber {
	bl := u.BitLen()
	pairs := (bl + 1) / 2
	if pairs == 0 {
		pairs = 1
	}
	left := make([]uint64, laneWords(pairs))
	right := make([]uint64, laneWords(pairs))
	for i := 0; i < pairs; i++ {
		setLaneBit(right, i, u.Bit(2*i))
		setLaneBit(left, i, u.Bit(2*i+1))
	}
	return PairFromWords(left, right, pairs)
}

// Big converts to an arbitrary-precision value, for formatting and records.
func (u Uint256) Big() *big.Int {
	v := new(big.Int)
	for i := 3; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(u.n[i]))
	}
	return v
}

// String formats the value in decimal.
func (u Uint256) String() string { return u.Big().String() }

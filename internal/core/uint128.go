package core

import (
	"math/big"
	"math/bits"
)

// Uint128 is the native-tier value: two machine words, enough headroom to
// apply the affine map to any 64-bit seed many times before promotion.
// All operations are value-receiver and allocation-free.
type Uint128 struct {
	Hi, Lo uint64
}

// U128From64 lifts a native word.
func U128From64(v uint64) Uint128 { return Uint128{Lo: v} }

// IsZero reports v == 0.
func (u Uint128) IsZero() bool { return u.Hi == 0 && u.Lo == 0 }

// IsOne reports v == 1.
func (u Uint128) IsOne() bool { return u.Hi == 0 && u.Lo == 1 }

// IsUint64 reports whether the value fits a single word.
func (u Uint128) IsUint64() bool { return u.Hi == 0 }

// Uint64 returns the low word; meaningful when IsUint64.
func (u Uint128) Uint64() uint64 { return u.Lo }

// Cmp returns -1, 0 or +1.
func (u Uint128) Cmp(o Uint128) int {
	switch {
	case u.Hi != o.Hi:
		if u.Hi < o.Hi {
			return -1
		}
		return 1
	case u.Lo != o.Lo:
		if u.Lo < o.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports u < o.
func (u Uint128) Less(o Uint128) bool { return u.Cmp(o) < 0 }

// Mul64 multiplies by a single word, reporting overflow instead of wrapping.
func (u Uint128) Mul64(x uint64) (Uint128, bool) {
	hi1, lo1 := bits.Mul64(x, u.Lo)
	hi2, lo2 := bits.Mul64(x, u.Hi)
	if hi2 != 0 {
		return Uint128{}, false
	}
	hi, carry := bits.Add64(hi1, lo2, 0)
	if carry != 0 {
		return Uint128{}, false
	}
	return Uint128{Hi: hi, Lo: lo1}, true
}

// Add64 adds a single word, reporting overflow instead of wrapping.
func (u Uint128) Add64(v uint64) (Uint128, bool) {
	lo, c := bits.Add64(u.Lo, v, 0)
	hi, c := bits.Add64(u.Hi, 0, c)
	return Uint128{Hi: hi, Lo: lo}, c == 0
}

// TrailingZeros returns the number of trailing zero bits (128 for zero).
func (u Uint128) TrailingZeros() int {
	if u.Lo != 0 {
		return bits.TrailingZeros64(u.Lo)
	}
	if u.Hi != 0 {
		return 64 + bits.TrailingZeros64(u.Hi)
	}
	return 128
}

// Shr shifts right by d bits.
func (u Uint128) Shr(d int) Uint128 {
	switch {
	case d == 0:
		return u
	case d >= 128:
		return Uint128{}
	case d >= 64:
		return Uint128{Lo: u.Hi >> uint(d-64)}
	default:
		return Uint128{
			Hi: u.Hi >> uint(d),
			Lo: u.Lo>>uint(d) | u.Hi<<uint(64-d),
		}
	}
}

// BitLen returns the minimal number of bits to represent the value.
func (u Uint128) BitLen() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// Bit reads bit pos (0 = LSB); positions >= 128 read as zero.
func (u Uint128) Bit(pos int) uint64 {
	switch {
	case pos < 0 || pos >= 128:
		return 0
	case pos < 64:
		return (u.Lo >> uint(pos)) & 1
	default:
		return (u.Hi >> uint(pos-64)) & 1
	}
}

// Big converts to an arbitrary-precision value, for formatting and records.
func (u Uint128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

// String formats the value in decimal.
func (u Uint128) String() string {
	if u.Hi == 0 {
		return new(big.Int).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}

// MaxMapInput128 returns the largest value for which x*v+1 still fits in
// 128 bits, the native-tier promotion threshold.
func MaxMapInput128(x uint64) Uint128 {
	// (2^128 - 2) / x computed wordwise.
	maxHi, maxLo := ^uint64(0), ^uint64(0)-1
	hi := maxHi / x
	rem := maxHi % x
	lo, _ := bits.Div64(rem, maxLo, x)
	return Uint128{Hi: hi, Lo: lo}
}

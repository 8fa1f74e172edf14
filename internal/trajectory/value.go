package trajectory

import (
	"math/big"

	"carrymap/internal/core"
)

// tier selects the active representation of a trajectory value. Promotion
// is one-way within a run: native to wide to packed, whenever the next
// multiply would no longer fit.
type tier uint8

const (
	tierNative tier = iota
	tierWide
	tierPacked
)

// value is one trajectory value in whichever tier currently holds it.
type value struct {
	tier tier
	u128 core.Uint128
	u256 core.Uint256
	pair *core.PairNumber
}

func valueFrom64(n uint64) value {
	return value{tier: tierNative, u128: core.U128From64(n)}
}

func valueFromBig(v *big.Int) value {
	switch bl := v.BitLen(); {
	case bl <= 128:
		lo := new(big.Int).And(v, mask64)
		hi := new(big.Int).Rsh(v, 64)
		return value{tier: tierNative, u128: core.Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}}
	case bl <= 256:
		return value{tier: tierWide, u256: u256FromBig(v)}
	default:
		return value{tier: tierPacked, pair: core.PairFromBig(v)}
	}
}

var mask64 = new(big.Int).SetUint64(^uint64(0))

func u256FromBig(v *big.Int) core.Uint256 {
	var words [4]uint64
	rest := new(big.Int).Set(v)
	for i := 0; i < 4; i++ {
		words[i] = new(big.Int).And(rest, mask64).Uint64()
		rest.Rsh(rest, 64)
	}
	return core.U256FromWords(words)
}

// toPacked forces the packed tier, used when the native phases are disabled.
func (v value) toPacked() value {
	switch v.tier {
	case tierNative:
		return value{tier: tierPacked, pair: core.U256From128(v.u128).Pair()}
	case tierWide:
		return value{tier: tierPacked, pair: v.u256.Pair()}
	default:
		return v
	}
}

func (v value) isOne() bool {
	switch v.tier {
	case tierNative:
		return v.u128.IsOne()
	case tierWide:
		return v.u256.IsOne()
	default:
		return v.pair.IsOne()
	}
}

func (v value) bitLen() int {
	switch v.tier {
	case tierNative:
		return v.u128.BitLen()
	case tierWide:
		return v.u256.BitLen()
	default:
		p := v.pair
		top := p.Pairs() - 1
		if p.LeftBit(top) != 0 {
			return 2*top + 2
		}
		return 2*top + 1
	}
}

// pairWidth is the value's width in pairs, uniform across tiers.
func (v value) pairWidth() int {
	bl := v.bitLen()
	if bl == 0 {
		return 1
	}
	return (bl + 1) / 2
}

// below64 reports v < n, for the drop-below-start stop rule.
func (v value) below64(n uint64) bool {
	switch v.tier {
	case tierNative:
		return v.u128.Less(core.U128From64(n))
	case tierWide:
		return v.u256.IsUint128() && v.u256.Uint128().Less(core.U128From64(n))
	default:
		bl := v.bitLen()
		if bl > 64 {
			return false
		}
		var u uint64
		for i := 0; i < v.pair.Pairs(); i++ {
			u |= v.pair.RightBit(i) << uint(2*i)
			u |= v.pair.LeftBit(i) << uint(2*i+1)
		}
		return u < n
	}
}

// equal compares across tiers. Widths almost always differ, so the bit
// length screens out the expensive path.
func (v value) equal(o value) bool {
	if v.bitLen() != o.bitLen() {
		return false
	}
	if v.tier == o.tier {
		switch v.tier {
		case tierNative:
			return v.u128 == o.u128
		case tierWide:
			return v.u256 == o.u256
		default:
			return v.pair.Equal(o.pair)
		}
	}
	return v.big().Cmp(o.big()) == 0
}

func (v value) big() *big.Int {
	switch v.tier {
	case tierNative:
		return v.u128.Big()
	case tierWide:
		return v.u256.Big()
	default:
		return v.pair.Big()
	}
}

func (v value) String() string { return v.big().String() }

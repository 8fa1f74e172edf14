package core

import (
	"math/big"
	"testing"
)

func big256(hex string) *big.Int {
	v, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("bad hex literal in test")
	}
	return v
}

func u256FromBigTest(w *big.Int) Uint256 {
	var u Uint256
	for i := 0; i < 256; i++ {
		if w.Bit(i) != 0 {
			u.n[i/64] |= 1 << uint(i%64)
		}
	}
	return u
}

func TestUint256Mul64(t *testing.T) {
	v := U256From128(Uint128{Hi: ^uint64(0), Lo: ^uint64(0)})
	r, ok := v.Mul64(65)
	if !ok {
		t.Fatalf("65 * (2^128-1) fits in 256 bits")
	}
	want := new(big.Int).Lsh(big.NewInt(1), 128)
	want.Sub(want, big.NewInt(1))
	want.Mul(want, big.NewInt(65))
	if r.Big().Cmp(want) != 0 {
		t.Errorf("got %s, want %s", r, want)
	}

	top := Uint256{n: [4]uint64{0, 0, 0, ^uint64(0)}}
	if _, ok := top.Mul64(2); ok {
		t.Errorf("overflow out of the top limb must be reported")
	}
}

func TestUint256AddOne(t *testing.T) {
	v := Uint256{n: [4]uint64{^uint64(0), ^uint64(0), ^uint64(0), 5}}
	r, ok := v.AddOne()
	if !ok {
		t.Fatalf("increment well below the top")
	}
	if r.n[0] != 0 || r.n[1] != 0 || r.n[2] != 0 || r.n[3] != 6 {
		t.Errorf("ripple carry across three limbs: got %v", r.n)
	}

	max := Uint256{n: [4]uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}}
	if _, ok := max.AddOne(); ok {
		t.Errorf("increment of 2^256-1 must report overflow")
	}
}

func TestUint256ShiftAndBits(t *testing.T) {
	v := Uint256{n: [4]uint64{0, 0, 1, 0}} // 2^128
	if v.TrailingZeros() != 128 {
		t.Errorf("trailing zeros: got %d, want 128", v.TrailingZeros())
	}
	if v.BitLen() != 129 {
		t.Errorf("bit length: got %d, want 129", v.BitLen())
	}
	if v.Bit(128) != 1 || v.Bit(127) != 0 {
		t.Errorf("bit reads wrong")
	}

	s := v.Shr(128)
	if !s.IsOne() {
		t.Errorf("2^128 >> 128 should be 1, got %v", s.n)
	}

	w := big256("123456789abcdef0fedcba9876543210ffeeddccbbaa99887766554433221100")
	u := u256FromBigTest(w)
	for _, d := range []int{1, 7, 64, 65, 100, 130, 200} {
		want := new(big.Int).Rsh(w, uint(d))
		if u.Shr(d).Big().Cmp(want) != 0 {
			t.Errorf("shift by %d: got %s, want %s", d, u.Shr(d).Big(), want)
		}
	}
}

func TestUint256Narrowing(t *testing.T) {
	v := U256From128(Uint128{Hi: 7, Lo: 9})
	if !v.IsUint128() {
		t.Errorf("low value should report narrow")
	}
	if got := v.Uint128(); got.Hi != 7 || got.Lo != 9 {
		t.Errorf("narrowing lost words: %+v", got)
	}

	wide := Uint256{n: [4]uint64{9, 7, 1, 0}}
	if wide.IsUint128() {
		t.Errorf("2^128 and above must not report narrow")
	}
}

func TestUint256Pair(t *testing.T) {
	values := []*big.Int{
		big.NewInt(1),
		big.NewInt(27),
		big256("ffffffffffffffffffffffffffffffff"),
		big256("123456789abcdef0fedcba9876543210ffeeddccbbaa99887766554433221100"),
	}
	for _, w := range values {
		u := u256FromBigTest(w)
		if u.Pair().Big().Cmp(w) != 0 {
			t.Errorf("pair decomposition of %s lost the value", w)
		}
		if u.Pair().Pairs() != PairFromBig(w).Pairs() {
			t.Errorf("pair count of %s disagrees with the big construction", w)
		}
	}
}

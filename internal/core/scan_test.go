// carrymap/internal/core/scan_test.go
package core

import (
	"math/big"
	"testing"
)

// bigModel applies T(n) = (x*n+1)/2^d with plain big arithmetic.
func bigModel(n *big.Int, x uint64) (*big.Int, int) {
	xn1 := new(big.Int).Mul(n, new(big.Int).SetUint64(x))
	xn1.Add(xn1, big.NewInt(1))
	d := 0
	for xn1.Bit(d) == 0 {
		d++
	}
	return new(big.Int).Rsh(xn1, uint(d)), d
}

func TestScanStep27(t *testing.T) {
	res := ScanStep3(PairFromUint64(27))
	if got := res.Next.Big(); got.Cmp(big.NewInt(41)) != 0 {
		t.Errorf("3*27+1 = 82 should step to 41, got %s", got)
	}
	if res.D != 1 {
		t.Errorf("d: got %d, want 1", res.D)
	}
	if !res.Exchanged {
		t.Errorf("odd d must swap the lanes")
	}
	if s := res.Gpk.GpkString(16); s != "GPG" {
		t.Errorf("classification: got %q, want \"GPG\"", s)
	}

	res = ScanStep5(PairFromUint64(27))
	if got := res.Next.Big(); got.Cmp(big.NewInt(17)) != 0 {
		t.Errorf("5*27+1 = 136 should step to 17, got %s", got)
	}
	if res.D != 3 {
		t.Errorf("d: got %d, want 3", res.D)
	}
	if !res.Exchanged {
		t.Errorf("odd d must swap the lanes")
	}
}

func TestScanStepToOne(t *testing.T) {
	res := ScanStep3(PairFromUint64(5))
	if !res.Next.IsOne() {
		t.Errorf("3*5+1 = 16 should step to 1, got %s", res.Next.Big())
	}
	if res.D != 4 {
		t.Errorf("d: got %d, want 4", res.D)
	}
	if res.Exchanged {
		t.Errorf("even d must not swap the lanes")
	}
}

func TestScanStepAgainstModel(t *testing.T) {
	for n := uint64(1); n < 1000; n += 2 {
		nb := new(big.Int).SetUint64(n)
		p := PairFromUint64(n)

		for _, m := range []MapConstant{Map3, Map5, Map9, Map17, Map33, Map65} {
			wantNext, wantD := bigModel(nb, m.X())
			res := ScanStep(p, m)
			if res.Next.Big().Cmp(wantNext) != 0 {
				t.Fatalf("x=%d n=%d: next got %s, want %s", m.X(), n, res.Next.Big(), wantNext)
			}
			if res.D != wantD {
				t.Fatalf("x=%d n=%d: d got %d, want %d", m.X(), n, res.D, wantD)
			}
			if res.Exchanged != (wantD%2 == 1) {
				t.Fatalf("x=%d n=%d: exchanged flag wrong", m.X(), n)
			}
		}
	}
}

func TestScanFastPathsMatchGeneric(t *testing.T) {
	for n := uint64(1); n < 1000; n += 2 {
		p := PairFromUint64(n)

		gen := ScanStep(p, Map3)
		fast := ScanStep3(p)
		if !gen.Next.Equal(fast.Next) || gen.D != fast.D {
			t.Fatalf("x=3 n=%d: fast path diverged from generic scan", n)
		}
		if gen.Gpk.GpkString(64) != fast.Gpk.GpkString(64) {
			t.Fatalf("x=3 n=%d: classifications diverged", n)
		}

		gen = ScanStep(p, Map5)
		fast = ScanStep5(p)
		if !gen.Next.Equal(fast.Next) || gen.D != fast.D {
			t.Fatalf("x=5 n=%d: fast path diverged from generic scan", n)
		}
		if gen.Gpk.GpkString(64) != fast.Gpk.GpkString(64) {
			t.Fatalf("x=5 n=%d: classifications diverged", n)
		}
	}
}

func TestScanStepLarge(t *testing.T) {
	// 2^1000 - 1: every pair is (1,1), the densest carry case.
	v := new(big.Int).Lsh(big.NewInt(1), 1000)
	v.Sub(v, big.NewInt(1))
	p := PairFromBig(v)

	wantNext, wantD := bigModel(v, 3)
	res := ScanStep3(p)
	if res.Next.Big().Cmp(wantNext) != 0 || res.D != wantD {
		t.Fatalf("2^1000-1 step mismatch: got (%s, %d)", res.Next.Big(), res.D)
	}
}

func TestScanDescent27(t *testing.T) {
	// The 27 orbit under x=3 takes 41 odd steps and 70 halvings to reach 1.
	p := PairFromUint64(27)
	odd, halvings := 0, 0
	for !p.IsOne() {
		res := ScanStep3(p)
		odd++
		halvings += res.D
		p = res.Next
		if odd > 200 {
			t.Fatalf("orbit of 27 should settle well before 200 odd steps")
		}
	}
	if odd != 41 {
		t.Errorf("odd steps: got %d, want 41", odd)
	}
	if halvings != 70 {
		t.Errorf("halvings: got %d, want 70", halvings)
	}
	if odd+halvings != 111 {
		t.Errorf("total stopping time: got %d, want 111", odd+halvings)
	}
}

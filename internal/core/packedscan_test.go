// carrymap/internal/core/packedscan_test.go
package core

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"
)

func TestKoggeStoneIdentities(t *testing.T) {
	all := ^uint64(0)

	if g, _ := koggeStonePrefix(all, 0); g != all {
		t.Errorf("all-generate prefix: got %#x", g)
	}
	if g, p := koggeStonePrefix(0, 0); g != 0 || p != 0 {
		t.Errorf("all-kill prefix: got g=%#x p=%#x", g, p)
	}
	if g, p := koggeStonePrefix(0, all); g != 0 || p != all {
		t.Errorf("all-propagate prefix: got g=%#x p=%#x", g, p)
	}
	// A single generate at bit 0 under all-propagate reaches every bit.
	if g, _ := koggeStonePrefix(1, all&^1); g != all {
		t.Errorf("generate at bit 0 should ride to the top, got %#x", g)
	}
}

func TestMajority(t *testing.T) {
	if majority(0b1100, 0b1010, 0b1001) != 0b1000 {
		t.Errorf("majority truth table broken")
	}
	if majority(0, 0, ^uint64(0)) != 0 {
		t.Errorf("single vote must not carry")
	}
}

func comparePackedToScan(t *testing.T, packed, seq StepResult, label string) {
	t.Helper()
	if !packed.Next.Equal(seq.Next) {
		t.Fatalf("%s: next got %s, want %s", label, packed.Next.Big(), seq.Next.Big())
	}
	if packed.D != seq.D {
		t.Fatalf("%s: d got %d, want %d", label, packed.D, seq.D)
	}
	if packed.Exchanged != seq.Exchanged {
		t.Fatalf("%s: exchanged got %v, want %v", label, packed.Exchanged, seq.Exchanged)
	}
	if packed.Gpk == nil {
		return
	}
	if packed.Gpk.GCount() != seq.Gpk.GCount() ||
		packed.Gpk.PCount() != seq.Gpk.PCount() ||
		packed.Gpk.KCount() != seq.Gpk.KCount() {
		t.Fatalf("%s: counts got G=%d P=%d K=%d, want G=%d P=%d K=%d", label,
			packed.Gpk.GCount(), packed.Gpk.PCount(), packed.Gpk.KCount(),
			seq.Gpk.GCount(), seq.Gpk.PCount(), seq.Gpk.KCount())
	}
	if packed.Gpk.MaxCarryChain() != seq.Gpk.MaxCarryChain() {
		t.Fatalf("%s: max carry chain got %d, want %d", label,
			packed.Gpk.MaxCarryChain(), seq.Gpk.MaxCarryChain())
	}
}

func TestPacked3MatchesScan(t *testing.T) {
	for n := uint64(1); n < 1000; n += 2 {
		p := PairFromUint64(n)
		comparePackedToScan(t, PackedStep3(p, true), ScanStep3(p), "x=3")
	}
}

func TestPacked5MatchesScan(t *testing.T) {
	for n := uint64(1); n < 1000; n += 2 {
		p := PairFromUint64(n)
		comparePackedToScan(t, PackedStep5(p, true), ScanStep5(p), "x=5")
	}
}

func TestPackedGenericMatchesScan(t *testing.T) {
	for _, m := range []MapConstant{Map3, Map5, Map9, Map17, Map33, Map65} {
		for n := uint64(1); n < 200; n += 2 {
			p := PairFromUint64(n)
			comparePackedToScan(t, PackedStep(p, m, true), ScanStep(p, m), "generic")
		}
	}
}

func TestPackedLarge(t *testing.T) {
	// 2^1000 - 1 forces carries across every word boundary.
	v := new(big.Int).Lsh(big.NewInt(1), 1000)
	v.Sub(v, big.NewInt(1))
	p := PairFromBig(v)

	comparePackedToScan(t, PackedStep3(p, true), ScanStep3(p), "x=3 wide")
	comparePackedToScan(t, PackedStep5(p, true), ScanStep5(p), "x=5 wide")

	// Ten thousand bits spans many lane words in one step.
	v.Lsh(big.NewInt(1), 10000)
	v.Sub(v, big.NewInt(1))
	p = PairFromBig(v)
	comparePackedToScan(t, PackedStep5(p, true), ScanStep5(p), "x=5 very wide")
}

func TestPackedRandomWide(t *testing.T) {
	// Seeded, so failures reproduce. Each value is checked both between the
	// engines and against direct big arithmetic.
	rng := rand.New(rand.NewSource(42))
	for _, bitLen := range []uint{80, 200, 500, 1300, 4096} {
		bound := new(big.Int).Lsh(big.NewInt(1), bitLen)
		for trial := 0; trial < 10; trial++ {
			v := new(big.Int).Rand(rng, bound)
			v.SetBit(v, 0, 1)
			p := PairFromBig(v)

			for _, m := range []MapConstant{Map3, Map5, Map9, Map17, Map33, Map65} {
				label := fmt.Sprintf("x=%d bits=%d trial=%d", m.X(), bitLen, trial)
				seq := ScanStep(p, m)
				wantNext, wantD := bigModel(v, m.X())
				if seq.Next.Big().Cmp(wantNext) != 0 || seq.D != wantD {
					t.Fatalf("%s: scan gave (%s, d=%d), arithmetic wants (%s, d=%d)",
						label, seq.Next.Big(), seq.D, wantNext, wantD)
				}
				comparePackedToScan(t, PackedStep(p, m, true), seq, label)
			}
		}
	}
}

func TestPackedMultiStep(t *testing.T) {
	n := big.NewInt(27)
	p := PairFromUint64(27)

	for step := 0; step < 20 && !p.IsOne(); step++ {
		res := PackedStep3(p, false)
		wantNext, wantD := bigModel(n, 3)
		if res.Next.Big().Cmp(wantNext) != 0 {
			t.Fatalf("step %d: next got %s, want %s", step, res.Next.Big(), wantNext)
		}
		if res.D != wantD {
			t.Fatalf("step %d: d got %d, want %d", step, res.D, wantD)
		}
		if res.Gpk != nil {
			t.Fatalf("classification must be skipped when not requested")
		}
		n = wantNext
		p = res.Next
	}
}

func TestPackedSkipGpk(t *testing.T) {
	p := PairFromUint64(871)
	withGpk := PackedStep3(p, true)
	without := PackedStep3(p, false)
	if !withGpk.Next.Equal(without.Next) || withGpk.D != without.D {
		t.Errorf("skipping classification must not change the arithmetic")
	}
}

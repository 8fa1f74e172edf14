package core

// StepResult is one application of T(n) = (x*n+1)/2^d: the next odd value,
// the shift d, the per-pair classification, and the raw even lanes of x*n+1
// before the shift (kept for trace output).
type StepResult struct {
	Next      *PairNumber
	D         int
	Exchanged bool
	Gpk       *GpkInfo
	RawLeft   []uint64
	RawRight  []uint64
	RawPairs  int
}

// ScanStep applies one map step with a single sequential carry pass over the
// pair lanes. The scan visits pairs low to high carrying c through both slot
// sums; it may stop as soon as the carry dies past SafeEnd, because beyond
// that point at most one addend per slot is still populated.
func ScanStep(n *PairNumber, m MapConstant) StepResult {
	k := n.Pairs()
	maxI := m.MaxScanIndex(k)
	safeEnd := m.SafeEnd(k)

	outWords := laneWords(maxI + 1)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := NewGpkInfo(k)
	c := uint64(1) // the +1 of the map enters as the initial carry

	actual := 0
	for i := 0; i <= maxI; i++ {
		pr, qr, pl, ql := m.ContextBits(n, i)
		if i < k {
			gi.Set(i, Classify(pr, qr, pl, ql))
		}

		sumR := pr + qr + c
		sumL := pl + ql + sumR>>1
		w, b := i/64, uint(i%64)
		right[w] |= (sumR & 1) << b
		left[w] |= (sumL & 1) << b
		c = sumL >> 1
		actual = i + 1

		if c == 0 && i >= safeEnd {
			break
		}
	}
	gi.Finalize()

	return finishStep(left, right, actual, gi)
}

// ScanStep3 is the x=3 fast path: the shifted operand is n<<1, so the right
// slot adds the previous pair's left bit and the left slot re-adds the
// current pair itself.
func ScanStep3(n *PairNumber) StepResult {
	k := n.Pairs()
	maxI := k + 1

	outWords := laneWords(maxI + 1)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := NewGpkInfo(k)
	c := uint64(1)

	actual := 0
	for i := 0; i <= maxI; i++ {
		ai := n.LeftBit(i)
		bi := n.RightBit(i)
		aPrev := n.LeftBit(i - 1)

		if i < k {
			gi.Set(i, Classify(aPrev, bi, bi, ai))
		}

		sumR := aPrev + bi + c
		sumL := bi + ai + sumR>>1
		w, b := i/64, uint(i%64)
		right[w] |= (sumR & 1) << b
		left[w] |= (sumL & 1) << b
		c = sumL >> 1
		actual = i + 1

		if c == 0 && i >= k {
			break
		}
	}
	gi.Finalize()

	return finishStep(left, right, actual, gi)
}

// ScanStep5 is the x=5 fast path: the shifted operand is n<<2, one whole
// pair down, so both slots add the previous pair's same-lane bit.
func ScanStep5(n *PairNumber) StepResult {
	k := n.Pairs()
	maxI := k + 1

	outWords := laneWords(maxI + 1)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := NewGpkInfo(k)
	c := uint64(1)

	actual := 0
	for i := 0; i <= maxI; i++ {
		ai := n.LeftBit(i)
		bi := n.RightBit(i)
		aPrev := n.LeftBit(i - 1)
		bPrev := n.RightBit(i - 1)

		if i < k {
			gi.Set(i, Classify(bPrev, bi, aPrev, ai))
		}

		sumR := bPrev + bi + c
		sumL := aPrev + ai + sumR>>1
		w, b := i/64, uint(i%64)
		right[w] |= (sumR & 1) << b
		left[w] |= (sumL & 1) << b
		c = sumL >> 1
		actual = i + 1

		if c == 0 && i >= k {
			break
		}
	}
	gi.Finalize()

	return finishStep(left, right, actual, gi)
}

// finishStep snapshots the raw even state and hands the lanes to postprocess.
func finishStep(left, right []uint64, actual int, gi *GpkInfo) StepResult {
	rawL := append([]uint64(nil), left...)
	rawR := append([]uint64(nil), right...)
	next, d, exchanged := postprocess(left, right, actual)
	return StepResult{
		Next:      next,
		D:         d,
		Exchanged: exchanged,
		Gpk:       gi,
		RawLeft:   rawL,
		RawRight:  rawR,
		RawPairs:  actual,
	}
}

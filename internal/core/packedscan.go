package core

// Packed scan: 64 pairs of the carry pass per machine word. Within a word
// the per-pair carries resolve with a Kogge-Stone prefix over the pair-level
// generate/propagate masks; across words the carry ripples sequentially.
// Results are bit-identical to the sequential scan, which the tests enforce.

// koggeStonePrefix folds the generate/propagate masks so that bit i of the
// returned g reports "some position <= i generated a carry that survives to
// i". Composition is (gHi, pHi) after (gLo, pLo) = (gHi | pHi&gLo, pHi&pLo);
// positions below each shift have no predecessor, so the vacated p bits pad
// with the identity p=1.
func koggeStonePrefix(g, p uint64) (uint64, uint64) {
	for _, shift := range [6]uint{1, 2, 4, 8, 16, 32} {
		gShifted := g << shift
		pShifted := p<<shift | (1<<shift - 1)
		g |= p & gShifted
		p &= pShifted
	}
	return g, p
}

// majority is the carry function of a full adder, bit-parallel.
func majority(a, b, c uint64) uint64 {
	return a&b | b&c | a&c
}

// packedScanWord resolves one word of the two-slot addition. carryIn is the
// carry entering the word's lowest pair; the returned carryOut feeds the next
// word. gPair/pPair are the pair-level classification masks of the word.
func packedScanWord(pr, qr, pl, ql, carryIn uint64) (left, right, carryOut, gPair, pPair uint64) {
	gMid := pr & qr
	pMid := pr ^ qr
	gOut := pl & ql
	pOut := pl ^ ql

	gPair = gOut | (pOut & gMid)
	pPair = pOut & pMid

	gPfx, pPfx := koggeStonePrefix(gPair, pPair)

	var broadcast uint64
	if carryIn != 0 {
		broadcast = ^uint64(0)
	}
	carryAfter := gPfx | (pPfx & broadcast)

	// Pair i receives carryAfter[i-1]; pair 0 receives carryIn.
	cIn := carryAfter<<1 | carryIn

	right = pMid ^ cIn
	cMid := majority(pr, qr, cIn)
	left = pOut ^ cMid
	carryOut = (carryAfter >> 63) & 1
	return
}

// PackedStep3 is the packed x=3 step. When collectGpk is false the
// classification masks are skipped and the result's Gpk is nil.
func PackedStep3(n *PairNumber, collectGpk bool) StepResult {
	k := n.Pairs()
	lw, rw := n.LeftWords(), n.RightWords()

	outPairs := k + 2
	outWords := laneWords(outPairs)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := packedGpkInfo(k, collectGpk)

	carry := uint64(1)
	for w := 0; w < outWords; w++ {
		base := w * 64
		aCur := extractWindow(lw, k, base)
		bCur := extractWindow(rw, k, base)
		aPrev := extractWindow(lw, k, base-1)

		l, r, cOut, g, p := packedScanWord(aPrev, bCur, bCur, aCur, carry)
		left[w] = l
		right[w] = r
		recordPackedGpk(gi, k, w, g, p)
		carry = cOut
	}

	return finishPackedStep(left, right, outPairs, gi)
}

// PackedStep5 is the packed x=5 step: both slots add the previous pair's
// same-lane bit.
func PackedStep5(n *PairNumber, collectGpk bool) StepResult {
	k := n.Pairs()
	lw, rw := n.LeftWords(), n.RightWords()

	outPairs := k + 2
	outWords := laneWords(outPairs)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := packedGpkInfo(k, collectGpk)

	carry := uint64(1)
	for w := 0; w < outWords; w++ {
		base := w * 64
		aCur := extractWindow(lw, k, base)
		bCur := extractWindow(rw, k, base)
		aPrev := extractWindow(lw, k, base-1)
		bPrev := extractWindow(rw, k, base-1)

		l, r, cOut, g, p := packedScanWord(bPrev, bCur, aPrev, aCur, carry)
		left[w] = l
		right[w] = r
		recordPackedGpk(gi, k, w, g, p)
		carry = cOut
	}

	return finishPackedStep(left, right, outPairs, gi)
}

// PackedStep is the packed step for any admissible multiplier.
func PackedStep(n *PairNumber, m MapConstant, collectGpk bool) StepResult {
	k := n.Pairs()
	lw, rw := n.LeftWords(), n.RightWords()

	outPairs := m.OutPairs(k)
	outWords := laneWords(outPairs)
	left := make([]uint64, outWords)
	right := make([]uint64, outWords)
	gi := packedGpkInfo(k, collectGpk)

	carry := uint64(1)
	for w := 0; w < outWords; w++ {
		base := w * 64
		aCur := extractWindow(lw, k, base)
		bCur := extractWindow(rw, k, base)

		var pr, ql, pl, qr uint64
		qr = bCur
		ql = aCur
		if m.s%2 == 0 {
			pr = extractWindow(rw, k, base-m.t)
			pl = extractWindow(lw, k, base-m.t)
		} else {
			pr = extractWindow(lw, k, base-m.t-1)
			pl = extractWindow(rw, k, base-m.t)
		}

		l, r, cOut, g, p := packedScanWord(pr, qr, pl, ql, carry)
		left[w] = l
		right[w] = r
		recordPackedGpk(gi, k, w, g, p)
		carry = cOut
	}

	return finishPackedStep(left, right, outPairs, gi)
}

func packedGpkInfo(k int, collect bool) *GpkInfo {
	if !collect {
		return nil
	}
	return NewGpkInfo(k)
}

// recordPackedGpk stores one word of classification masks, clipped to the
// input's k pairs: the overflow pairs beyond k are not classified.
func recordPackedGpk(gi *GpkInfo, k, w int, g, p uint64) {
	if gi == nil {
		return
	}
	lo := w * 64
	if lo >= k {
		return
	}
	valid := ^uint64(0)
	if k-lo < 64 {
		valid = 1<<uint(k-lo) - 1
	}
	gi.SetMaskWord(w, g, p, valid)
}

func finishPackedStep(left, right []uint64, outPairs int, gi *GpkInfo) StepResult {
	if gi != nil {
		gi.Finalize()
	}
	maskTopWord(left, outPairs)
	maskTopWord(right, outPairs)
	rawL := append([]uint64(nil), left...)
	rawR := append([]uint64(nil), right...)
	next, d, exchanged := postprocess(left, right, outPairs)
	return StepResult{
		Next:      next,
		D:         d,
		Exchanged: exchanged,
		Gpk:       gi,
		RawLeft:   rawL,
		RawRight:  rawR,
		RawPairs:  outPairs,
	}
}

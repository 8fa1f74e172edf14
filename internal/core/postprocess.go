package core

import "math/bits"

// postprocess turns the raw even sum x*n+1 into the next odd trajectory
// value: trim leading (0,0) pairs, count the trailing zero bits d, shift the
// zipper right by d, and re-normalize. The returned exchanged flag reports
// whether d was odd, which swaps the roles of the two lanes.
func postprocess(left, right []uint64, rawPairs int) (next *PairNumber, d int, exchanged bool) {
	pairs := rawTrimPairs(left, right, rawPairs)
	if pairs == 0 {
		return PairFromWords([]uint64{0}, []uint64{0}, 1), 0, false
	}

	d = countTrailingZeroBits(left, right, pairs)
	l, r, k := shiftRightBits(left, right, pairs, d)
	return PairFromWords(l, r, k), d, d%2 == 1
}

// rawTrimPairs returns the count up to the highest non-(0,0) pair, tolerant
// of lane slices shorter than the nominal pair count. An all-zero value
// reports zero pairs.
func rawTrimPairs(left, right []uint64, pairs int) int {
	k := pairs
	for k > 1 {
		w, b := (k-1)/64, uint((k-1)%64)
		if w >= len(left) {
			k--
			continue
		}
		if (left[w]>>b)&1 == 0 && (right[w]>>b)&1 == 0 {
			k--
			continue
		}
		break
	}
	if k == 1 && laneBit(left, 1, 0) == 0 && laneBit(right, 1, 0) == 0 {
		return 0
	}
	return k
}

// countTrailingZeroBits counts trailing zeros of the zipped value a word of
// pairs at a time: an all-zero OR word is 128 value bits, and at the first
// live pair a clear right bit contributes one more zero below the left bit.
func countTrailingZeroBits(left, right []uint64, pairs int) int {
	wc := laneWords(pairs)
	d := 0
	for w := 0; w < wc; w++ {
		var lw, rw uint64
		if w < len(left) {
			lw = left[w]
		}
		if w < len(right) {
			rw = right[w]
		}
		or := lw | rw
		if or == 0 {
			d += 128
			continue
		}
		tz := bits.TrailingZeros64(or)
		d += 2 * tz
		if (rw>>uint(tz))&1 == 0 {
			d++
		}
		break
	}
	return d
}

// shiftRightBits drops the low d bits of the zipped value and re-pairs the
// remainder, trimming and masking the result.
func shiftRightBits(left, right []uint64, pairs, d int) ([]uint64, []uint64, int) {
	if d == 0 {
		wc := laneWords(pairs)
		l := append([]uint64(nil), left[:wc]...)
		r := append([]uint64(nil), right[:wc]...)
		maskTopWord(l, pairs)
		maskTopWord(r, pairs)
		return l, r, pairs
	}

	remaining := 2*pairs - d
	if remaining <= 0 {
		return []uint64{0}, []uint64{0}, 1
	}
	outPairs := (remaining + 1) / 2
	l := make([]uint64, laneWords(outPairs))
	r := make([]uint64, laneWords(outPairs))

	readBit := func(pos int) uint64 {
		pair := pos / 2
		if pair >= pairs {
			return 0
		}
		w, b := pair/64, uint(pair%64)
		if pos%2 == 1 {
			if w >= len(left) {
				return 0
			}
			return (left[w] >> b) & 1
		}
		if w >= len(right) {
			return 0
		}
		return (right[w] >> b) & 1
	}

	for out := 0; out < remaining; out++ {
		bit := readBit(out + d)
		pair := out / 2
		w, b := pair/64, uint(pair%64)
		if out%2 == 1 {
			l[w] |= bit << b
		} else {
			r[w] |= bit << b
		}
	}

	k := outPairs
	for k > 1 {
		w, b := (k-1)/64, uint((k-1)%64)
		if (l[w]>>b)&1 == 0 && (r[w]>>b)&1 == 0 {
			k--
			continue
		}
		break
	}
	wc := laneWords(k)
	l = l[:wc]
	r = r[:wc]
	maskTopWord(l, k)
	maskTopWord(r, k)
	return l, r, k
}

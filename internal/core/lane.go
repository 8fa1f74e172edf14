package core

// Lane word helpers. A lane is a []uint64 holding one bit per pair position,
// LSB-first, 64 positions per word. Both halves of a pair-packed value (the
// odd-bit lane and the even-bit lane) use the same layout, as do the
// per-position G/P mask arrays produced by the scans.

// laneWords returns the number of words needed for n pair positions.
func laneWords(n int) int {
	return (n + 63) / 64
}

// laneBit reads position i. Out-of-range positions (including negative)
// read as zero; the reference patterns deliberately index below zero and
// past the top.
func laneBit(words []uint64, n int, i int) uint64 {
	if i < 0 || i >= n {
		return 0
	}
	return (words[i/64] >> (uint(i) % 64)) & 1
}

// setLaneBit ORs a 0/1 bit into position i. The caller guarantees i is in
// range for words.
func setLaneBit(words []uint64, i int, bit uint64) {
	words[i/64] |= bit << (uint(i) % 64)
}

// maskTopWord clears bits at and above position n in the last word, so that
// positions beyond the conceptual size stay zero.
func maskTopWord(words []uint64, n int) {
	if len(words) == 0 {
		return
	}
	if rem := n % 64; rem > 0 {
		words[len(words)-1] &= (1 << uint(rem)) - 1
	}
}

// extractWindow returns the 64 positions [start, start+64) of a lane as one
// word. start may be negative (the low |start| bits read as zero) or beyond
// n (all zero); positions at or past n are masked off. The packed scan uses
// this to align a lane against itself at the reference-pattern offsets.
func extractWindow(words []uint64, n int, start int) uint64 {
	if start >= n {
		return 0
	}

	if start < 0 {
		abs := -start
		if abs >= 64 {
			return 0
		}
		var w0 uint64
		if len(words) > 0 {
			w0 = words[0]
		}
		val := w0 << uint(abs)
		if remaining := n - start; remaining < 64 {
			val &= (1 << uint(remaining)) - 1
		}
		return val
	}

	wordIdx := start / 64
	bitOff := uint(start) % 64
	var val uint64
	if bitOff == 0 {
		if wordIdx < len(words) {
			val = words[wordIdx]
		}
	} else {
		var lo, hi uint64
		if wordIdx < len(words) {
			lo = words[wordIdx]
		}
		if wordIdx+1 < len(words) {
			hi = words[wordIdx+1]
		}
		val = (lo >> bitOff) | (hi << (64 - bitOff))
	}
	if remaining := n - start; remaining < 64 {
		val &= (1 << uint(remaining)) - 1
	}
	return val
}

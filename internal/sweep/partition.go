package sweep

import (
	"github.com/pkg/errors"
)

// ErrInvalidRange rejects a malformed sweep range before any worker starts.
var ErrInvalidRange = errors.New("invalid sweep range")

// Span is a half-open subrange of odd seeds; Lo is odd.
type Span struct {
	Lo, Hi uint64
}

// Seeds returns the number of odd seeds the span covers.
func (s Span) Seeds() uint64 { return OddCount(s.Lo, s.Hi) }

// OddCount returns how many odd values lie in [lo, hi) for odd lo.
func OddCount(lo, hi uint64) uint64 {
	if hi <= lo {
		return 0
	}
	return (hi - lo + 1) / 2
}

// CheckRange validates a sweep range: non-empty, lower bound odd and at
// least 3.
func CheckRange(lo, hi uint64) error {
	switch {
	case lo >= hi:
		return errors.Wrapf(ErrInvalidRange, "[%d, %d) is empty", lo, hi)
	case lo < 3:
		return errors.Wrapf(ErrInvalidRange, "lower bound %d is below 3", lo)
	case lo%2 == 0:
		return errors.Wrapf(ErrInvalidRange, "lower bound %d is even", lo)
	}
	return nil
}

// Partition splits [lo, hi) into at most workers contiguous spans, one per
// worker. Spans cover the range exactly, in ascending order, with seed
// counts balanced within one.
func Partition(lo, hi uint64, workers int) ([]Span, error) {
	if err := CheckRange(lo, hi); err != nil {
		return nil, err
	}
	count := OddCount(lo, hi)
	w := uint64(1)
	if workers > 1 {
		w = uint64(workers)
	}
	if w > count {
		w = count
	}
	base, extra := count/w, count%w
	spans := make([]Span, 0, w)
	cur := lo
	for i := uint64(0); i < w; i++ {
		k := base
		if i < extra {
			k++
		}
		spans = append(spans, Span{Lo: cur, Hi: cur + 2*k})
		cur += 2 * k
	}
	// The running bound lands on hi or hi+1 depending on hi's parity.
	spans[len(spans)-1].Hi = hi
	return spans, nil
}

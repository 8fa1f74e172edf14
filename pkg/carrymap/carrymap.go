// Package carrymap verifies Collatz-type maps n -> (x*n+1)/2^d without
// multiplying: each step is a carry-chain scan over the value's bit pairs,
// classified through the generate/propagate/kill table.
package carrymap

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"carrymap/internal/core"
	"carrymap/internal/sweep"
	"carrymap/internal/trajectory"
)

// Re-exported result and configuration types.
type (
	Trajectory = trajectory.Trajectory
	Step       = trajectory.Step
	Outcome    = trajectory.Outcome
	Result     = sweep.Result
	Anomaly    = sweep.Anomaly
	Record     = sweep.Record
	GpkStats   = core.GpkStats
	StopRule   = core.StopRule
)

// Terminal states of a walk.
const (
	Converged     = trajectory.Converged
	CycleDetected = trajectory.CycleDetected
	CapExceeded   = trajectory.CapExceeded
)

// Stop rules for sweeps.
const (
	StopAtOne      = core.StopAtOne
	StopBelowStart = core.StopBelowStart
)

var (
	// ErrInvalidValue rejects analyze inputs that are not odd positive
	// integers.
	ErrInvalidValue = errors.New("value must be an odd positive integer")
	// ErrInvalidRange rejects malformed sweep ranges.
	ErrInvalidRange = sweep.ErrInvalidRange
	// ErrCorruptRecord flags a persisted record failing its digest check.
	ErrCorruptRecord = sweep.ErrCorruptRecord
	// ErrCrossTierMismatch reports a self-check failure: two engines
	// disagreed on the same input.
	ErrCrossTierMismatch = errors.New("cross-tier mismatch")
)

// AnalyzeOptions parameterizes AnalyzeSingle. Progress, when non-nil,
// receives the step ordinal, current width in pairs and the step's d.
type AnalyzeOptions struct {
	core.AnalyzeConfig
	Progress func(step uint64, pairs, d int)
}

func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{AnalyzeConfig: core.DefaultAnalyzeConfig()}
}

// SweepOptions parameterizes Sweep. Progress, when non-nil, receives
// cumulative completed seed counts and may be called concurrently.
type SweepOptions struct {
	core.SweepConfig
	Progress func(done uint64)
}

func DefaultSweepOptions() SweepOptions {
	return SweepOptions{SweepConfig: core.DefaultSweepConfig()}
}

// AnalyzeSingle decomposes one value's full orbit: every odd step with its
// shift amount and classification, to the terminal. Deterministic and
// single-threaded.
func AnalyzeSingle(value *big.Int, opts AnalyzeOptions) (*Trajectory, error) {
	return AnalyzeSingleContext(context.Background(), value, opts)
}

// AnalyzeSingleContext is AnalyzeSingle with cancellation; a cancelled run
// returns the partial trajectory with Cancelled set, not an error.
func AnalyzeSingleContext(ctx context.Context, value *big.Int, opts AnalyzeOptions) (*Trajectory, error) {
	if value == nil || value.Sign() <= 0 || value.Bit(0) == 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "%v", value)
	}
	if opts.X == 0 {
		opts.X = 3
	}
	m, err := core.NewMapConstant(opts.X)
	if err != nil {
		return nil, err
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = core.DefaultMaxSteps
	}
	return trajectory.Trace(ctx, value, m, opts.AnalyzeConfig, opts.Progress), nil
}

// Sweep walks every odd seed in the half-open range [lo, hi) to its
// terminal across opts.Workers workers. The result is identical for every
// worker count. Cancellation through ctx returns the partial result with
// Cancelled set. With opts.SelfCheck the engines are cross-checked before
// any seed runs.
func Sweep(ctx context.Context, lo, hi uint64, opts SweepOptions) (*Result, error) {
	if opts.X == 0 {
		opts.X = 3
	}
	if opts.SelfCheck {
		if err := SelfCheck(); err != nil {
			return nil, err
		}
	}
	return sweep.Run(ctx, lo, hi, opts.SweepConfig, opts.Progress)
}

// NewRecord builds the persisted form of a sweep result.
func NewRecord(res *Result) *Record { return sweep.NewRecord(res) }

// LoadRecord reads a persisted sweep record, verifying its digest.
func LoadRecord(path string) (*Record, error) { return sweep.Load(path) }

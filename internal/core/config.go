package core

import "runtime"

// Constants shared by the trajectory and sweep layers.
const (
	// MaxPairCount caps the width a trajectory value may grow to before the
	// run is recorded as divergent. 10000 pairs is 20000 bits, far past
	// anything a converging orbit reaches.
	MaxPairCount = 10000

	// DefaultMaxSteps bounds the odd-step count of a single trajectory.
	DefaultMaxSteps = 100000

	// ProgressBatch is how many seeds a sweep worker completes between
	// progress reports and cancellation checks.
	ProgressBatch = 100
)

// StopRule selects when a trajectory is considered settled.
type StopRule int

const (
	// StopAtOne follows the orbit all the way down to 1.
	StopAtOne StopRule = iota
	// StopBelowStart stops as soon as the value drops below the seed,
	// which is enough for range verification and much cheaper.
	StopBelowStart
)

func (r StopRule) String() string {
	if r == StopBelowStart {
		return "stop-below-start"
	}
	return "stop-at-one"
}

// AnalyzeConfig parameterizes a single-value trajectory analysis.
type AnalyzeConfig struct {
	X           uint64 // map multiplier, x-1 a power of two
	MaxSteps    uint64 // odd-step budget before CapExceeded
	CollectGpk  bool   // record per-step classification
	RecordSteps bool   // keep every intermediate value
	Verbose     bool
}

// DefaultAnalyzeConfig returns the analysis defaults.
func DefaultAnalyzeConfig() AnalyzeConfig {
	return AnalyzeConfig{
		X:           3,
		MaxSteps:    DefaultMaxSteps,
		CollectGpk:  true,
		RecordSteps: true,
		Verbose:     false,
	}
}

// SweepConfig parameterizes a range sweep.
type SweepConfig struct {
	X          uint64   // map multiplier, x-1 a power of two
	MaxSteps   uint64   // odd-step budget per seed
	Workers    int      // concurrent workers; <= 0 means NumCPU
	Batch      uint64   // seeds between progress reports; 0 means ProgressBatch
	Rule       StopRule // when a seed counts as settled
	CollectGpk bool     // aggregate classification statistics
	UseNative  bool     // start seeds in the native tier
	SelfCheck  bool     // cross-check the engines before sweeping
	Verbose    bool
}

// DefaultSweepConfig returns the sweep defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		X:          3,
		MaxSteps:   DefaultMaxSteps,
		Workers:    runtime.NumCPU(),
		Batch:      ProgressBatch,
		Rule:       StopAtOne,
		CollectGpk: true,
		UseNative:  true,
		Verbose:    false,
	}
}

// EffectiveWorkers clamps the worker count to at least one.
func (c SweepConfig) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

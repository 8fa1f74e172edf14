package carrymap_test

import (
	"context"
	"math/big"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrymap/internal/core"
	"carrymap/pkg/carrymap"
)

func TestAnalyzeSingle27(t *testing.T) {
	traj, err := carrymap.AnalyzeSingle(big.NewInt(27), carrymap.DefaultAnalyzeOptions())
	require.NoError(t, err)

	assert.Equal(t, carrymap.Converged, traj.Outcome)
	assert.Equal(t, uint64(41), traj.OddSteps)
	assert.Equal(t, uint64(70), traj.Halvings)
	assert.Equal(t, uint64(111), traj.StoppingTime)
	require.Len(t, traj.Steps, 41)
	assert.Equal(t, int64(41), traj.Steps[0].Value().Int64())
	assert.Equal(t, "GPG", traj.Steps[0].Gpk.GpkString(0))
	assert.Equal(t, int64(3077), traj.MaxValue.Int64())
}

func TestAnalyzeSingleFiveMap(t *testing.T) {
	opts := carrymap.DefaultAnalyzeOptions()
	opts.X = 5
	traj, err := carrymap.AnalyzeSingle(big.NewInt(27), opts)
	require.NoError(t, err)

	assert.Equal(t, carrymap.CycleDetected, traj.Outcome)
	assert.Equal(t, uint64(3), traj.CycleLength)
	require.NotEmpty(t, traj.Steps)
	first := traj.Steps[0]
	assert.Equal(t, int64(17), first.Value().Int64())
	assert.Equal(t, 3, first.D)
	assert.Equal(t, "PGP", first.Gpk.GpkString(0))
	assert.Equal(t, uint32(3), first.Gpk.MaxCarryChain())
}

func TestAnalyzeKnownSteps(t *testing.T) {
	cases := []struct {
		n    int64
		x    uint64
		d    int
		next int64
	}{
		{27, 3, 1, 41},
		{27, 5, 3, 17},
		{7, 3, 1, 11},
		{5, 3, 4, 1},
		{3, 3, 1, 5},
	}
	for _, c := range cases {
		opts := carrymap.DefaultAnalyzeOptions()
		opts.X = c.x
		traj, err := carrymap.AnalyzeSingle(big.NewInt(c.n), opts)
		require.NoError(t, err)
		require.NotEmpty(t, traj.Steps, "n=%d x=%d", c.n, c.x)
		assert.Equal(t, c.d, traj.Steps[0].D, "n=%d x=%d", c.n, c.x)
		assert.Equal(t, c.next, traj.Steps[0].Value().Int64(), "n=%d x=%d", c.n, c.x)
	}

	// 1 is terminal, so its step shows up only at the engine level.
	res := core.ScanStep3(core.PairFromUint64(1))
	assert.Equal(t, 2, res.D)
	assert.True(t, res.Next.IsOne())
}

func TestAnalyzeCycleValues(t *testing.T) {
	opts := carrymap.DefaultAnalyzeOptions()
	opts.X = 5
	traj, err := carrymap.AnalyzeSingle(big.NewInt(13), opts)
	require.NoError(t, err)
	require.Equal(t, carrymap.CycleDetected, traj.Outcome)
	require.Equal(t, uint64(3), traj.CycleLength)
	members := traj.CycleValues()
	require.Len(t, members, 3)
	assert.Equal(t, int64(33), members[0].Int64())
	assert.Equal(t, int64(83), members[1].Int64())
	assert.Equal(t, int64(13), members[2].Int64())
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5), big.NewInt(4)} {
		_, err := carrymap.AnalyzeSingle(v, carrymap.DefaultAnalyzeOptions())
		require.Error(t, err, "%v", v)
		assert.True(t, errors.Is(err, carrymap.ErrInvalidValue), "%v: %v", v, err)
	}

	opts := carrymap.DefaultAnalyzeOptions()
	opts.X = 7 // 7-1 is not a power of two
	_, err := carrymap.AnalyzeSingle(big.NewInt(27), opts)
	require.Error(t, err)
}

func TestAnalyzeProgressAndCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := carrymap.DefaultAnalyzeOptions()
	opts.Progress = func(step uint64, pairs, d int) {
		if step == 3 {
			cancel()
		}
	}
	traj, err := carrymap.AnalyzeSingleContext(ctx, big.NewInt(27), opts)
	require.NoError(t, err)
	assert.True(t, traj.Cancelled)
	assert.Equal(t, uint64(3), traj.OddSteps)
}

func TestSweepFacade(t *testing.T) {
	opts := carrymap.DefaultSweepOptions()
	opts.Workers = 4
	var last atomic.Uint64
	opts.Progress = func(done uint64) {
		for {
			prev := last.Load()
			if done <= prev || last.CompareAndSwap(prev, done) {
				return
			}
		}
	}
	res, err := carrymap.Sweep(context.Background(), 3, 1000, opts)
	require.NoError(t, err)

	assert.Equal(t, uint64(499), res.Verified)
	assert.Empty(t, res.Anomalies)
	assert.Equal(t, uint64(178), res.MaxStop)
	assert.Equal(t, uint64(871), res.MaxStopSeed)
	assert.Equal(t, res.Processed, last.Load())
}

func TestSweepFacadeInvalidRange(t *testing.T) {
	_, err := carrymap.Sweep(context.Background(), 10, 100, carrymap.DefaultSweepOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, carrymap.ErrInvalidRange))
}

func TestRecordFacade(t *testing.T) {
	opts := carrymap.DefaultSweepOptions()
	opts.Workers = 2
	res, err := carrymap.Sweep(context.Background(), 3, 300, opts)
	require.NoError(t, err)

	rec := carrymap.NewRecord(res)
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, rec.Save(path))
	back, err := carrymap.LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestSelfCheck(t *testing.T) {
	require.NoError(t, carrymap.SelfCheck())
}

func TestDefaultOptions(t *testing.T) {
	a := carrymap.DefaultAnalyzeOptions()
	assert.Equal(t, uint64(3), a.X)
	assert.True(t, a.CollectGpk)
	assert.True(t, a.RecordSteps)

	s := carrymap.DefaultSweepOptions()
	assert.Equal(t, uint64(3), s.X)
	assert.Greater(t, s.EffectiveWorkers(), 0)
	assert.Equal(t, carrymap.StopAtOne, s.Rule)
	assert.True(t, s.UseNative)
}

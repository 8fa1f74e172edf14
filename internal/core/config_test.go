// carrymap/internal/core/config_test.go
package core

import (
	"runtime"
	"testing"
)

func TestDefaultConfigs(t *testing.T) {
	ac := DefaultAnalyzeConfig()
	if ac.X != 3 || ac.MaxSteps != DefaultMaxSteps || !ac.CollectGpk || !ac.RecordSteps {
		t.Errorf("unexpected analyze defaults: %+v", ac)
	}
	sc := DefaultSweepConfig()
	if sc.X != 3 || sc.MaxSteps != DefaultMaxSteps || sc.Rule != StopAtOne || !sc.UseNative {
		t.Errorf("unexpected sweep defaults: %+v", sc)
	}
	if sc.Workers != runtime.NumCPU() {
		t.Errorf("default Workers = %d, want NumCPU = %d", sc.Workers, runtime.NumCPU())
	}
	if sc.Batch != ProgressBatch {
		t.Errorf("default Batch = %d, want %d", sc.Batch, ProgressBatch)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{0, runtime.NumCPU()},
		{-4, runtime.NumCPU()},
		{1, 1},
		{7, 7},
	}
	for _, tt := range tests {
		cfg := SweepConfig{Workers: tt.workers}
		if got := cfg.EffectiveWorkers(); got != tt.want {
			t.Errorf("EffectiveWorkers(%d) = %d, want %d", tt.workers, got, tt.want)
		}
	}
}

func TestStopRuleString(t *testing.T) {
	if got := StopAtOne.String(); got != "stop-at-one" {
		t.Errorf("StopAtOne.String() = %q", got)
	}
	if got := StopBelowStart.String(); got != "stop-below-start" {
		t.Errorf("StopBelowStart.String() = %q", got)
	}
}

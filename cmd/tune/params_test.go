package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/flip/config"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()

	got := pv.Clamp([]float64{2.5, -1})
	if got[0] != 1.99 || got[1] != 0 {
		t.Errorf("Clamp = %v, want [1.99 0]", got)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	pv.ApplyToConfig(cfg, []float64{1.5, 0.9})

	if cfg.Solver.OverRelaxation != 1.5 {
		t.Errorf("over_relaxation = %v, want 1.5", cfg.Solver.OverRelaxation)
	}
	if cfg.Drift.Stiffness != 0.5 {
		t.Errorf("stiffness = %v, want clamped 0.5", cfg.Drift.Stiffness)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Solver.NumPressureIters != 20 {
		t.Errorf("NumPressureIters = %d, want 20", cfg.Solver.NumPressureIters)
	}
	if cfg.Solver.OverRelaxation != 1.9 {
		t.Errorf("OverRelaxation = %v, want 1.9", cfg.Solver.OverRelaxation)
	}
	if cfg.Solver.FlipRatio != 0.2 {
		t.Errorf("FlipRatio = %v, want 0.2", cfg.Solver.FlipRatio)
	}
	if len(cfg.Spawning.Spawners) != 2 {
		t.Fatalf("expected 2 default spawners, got %d", len(cfg.Spawning.Spawners))
	}
	if cfg.Derived.DT32 <= 0 {
		t.Error("expected derived DT32 to be set")
	}
	if cfg.Derived.CellSize < 6 {
		t.Errorf("derived cell size %v below minimum", cfg.Derived.CellSize)
	}
}

func TestLoadOverlayKeepsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("solver:\n  gravity: 0\n  flip_ratio: 0.9\nspawning:\n  enabled: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Explicit zero must be honoured rather than falling back to the default.
	if cfg.Solver.Gravity != 0 {
		t.Errorf("Gravity = %v, want 0", cfg.Solver.Gravity)
	}
	if cfg.Solver.FlipRatio != 0.9 {
		t.Errorf("FlipRatio = %v, want 0.9", cfg.Solver.FlipRatio)
	}
	if cfg.Spawning.Enabled {
		t.Error("expected spawning to be disabled")
	}
	if cfg.Solver.NumPressureIters != 20 {
		t.Errorf("unset field lost its default: NumPressureIters = %d", cfg.Solver.NumPressureIters)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero dt", "solver:\n  dt: 0\n"},
		{"flip ratio above one", "solver:\n  flip_ratio: 1.5\n"},
		{"negative capacity", "particles:\n  max: -1\n"},
		{"empty screen", "screen:\n  width: 0\n"},
		{"zero target cells", "grid:\n  target_cell_count: 0\n"},
		{"zero min cell size", "grid:\n  min_cell_size: 0\n  target_cell_count: 100000000\n"},
		{"negative min cell size", "grid:\n  min_cell_size: -2\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCellSizeFor(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		target        int
		width, height float32
		want          float32
	}{
		{"clamped to minimum", 14000, 800, 600, 6},
		{"rounded", 6640, 800, 600, 9},
		{"large cells", 100, 1000, 1000, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg.Grid.TargetCellCount = tc.target
			if got := cfg.CellSizeFor(tc.width, tc.height); got != tc.want {
				t.Errorf("CellSizeFor(%v, %v) = %v, want %v", tc.width, tc.height, got, tc.want)
			}
		})
	}
}

func TestCellSizeForNeverBelowOnePixel(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.MinCellSize = 0
	cfg.Grid.TargetCellCount = 100_000_000

	if got := cfg.CellSizeFor(800, 600); got != 1 {
		t.Errorf("CellSizeFor = %v, want 1", got)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Solver.OverRelaxation = 1.75

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Solver.OverRelaxation != 1.75 {
		t.Errorf("OverRelaxation = %v, want 1.75", loaded.Solver.OverRelaxation)
	}
}

// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Particles ParticlesConfig `yaml:"particles"`
	Solver    SolverConfig    `yaml:"solver"`
	Drift     DriftConfig     `yaml:"drift"`
	Spawning  SpawningConfig  `yaml:"spawning"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
// The simulation domain matches the screen size.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig controls the resolution of the Eulerian grid.
type GridConfig struct {
	TargetCellCount int     `yaml:"target_cell_count"` // Cell size h = sqrt(area / target)
	MinCellSize     float64 `yaml:"min_cell_size"`     // Lower bound on h in pixels
}

// ParticlesConfig holds particle arena and separation parameters.
type ParticlesConfig struct {
	Radius           float64 `yaml:"radius"`            // Pixels (0 = 0.3 * cell size)
	Max              int     `yaml:"max"`               // Hard capacity of the particle arena
	Separate         bool    `yaml:"separate"`          // Enable the spatial-hash push-apart pass
	SeparationFactor float64 `yaml:"separation_factor"` // Rest distance = radius * this
	NumIters         int     `yaml:"num_iters"`         // Push-apart sub-iterations per step
}

// SolverConfig holds time stepping and projection parameters.
type SolverConfig struct {
	DT               float64 `yaml:"dt"`
	NumPressureIters int     `yaml:"num_pressure_iters"`
	OverRelaxation   float64 `yaml:"over_relaxation"`
	FlipRatio        float64 `yaml:"flip_ratio"` // 0 = pure PIC, 1 = pure FLIP
	Gravity          float64 `yaml:"gravity"`    // Pixels per second squared, negative is down
	Restitution      float64 `yaml:"restitution"`
}

// DriftConfig holds density drift compensation parameters.
type DriftConfig struct {
	Compensate  bool    `yaml:"compensate"`
	RestDensity float64 `yaml:"rest_density"`
	Stiffness   float64 `yaml:"stiffness"`
}

// SpawningConfig holds particle source definitions.
type SpawningConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Spawners []SpawnerConfig `yaml:"spawners"`
}

// SpawnerConfig defines a stationary particle source.
// Coordinates, velocity and jitter are expressed in grid cells so that a
// layout survives a change of window size. Negative X or Y count from the
// right or top edge.
type SpawnerConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VelX   float64 `yaml:"vel_x"` // Cells per second
	VelY   float64 `yaml:"vel_y"`
	Rate   int     `yaml:"rate"`   // Particles per step
	Jitter float64 `yaml:"jitter"` // Cells
}

// RenderConfig holds viewer-only settings. The solver ignores them.
type RenderConfig struct {
	MaxSpeedForColor float64 `yaml:"max_speed_for_color"` // Pixels per second (0 = derive from cell size)
	MaxSpeedCells    float64 `yaml:"max_speed_cells"`     // Cells per step used when deriving
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Solver.DT as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	CellSize  float32 // Grid cell size for the configured screen
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the solver cannot run with.
func (c *Config) validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Grid.TargetCellCount <= 0 {
		return fmt.Errorf("grid.target_cell_count must be positive, got %d", c.Grid.TargetCellCount)
	}
	if c.Grid.MinCellSize < 1 {
		return fmt.Errorf("grid.min_cell_size must be at least 1, got %g", c.Grid.MinCellSize)
	}
	if c.Solver.DT <= 0 {
		return fmt.Errorf("solver.dt must be positive, got %g", c.Solver.DT)
	}
	if c.Particles.Max < 0 {
		return fmt.Errorf("particles.max must not be negative, got %d", c.Particles.Max)
	}
	if c.Solver.FlipRatio < 0 || c.Solver.FlipRatio > 1 {
		return fmt.Errorf("solver.flip_ratio must be in [0, 1], got %g", c.Solver.FlipRatio)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Solver.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.CellSize = c.CellSizeFor(c.Derived.ScreenW32, c.Derived.ScreenH32)
}

// CellSizeFor returns the grid cell size for a domain of the given size:
// max(min_cell_size, round(sqrt(area / target_cell_count))), never below one
// pixel.
func (c *Config) CellSizeFor(width, height float32) float32 {
	target := c.Grid.TargetCellCount
	if target <= 0 {
		target = 1
	}
	h := math.Round(math.Sqrt(float64(width) * float64(height) / float64(target)))
	return float32(max(c.Grid.MinCellSize, h, 1))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

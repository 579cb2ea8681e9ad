// Package game hosts a fluid solver: it schedules steps, turns pointer drags
// into obstacles, draws the scene and flushes telemetry.
package game

import (
	"log/slog"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/renderer"
	"github.com/pthm-cable/flip/solver"
	"github.com/pthm-cable/flip/systems"
	"github.com/pthm-cable/flip/telemetry"
	"github.com/pthm-cable/flip/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Domain size in pixels (0 = use config screen size)
	Width, Height float32
}

// Game owns the solver and everything around it.
type Game struct {
	cfg    *config.Config
	solver *solver.Solver

	width, height float32

	paused         bool
	stepsPerUpdate int
	headless       bool

	// Obstacle drag in simulation coordinates; W and H may be negative.
	dragging bool
	draft    systems.Rect

	// Rendering (nil when headless)
	fluidRenderer *renderer.FluidRenderer
	controlPanel  *ui.ControlPanel
	perfPanel     *ui.PerfPanel

	// Telemetry
	collector      *telemetry.Collector
	statsWindowSec float64
	outputManager  *telemetry.OutputManager
	logStats       bool
	lastSample     telemetry.TickSample
}

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:            cfg,
		solver:         solver.New(cfg, width, height, opts.Seed),
		width:          width,
		height:         height,
		stepsPerUpdate: steps,
		headless:       opts.Headless,
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		statsWindowSec: statsWindow,
		logStats:       opts.LogStats,
	}

	slog.Info("telemetry window",
		"window_sec", statsWindow,
		"window_ticks", g.collector.WindowTicks(),
	)

	if !opts.Headless {
		g.fluidRenderer = renderer.NewFluidRenderer(height)
		g.controlPanel = ui.NewControlPanel(10, 10, 230)
		g.perfPanel = ui.NewPerfPanel(int32(width)-230, 10)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	return g
}

// Update handles input and runs the configured number of steps.
func (g *Game) Update() {
	g.handleInput()
	g.solver.Perf().RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// UpdateHeadless runs steps without touching the window.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

func (g *Game) step() {
	g.solver.Step()
	g.lastSample = g.solver.Sample()
	g.collector.Record(g.lastSample)
	g.flushTelemetry()
}

// Solver returns the hosted solver.
func (g *Game) Solver() *solver.Solver {
	return g.solver
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.solver.Tick()
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

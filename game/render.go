package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/systems"
	"github.com/pthm-cable/flip/telemetry"
	"github.com/pthm-cable/flip/ui"
)

const controlsLegend = "[Space] pause  [R] reset  [C] clear obstacles  [H] panel  [P] perf  [< >] steps  drag: add obstacle"

// Draw renders the current frame.
func (g *Game) Draw() {
	s := g.solver

	rl.BeginDrawing()
	g.fluidRenderer.Clear()

	g.fluidRenderer.DrawParticles(s.Particles(), s.Radius(), s.MaxSpeedForColor())
	g.fluidRenderer.DrawObstacles(s.Obstacles())
	if g.dragging {
		g.fluidRenderer.DrawDraft(g.draft)
	}

	perf := s.Perf().Stats()
	actions := g.controlPanel.Draw(ui.PanelState{
		Paused:       g.paused,
		Tick:         s.Tick(),
		Particles:    s.Particles().Count,
		MaxParticles: s.Particles().Cap(),
		FluidCells:   s.Grid().CountCells(systems.CellFluid),
		Obstacles:    len(s.Obstacles()),
		CellSize:     s.CellSize(),
		DivMax:       g.lastSample.DivMax,
		StepUS:       perf.AvgTickDuration.Microseconds(),
		FPS:          perf.FPS,
	})
	g.perfPanel.Draw(ui.PerfPanelData{
		PhaseAvg: perf.PhaseAvg,
		Total:    perf.AvgTickDuration,
	}, telemetry.Phases)
	ui.DrawControls(int32(g.height), controlsLegend)

	rl.EndDrawing()

	if actions.TogglePause {
		g.paused = !g.paused
	}
	if actions.Reset {
		g.reset()
	}
	if actions.ClearObstacles {
		g.clearObstacles()
	}
}

package game

import (
	"errors"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/solver"
	"github.com/pthm-cable/flip/telemetry"
)

// handleInput processes keyboard and pointer input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.clearObstacles()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.controlPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.perfPanel.Toggle()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	g.handleObstacleDrag()
}

// handleObstacleDrag turns a left-button drag into an obstacle. Screen y is
// flipped into the y-up simulation frame. Leaving the window cancels it.
func (g *Game) handleObstacleDrag() {
	mouse := rl.GetMousePosition()
	x, y := mouse.X, g.height-mouse.Y

	if g.dragging && !rl.IsCursorOnScreen() {
		g.dragging = false
		return
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if g.controlPanel.Contains(mouse.X, mouse.Y) {
			return
		}
		g.dragging = true
		g.draft.X, g.draft.Y = x, y
		g.draft.W, g.draft.H = 0, 0
		return
	}

	if !g.dragging {
		return
	}

	g.draft.W = x - g.draft.X
	g.draft.H = y - g.draft.Y

	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
		_, err := g.solver.AddObstacle(g.draft.X, g.draft.Y, g.draft.W, g.draft.H)
		if err != nil && !errors.Is(err, solver.ErrObstacleTooSmall) {
			slog.Error("failed to add obstacle", "error", err)
		}
	}
}

func (g *Game) reset() {
	g.solver.Reset()
	g.dragging = false
	// Tick restarts at zero, so the stats window does too.
	g.collector = telemetry.NewCollector(g.statsWindowSec, g.cfg.Derived.DT32)
}

func (g *Game) clearObstacles() {
	g.solver.ClearObstacles()
	slog.Info("obstacles cleared")
}

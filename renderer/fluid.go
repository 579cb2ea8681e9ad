// Package renderer draws the fluid scene with raylib. The simulation uses a
// y-up frame; every draw call flips into raylib's y-down screen space.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/systems"
)

var (
	backgroundColor = rl.Color{R: 5, G: 5, B: 8, A: 255}
	obstacleColor   = rl.Color{R: 136, G: 136, B: 136, A: 255}
	draftColor      = rl.White
)

// FluidRenderer draws particles coloured by speed, obstacles and the
// obstacle being dragged.
type FluidRenderer struct {
	palette      *SpeedPalette
	screenHeight float32
}

// NewFluidRenderer creates a renderer for a domain of the given height.
func NewFluidRenderer(screenHeight float32) *FluidRenderer {
	return &FluidRenderer{
		palette:      NewSpeedPalette(),
		screenHeight: screenHeight,
	}
}

// Clear fills the frame with the background colour.
func (r *FluidRenderer) Clear() {
	rl.ClearBackground(backgroundColor)
}

// DrawParticles renders every live particle. Tiny radii are drawn as squares,
// and skipped entirely once the particle count makes them unreadable.
func (r *FluidRenderer) DrawParticles(ps *systems.ParticleSet, radius, maxSpeed float32) {
	if radius < 0.5 && ps.Count > 1000 {
		return
	}

	for i := 0; i < ps.Count; i++ {
		u, v := ps.U[i], ps.V[i]
		speed := float32(math.Sqrt(float64(u*u + v*v)))
		cr, cg, cb := r.palette.Lookup(speed, maxSpeed)
		color := rl.Color{R: cr, G: cg, B: cb, A: 255}

		x := ps.X[i]
		y := r.screenHeight - ps.Y[i]
		if radius < 1.5 {
			rl.DrawRectangleV(rl.Vector2{X: x - radius, Y: y - radius}, rl.Vector2{X: 2 * radius, Y: 2 * radius}, color)
		} else {
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, color)
		}
	}
}

// DrawObstacles fills every obstacle rectangle.
func (r *FluidRenderer) DrawObstacles(rects []systems.Rect) {
	for _, rect := range rects {
		rl.DrawRectangleRec(r.screenRect(rect), obstacleColor)
	}
}

// DrawDraft outlines the obstacle currently being dragged. The rectangle may
// have negative extents.
func (r *FluidRenderer) DrawDraft(rect systems.Rect) {
	if rect.W < 0 {
		rect.X, rect.W = rect.X+rect.W, -rect.W
	}
	if rect.H < 0 {
		rect.Y, rect.H = rect.Y+rect.H, -rect.H
	}
	rl.DrawRectangleLinesEx(r.screenRect(rect), 1, draftColor)
}

func (r *FluidRenderer) screenRect(rect systems.Rect) rl.Rectangle {
	return rl.Rectangle{
		X:      rect.X,
		Y:      r.screenHeight - (rect.Y + rect.H),
		Width:  rect.W,
		Height: rect.H,
	}
}

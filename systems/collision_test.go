package systems

import (
	"math"
	"math/rand"
	"testing"
)

func testCollisionParams() CollisionParams {
	return CollisionParams{Width: 800, Height: 600, Margin: 8.5, Radius: 2.5, Restitution: 0.1}
}

// TestHandleCollisionsBoundary verifies wall clamping and velocity damping.
func TestHandleCollisionsBoundary(t *testing.T) {
	c := testCollisionParams()
	lo := c.Margin + c.Radius
	hiX := c.Width - c.Margin - c.Radius
	hiY := c.Height - c.Margin - c.Radius

	tests := []struct {
		name         string
		x, y, u, v   float32
		wantX, wantY float32
		wantU, wantV float32
	}{
		{"inside untouched", 400, 300, 5, -5, 400, 300, 5, -5},
		{"left wall", -20, 300, -50, 0, lo, 300, 5, 0},
		{"right wall", 900, 300, 50, 0, hiX, 300, -5, 0},
		{"floor", 400, 0, 0, -100, 400, lo, 0, 10},
		{"ceiling", 400, 700, 0, 30, 400, hiY, 0, -3},
		{"corner", -1, -1, -10, -10, lo, lo, 1, 1},
		{"moving away from wall keeps no inward push", -5, 300, 20, 0, lo, 300, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ps := NewParticleSet(1)
			ps.Add(tc.x, tc.y, tc.u, tc.v)

			HandleCollisions(ps, c, nil)

			if !approxEqual(ps.X[0], tc.wantX, 1e-4) || !approxEqual(ps.Y[0], tc.wantY, 1e-4) {
				t.Errorf("position = (%v,%v), want (%v,%v)", ps.X[0], ps.Y[0], tc.wantX, tc.wantY)
			}
			if !approxEqual(ps.U[0], tc.wantU, 1e-4) || !approxEqual(ps.V[0], tc.wantV, 1e-4) {
				t.Errorf("velocity = (%v,%v), want (%v,%v)", ps.U[0], ps.V[0], tc.wantU, tc.wantV)
			}
		})
	}
}

// TestHandleCollisionsContainment checks random particles always end up inside the walls.
func TestHandleCollisionsContainment(t *testing.T) {
	c := testCollisionParams()
	rng := rand.New(rand.NewSource(11))

	ps := NewParticleSet(500)
	for i := 0; i < 500; i++ {
		ps.Add(rng.Float32()*2000-600, rng.Float32()*2000-700, rng.Float32()*1000-500, rng.Float32()*1000-500)
	}
	Integrate(ps, -196.2, 1.0/60)
	HandleCollisions(ps, c, nil)

	lo := c.Margin + c.Radius
	for i := 0; i < ps.Count; i++ {
		if ps.X[i] < lo || ps.X[i] > c.Width-lo || ps.Y[i] < lo || ps.Y[i] > c.Height-lo {
			t.Fatalf("particle %d escaped: (%v,%v)", i, ps.X[i], ps.Y[i])
		}
	}
}

// TestHandleCollisionsObstacle verifies push-out along the shallow axis.
func TestHandleCollisionsObstacle(t *testing.T) {
	c := testCollisionParams()
	rect := Rect{X: 300, Y: 200, W: 100, H: 40}

	tests := []struct {
		name         string
		x, y, u, v   float32
		wantX, wantY float32
		wantU, wantV float32
	}{
		// Near the left edge: x overlap 2.5+50-|302-350| = 4.5, y overlap 22.5.
		{"left edge", 302, 220, 10, 3, 300 - 2.5, 220, -1, 3},
		// Near the top: y overlap 2.5+20-|238-220| = 4.5, x overlap 52.5.
		{"top edge", 350, 238, 4, -20, 350, 240 + 2.5, 4, 2},
		// Below the bottom edge but within the radius.
		{"bottom skin", 330, 198.5, 0, 10, 330, 200 - 2.5, 0, -1},
		// Exactly on the vertical center line: pushed toward +y.
		{"center line", 350, 220, 0, 0, 350, 240 + 2.5, 0, 0},
		{"clear of obstacle", 250, 220, 1, 1, 250, 220, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ps := NewParticleSet(1)
			ps.Add(tc.x, tc.y, tc.u, tc.v)

			HandleCollisions(ps, c, []Rect{rect})

			if !approxEqual(ps.X[0], tc.wantX, 1e-3) || !approxEqual(ps.Y[0], tc.wantY, 1e-3) {
				t.Errorf("position = (%v,%v), want (%v,%v)", ps.X[0], ps.Y[0], tc.wantX, tc.wantY)
			}
			if !approxEqual(ps.U[0], tc.wantU, 1e-4) || !approxEqual(ps.V[0], tc.wantV, 1e-4) {
				t.Errorf("velocity = (%v,%v), want (%v,%v)", ps.U[0], ps.V[0], tc.wantU, tc.wantV)
			}
		})
	}
}

// TestHandleCollisionsObstacleLeavesNoPenetration checks particles end outside the inflated rectangle.
func TestHandleCollisionsObstacleLeavesNoPenetration(t *testing.T) {
	c := testCollisionParams()
	rect := Rect{X: 300, Y: 200, W: 60, H: 60}
	rng := rand.New(rand.NewSource(5))

	ps := NewParticleSet(300)
	for i := 0; i < 300; i++ {
		ps.Add(rect.X+rng.Float32()*rect.W, rect.Y+rng.Float32()*rect.H, 0, 0)
	}
	HandleCollisions(ps, c, []Rect{rect})

	cx, cy := rect.Center()
	for i := 0; i < ps.Count; i++ {
		ox := c.Radius + rect.W/2 - float32(math.Abs(float64(ps.X[i]-cx)))
		oy := c.Radius + rect.H/2 - float32(math.Abs(float64(ps.Y[i]-cy)))
		if ox > 1e-3 && oy > 1e-3 {
			t.Fatalf("particle %d still inside: (%v,%v)", i, ps.X[i], ps.Y[i])
		}
	}
}

package systems

// CollisionParams configures boundary and obstacle handling.
type CollisionParams struct {
	Width, Height float32 // domain size
	Margin        float32 // wall thickness, normally the grid cell size
	Radius        float32 // particle radius
	Restitution   float32
}

// HandleCollisions keeps particles inside the domain and outside obstacles.
//
// Walls clamp each axis to [Margin+Radius, size-Margin-Radius] and reflect the
// outward velocity component scaled by restitution. Obstacles are treated as
// rectangles inflated by the particle radius; an overlapping particle is moved
// out along the axis with the smaller penetration only.
func HandleCollisions(ps *ParticleSet, c CollisionParams, obstacles []Rect) {
	minX := c.Margin + c.Radius
	maxX := c.Width - c.Margin - c.Radius
	minY := c.Margin + c.Radius
	maxY := c.Height - c.Margin - c.Radius
	e := c.Restitution

	for p := 0; p < ps.Count; p++ {
		x, y := ps.X[p], ps.Y[p]
		u, v := ps.U[p], ps.V[p]

		if x < minX {
			x = minX
			u = max(0, u*-e)
		}
		if x > maxX {
			x = maxX
			u = min(0, u*-e)
		}
		if y < minY {
			y = minY
			v = max(0, v*-e)
		}
		if y > maxY {
			y = maxY
			v = min(0, v*-e)
		}

		for _, r := range obstacles {
			cx, cy := r.Center()
			overlapX := (c.Radius + r.W*0.5) - absf(x-cx)
			overlapY := (c.Radius + r.H*0.5) - absf(y-cy)
			if overlapX <= 0 || overlapY <= 0 {
				continue
			}
			if overlapX < overlapY {
				x += signf(x-cx) * overlapX
				u *= -e
			} else {
				y += signf(y-cy) * overlapY
				v *= -e
			}
		}

		ps.X[p], ps.Y[p] = x, y
		ps.U[p], ps.V[p] = u, v
	}
}

package systems

// UpdateDensity splats every particle onto the four surrounding cell centers
// with bilinear weights. The result approximates how many particles occupy
// each cell and drives drift compensation in the projection.
func UpdateDensity(g *Grid, ps *ParticleSet) {
	clear(g.Density)

	h := g.H
	h2 := 0.5 * h
	for p := 0; p < ps.Count; p++ {
		x := clampFloat(ps.X[p], h, g.Width-h)
		y := clampFloat(ps.Y[p], h, g.Height-h)

		gx := (x - h2) * g.InvH
		gy := (y - h2) * g.InvH
		x0 := floorInt(gx)
		y0 := floorInt(gy)
		tx := gx - float32(x0)
		ty := gy - float32(y0)
		x1 := min(x0+1, g.NumX-1)
		y1 := min(y0+1, g.NumY-1)

		sx, sy := 1-tx, 1-ty
		g.Density[g.Index(x0, y0)] += sx * sy
		g.Density[g.Index(x1, y0)] += tx * sy
		g.Density[g.Index(x1, y1)] += tx * ty
		g.Density[g.Index(x0, y1)] += sx * ty
	}
}

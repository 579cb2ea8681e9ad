package systems

// minScaleSum marks a cell fully enclosed by solids; it is skipped.
const minScaleSum = 1e-6

// ProjectParams configures the pressure projection.
type ProjectParams struct {
	Iters           int
	OverRelaxation  float32
	CompensateDrift bool
	RestDensity     float32
	DriftStiffness  float32
}

// Project pushes face velocities toward zero divergence in every fluid cell.
// It is a matrix-free Gauss-Seidel sweep with over-relaxation that updates U
// and V in place. P accumulates the applied corrections for inspection only.
// Classify must have run beforehand.
func Project(g *Grid, p ProjectParams) {
	clear(g.P)

	n := g.NumX
	drift := p.CompensateDrift && p.RestDensity > 0

	for iter := 0; iter < p.Iters; iter++ {
		for j := 1; j < g.NumY-1; j++ {
			for i := 1; i < g.NumX-1; i++ {
				c := i + j*n
				if g.CellType[c] != CellFluid {
					continue
				}

				l, r := c-1, c+1
				b, t := c-n, c+n

				sL, sR := g.S[l], g.S[r]
				sB, sT := g.S[b], g.S[t]
				sum := sL + sR + sB + sT
				if sum < minScaleSum {
					continue
				}

				div := g.U[r] - g.U[c] + g.V[t] - g.V[c]
				if drift {
					if compression := g.Density[c] - p.RestDensity; compression > 0 {
						div -= p.DriftStiffness * compression
					}
				}

				pu := -div * p.OverRelaxation / sum
				g.P[c] += pu

				g.U[c] -= pu * sL
				g.U[r] += pu * sR
				g.V[c] -= pu * sB
				g.V[t] += pu * sT
			}
		}
	}
}

// Divergence returns the discrete velocity divergence of cell (i, j).
func (g *Grid) Divergence(i, j int) float32 {
	c := g.Index(i, j)
	return g.U[g.Index(i+1, j)] - g.U[c] + g.V[g.Index(i, j+1)] - g.V[c]
}

// FluidDivergence reports the largest and mean absolute divergence over fluid
// cells that have at least one open neighbour.
func (g *Grid) FluidDivergence() (maxAbs, meanAbs float32) {
	var sum float32
	count := 0
	n := g.NumX
	for j := 1; j < g.NumY-1; j++ {
		for i := 1; i < g.NumX-1; i++ {
			c := i + j*n
			if g.CellType[c] != CellFluid {
				continue
			}
			if g.S[c-1]+g.S[c+1]+g.S[c-n]+g.S[c+n] < minScaleSum {
				continue
			}
			d := absf(g.Divergence(i, j))
			sum += d
			if d > maxAbs {
				maxAbs = d
			}
			count++
		}
	}
	if count > 0 {
		meanAbs = sum / float32(count)
	}
	return maxAbs, meanAbs
}

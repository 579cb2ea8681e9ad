package systems

import (
	"gonum.org/v1/gonum/blas/blas32"
)

// minTransferWeight is the smallest accumulated weight treated as a sample.
const minTransferWeight = 1e-9

// faceStencil locates the four faces surrounding (x, y) on a face lattice
// shifted by (offX, offY) cells. It returns the clamped bottom-left face and
// the bilinear fractions.
func (g *Grid) faceStencil(x, y, offX, offY float32, maxI, maxJ int) (i, j int, fx, fy float32) {
	gx := x*g.InvH - offX
	gy := y*g.InvH - offY
	i = floorInt(gx)
	j = floorInt(gy)
	fx = clamp01(gx - float32(i))
	fy = clamp01(gy - float32(j))
	i = clampInt(i, 0, maxI)
	j = clampInt(j, 0, maxJ)
	return i, j, fx, fy
}

// uStencil returns the stencil for u-faces, which sit half a cell up.
func (g *Grid) uStencil(x, y float32) (int, int, float32, float32) {
	return g.faceStencil(x, y, 0, 0.5, g.NumX-1, g.NumY-2)
}

// vStencil returns the stencil for v-faces, which sit half a cell right.
func (g *Grid) vStencil(x, y float32) (int, int, float32, float32) {
	return g.faceStencil(x, y, 0.5, 0, g.NumX-2, g.NumY-1)
}

// corners returns the flat indices and weights of the 2x2 stencil.
func (g *Grid) corners(i, j int, fx, fy float32) (idx [4]int, w [4]float32) {
	sx, sy := 1-fx, 1-fy
	idx = [4]int{g.Index(i, j), g.Index(i+1, j), g.Index(i, j+1), g.Index(i+1, j+1)}
	w = [4]float32{sx * sy, fx * sy, sx * fy, fx * fy}
	return idx, w
}

// ParticlesToGrid splats particle velocities onto the face lattice, normalizes
// by the accumulated weights and snapshots the result into PrevU/PrevV for the
// FLIP update.
func ParticlesToGrid(g *Grid, ps *ParticleSet) {
	clear(g.U)
	clear(g.V)
	clear(g.WeightU)
	clear(g.WeightV)

	for p := 0; p < ps.Count; p++ {
		x, y := ps.X[p], ps.Y[p]

		idx, w := g.corners(g.uStencil(x, y))
		pu := ps.U[p]
		for k := 0; k < 4; k++ {
			g.U[idx[k]] += pu * w[k]
			g.WeightU[idx[k]] += w[k]
		}

		idx, w = g.corners(g.vStencil(x, y))
		pv := ps.V[p]
		for k := 0; k < 4; k++ {
			g.V[idx[k]] += pv * w[k]
			g.WeightV[idx[k]] += w[k]
		}
	}

	for i := range g.U {
		if g.WeightU[i] > minTransferWeight {
			g.U[i] /= g.WeightU[i]
		}
		if g.WeightV[i] > minTransferWeight {
			g.V[i] /= g.WeightV[i]
		}
	}

	n := g.NumCells()
	blas32.Copy(blas32.Vector{N: n, Inc: 1, Data: g.U}, blas32.Vector{N: n, Inc: 1, Data: g.PrevU})
	blas32.Copy(blas32.Vector{N: n, Inc: 1, Data: g.V}, blas32.Vector{N: n, Inc: 1, Data: g.PrevV})
}

// SampleU interpolates the u-face field at a point.
func (g *Grid) SampleU(field []float32, x, y float32) float32 {
	idx, w := g.corners(g.uStencil(x, y))
	return field[idx[0]]*w[0] + field[idx[1]]*w[1] + field[idx[2]]*w[2] + field[idx[3]]*w[3]
}

// SampleV interpolates the v-face field at a point.
func (g *Grid) SampleV(field []float32, x, y float32) float32 {
	idx, w := g.corners(g.vStencil(x, y))
	return field[idx[0]]*w[0] + field[idx[1]]*w[1] + field[idx[2]]*w[2] + field[idx[3]]*w[3]
}

// TransferScratch holds per-particle PIC and FLIP estimates between the
// sampling and blending halves of the grid-to-particle transfer.
type TransferScratch struct {
	picU, picV   []float32
	flipU, flipV []float32
}

// NewTransferScratch allocates scratch space for up to capacity particles.
func NewTransferScratch(capacity int) *TransferScratch {
	return &TransferScratch{
		picU:  make([]float32, capacity),
		picV:  make([]float32, capacity),
		flipU: make([]float32, capacity),
		flipV: make([]float32, capacity),
	}
}

// GridToParticles resamples the projected grid back onto the particles.
// PIC takes the post-projection value; FLIP adds the grid change to the old
// particle velocity. The result is (1-flipRatio)*PIC + flipRatio*FLIP.
func GridToParticles(g *Grid, ps *ParticleSet, flipRatio float32, s *TransferScratch) {
	n := ps.Count
	if n == 0 {
		return
	}

	for p := 0; p < n; p++ {
		x, y := ps.X[p], ps.Y[p]

		idx, w := g.corners(g.uStencil(x, y))
		var post, pre float32
		for k := 0; k < 4; k++ {
			post += g.U[idx[k]] * w[k]
			pre += g.PrevU[idx[k]] * w[k]
		}
		s.picU[p] = post
		s.flipU[p] = ps.U[p] + (post - pre)

		idx, w = g.corners(g.vStencil(x, y))
		post, pre = 0, 0
		for k := 0; k < 4; k++ {
			post += g.V[idx[k]] * w[k]
			pre += g.PrevV[idx[k]] * w[k]
		}
		s.picV[p] = post
		s.flipV[p] = ps.V[p] + (post - pre)
	}

	blend(ps.U[:n], s.picU[:n], s.flipU[:n], flipRatio)
	blend(ps.V[:n], s.picV[:n], s.flipV[:n], flipRatio)
}

// blend writes dst = (1-r)*pic + r*flip.
func blend(dst, pic, flip []float32, r float32) {
	n := len(dst)
	vDst := blas32.Vector{N: n, Inc: 1, Data: dst}
	blas32.Copy(blas32.Vector{N: n, Inc: 1, Data: pic}, vDst)
	blas32.Scal(1-r, vDst)
	blas32.Axpy(r, blas32.Vector{N: n, Inc: 1, Data: flip}, vDst)
}

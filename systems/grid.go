// Package systems provides the numerical kernels of the FLIP/PIC fluid solver.
//
// The grid is a staggered MAC grid: U is stored on the left face of each cell
// and V on the bottom face. Cell (i, j) lives at index i + j*NumX and covers
// [i*h, (i+1)*h] x [j*h, (j+1)*h] in simulation space, origin bottom-left.
package systems

// CellType classifies a grid cell for the projection step.
type CellType int32

const (
	CellSolid CellType = iota
	CellFluid
	CellAir
)

// String returns a short name for the cell type.
func (c CellType) String() string {
	switch c {
	case CellSolid:
		return "solid"
	case CellFluid:
		return "fluid"
	case CellAir:
		return "air"
	default:
		return "unknown"
	}
}

// Rect is an axis-aligned rectangle in simulation space.
// X, Y is the bottom-left corner; height grows upward.
type Rect struct {
	X, Y, W, H float32
}

// Center returns the rectangle center.
func (r Rect) Center() (float32, float32) {
	return r.X + r.W*0.5, r.Y + r.H*0.5
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Grid holds every per-cell buffer of the Eulerian grid.
type Grid struct {
	NumX, NumY int
	H          float32 // cell size in pixels
	InvH       float32
	Width      float32 // domain size in pixels
	Height     float32

	U, V         []float32 // face velocities
	PrevU, PrevV []float32 // pre-projection snapshot for FLIP
	WeightU      []float32 // P2G weight sums
	WeightV      []float32
	P            []float32 // accumulated pressure correction, reset each step
	S            []float32 // open fraction: 0 = solid, 1 = open
	Density      []float32 // splatted particle count per cell
	CellType     []CellType
}

// NewGrid creates a grid covering width x height with cells of size h.
// The grid always carries a one-cell solid border.
func NewGrid(width, height, h float32) *Grid {
	numX := int(width/h) + 1
	numY := int(height/h) + 1
	n := numX * numY

	g := &Grid{
		NumX:     numX,
		NumY:     numY,
		H:        h,
		InvH:     1 / h,
		Width:    width,
		Height:   height,
		U:        make([]float32, n),
		V:        make([]float32, n),
		PrevU:    make([]float32, n),
		PrevV:    make([]float32, n),
		WeightU:  make([]float32, n),
		WeightV:  make([]float32, n),
		P:        make([]float32, n),
		S:        make([]float32, n),
		Density:  make([]float32, n),
		CellType: make([]CellType, n),
	}
	g.Reset()
	return g
}

// NumCells returns the total number of cells including the border.
func (g *Grid) NumCells() int {
	return g.NumX * g.NumY
}

// Reset zeroes every field and restores the solid border.
func (g *Grid) Reset() {
	clear(g.U)
	clear(g.V)
	clear(g.PrevU)
	clear(g.PrevV)
	clear(g.WeightU)
	clear(g.WeightV)
	clear(g.P)
	clear(g.Density)

	for j := 0; j < g.NumY; j++ {
		for i := 0; i < g.NumX; i++ {
			idx := i + j*g.NumX
			if g.IsBorder(i, j) {
				g.S[idx] = 0
				g.CellType[idx] = CellSolid
			} else {
				g.S[idx] = 1
				g.CellType[idx] = CellAir
			}
		}
	}
}

// ClearVelocities zeroes the velocity and pressure fields.
func (g *Grid) ClearVelocities() {
	clear(g.U)
	clear(g.V)
	clear(g.P)
}

// IsBorder reports whether (i, j) lies on the one-cell solid border.
func (g *Grid) IsBorder(i, j int) bool {
	return i == 0 || j == 0 || i == g.NumX-1 || j == g.NumY-1
}

// Index returns the flat index of cell (i, j). Out-of-range coordinates are
// clamped to the nearest valid cell.
func (g *Grid) Index(i, j int) int {
	i = clampInt(i, 0, g.NumX-1)
	j = clampInt(j, 0, g.NumY-1)
	return i + j*g.NumX
}

// CellOf returns the interior cell containing a point, clamped to
// [1, NumX-2] x [1, NumY-2].
func (g *Grid) CellOf(x, y float32) (int, int) {
	i := clampInt(floorInt(x*g.InvH), 1, g.NumX-2)
	j := clampInt(floorInt(y*g.InvH), 1, g.NumY-2)
	return i, j
}

// RasterizeObstacles recomputes the open fraction of every interior cell:
// all interior cells are reopened, then every cell covered by a rectangle is
// closed. Border cells stay solid.
func (g *Grid) RasterizeObstacles(rects []Rect) {
	for j := 1; j < g.NumY-1; j++ {
		for i := 1; i < g.NumX-1; i++ {
			g.S[i+j*g.NumX] = 1
		}
	}

	for _, r := range rects {
		minI := max(1, floorInt(r.X*g.InvH))
		maxI := min(g.NumX-2, floorInt((r.X+r.W)*g.InvH))
		minJ := max(1, floorInt(r.Y*g.InvH))
		maxJ := min(g.NumY-2, floorInt((r.Y+r.H)*g.InvH))
		for j := minJ; j <= maxJ; j++ {
			for i := minI; i <= maxI; i++ {
				g.S[i+j*g.NumX] = 0
			}
		}
	}
}

// Classify marks every cell as solid (S == 0), fluid (open and containing a
// particle) or air.
func (g *Grid) Classify(ps *ParticleSet) {
	for idx := range g.CellType {
		if g.S[idx] == 0 {
			g.CellType[idx] = CellSolid
		} else {
			g.CellType[idx] = CellAir
		}
	}

	for p := 0; p < ps.Count; p++ {
		i, j := g.CellOf(ps.X[p], ps.Y[p])
		idx := i + j*g.NumX
		if g.S[idx] != 0 {
			g.CellType[idx] = CellFluid
		}
	}
}

// CountCells returns how many cells currently carry the given type.
func (g *Grid) CountCells(t CellType) int {
	n := 0
	for _, c := range g.CellType {
		if c == t {
			n++
		}
	}
	return n
}

package systems

import (
	"math/rand"
	"testing"
)

// singleFluidCellGrid returns a 10x10 grid with one fluid cell at (5,5)
// surrounded by open air cells and a unit initial divergence.
func singleFluidCellGrid() *Grid {
	g := NewGrid(90, 90, 10)
	g.CellType[g.Index(5, 5)] = CellFluid
	g.U[g.Index(6, 5)] = 1
	return g
}

func TestProjectSingleCellConvergesMonotonically(t *testing.T) {
	g := singleFluidCellGrid()
	if g.NumX != 10 || g.NumY != 10 {
		t.Fatalf("grid is %dx%d, want 10x10", g.NumX, g.NumY)
	}

	params := ProjectParams{Iters: 1, OverRelaxation: 1.9}
	prev := absf(g.Divergence(5, 5))
	if prev == 0 {
		t.Fatal("expected nonzero initial divergence")
	}

	for iter := 0; iter < 60; iter++ {
		Project(g, params)
		d := absf(g.Divergence(5, 5))
		if d >= prev {
			t.Fatalf("iteration %d: |div| %v did not decrease from %v", iter, d, prev)
		}
		prev = d
	}

	if prev > 1e-2 {
		t.Errorf("divergence %v did not converge toward zero", prev)
	}
}

func TestProjectWithoutOverRelaxationSolvesSingleCellExactly(t *testing.T) {
	g := singleFluidCellGrid()
	Project(g, ProjectParams{Iters: 1, OverRelaxation: 1})

	if d := g.Divergence(5, 5); !approxEqual(d, 0, 1e-6) {
		t.Errorf("divergence = %v, want 0", d)
	}
	// Correction is spread evenly over the four open faces.
	if u := g.U[g.Index(6, 5)]; !approxEqual(u, 0.75, 1e-6) {
		t.Errorf("right face = %v, want 0.75", u)
	}
	if u := g.U[g.Index(5, 5)]; !approxEqual(u, 0.25, 1e-6) {
		t.Errorf("left face = %v, want 0.25", u)
	}
}

func TestProjectSkipsEnclosedCell(t *testing.T) {
	g := singleFluidCellGrid()
	g.RasterizeObstacles([]Rect{
		{X: 40, Y: 50, W: 5, H: 5}, // left (4,5)
		{X: 60, Y: 50, W: 5, H: 5}, // right (6,5)
		{X: 50, Y: 40, W: 5, H: 5}, // bottom (5,4)
		{X: 50, Y: 60, W: 5, H: 5}, // top (5,6)
	})

	Project(g, ProjectParams{Iters: 20, OverRelaxation: 1.9})

	if u := g.U[g.Index(6, 5)]; u != 1 {
		t.Errorf("enclosed cell was projected: right face = %v", u)
	}
}

func TestProjectSolidNeighbourFaceUntouched(t *testing.T) {
	g := singleFluidCellGrid()
	g.RasterizeObstacles([]Rect{{X: 40, Y: 50, W: 5, H: 5}}) // left neighbour solid

	Project(g, ProjectParams{Iters: 100, OverRelaxation: 1.9})

	if u := g.U[g.Index(5, 5)]; u != 0 {
		t.Errorf("face shared with solid moved to %v", u)
	}
	if d := g.Divergence(5, 5); !approxEqual(d, 0, 1e-3) {
		t.Errorf("divergence = %v, want ~0", d)
	}
}

func TestProjectDriftCompensationBiasesExpansion(t *testing.T) {
	g := NewGrid(90, 90, 10)
	g.CellType[g.Index(5, 5)] = CellFluid
	g.Density[g.Index(5, 5)] = 9

	Project(g, ProjectParams{
		Iters:           100,
		OverRelaxation:  1.9,
		CompensateDrift: true,
		RestDensity:     4,
		DriftStiffness:  0.1,
	})

	// The solve drives div - stiffness*(density-rest) to zero.
	if d := g.Divergence(5, 5); !approxEqual(d, 0.5, 1e-3) {
		t.Errorf("divergence = %v, want 0.5 (outflow)", d)
	}

	// Disabled compensation leaves a quiescent cell alone.
	g2 := NewGrid(90, 90, 10)
	g2.CellType[g2.Index(5, 5)] = CellFluid
	g2.Density[g2.Index(5, 5)] = 9
	Project(g2, ProjectParams{Iters: 100, OverRelaxation: 1.9, RestDensity: 4, DriftStiffness: 0.1})
	if d := g2.Divergence(5, 5); d != 0 {
		t.Errorf("divergence without compensation = %v, want 0", d)
	}
}

func TestProjectReducesDivergenceOfFluidBlock(t *testing.T) {
	g := NewGrid(200, 200, 10)
	rng := rand.New(rand.NewSource(3))

	for j := 5; j < 15; j++ {
		for i := 5; i < 15; i++ {
			g.CellType[g.Index(i, j)] = CellFluid
		}
	}
	for i := range g.U {
		g.U[i] = rng.Float32()*2 - 1
		g.V[i] = rng.Float32()*2 - 1
	}

	maxBefore, meanBefore := g.FluidDivergence()
	Project(g, ProjectParams{Iters: 40, OverRelaxation: 1.9})
	maxAfter, meanAfter := g.FluidDivergence()

	if meanAfter >= meanBefore {
		t.Errorf("mean |div| did not decrease: %v -> %v", meanBefore, meanAfter)
	}
	if maxAfter >= maxBefore {
		t.Errorf("max |div| did not decrease: %v -> %v", maxBefore, maxAfter)
	}
}

func TestProjectAccumulatesPressure(t *testing.T) {
	g := singleFluidCellGrid()
	Project(g, ProjectParams{Iters: 5, OverRelaxation: 1.9})

	// Outflow through the right face needs a negative correction.
	if p := g.P[g.Index(5, 5)]; p >= 0 {
		t.Errorf("pressure correction = %v, want negative", p)
	}

	// P is scratch: the next call starts from zero.
	g2 := singleFluidCellGrid()
	Project(g2, ProjectParams{Iters: 0, OverRelaxation: 1.9})
	if p := g2.P[g2.Index(5, 5)]; p != 0 {
		t.Errorf("pressure without iterations = %v, want 0", p)
	}
}

func BenchmarkProject(b *testing.B) {
	g := NewGrid(800, 600, 8)
	for j := 1; j < g.NumY/2; j++ {
		for i := 1; i < g.NumX-1; i++ {
			g.CellType[g.Index(i, j)] = CellFluid
		}
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		Project(g, ProjectParams{Iters: 20, OverRelaxation: 1.9})
	}
}

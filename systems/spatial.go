package systems

// SpatialHash buckets particle indices on a uniform grid whose spacing is
// independent of the simulation grid. It is rebuilt from scratch before every
// separation sub-iteration.
type SpatialHash struct {
	cellSize float32
	invSize  float32
	cols     int
	rows     int
	cells    [][]int32 // flat grid of particle index lists
}

// NewSpatialHash creates a hash covering the given domain size.
func NewSpatialHash(width, height, cellSize float32) *SpatialHash {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	return &SpatialHash{
		cellSize: cellSize,
		invSize:  1 / cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// CellSize returns the bucket spacing.
func (h *SpatialHash) CellSize() float32 {
	return h.cellSize
}

// Dims returns the number of bucket columns and rows.
func (h *SpatialHash) Dims() (int, int) {
	return h.cols, h.rows
}

// Clear empties every bucket, keeping capacity.
func (h *SpatialHash) Clear() {
	for i := range h.cells {
		h.cells[i] = h.cells[i][:0]
	}
}

// Insert adds a particle index at the given position.
func (h *SpatialHash) Insert(i int, x, y float32) {
	col, row := h.cellCoords(x, y)
	idx := row*h.cols + col
	h.cells[idx] = append(h.cells[idx], int32(i))
}

// Rebuild clears the hash and re-inserts every live particle.
func (h *SpatialHash) Rebuild(ps *ParticleSet) {
	h.Clear()
	for i := 0; i < ps.Count; i++ {
		h.Insert(i, ps.X[i], ps.Y[i])
	}
}

// Bucket returns the indices stored in bucket (col, row). Coordinates are
// clamped to the grid.
func (h *SpatialHash) Bucket(col, row int) []int32 {
	col = clampInt(col, 0, h.cols-1)
	row = clampInt(row, 0, h.rows-1)
	return h.cells[row*h.cols+col]
}

// cellCoords returns the clamped bucket coordinates for a position.
func (h *SpatialHash) cellCoords(x, y float32) (int, int) {
	col := clampInt(floorInt(x*h.invSize), 0, h.cols-1)
	row := clampInt(floorInt(y*h.invSize), 0, h.rows-1)
	return col, row
}

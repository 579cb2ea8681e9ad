package systems

import "math"

// ParticleSet is a fixed-capacity arena of fluid particles stored as parallel
// arrays. Only the first Count entries are live; particles are never removed.
type ParticleSet struct {
	X, Y []float32 // position in simulation space
	U, V []float32 // velocity in pixels per second

	Count int
}

// NewParticleSet creates an empty arena with the given capacity.
func NewParticleSet(capacity int) *ParticleSet {
	if capacity < 0 {
		capacity = 0
	}
	return &ParticleSet{
		X: make([]float32, capacity),
		Y: make([]float32, capacity),
		U: make([]float32, capacity),
		V: make([]float32, capacity),
	}
}

// Cap returns the maximum number of particles.
func (ps *ParticleSet) Cap() int {
	return len(ps.X)
}

// Full reports whether the arena has reached capacity.
func (ps *ParticleSet) Full() bool {
	return ps.Count >= len(ps.X)
}

// Add appends a particle. Returns false when the arena is full.
func (ps *ParticleSet) Add(x, y, u, v float32) bool {
	if ps.Full() {
		return false
	}
	i := ps.Count
	ps.X[i], ps.Y[i] = x, y
	ps.U[i], ps.V[i] = u, v
	ps.Count++
	return true
}

// Reset drops every particle. Capacity is retained.
func (ps *ParticleSet) Reset() {
	ps.Count = 0
}

// Speed returns the velocity magnitude of particle i.
func (ps *ParticleSet) Speed(i int) float32 {
	u, v := ps.U[i], ps.V[i]
	return float32(math.Sqrt(float64(u*u + v*v)))
}

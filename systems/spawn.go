package systems

import "math/rand"

// Spawner is a stationary particle source.
type Spawner struct {
	X, Y       float32 // position in simulation space
	VelX, VelY float32 // mean emission velocity
	Rate       int     // particles per step
	Jitter     float32 // positional randomization width
	Enabled    bool
}

// SpawnBounds limits where new particles may appear.
type SpawnBounds struct {
	Width, Height float32
	Margin        float32 // distance kept from every wall
}

// SpawnParticles emits particles from every enabled spawner until the arena
// is full. Positions are jittered uniformly within +-Jitter/2 and velocities
// by +-5%. It returns the number of particles created.
func SpawnParticles(ps *ParticleSet, spawners []Spawner, b SpawnBounds, rng *rand.Rand) int {
	spawned := 0
	for _, s := range spawners {
		if !s.Enabled || s.Rate <= 0 {
			continue
		}
		for k := 0; k < s.Rate; k++ {
			if ps.Full() {
				return spawned
			}

			x := s.X + (rng.Float32()-0.5)*s.Jitter
			y := s.Y + (rng.Float32()-0.5)*s.Jitter
			x = clampFloat(x, b.Margin, b.Width-b.Margin)
			y = clampFloat(y, b.Margin, b.Height-b.Margin)

			u := s.VelX + (rng.Float32()-0.5)*0.1*s.VelX
			v := s.VelY + (rng.Float32()-0.5)*0.1*s.VelY

			ps.Add(x, y, u, v)
			spawned++
		}
	}
	return spawned
}

// Integrate applies gravity to the vertical velocity and advances positions
// with symplectic Euler.
func Integrate(ps *ParticleSet, gravity, dt float32) {
	gdt := gravity * dt
	for p := 0; p < ps.Count; p++ {
		ps.V[p] += gdt
		ps.X[p] += ps.U[p] * dt
		ps.Y[p] += ps.V[p] * dt
	}
}

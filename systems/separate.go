package systems

import "math"

// PushStrength damps each separation correction so that a pair is only
// partially resolved per sub-iteration.
const PushStrength = 0.6

// minSeparationDistSq guards against a zero-length normal for coincident particles.
const minSeparationDistSq = 1e-9

// SeparateParticles softly enforces a minimum distance between particles.
// Each of iters rounds rebuilds the hash, then pushes every pair closer than
// restDist apart along the line joining them.
func SeparateParticles(ps *ParticleSet, hash *SpatialHash, restDist float32, iters int) {
	if ps.Count < 2 || restDist <= 0 {
		return
	}
	restDistSq := restDist * restDist

	cols, rows := hash.Dims()
	for iter := 0; iter < iters; iter++ {
		hash.Rebuild(ps)

		for i := 0; i < ps.Count; i++ {
			col, row := hash.cellCoords(ps.X[i], ps.Y[i])

			// Neighbours past the edge are skipped, not clamped: a clamped
			// lookup revisits the edge bucket and pushes its pairs twice.
			for r := max(row-1, 0); r <= min(row+1, rows-1); r++ {
				for c := max(col-1, 0); c <= min(col+1, cols-1); c++ {
					for _, j32 := range hash.Bucket(c, r) {
						j := int(j32)
						// Each pair is handled once, from its higher index.
						if j >= i {
							continue
						}
						pushApart(ps, i, j, restDist, restDistSq)
					}
				}
			}
		}
	}
}

// pushApart moves particles i and j symmetrically away from each other if
// they are closer than restDist.
func pushApart(ps *ParticleSet, i, j int, restDist, restDistSq float32) {
	dx := ps.X[i] - ps.X[j]
	dy := ps.Y[i] - ps.Y[j]
	distSq := dx*dx + dy*dy
	if distSq >= restDistSq || distSq <= minSeparationDistSq {
		return
	}

	dist := float32(math.Sqrt(float64(distSq)))
	push := 0.5 * PushStrength * (1 - dist/restDist) * restDist
	nx := dx / dist * push
	ny := dy / dist * push

	ps.X[i] += nx
	ps.Y[i] += ny
	ps.X[j] -= nx
	ps.Y[j] -= ny
}

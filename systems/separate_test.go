package systems

import (
	"math"
	"math/rand"
	"testing"
)

func pairDist(ps *ParticleSet, i, j int) float64 {
	dx := float64(ps.X[i] - ps.X[j])
	dy := float64(ps.Y[i] - ps.Y[j])
	return math.Sqrt(dx*dx + dy*dy)
}

func TestSeparateParticlesPushesCloseParticlesApart(t *testing.T) {
	const restDist = 5.0

	tests := []struct {
		name   string
		dx, dy float32
	}{
		{"horizontal", 1, 0},
		{"vertical", 0, 2.5},
		{"diagonal", 2, 2},
		{"across bucket edge", 4.9, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ps := NewParticleSet(2)
			ps.Add(50, 50, 0, 0)
			ps.Add(50+tc.dx, 50+tc.dy, 0, 0)
			before := pairDist(ps, 0, 1)

			hash := NewSpatialHash(100, 100, restDist*1.05)
			SeparateParticles(ps, hash, restDist, 2)

			after := pairDist(ps, 0, 1)
			if after <= before {
				t.Errorf("distance did not increase: before=%v after=%v", before, after)
			}
			if after > restDist+1e-4 {
				t.Errorf("overshoot: after=%v > restDist=%v", after, restDist)
			}
		})
	}
}

func TestSeparateParticlesCornerBucketPushedOnce(t *testing.T) {
	ps := NewParticleSet(2)
	ps.Add(1, 1, 0, 0)
	ps.Add(3, 1, 0, 0)

	hash := NewSpatialHash(100, 100, 5.25)
	SeparateParticles(ps, hash, 5, 1)

	// Same single push as in the interior: 0.9 each way.
	if math.Abs(float64(ps.X[0]-0.1)) > 1e-4 || math.Abs(float64(ps.X[1]-3.9)) > 1e-4 {
		t.Errorf("positions = (%v, %v), want (0.1, 3.9)", ps.X[0], ps.X[1])
	}
}

func TestSeparateParticlesSymmetricPush(t *testing.T) {
	ps := NewParticleSet(2)
	ps.Add(50, 50, 0, 0)
	ps.Add(52, 50, 0, 0)

	hash := NewSpatialHash(100, 100, 5.25)
	SeparateParticles(ps, hash, 5, 1)

	// One pass: push = 0.5 * 0.6 * (1 - 2/5) * 5 = 0.9 each way.
	if math.Abs(float64(ps.X[0]-49.1)) > 1e-4 || math.Abs(float64(ps.X[1]-52.9)) > 1e-4 {
		t.Errorf("positions = (%v, %v), want (49.1, 52.9)", ps.X[0], ps.X[1])
	}
	// Midpoint is preserved.
	if mid := (ps.X[0] + ps.X[1]) / 2; math.Abs(float64(mid-51)) > 1e-4 {
		t.Errorf("midpoint moved to %v", mid)
	}
	if ps.Y[0] != 50 || ps.Y[1] != 50 {
		t.Errorf("y changed: %v, %v", ps.Y[0], ps.Y[1])
	}
}

func TestSeparateParticlesSkipsDegeneratePairs(t *testing.T) {
	tests := []struct {
		name   string
		x1, y1 float32
		x2, y2 float32
	}{
		{"coincident", 40, 40, 40, 40},
		{"beyond rest distance", 40, 40, 46, 40},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ps := NewParticleSet(2)
			ps.Add(tc.x1, tc.y1, 0, 0)
			ps.Add(tc.x2, tc.y2, 0, 0)

			SeparateParticles(ps, NewSpatialHash(100, 100, 5.25), 5, 3)

			if ps.X[0] != tc.x1 || ps.Y[0] != tc.y1 || ps.X[1] != tc.x2 || ps.Y[1] != tc.y2 {
				t.Errorf("particles moved: (%v,%v) (%v,%v)", ps.X[0], ps.Y[0], ps.X[1], ps.Y[1])
			}
		})
	}
}

func TestSeparateParticlesReducesOverlapInCluster(t *testing.T) {
	const restDist = 4.0
	rng := rand.New(rand.NewSource(7))

	ps := NewParticleSet(200)
	for i := 0; i < 200; i++ {
		ps.Add(40+rng.Float32()*20, 40+rng.Float32()*20, 0, 0)
	}

	overlap := func() float64 {
		var total float64
		for i := 0; i < ps.Count; i++ {
			for j := 0; j < i; j++ {
				if d := pairDist(ps, i, j); d < restDist {
					total += restDist - d
				}
			}
		}
		return total
	}

	before := overlap()
	SeparateParticles(ps, NewSpatialHash(100, 100, restDist*1.05), restDist, 4)
	after := overlap()

	if after >= before {
		t.Errorf("total overlap did not shrink: before=%v after=%v", before, after)
	}
	if ps.Count != 200 {
		t.Errorf("particle count changed to %d", ps.Count)
	}
}

func BenchmarkSeparateParticles(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ps := NewParticleSet(5000)
	for i := 0; i < 5000; i++ {
		ps.Add(rng.Float32()*800, rng.Float32()*600, 0, 0)
	}
	hash := NewSpatialHash(800, 600, 4.725)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		SeparateParticles(ps, hash, 4.5, 2)
	}
}

package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/solver"
	"github.com/pthm-cable/flip/systems"
)

// compressionWeight scales the density error against residual divergence.
const compressionWeight = 0.5

// failedFitness is returned for runs that produce non-finite velocities.
const failedFitness = 1e9

// FitnessEvaluator runs headless solves and scores them (lower is better).
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	warmup     int // ticks skipped before scoring
	seeds      []int64
	baseConfig *config.Config
	width      float32
	height     float32

	mu   sync.Mutex
	last EvalResult
}

// EvalResult breaks a fitness value into its terms.
type EvalResult struct {
	Fitness     float64
	Divergence  float64 // mean residual |div| over fluid cells
	Compression float64 // mean relative excess density over fluid cells
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		warmup:     ticks / 4,
		seeds:      seeds,
		baseConfig: baseCfg,
		width:      baseCfg.Derived.ScreenW32,
		height:     baseCfg.Derived.ScreenH32,
	}
}

// Last returns the breakdown of the most recent evaluation.
func (fe *FitnessEvaluator) Last() EvalResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate scores a raw parameter vector averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]EvalResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.run(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var agg EvalResult
	for _, r := range results {
		agg.Fitness += r.Fitness
		agg.Divergence += r.Divergence
		agg.Compression += r.Compression
	}
	n := float64(len(results))
	if n > 0 {
		agg.Fitness /= n
		agg.Divergence /= n
		agg.Compression /= n
	}

	fe.mu.Lock()
	fe.last = agg
	fe.mu.Unlock()

	return agg.Fitness
}

// run executes one headless solve and scores the ticks after warmup.
func (fe *FitnessEvaluator) run(cfg *config.Config, seed int64) EvalResult {
	s := solver.New(cfg, fe.width, fe.height, seed)

	var divSum, compSum float64
	samples := 0
	for t := 0; t < fe.ticks; t++ {
		s.Step()
		if t < fe.warmup {
			continue
		}

		sample := s.Sample()
		div := float64(sample.DivMean)
		if math.IsNaN(div) || math.IsInf(div, 0) {
			return EvalResult{Fitness: failedFitness}
		}
		divSum += div
		compSum += compressionError(s.Grid(), float32(cfg.Drift.RestDensity))
		samples++
	}

	if samples == 0 {
		return EvalResult{}
	}
	r := EvalResult{
		Divergence:  divSum / float64(samples),
		Compression: compSum / float64(samples),
	}
	r.Fitness = r.Divergence + compressionWeight*r.Compression
	return r
}

// compressionError is the mean of max(0, density-rest)/rest over fluid cells.
func compressionError(g *systems.Grid, rest float32) float64 {
	if rest <= 0 {
		return 0
	}
	var sum float64
	n := 0
	for idx, t := range g.CellType {
		if t != systems.CellFluid {
			continue
		}
		if excess := g.Density[idx] - rest; excess > 0 {
			sum += float64(excess / rest)
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// copyConfig returns a copy of the base config that parameters can be applied to.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Spawning.Spawners = append([]config.SpawnerConfig(nil), fe.baseConfig.Spawning.Spawners...)
	return &cfg
}

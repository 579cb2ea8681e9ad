package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Scene at window end
	Particles  int `csv:"particles"`
	FluidCells int `csv:"fluid_cells"`
	Obstacles  int `csv:"obstacles"`

	// Events during window
	Spawned int `csv:"spawned"`

	// Particle speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	KineticEnergy float64 `csv:"kinetic_energy"` // 0.5 * sum(|v|^2), unit mass

	// Residual divergence after projection, averaged over the window
	DivMaxMean  float64 `csv:"div_max_mean"`
	DivMeanMean float64 `csv:"div_mean_mean"`
	DivWorst    float64 `csv:"div_worst"`
}

// ComputeSpeedStats returns mean, median, 90th percentile and maximum of the
// given speeds. The input is not modified.
func ComputeSpeedStats(values []float64) (mean, p50, p90, maxVal float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	maxVal = sorted[n-1]

	return mean, p50, p90, maxVal
}

// KineticEnergy returns 0.5 * sum(u^2 + v^2) over the given velocity slices.
func KineticEnergy(u, v []float32) float64 {
	n := min(len(u), len(v))
	if n == 0 {
		return 0
	}
	vu := blas32.Vector{N: n, Inc: 1, Data: u}
	vv := blas32.Vector{N: n, Inc: 1, Data: v}
	return 0.5 * (float64(blas32.Dot(vu, vu)) + float64(blas32.Dot(vv, vv)))
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Int("obstacles", s.Obstacles),
		slog.Int("spawned", s.Spawned),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("div_max_mean", s.DivMaxMean),
		slog.Float64("div_mean_mean", s.DivMeanMean),
		slog.Float64("div_worst", s.DivWorst),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

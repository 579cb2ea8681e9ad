package telemetry

import "math"

// TickSample is what the solver reports after every step.
type TickSample struct {
	Spawned int
	DivMax  float32 // largest residual |div| over fluid cells
	DivMean float32 // mean residual |div| over fluid cells
}

// Frame describes the scene at the end of a window.
type Frame struct {
	Particles  int
	FluidCells int
	Obstacles  int
	U, V       []float32 // live particle velocities
}

// Collector accumulates tick samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	spawned     int
	divMaxSum   float64
	divMeanSum  float64
	divWorst    float64
	sampleCount int

	speeds []float64 // reused between flushes
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one tick's sample to the current window.
func (c *Collector) Record(s TickSample) {
	c.spawned += s.Spawned
	c.divMaxSum += float64(s.DivMax)
	c.divMeanSum += float64(s.DivMean)
	if float64(s.DivMax) > c.divWorst {
		c.divWorst = float64(s.DivMax)
	}
	c.sampleCount++
}

// ShouldFlush returns true if the current window is complete.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int32 {
	return c.windowDurationTicks
}

// Flush computes the window stats and resets the counters.
func (c *Collector) Flush(currentTick int32, f Frame) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Particles:       f.Particles,
		FluidCells:      f.FluidCells,
		Obstacles:       f.Obstacles,
		Spawned:         c.spawned,
		DivWorst:        c.divWorst,
	}

	if c.sampleCount > 0 {
		stats.DivMaxMean = c.divMaxSum / float64(c.sampleCount)
		stats.DivMeanMean = c.divMeanSum / float64(c.sampleCount)
	}

	n := min(len(f.U), len(f.V))
	c.speeds = c.speeds[:0]
	for i := 0; i < n; i++ {
		u, v := float64(f.U[i]), float64(f.V[i])
		c.speeds = append(c.speeds, math.Sqrt(u*u+v*v))
	}
	stats.SpeedMean, stats.SpeedP50, stats.SpeedP90, stats.SpeedMax = ComputeSpeedStats(c.speeds)
	stats.KineticEnergy = KineticEnergy(f.U[:n], f.V[:n])

	c.windowStartTick = currentTick
	c.spawned = 0
	c.divMaxSum = 0
	c.divMeanSum = 0
	c.divWorst = 0
	c.sampleCount = 0

	return stats
}

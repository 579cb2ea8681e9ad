package telemetry

import (
	"log/slog"
	"time"
)

// Solver step phases, in pipeline order.
const (
	PhaseSpawn     = "spawn"
	PhaseIntegrate = "integrate"
	PhaseSeparate  = "separate"
	PhaseCollide   = "collide"
	PhaseP2G       = "p2g"
	PhaseDensity   = "density"
	PhaseClassify  = "classify"
	PhaseProject   = "project"
	PhaseG2P       = "g2p"
)

// Phases lists the solver phases in the order Step runs them.
var Phases = []string{
	PhaseSpawn, PhaseIntegrate, PhaseSeparate, PhaseCollide,
	PhaseP2G, PhaseDensity, PhaseClassify, PhaseProject, PhaseG2P,
}

// phaseSpan is the time one step spent in one phase.
type phaseSpan struct {
	name string
	d    time.Duration
}

// stepTiming is one entry of the ring.
type stepTiming struct {
	total time.Duration
	spans []phaseSpan // reused across laps of the ring
}

// PerfCollector keeps the timings of the last N solver steps in a ring and
// the interval between the last two rendered frames.
type PerfCollector struct {
	ring   []stepTiming
	next   int
	filled int

	// step in flight
	cur        *stepTiming
	stepStart  time.Time
	phase      string
	phaseStart time.Time

	lastFrame time.Time
	frameGap  time.Duration
}

// NewPerfCollector returns a collector averaging over the last window steps.
// A window below one falls back to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]stepTiming, window)}
}

// StartTick opens a new step, overwriting the oldest ring entry.
func (p *PerfCollector) StartTick() {
	p.cur = &p.ring[p.next]
	p.cur.spans = p.cur.spans[:0]
	p.phase = ""
	p.stepStart = time.Now()
}

// StartPhase closes the running phase, if any, and starts timing phase.
// A phase entered twice in one step accumulates.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

// EndTick closes the running phase and commits the step to the ring.
func (p *PerfCollector) EndTick() {
	if p.cur == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.stepStart)
	p.cur = nil

	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase == "" || p.cur == nil {
		return
	}
	d := now.Sub(p.phaseStart)
	for i := range p.cur.spans {
		if p.cur.spans[i].name == p.phase {
			p.cur.spans[i].d += d
			return
		}
	}
	p.cur.spans = append(p.cur.spans, phaseSpan{name: p.phase, d: d})
}

// RecordFrame marks a rendered frame. Call it once per frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameGap = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the steps currently in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg map[string]time.Duration // mean time per step
	PhasePct map[string]float64       // share of the mean step, 0..100

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ring. The maps are never nil.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameGap,
	}
	if p.frameGap > 0 {
		st.FPS = float64(time.Second) / float64(p.frameGap)
	}
	if p.filled == 0 {
		return st
	}

	var sum time.Duration
	for i, s := range p.ring[:p.filled] {
		sum += s.total
		if i == 0 || s.total < st.MinTickDuration {
			st.MinTickDuration = s.total
		}
		st.MaxTickDuration = max(st.MaxTickDuration, s.total)
		for _, sp := range s.spans {
			st.PhaseAvg[sp.name] += sp.d
		}
	}

	n := time.Duration(p.filled)
	st.AvgTickDuration = sum / n
	for name, total := range st.PhaseAvg {
		avg := total / n
		st.PhaseAvg[name] = avg
		if st.AvgTickDuration > 0 {
			st.PhasePct[name] = 100 * float64(avg) / float64(st.AvgTickDuration)
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	return st
}

// LogStats emits one "perf" record. Phases under 0.1% are left out.
func (s PerfStats) LogStats() {
	args := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		args = append(args, "fps", int(s.FPS))
	}
	for _, name := range Phases {
		if pct := s.PhasePct[name]; pct > 0.1 {
			args = append(args, name+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", args...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, name := range Phases {
		if pct, ok := s.PhasePct[name]; ok {
			attrs = append(attrs, slog.Float64(name+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv: step timings plus each solver phase's
// share of the step.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	SpawnPct     float64 `csv:"spawn_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	SeparatePct  float64 `csv:"separate_pct"`
	CollidePct   float64 `csv:"collide_pct"`
	P2GPct       float64 `csv:"p2g_pct"`
	DensityPct   float64 `csv:"density_pct"`
	ClassifyPct  float64 `csv:"classify_pct"`
	ProjectPct   float64 `csv:"project_pct"`
	G2PPct       float64 `csv:"g2p_pct"`
}

// ToCSV flattens the stats into a perf.csv row ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		SpawnPct:     pct[PhaseSpawn],
		IntegratePct: pct[PhaseIntegrate],
		SeparatePct:  pct[PhaseSeparate],
		CollidePct:   pct[PhaseCollide],
		P2GPct:       pct[PhaseP2G],
		DensityPct:   pct[PhaseDensity],
		ClassifyPct:  pct[PhaseClassify],
		ProjectPct:   pct[PhaseProject],
		G2PPct:       pct[PhaseG2P],
	}
}

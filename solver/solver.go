// Package solver advances the FLIP/PIC fluid one fixed time step at a time.
//
// A Solver owns the particle arena, the MAC grid, the spatial hash and a
// small ECS world holding the scene: obstacle rectangles and particle
// spawners. Step runs the kernels from package systems in a fixed order.
package solver

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flip/components"
	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/systems"
	"github.com/pthm-cable/flip/telemetry"
)

// ErrObstacleTooSmall is returned by AddObstacle when either side of the
// rectangle does not exceed half a grid cell.
var ErrObstacleTooSmall = errors.New("obstacle smaller than half a cell")

// radiusFactor gives the default particle radius as a fraction of the cell size.
const radiusFactor = 0.3

// Solver holds the complete fluid state.
type Solver struct {
	cfg *config.Config

	width, height float32
	h             float32
	radius        float32
	restDist      float32

	grid      *systems.Grid
	particles *systems.ParticleSet
	hash      *systems.SpatialHash
	scratch   *systems.TransferScratch

	// Scene
	world          *ecs.World
	obstacleMapper *ecs.Map3[components.Position, components.Extent, components.Obstacle]
	obstacleFilter *ecs.Filter3[components.Position, components.Extent, components.Obstacle]
	emitterMapper  *ecs.Map3[components.Position, components.Velocity, components.Emitter]
	emitterFilter  *ecs.Filter3[components.Position, components.Velocity, components.Emitter]
	obstacleSeq    uint32

	// Caches rebuilt from the world when the scene changes
	obstacles []systems.Rect
	spawners  []systems.Spawner

	rng  *rand.Rand
	perf *telemetry.PerfCollector

	tick    int32
	spawned int // particles created by the last Step
}

// New creates a solver for a width x height domain.
func New(cfg *config.Config, width, height float32, seed int64) *Solver {
	h := cfg.CellSizeFor(width, height)

	radius := float32(cfg.Particles.Radius)
	if radius <= 0 {
		radius = radiusFactor * h
	}
	restDist := radius * float32(cfg.Particles.SeparationFactor)
	if restDist <= 0 {
		restDist = 2 * radius
	}

	world := ecs.NewWorld()

	s := &Solver{
		cfg:       cfg,
		width:     width,
		height:    height,
		h:         h,
		radius:    radius,
		restDist:  restDist,
		grid:      systems.NewGrid(width, height, h),
		particles: systems.NewParticleSet(cfg.Particles.Max),
		hash:      systems.NewSpatialHash(width, height, restDist*1.05),
		scratch:   systems.NewTransferScratch(cfg.Particles.Max),
		world:     world,
		obstacleMapper: ecs.NewMap3[
			components.Position,
			components.Extent,
			components.Obstacle,
		](world),
		obstacleFilter: ecs.NewFilter3[
			components.Position,
			components.Extent,
			components.Obstacle,
		](world),
		emitterMapper: ecs.NewMap3[
			components.Position,
			components.Velocity,
			components.Emitter,
		](world),
		emitterFilter: ecs.NewFilter3[
			components.Position,
			components.Velocity,
			components.Emitter,
		](world),
		rng:  rand.New(rand.NewSource(seed)),
		perf: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}

	if cfg.Spawning.Enabled {
		for _, sc := range cfg.Spawning.Spawners {
			s.addEmitter(sc)
		}
	}
	s.refreshSpawners()
	s.grid.Reset()

	slog.Info("solver initialized",
		"width", width,
		"height", height,
		"cell_size", h,
		"num_x", s.grid.NumX,
		"num_y", s.grid.NumY,
		"radius", radius,
		"rest_dist", restDist,
		"hash_spacing", s.hash.CellSize(),
		"max_particles", cfg.Particles.Max,
		"spawners", len(s.spawners),
	)

	return s
}

// addEmitter converts a cell-unit spawner definition into a scene entity.
func (s *Solver) addEmitter(sc config.SpawnerConfig) {
	h := float64(s.h)
	x := sc.X * h
	if sc.X < 0 {
		x = float64(s.width) + x
	}
	y := sc.Y * h
	if sc.Y < 0 {
		y = float64(s.height) + y
	}

	pos := components.Position{X: float32(x), Y: float32(y)}
	vel := components.Velocity{X: float32(sc.VelX * h), Y: float32(sc.VelY * h)}
	em := components.Emitter{
		Name:    sc.Name,
		Rate:    sc.Rate,
		Jitter:  float32(sc.Jitter * h),
		Enabled: true,
	}
	s.emitterMapper.NewEntity(&pos, &vel, &em)
}

// refreshSpawners rebuilds the spawner cache from the scene world.
func (s *Solver) refreshSpawners() {
	s.spawners = s.spawners[:0]
	query := s.emitterFilter.Query()
	for query.Next() {
		pos, vel, em := query.Get()
		s.spawners = append(s.spawners, systems.Spawner{
			X:       pos.X,
			Y:       pos.Y,
			VelX:    vel.X,
			VelY:    vel.Y,
			Rate:    em.Rate,
			Jitter:  em.Jitter,
			Enabled: em.Enabled,
		})
	}
}

// refreshObstacles rebuilds the obstacle cache in insertion order.
func (s *Solver) refreshObstacles() {
	type seqRect struct {
		seq  uint32
		rect systems.Rect
	}
	var found []seqRect

	query := s.obstacleFilter.Query()
	for query.Next() {
		pos, ext, ob := query.Get()
		found = append(found, seqRect{ob.Seq, systems.Rect{X: pos.X, Y: pos.Y, W: ext.W, H: ext.H}})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	s.obstacles = s.obstacles[:0]
	for _, f := range found {
		s.obstacles = append(s.obstacles, f.rect)
	}
}

// Step advances the simulation by one fixed time step.
func (s *Solver) Step() {
	cfg := s.cfg
	dt := cfg.Derived.DT32
	ps := s.particles
	g := s.grid

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSpawn)
	s.spawned = systems.SpawnParticles(ps, s.spawners, systems.SpawnBounds{
		Width:  s.width,
		Height: s.height,
		Margin: s.h,
	}, s.rng)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	systems.Integrate(ps, float32(cfg.Solver.Gravity), dt)

	if cfg.Particles.Separate {
		s.perf.StartPhase(telemetry.PhaseSeparate)
		systems.SeparateParticles(ps, s.hash, s.restDist, cfg.Particles.NumIters)
	}

	s.perf.StartPhase(telemetry.PhaseCollide)
	systems.HandleCollisions(ps, systems.CollisionParams{
		Width:       s.width,
		Height:      s.height,
		Margin:      s.h,
		Radius:      s.radius,
		Restitution: float32(cfg.Solver.Restitution),
	}, s.obstacles)

	s.perf.StartPhase(telemetry.PhaseP2G)
	systems.ParticlesToGrid(g, ps)

	if ps.Count > 0 {
		g.RasterizeObstacles(s.obstacles)

		s.perf.StartPhase(telemetry.PhaseDensity)
		systems.UpdateDensity(g, ps)

		s.perf.StartPhase(telemetry.PhaseClassify)
		g.Classify(ps)

		s.perf.StartPhase(telemetry.PhaseProject)
		systems.Project(g, systems.ProjectParams{
			Iters:           cfg.Solver.NumPressureIters,
			OverRelaxation:  float32(cfg.Solver.OverRelaxation),
			CompensateDrift: cfg.Drift.Compensate,
			RestDensity:     float32(cfg.Drift.RestDensity),
			DriftStiffness:  float32(cfg.Drift.Stiffness),
		})
	} else {
		g.ClearVelocities()
		g.RasterizeObstacles(s.obstacles)
	}

	s.perf.StartPhase(telemetry.PhaseG2P)
	systems.GridToParticles(g, ps, float32(cfg.Solver.FlipRatio), s.scratch)

	s.perf.EndTick()
	s.tick++
}

// AddObstacle adds a solid rectangle with bottom-left corner (x, y). Negative
// extents are normalised. A rectangle reaching past the walls is slid back
// inside with its size kept, capped at the domain size. The grid is
// re-rasterized immediately.
func (s *Solver) AddObstacle(x, y, w, h float32) (systems.Rect, error) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	if w <= 0.5*s.h || h <= 0.5*s.h {
		slog.Debug("obstacle ignored", "w", w, "h", h, "cell_size", s.h)
		return systems.Rect{}, ErrObstacleTooSmall
	}

	w = min(w, s.width)
	h = min(h, s.height)
	x0 := clamp(x, 0, s.width-w)
	y0 := clamp(y, 0, s.height-h)

	rect := systems.Rect{X: x0, Y: y0, W: w, H: h}

	pos := components.Position{X: rect.X, Y: rect.Y}
	ext := components.Extent{W: rect.W, H: rect.H}
	ob := components.Obstacle{Seq: s.obstacleSeq}
	s.obstacleSeq++
	s.obstacleMapper.NewEntity(&pos, &ext, &ob)

	s.refreshObstacles()
	s.grid.RasterizeObstacles(s.obstacles)

	slog.Debug("obstacle added", "x", rect.X, "y", rect.Y, "w", rect.W, "h", rect.H)
	return rect, nil
}

// ClearObstacles removes every obstacle and reopens the grid interior.
func (s *Solver) ClearObstacles() {
	var toRemove []ecs.Entity
	query := s.obstacleFilter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		s.world.RemoveEntity(e)
	}

	s.refreshObstacles()
	s.grid.RasterizeObstacles(s.obstacles)
}

// Reset removes all particles and clears the grid fields. Obstacles and
// spawners are kept.
func (s *Solver) Reset() {
	s.particles.Reset()
	s.grid.Reset()
	s.grid.RasterizeObstacles(s.obstacles)
	s.tick = 0
	s.spawned = 0
	slog.Info("solver reset", "obstacles", len(s.obstacles))
}

// Particles returns the live particle arena. Callers must not resize it.
func (s *Solver) Particles() *systems.ParticleSet { return s.particles }

// Obstacles returns the current obstacle rectangles in insertion order.
func (s *Solver) Obstacles() []systems.Rect { return s.obstacles }

// Spawners returns the resolved particle sources.
func (s *Solver) Spawners() []systems.Spawner { return s.spawners }

// Grid returns the MAC grid.
func (s *Solver) Grid() *systems.Grid { return s.grid }

// CellSize returns the grid cell size in pixels.
func (s *Solver) CellSize() float32 { return s.h }

// Radius returns the particle radius in pixels.
func (s *Solver) Radius() float32 { return s.radius }

// Tick returns the number of steps taken since creation or the last Reset.
func (s *Solver) Tick() int32 { return s.tick }

// Spawned returns how many particles the last Step created.
func (s *Solver) Spawned() int { return s.spawned }

// Perf returns the step timing collector.
func (s *Solver) Perf() *telemetry.PerfCollector { return s.perf }

// Size returns the domain dimensions in pixels.
func (s *Solver) Size() (float32, float32) { return s.width, s.height }

// MaxSpeedForColor returns the speed mapped to the top of the colour ramp.
// A configured value wins; otherwise it is MaxSpeedCells cells per step.
func (s *Solver) MaxSpeedForColor() float32 {
	if v := s.cfg.Render.MaxSpeedForColor; v > 0 {
		return float32(v)
	}
	cells := s.cfg.Render.MaxSpeedCells
	if cells <= 0 {
		cells = 2
	}
	return float32(cells) * s.h / s.cfg.Derived.DT32
}

// Sample returns the per-tick telemetry sample for the last Step.
func (s *Solver) Sample() telemetry.TickSample {
	maxDiv, meanDiv := s.grid.FluidDivergence()
	return telemetry.TickSample{
		Spawned: s.spawned,
		DivMax:  maxDiv,
		DivMean: meanDiv,
	}
}

// Frame returns the scene summary used at the end of a stats window.
func (s *Solver) Frame() telemetry.Frame {
	ps := s.particles
	return telemetry.Frame{
		Particles:  ps.Count,
		FluidCells: s.grid.CountCells(systems.CellFluid),
		Obstacles:  len(s.obstacles),
		U:          ps.U[:ps.Count],
		V:          ps.V[:ps.Count],
	}
}

func clamp(v, lo, hi float32) float32 {
	return float32(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}

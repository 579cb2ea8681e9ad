// Package components defines ECS components for the scene entities that
// surround the fluid: obstacles and particle spawners.
package components

// Extent is the size of an axis-aligned rectangle whose bottom-left corner is
// the entity's Position.
type Extent struct {
	W, H float32
}

// Obstacle tags a rectangle that particles cannot enter.
type Obstacle struct {
	Seq uint32 // insertion order, obstacles are immutable once added
}

// Emitter turns an entity into a stationary particle source. The entity's
// Position is the emission point and its Velocity the mean emission velocity.
type Emitter struct {
	Name    string
	Rate    int     // particles per step
	Jitter  float32 // positional randomization width in pixels
	Enabled bool
}

package components

// Position represents an entity's location in simulation space (origin
// bottom-left, y up).
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in pixels per second.
type Velocity struct {
	X, Y float32
}

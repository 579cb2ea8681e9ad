package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PanelState is the read-only data shown in the control panel.
type PanelState struct {
	Paused       bool
	Tick         int32
	Particles    int
	MaxParticles int
	FluidCells   int
	Obstacles    int
	CellSize     float32
	DivMax       float32
	StepUS       int64
	FPS          float64
}

// PanelActions reports which buttons were pressed this frame.
type PanelActions struct {
	TogglePause    bool
	Reset          bool
	ClearObstacles bool
}

// ControlPanel renders the top-left panel with buttons and solver stats.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	visible  bool
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies on the visible panel, so
// pointer presses there are not treated as obstacle drags.
func (c *ControlPanel) Contains(x, y float32) bool {
	if !c.visible || c.height == 0 {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.height)
}

// Draw renders the panel and returns the button presses.
func (c *ControlPanel) Draw(s PanelState) PanelActions {
	var actions PanelActions
	if !c.visible {
		return actions
	}

	r := c.renderer
	th := r.Theme
	padding := th.Padding
	inner := c.width - padding*2

	c.height = th.LineHeight*9 + int32(th.ButtonHeight)*2 + padding*4
	r.DrawPanel(c.x, c.y, c.width, c.height)

	x := c.x + padding
	y := c.y + padding
	y = r.DrawSectionHeader(x, y, "FLIP Fluid")

	// Buttons
	bw := float32(inner-padding) / 2
	pauseLabel := "Pause"
	if s.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: bw, Height: th.ButtonHeight}, pauseLabel) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + bw + float32(padding), Y: float32(y), Width: bw, Height: th.ButtonHeight}, "Reset") {
		actions.Reset = true
	}
	y += int32(th.ButtonHeight) + 6
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: th.ButtonHeight}, "Clear Obstacles") {
		actions.ClearObstacles = true
	}
	y += int32(th.ButtonHeight) + padding

	// Stats
	fill := float32(0)
	if s.MaxParticles > 0 {
		fill = float32(s.Particles) / float32(s.MaxParticles)
	}
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d / %d", s.Particles, s.MaxParticles))
	y = r.DrawBar(x, y, "Arena", fill, inner)
	y = r.DrawLabelValue(x, y, "Fluid cells", fmt.Sprintf("%d", s.FluidCells))
	y = r.DrawLabelValue(x, y, "Obstacles", fmt.Sprintf("%d", s.Obstacles))
	y = r.DrawLabelValue(x, y, "Cell size", fmt.Sprintf("%.0f px", s.CellSize))
	y = r.DrawLabelValue(x, y, "Max div", fmt.Sprintf("%.4f", s.DivMax))
	y = r.DrawLabelValue(x, y, "Step", fmt.Sprintf("%d us", s.StepUS))
	r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%.0f  tick %d", s.FPS, s.Tick))

	return actions
}

package renderer

import (
	"github.com/lucasb-eyer/go-colorful"
)

// paletteSize is the number of entries in the speed lookup table.
const paletteSize = 256

// Speed ramp endpoints: slow particles are near white, fast ones settle on
// deep blue. Red and green fade quadratically, blue linearly.
var (
	fastColor = colorful.Color{R: 50.0 / 255, G: 100.0 / 255, B: 200.0 / 255}
	slowDelta = colorful.Color{R: 205.0 / 255, G: 155.0 / 255, B: 55.0 / 255}
)

// SpeedColor returns the ramp colour for a normalised speed in [0, 1].
func SpeedColor(norm float64) colorful.Color {
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	f := 1 - norm
	return colorful.Color{
		R: fastColor.R + slowDelta.R*f*f,
		G: fastColor.G + slowDelta.G*f*f,
		B: fastColor.B + slowDelta.B*f,
	}.Clamped()
}

// SpeedPalette is a precomputed speed-to-colour table.
type SpeedPalette struct {
	entries [paletteSize][3]uint8
}

// NewSpeedPalette builds the lookup table.
func NewSpeedPalette() *SpeedPalette {
	p := &SpeedPalette{}
	for i := range p.entries {
		r, g, b := SpeedColor(float64(i) / (paletteSize - 1)).RGB255()
		p.entries[i] = [3]uint8{r, g, b}
	}
	return p
}

// Lookup returns the RGB bytes for speed relative to maxSpeed.
func (p *SpeedPalette) Lookup(speed, maxSpeed float32) (r, g, b uint8) {
	idx := 0
	if maxSpeed > 0 {
		idx = int(speed / maxSpeed * (paletteSize - 1))
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= paletteSize {
		idx = paletteSize - 1
	}
	e := p.entries[idx]
	return e[0], e[1], e[2]
}

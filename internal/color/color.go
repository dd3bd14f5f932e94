// Package color provides the pixel color spaces used by the painting core.
//
// Stored pixels are premultiplied sRGB RGBA, 8 bits per channel. All blending
// happens on premultiplied ColorF32 values in a working space chosen by Space.
package color

// Space selects the working space blending happens in.
type Space uint8

const (
	// SpaceLinear blends in linear RGB (the default).
	SpaceLinear Space = iota
	// SpaceSRGB blends directly on the gamma-encoded values.
	SpaceSRGB
)

// String returns the name of the space.
func (s Space) String() string {
	switch s {
	case SpaceLinear:
		return "linear"
	case SpaceSRGB:
		return "srgb"
	default:
		return "unknown"
	}
}

// ColorF32 represents a color with float32 components in [0,1].
// RGB components are in the color space indicated by context.
// Alpha is always linear (never gamma-encoded).
type ColorF32 struct {
	R, G, B, A float32
}

// Transparent is the all-zero premultiplied color.
var Transparent = ColorF32{}

// Scale multiplies every channel of a premultiplied color by k.
func (c ColorF32) Scale(k float32) ColorF32 {
	return ColorF32{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A * k}
}


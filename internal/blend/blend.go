// Package blend provides premultiplied-alpha blending on working-space colors.
package blend

import "github.com/gogpu/paint/internal/color"

// Mode represents a brush blending mode.
type Mode int

const (
	// ModeNormal composites the source over the destination.
	ModeNormal Mode = iota
	// ModeErase removes destination coverage by the source alpha.
	ModeErase
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Blend blends src into dst using the specified mode.
func Blend(src, dst color.ColorF32, mode Mode) color.ColorF32 {
	if mode == ModeErase {
		return Erase(src.A, dst)
	}
	return Over(src, dst)
}

// Over is source-over for premultiplied colors: src + dst*(1-src.a).
func Over(src, dst color.ColorF32) color.ColorF32 {
	inv := 1 - src.A
	return color.ColorF32{
		R: src.R + dst.R*inv,
		G: src.G + dst.G*inv,
		B: src.B + dst.B*inv,
		A: src.A + dst.A*inv,
	}
}

// Erase scales every channel of dst by (1-alpha), which keeps it
// premultiplied.
func Erase(alpha float32, dst color.ColorF32) color.ColorF32 {
	return dst.Scale(1 - alpha)
}

package color

// Decode converts one stored premultiplied sRGB pixel to a premultiplied
// color in the working space.
//
// For SpaceLinear the pixel is un-premultiplied in 8 bits, each channel goes
// through the 256-entry table and the result is premultiplied again in linear
// space.
func (s Space) Decode(r, g, b, a uint8) ColorF32 {
	if a == 0 {
		return ColorF32{}
	}
	af := float32(a) / 255.0
	if s == SpaceSRGB {
		return ColorF32{
			R: float32(r) / 255.0,
			G: float32(g) / 255.0,
			B: float32(b) / 255.0,
			A: af,
		}
	}
	if a == 255 {
		return ColorF32{
			R: sRGBToLinearLUT[r],
			G: sRGBToLinearLUT[g],
			B: sRGBToLinearLUT[b],
			A: 1,
		}
	}
	return ColorF32{
		R: sRGBToLinearLUT[unpremultiply(r, a)] * af,
		G: sRGBToLinearLUT[unpremultiply(g, a)] * af,
		B: sRGBToLinearLUT[unpremultiply(b, a)] * af,
		A: af,
	}
}

// DecodeBytes decodes the pixel stored at p[0:4].
func (s Space) DecodeBytes(p []byte) ColorF32 {
	return s.Decode(p[0], p[1], p[2], p[3])
}

// Encode converts a premultiplied working-space color back to stored
// premultiplied sRGB. Out-of-range input is clamped; the result always
// satisfies RGB <= A.
func (s Space) Encode(c ColorF32) (r, g, b, a uint8) {
	if !(c.A > 0) {
		return 0, 0, 0, 0
	}
	if c.A > 1 {
		c.A = 1
	}
	a = clampAndRound(c.A)
	if a == 0 {
		return 0, 0, 0, 0
	}
	if s == SpaceSRGB {
		return min(clampAndRound(c.R), a), min(clampAndRound(c.G), a), min(clampAndRound(c.B), a), a
	}
	inv := 1 / c.A
	r = premultiply(LinearToSRGBFast(c.R*inv), a)
	g = premultiply(LinearToSRGBFast(c.G*inv), a)
	b = premultiply(LinearToSRGBFast(c.B*inv), a)
	return r, g, b, a
}

// EncodeBytes encodes c into p[0:4].
func (s Space) EncodeBytes(p []byte, c ColorF32) {
	p[0], p[1], p[2], p[3] = s.Encode(c)
}

// StraightToWorking converts a straight (non-premultiplied) sRGB color to
// the working space without premultiplying. The returned alpha is linear.
func (s Space) StraightToWorking(r, g, b, a uint8) ColorF32 {
	if s == SpaceSRGB {
		return ColorF32{
			R: float32(r) / 255.0,
			G: float32(g) / 255.0,
			B: float32(b) / 255.0,
			A: float32(a) / 255.0,
		}
	}
	return ColorF32{
		R: sRGBToLinearLUT[r],
		G: sRGBToLinearLUT[g],
		B: sRGBToLinearLUT[b],
		A: float32(a) / 255.0,
	}
}

// clampAndRound clamps a float32 to [0,1] and converts to uint8 with rounding.
func clampAndRound(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

// unpremultiply recovers the straight 8-bit channel value, rounding to nearest.
func unpremultiply(c, a uint8) uint8 {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		v = 255
	}
	return uint8(v) //nolint:gosec // clamped above
}

// premultiply scales a straight 8-bit channel by an 8-bit alpha.
func premultiply(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255) //nolint:gosec // result <= 255
}

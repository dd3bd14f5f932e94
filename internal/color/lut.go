package color

import "math"

// Table sizes. The 12-bit linear index is enough to hit every 8-bit sRGB code.
const (
	srgbEntries   = 256
	linearEntries = 4096
)

// sRGBToLinearLUT maps an 8-bit sRGB code to linear [0,1].
var sRGBToLinearLUT [srgbEntries]float32

// linearToSRGBLUT maps a 12-bit quantized linear value to an 8-bit sRGB code.
var linearToSRGBLUT [linearEntries]uint8

// The tables are process-wide and never written after package initialization.
func init() {
	for i := range srgbEntries {
		sRGBToLinearLUT[i] = float32(srgbToLinear64(float64(i) / 255.0))
	}
	for i := range linearEntries {
		linearToSRGBLUT[i] = quantize(linearToSRGB64(float64(i) / float64(linearEntries-1)))
	}
}

func srgbToLinear64(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func linearToSRGB64(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// quantize rounds a [0,1] value to a byte, clamping out-of-range input.
func quantize(v float64) uint8 {
	n := int(v*255.0 + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return uint8(n) //nolint:gosec // clamped above
}

// SRGBToLinear converts a gamma-encoded component in [0,1] to linear.
func SRGBToLinear(s float32) float32 {
	return float32(srgbToLinear64(float64(s)))
}

// LinearToSRGB converts a linear component in [0,1] to gamma-encoded.
func LinearToSRGB(l float32) float32 {
	return float32(linearToSRGB64(float64(l)))
}

// SRGBToLinearFast converts an sRGB byte to linear using the lookup table.
//
// Example:
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGBFast converts a linear value to an sRGB byte using the lookup
// table. Input outside [0,1] is clamped.
//
// Example:
//
//	s := LinearToSRGBFast(0.5) // 188 (not 128!)
func LinearToSRGBFast(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*(linearEntries-1)+0.5)]
}

// SRGBToLinearSlow is the math.Pow reference for SRGBToLinearFast.
// Used for testing and verification only.
func SRGBToLinearSlow(s uint8) float32 {
	return float32(srgbToLinear64(float64(s) / 255.0))
}

// LinearToSRGBSlow is the math.Pow reference for LinearToSRGBFast.
// Used for testing and verification only.
func LinearToSRGBSlow(l float32) uint8 {
	lf := math.Min(math.Max(float64(l), 0), 1)
	return quantize(linearToSRGB64(lf))
}

// Package wide provides SIMD-friendly wide types for batch pixel processing.
//
// F32x4 holds four float32 lanes. Fixed-size arrays and simple loops let the
// Go compiler keep the lanes in vector registers on SSE and NEON targets
// without assembly or unsafe.
//
// # Pixel4
//
// Pixel4 stores four premultiplied RGBA pixels in Structure-of-Arrays
// layout, one F32x4 per channel:
//
//	R: [R0, R1, R2, R3]
//	G: [G0, G1, G2, G3]
//	B: [B0, B1, B2, B3]
//	A: [A0, A1, A2, A3]
//
// Blend formulas written against Pixel4 touch every pixel of a group with
// the same instruction sequence.
package wide

package wide

// Pixel4 holds 4 RGBA pixels in Structure-of-Arrays layout.
type Pixel4 struct {
	R, G, B, A F32x4
}

// Set stores one pixel into lane i.
func (p *Pixel4) Set(i int, r, g, b, a float32) {
	p.R[i] = r
	p.G[i] = g
	p.B[i] = b
	p.A[i] = a
}

// Lane returns the pixel held in lane i.
func (p *Pixel4) Lane(i int) (r, g, b, a float32) {
	return p.R[i], p.G[i], p.B[i], p.A[i]
}

// Over composites src over p in place: p = src + p*(1-src.a).
func (p *Pixel4) Over(src *Pixel4) {
	inv := SplatF32(1).Sub(src.A)
	p.R = p.R.MulAdd(inv, src.R)
	p.G = p.G.MulAdd(inv, src.G)
	p.B = p.B.MulAdd(inv, src.B)
	p.A = p.A.MulAdd(inv, src.A)
}

// ScaleBy multiplies every channel of lane i by k[i].
func (p *Pixel4) ScaleBy(k F32x4) {
	p.R = p.R.Mul(k)
	p.G = p.G.Mul(k)
	p.B = p.B.Mul(k)
	p.A = p.A.Mul(k)
}

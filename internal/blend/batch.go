package blend

import (
	"github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/wide"
)

// OverBatch composites src[i] over dst[i] for every i, four pixels at a time
// with a scalar tail. Both slices must have the same length.
func OverBatch(dst, src []color.ColorF32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}

	i := 0
	var d, s wide.Pixel4
	for ; i+4 <= n; i += 4 {
		load4(&d, dst[i:i+4])
		load4(&s, src[i:i+4])
		d.Over(&s)
		store4(dst[i:i+4], &d)
	}

	for ; i < n; i++ {
		dst[i] = Over(src[i], dst[i])
	}
}

// EraseBatch scales dst[i] by (1-alpha[i]) for every i.
func EraseBatch(dst []color.ColorF32, alpha []float32) {
	n := len(dst)
	if len(alpha) < n {
		n = len(alpha)
	}

	i := 0
	var d wide.Pixel4
	one := wide.SplatF32(1)
	for ; i+4 <= n; i += 4 {
		load4(&d, dst[i:i+4])
		d.ScaleBy(one.Sub(wide.F32x4(alpha[i : i+4])))
		store4(dst[i:i+4], &d)
	}

	for ; i < n; i++ {
		dst[i] = Erase(alpha[i], dst[i])
	}
}

// ScaleBatch multiplies every channel of px by k.
func ScaleBatch(px []color.ColorF32, k float32) {
	if k == 1 {
		return
	}
	i := 0
	var p wide.Pixel4
	kk := wide.SplatF32(k)
	for ; i+4 <= len(px); i += 4 {
		load4(&p, px[i:i+4])
		p.ScaleBy(kk)
		store4(px[i:i+4], &p)
	}
	for ; i < len(px); i++ {
		px[i] = px[i].Scale(k)
	}
}

// AccumulateBatch adds src[i] into acc[i] channel-wise.
func AccumulateBatch(acc, src []color.ColorF32) {
	n := min(len(acc), len(src))
	i := 0
	var a, s wide.Pixel4
	for ; i+4 <= n; i += 4 {
		load4(&a, acc[i:i+4])
		load4(&s, src[i:i+4])
		a.R = a.R.Add(s.R)
		a.G = a.G.Add(s.G)
		a.B = a.B.Add(s.B)
		a.A = a.A.Add(s.A)
		store4(acc[i:i+4], &a)
	}
	for ; i < n; i++ {
		acc[i].R += src[i].R
		acc[i].G += src[i].G
		acc[i].B += src[i].B
		acc[i].A += src[i].A
	}
}

func load4(p *wide.Pixel4, px []color.ColorF32) {
	for i := range 4 {
		c := px[i]
		p.Set(i, c.R, c.G, c.B, c.A)
	}
}

func store4(px []color.ColorF32, p *wide.Pixel4) {
	for i := range 4 {
		r, g, b, a := p.Lane(i)
		px[i] = color.ColorF32{R: r, G: g, B: b, A: a}
	}
}

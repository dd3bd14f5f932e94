package paint

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/gogpu/paint/internal/blend"
	icolor "github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/geom"
	"github.com/gogpu/paint/internal/parallel"
)

// coverageFunc returns the shape coverage in [0,1] of the pixel whose
// center is (dx, dy) away from the dab center.
type coverageFunc func(dx, dy float32) float32

// dabBounds returns the pixels a dab at center can touch: floor(c) ± ceil(r)
// inclusive, clipped to clip.
func dabBounds(center geom.Vec2, radius float32, clip image.Rectangle) image.Rectangle {
	fx, fy := center.Floor()
	ir := int(math32.Ceil(radius))
	return image.Rect(fx-ir, fy-ir, fx+ir+1, fy+ir+1).Intersect(clip)
}

// softness maps normalized distance t in [0,1) to coverage.
func softness(o *BrushOptions) func(t float32) float32 {
	if o.Softness == SoftnessCurve {
		curve := o.Curve
		return curve.Eval
	}
	h := min(max(o.Hardness/100, 0), 0.999)
	return func(t float32) float32 {
		if t < h {
			return 1
		}
		v := 1 - (t-h)/(1-h)
		return v * v * (3 - 2*v)
	}
}

// softCoverage builds the coverage function of a soft dab. The shape switch
// happens once per dab.
func softCoverage(b *Brush, r float32) coverageFunc {
	soft := softness(&b.Options)
	fadeStart := max(0, r-1)
	aa := b.Antialias

	// Outer one-pixel fade: coverage falls to 0 at d = r.
	fade := func(cov, d float32) float32 {
		if aa && d > fadeStart {
			cov *= r - d
		}
		return cov
	}

	switch b.Options.Tip.Shape {
	case TipSquare:
		return func(dx, dy float32) float32 {
			d := max(math32.Abs(dx), math32.Abs(dy))
			t := d / r
			if t >= 1 {
				return 0
			}
			return fade(soft(t), d)
		}
	case TipCustom:
		m := b.Options.Tip.Mask
		inv := 1 / (2 * r)
		return func(dx, dy float32) float32 {
			d := max(math32.Abs(dx), math32.Abs(dy))
			if d >= r {
				return 0
			}
			return fade(m.bilinear((dx+r)*inv, (dy+r)*inv), d)
		}
	default:
		return func(dx, dy float32) float32 {
			d := math32.Hypot(dx, dy)
			t := d / r
			if t >= 1 {
				return 0
			}
			return fade(soft(t), d)
		}
	}
}

// pixelCoverage builds the binary (or mask-valued) coverage of a pixel dab.
func pixelCoverage(b *Brush, r float32) coverageFunc {
	switch b.Options.Tip.Shape {
	case TipSquare:
		return func(dx, dy float32) float32 {
			if math32.Abs(dx) <= r && math32.Abs(dy) <= r {
				return 1
			}
			return 0
		}
	case TipCustom:
		m := b.Options.Tip.Mask
		diameter := 2 * r
		return func(dx, dy float32) float32 {
			nx, ny := (dx+r)/diameter, (dy+r)/diameter
			if nx < 0 || ny < 0 || nx >= 1 || ny >= 1 {
				return 0
			}
			return m.at(int(nx*float32(m.Width)), int(ny*float32(m.Height)))
		}
	default:
		r2 := r * r
		return func(dx, dy float32) float32 {
			if dx*dx+dy*dy <= r2 {
				return 1
			}
			return 0
		}
	}
}

// bilinear samples the mask at normalized (u, v) with pixel centers at
// half-integers. Texels outside the mask are 0.
func (m *TipMask) bilinear(u, v float32) float32 {
	x := u*float32(m.Width) - 0.5
	y := v*float32(m.Height) - 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := m.at(ix, iy)*(1-fx) + m.at(ix+1, iy)*fx
	bottom := m.at(ix, iy+1)*(1-fx) + m.at(ix+1, iy+1)*fx
	return top*(1-fy) + bottom*fy
}

// dabJob carries everything a tile worker needs to rasterize one dab.
type dabJob struct {
	center   geom.Vec2
	bounds   image.Rectangle
	coverage coverageFunc
	color    icolor.ColorF32 // straight, working space
	alpha    float32         // color alpha * opacity * flow
	mode     blend.Mode
	sel      Selection
	space    icolor.Space
}

// dab stamps the brush once at center on layer l, snapshotting footprint
// tiles into a on first touch. It reports whether any tile was in reach.
func (c *Canvas) dab(l *Layer, a *UndoAction, b *Brush, center geom.Vec2, sel Selection) bool {
	o := &b.Options
	r := o.Diameter / 2

	clip := c.Bounds()
	if sel != nil {
		clip = clip.Intersect(sel.Bounds())
	}
	bounds := dabBounds(center, r, clip)
	if bounds.Empty() {
		return false
	}

	job := dabJob{
		center: center,
		bounds: bounds,
		color:  c.space.StraightToWorking(o.Color.R, o.Color.G, o.Color.B, o.Color.A),
		mode:   o.Blend.mode(),
		sel:    sel,
		space:  c.space,
	}
	job.alpha = job.color.A * o.Opacity * o.Flow / 100
	if job.alpha <= 0 {
		return true
	}

	coords := c.tilesIn(bounds)
	for _, tc := range coords {
		a.snapshot(l, tc, c.buffers)
	}
	tiles := make([]*parallel.Tile, len(coords))
	for i, tc := range coords {
		tiles[i] = l.tile(tc)
	}

	if b.Kind == PixelBrush {
		job.coverage = pixelCoverage(b, r)
		for _, t := range tiles {
			c.rasterPixel(t, &job)
		}
	} else {
		job.coverage = softCoverage(b, r)
		c.workers.ForEach(len(tiles), func(i int) {
			c.rasterSoft(tiles[i], &job)
		})
	}

	c.markTiles(coords)
	return true
}

// span returns the dab pixels inside tile t, in canvas coordinates.
func (j *dabJob) span(t *parallel.Tile) image.Rectangle {
	return j.bounds.Intersect(t.Bounds())
}

// rasterSoft blends one dab into one tile a row at a time. Covered pixels of
// a row are gathered, blended in a batch and written back; uncovered pixels
// are never re-encoded.
func (c *Canvas) rasterSoft(t *parallel.Tile, j *dabJob) {
	r := j.span(t)
	if r.Empty() {
		return
	}
	origin := t.Bounds().Min

	n := r.Dx()
	idx := make([]int, 0, n)
	dst := make([]icolor.ColorF32, 0, n)
	src := make([]icolor.ColorF32, 0, n)
	alpha := make([]float32, 0, n)

	t.Lock()
	defer t.Unlock()

	wrote := false
	for y := r.Min.Y; y < r.Max.Y; y++ {
		idx, dst, src, alpha = idx[:0], dst[:0], src[:0], alpha[:0]
		dy := float32(y) + 0.5 - j.center.Y
		for x := r.Min.X; x < r.Max.X; x++ {
			if !selectedPixel(j.sel, x, y) {
				continue
			}
			cov := j.coverage(float32(x)+0.5-j.center.X, dy)
			a := j.alpha * cov
			if a <= 0 {
				continue
			}
			off := t.PixelOffset(x-origin.X, y-origin.Y)
			idx = append(idx, off)
			dst = append(dst, j.space.DecodeBytes(t.Data[off:]))
			alpha = append(alpha, a)
			src = append(src, icolor.ColorF32{R: j.color.R * a, G: j.color.G * a, B: j.color.B * a, A: a})
		}
		if len(idx) == 0 {
			continue
		}
		if j.mode == blend.ModeErase {
			blend.EraseBatch(dst, alpha)
		} else {
			blend.OverBatch(dst, src)
		}
		for k, off := range idx {
			j.space.EncodeBytes(t.Data[off:], dst[k])
		}
		wrote = true
	}
	settle(t, j, wrote)
}

// rasterPixel blends one hard-edged dab into one tile.
func (c *Canvas) rasterPixel(t *parallel.Tile, j *dabJob) {
	r := j.span(t)
	if r.Empty() {
		return
	}
	origin := t.Bounds().Min

	t.Lock()
	defer t.Unlock()

	wrote := false
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dy := float32(y) + 0.5 - j.center.Y
		for x := r.Min.X; x < r.Max.X; x++ {
			if !selectedPixel(j.sel, x, y) {
				continue
			}
			a := j.alpha * j.coverage(float32(x)+0.5-j.center.X, dy)
			if a <= 0 {
				continue
			}
			off := t.PixelOffset(x-origin.X, y-origin.Y)
			p := t.Data[off : off+4]
			src := icolor.ColorF32{R: j.color.R * a, G: j.color.G * a, B: j.color.B * a, A: a}
			j.space.EncodeBytes(p, blend.Blend(src, j.space.DecodeBytes(p), j.mode))
			wrote = true
		}
	}
	settle(t, j, wrote)
}

// settle updates the empty hint after a dab wrote into t.
func settle(t *parallel.Tile, j *dabJob, wrote bool) {
	if !wrote {
		return
	}
	if j.mode == blend.ModeErase {
		t.RecomputeEmpty()
		return
	}
	t.SetEmpty(false)
}

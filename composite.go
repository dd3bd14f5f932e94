package paint

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/paint/internal/blend"
	icolor "github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/parallel"
)

// Composite flattens the layers over rect into dst, downsampling by step.
//
// dst receives ceil(w/step) x ceil(h/step) pixels starting at dst.Rect.Min.
// Each output pixel is the average, in the blend space, of the step x step
// block of composited canvas pixels it covers (fewer at the right and
// bottom edges). Pixels outside the canvas are transparent.
//
// Composite only takes tile read locks and may run while a stroke is being
// painted; each tile row it reads is consistent.
func (c *Canvas) Composite(rect image.Rectangle, step int, dst *image.RGBA) error {
	if step < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	rect = rect.Canon()
	if rect.Empty() {
		return nil
	}
	outW := (rect.Dx() + step - 1) / step
	outH := (rect.Dy() + step - 1) / step
	if dst == nil || dst.Rect.Dx() < outW || dst.Rect.Dy() < outH {
		return fmt.Errorf("%w: need %dx%d", ErrBufferTooSmall, outW, outH)
	}

	f := c.newFlattener(rect)
	defer f.release()

	w := rect.Dx()
	row := make([]icolor.ColorF32, w)
	if step == 1 {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			f.flattenRow(y, row)
			off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y-rect.Min.Y)
			for x := range row {
				c.space.EncodeBytes(dst.Pix[off+x*4:], row[x])
			}
		}
		return nil
	}

	sum := make([]icolor.ColorF32, w)
	for j := 0; j < outH; j++ {
		y0 := rect.Min.Y + j*step
		y1 := min(y0+step, rect.Max.Y)
		clear(sum)
		for y := y0; y < y1; y++ {
			f.flattenRow(y, row)
			blend.AccumulateBatch(sum, row)
		}
		off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+j)
		for i := 0; i < outW; i++ {
			x0 := i * step
			x1 := min(x0+step, w)
			var acc icolor.ColorF32
			for _, p := range sum[x0:x1] {
				acc.R += p.R
				acc.G += p.G
				acc.B += p.B
				acc.A += p.A
			}
			n := float32((x1 - x0) * (y1 - y0))
			c.space.EncodeBytes(dst.Pix[off+i*4:], acc.Scale(1/n))
		}
	}
	return nil
}

// CompositeDirty recomposes every tile marked dirty since the last call
// into dst, which must cover the whole canvas with canvas (0, 0) at
// dst.Rect.Min. Tiles are flattened in parallel. It returns the tiles it
// wrote.
func (c *Canvas) CompositeDirty(dst *image.RGBA) ([]TileCoord, error) {
	if dst == nil || dst.Rect.Dx() < c.width || dst.Rect.Dy() < c.height {
		return nil, fmt.Errorf("%w: need %dx%d", ErrBufferTooSmall, c.width, c.height)
	}
	coords := c.dirty.Drain()
	errs := make([]error, len(coords))
	c.workers.ForEach(len(coords), func(k int) {
		r := c.tileRect(coords[k]).Intersect(c.Bounds())
		sub, _ := dst.SubImage(r.Add(dst.Rect.Min)).(*image.RGBA)
		errs[k] = c.Composite(r, 1, sub)
	})
	return coords, errors.Join(errs...)
}

// flattener composites canvas rows. When the requested rect lies in a
// single tile, every layer's tile is looked up and read-locked once for the
// whole call; otherwise tiles are looked up once per row span and locked
// only while that span is decoded.
type flattener struct {
	c      *Canvas
	x0     int
	layers []*Layer
	fixed  []*parallel.Tile
	single bool
	tmp    []icolor.ColorF32
}

func (c *Canvas) newFlattener(rect image.Rectangle) *flattener {
	f := &flattener{
		c:      c,
		x0:     rect.Min.X,
		layers: c.layers,
		tmp:    make([]icolor.ColorF32, min(rect.Dx(), c.tileSize)),
	}
	tc := c.coordOf(rect.Min.X, rect.Min.Y)
	if tc != c.coordOf(rect.Max.X-1, rect.Max.Y-1) || !rect.In(c.Bounds()) {
		return f
	}
	f.single = true
	f.fixed = make([]*parallel.Tile, len(f.layers))
	for i, l := range f.layers {
		if !l.visible || l.opacity <= 0 {
			continue
		}
		if t := l.tiles.Get(tc); t != nil {
			t.RLock()
			f.fixed[i] = t
		}
	}
	return f
}

func (f *flattener) release() {
	for _, t := range f.fixed {
		if t != nil {
			t.RUnlock()
		}
	}
	f.fixed = nil
}

// flattenRow composites canvas row y over [x0, x0+len(out)) back to front.
func (f *flattener) flattenRow(y int, out []icolor.ColorF32) {
	clear(out)
	c := f.c
	if y < 0 || y >= c.height {
		return
	}
	x0 := f.x0
	lo, hi := max(x0, 0), min(x0+len(out), c.width)
	if lo >= hi {
		return
	}

	for i, l := range f.layers {
		if !l.visible || l.opacity <= 0 {
			continue
		}
		for x := lo; x < hi; {
			tc := c.coordOf(x, y)
			end := min((tc.X+1)<<c.shift, hi)
			seg := out[x-x0 : end-x0]
			f.blendSpan(i, l, tc, x, y, seg)
			x = end
		}
	}
}

// blendSpan composites one layer's pixels [x, x+len(seg)) of row y, all in
// tile tc, over seg.
func (f *flattener) blendSpan(i int, l *Layer, tc TileCoord, x, y int, seg []icolor.ColorF32) {
	c := f.c
	var t *parallel.Tile
	if f.single {
		t = f.fixed[i]
	} else {
		t = l.tiles.Get(tc)
	}

	src := f.tmp[:len(seg)]
	switch {
	case t == nil && l.background:
		for k := range src {
			src[k] = c.clearColor
		}
	case t == nil || t.IsEmpty():
		return
	default:
		lx, ly := c.local(x, y)
		off := t.PixelOffset(lx, ly)
		if !f.single {
			t.RLock()
		}
		for k := range src {
			src[k] = c.space.DecodeBytes(t.Data[off+k*4:])
		}
		if !f.single {
			t.RUnlock()
		}
	}
	blend.ScaleBatch(src, l.opacity)
	blend.OverBatch(seg, src)
}

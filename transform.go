package paint

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/paint/internal/geom"
	"github.com/gogpu/paint/internal/parallel"
)

// Transform moves, rotates and scales layer content about a pivot:
//
//	p' = R(Rotation) * S(Scale) * (p - Pivot) + Pivot + Offset
//
// Rotation is in radians. A zero Scale component makes the transform
// singular; use Translate or set Scale to (1, 1) for no scaling.
type Transform struct {
	Offset   Point
	Rotation float32
	Scale    Point
	Pivot    Point
}

// Translate returns a pure translation by (dx, dy).
func Translate(dx, dy float32) Transform {
	return Transform{Offset: Pt(dx, dy), Scale: Pt(1, 1)}
}

func (t Transform) affine() geom.Affine {
	return geom.Pivoted(
		float64(t.Offset.X), float64(t.Offset.Y),
		float64(t.Rotation),
		float64(t.Scale.X), float64(t.Scale.Y),
		float64(t.Pivot.X), float64(t.Pivot.Y),
	)
}

// Matrix returns the forward mapping as a row-major 2x3 matrix, suitable
// for golang.org/x/image/draw.Transformer.
func (t Transform) Matrix() f64.Aff3 {
	return t.affine().Aff3()
}

// mappedTile is a destination tile produced by the reverse-map phase.
type mappedTile struct {
	coord TileCoord
	data  []byte
	count int
}

// ApplyTransform moves the non-transparent pixels of the active layer that
// lie in sel (or all of them when sel is nil) through t, using
// nearest-neighbour sampling. Sources are cleared before destinations are
// written. With a selection, the canvas selection becomes sel mapped through
// t; undo restores the previous one.
func (c *Canvas) ApplyTransform(t Transform, sel Selection) (*UndoAction, error) {
	idx := c.active
	l := c.layers[idx]
	if l.Locked() {
		Logger().Warn("paint: transform on locked layer", "layer", idx, "name", l.name)
		return nil, fmt.Errorf("%w: %q", ErrLayerLocked, l.name)
	}
	aff := t.affine()
	inv, ok := aff.Invert()
	if !ok {
		return nil, ErrSingularTransform
	}

	// Gather.
	coords := l.tiles.Coords()
	found := make([]image.Rectangle, len(coords))
	c.workers.ForEach(len(coords), func(k int) {
		found[k] = gatherBounds(l.tiles.Get(coords[k]), sel)
	})
	var srcBounds image.Rectangle
	var srcCoords []TileCoord
	for k, r := range found {
		if r.Empty() {
			continue
		}
		srcBounds = srcBounds.Union(r)
		srcCoords = append(srcCoords, coords[k])
	}
	if srcBounds.Empty() {
		return nil, ErrNothingToTransform
	}

	src := image.NewRGBA(srcBounds)
	c.workers.ForEach(len(srcCoords), func(k int) {
		gatherPixels(l.tiles.Get(srcCoords[k]), sel, src)
	})

	// Reverse map.
	dstBounds := aff.BoundsOf(srcBounds).Inset(-1)
	dstCoords := c.tilesIn(dstBounds)
	mapped := make([]mappedTile, len(dstCoords))
	c.workers.ForEach(len(dstCoords), func(k int) {
		mapped[k] = c.reverseMap(dstCoords[k], dstBounds, inv, src)
	})

	// Record.
	a := newUndoAction()
	for _, tc := range srcCoords {
		a.snapshot(l, tc, c.buffers)
	}
	var writes []mappedTile
	for _, m := range mapped {
		if m.count == 0 {
			c.buffers.Put(m.data)
			continue
		}
		a.snapshot(l, m.coord, c.buffers)
		writes = append(writes, m)
	}

	// Apply.
	c.workers.ForEach(len(srcCoords), func(k int) {
		tc := srcCoords[k]
		c.liftTile(l.tiles.Get(tc), nil, sel, srcBounds, tc)
	})
	c.workers.ForEach(len(writes), func(k int) {
		m := writes[k]
		writeMapped(l.tile(m.coord), m.data)
		c.buffers.Put(m.data)
	})

	if sel != nil {
		a.recordSelection(c.selection)
		c.selection = sel.transformed(aff)
	}
	rec := t
	a.transform = &rec
	l.history.Push(a)
	c.markTiles(a.Tiles())

	Logger().Debug("paint: transform applied",
		"layer", idx, "src", srcBounds, "dst", dstBounds, "tiles", a.Len())
	return a, nil
}

// gatherBounds returns the bounds of the selected non-transparent pixels of t.
func gatherBounds(t *parallel.Tile, sel Selection) image.Rectangle {
	if t == nil || t.IsEmpty() {
		return image.Rectangle{}
	}
	origin := t.Bounds().Min
	t.RLock()
	defer t.RUnlock()

	var r image.Rectangle
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			if t.Data[t.PixelOffset(x, y)+3] == 0 {
				continue
			}
			gx, gy := origin.X+x, origin.Y+y
			if !selectedPixel(sel, gx, gy) {
				continue
			}
			r = r.Union(image.Rect(gx, gy, gx+1, gy+1))
		}
	}
	return r
}

// gatherPixels copies the selected non-transparent pixels of t into dst.
// Tiles cover disjoint parts of dst, so callers may run this concurrently.
func gatherPixels(t *parallel.Tile, sel Selection, dst *image.RGBA) {
	r := t.Bounds().Intersect(dst.Rect)
	origin := t.Bounds().Min
	t.RLock()
	defer t.RUnlock()

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			off := t.PixelOffset(x-origin.X, y-origin.Y)
			if t.Data[off+3] == 0 || !selectedPixel(sel, x, y) {
				continue
			}
			copy(dst.Pix[dst.PixOffset(x, y):][:4], t.Data[off:off+4])
		}
	}
}

// reverseMap fills a scratch tile at tc by sampling src through inv at each
// destination pixel center.
func (c *Canvas) reverseMap(tc TileCoord, bounds image.Rectangle, inv geom.Affine, src *image.RGBA) mappedTile {
	m := mappedTile{coord: tc, data: c.buffers.Get()}
	tr := c.tileRect(tc)
	r := tr.Intersect(bounds)
	stride := c.tileSize * 4

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			fx, fy := inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)
			sp := image.Pt(floorInt(fx), floorInt(fy))
			if !sp.In(src.Rect) {
				continue
			}
			so := src.PixOffset(sp.X, sp.Y)
			if src.Pix[so+3] == 0 {
				continue
			}
			do := (y-tr.Min.Y)*stride + (x-tr.Min.X)*4
			copy(m.data[do:do+4], src.Pix[so:so+4])
			m.count++
		}
	}
	return m
}

// writeMapped stores every non-transparent pixel of data into t.
func writeMapped(t *parallel.Tile, data []byte) {
	t.Lock()
	defer t.Unlock()
	for i := 0; i+3 < len(data); i += 4 {
		if data[i+3] != 0 {
			copy(t.Data[i:i+4], data[i:i+4])
		}
	}
	t.SetEmpty(false)
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}

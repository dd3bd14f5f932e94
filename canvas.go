package paint

import (
	"fmt"
	"image"
	"image/color"
	"math/bits"
	"math/rand/v2"
	"sync"

	icolor "github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/parallel"
)

// TileCoord addresses a tile by its signed column and row.
type TileCoord = parallel.TileCoord

// Canvas is a fixed-size stack of tiled layers with per-layer history.
//
// A new canvas has two layers: a locked "Background" at index 0 filled with
// the clear color, and an empty "Layer 1" which is active.
type Canvas struct {
	width, height int
	tileSize      int
	shift         uint
	tilesX        int
	tilesY        int

	space      icolor.Space
	clear      [4]uint8
	clearColor icolor.ColorF32

	layers    []*Layer
	active    int
	selection Selection

	workers *parallel.WorkerPool
	buffers *parallel.BufferPool
	dirty   *parallel.DirtyRegion

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewCanvas creates a width x height canvas.
func NewCanvas(width, height int, opts ...Option) (*Canvas, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidCanvas, width, height)
	}
	if o.tileSize <= 0 || o.tileSize&(o.tileSize-1) != 0 {
		return nil, fmt.Errorf("%w: tile size %d is not a power of two", ErrInvalidCanvas, o.tileSize)
	}

	n := o.tileSize
	c := &Canvas{
		width:    width,
		height:   height,
		tileSize: n,
		shift:    uint(bits.TrailingZeros(uint(n))),
		tilesX:   (width + n - 1) / n,
		tilesY:   (height + n - 1) / n,
		space:    o.space.space(),
		workers:  parallel.NewWorkerPool(o.workers),
		buffers:  parallel.NewBufferPool(n),
		rng:      rand.New(rand.NewPCG(o.seed, o.seed^0xda3e39cb94b95bdb)),
	}
	c.dirty = parallel.NewDirtyRegion(c.tilesX, c.tilesY, n)
	c.setClearColor(o.clear)

	bg := newLayer("Background", c.buffers)
	bg.background = true
	bg.clear = c.clear
	c.layers = []*Layer{bg, newLayer("Layer 1", c.buffers)}
	c.active = 1
	c.dirty.MarkAll()

	Logger().Debug("paint: canvas created",
		"width", width, "height", height, "tile", n, "space", o.space.String(),
		"workers", c.workers.Workers())
	return c, nil
}

func (c *Canvas) setClearColor(col color.Color) {
	if col == nil {
		col = color.Transparent
	}
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	c.clear = [4]uint8{rgba.R, rgba.G, rgba.B, rgba.A}
	c.clearColor = c.space.Decode(rgba.R, rgba.G, rgba.B, rgba.A)
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Bounds returns the canvas rectangle (0, 0, Width, Height).
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// TileSize returns the tile edge in pixels.
func (c *Canvas) TileSize() int { return c.tileSize }

// ClearColor returns the background fill as premultiplied RGBA.
func (c *Canvas) ClearColor() color.RGBA {
	return color.RGBA{R: c.clear[0], G: c.clear[1], B: c.clear[2], A: c.clear[3]}
}

// Close stops the worker pool. The canvas keeps working afterwards, but
// parallel phases run on the calling goroutine.
func (c *Canvas) Close() {
	c.workers.Close()
}

// TakeDirty returns the display tiles changed since the last call, in
// row-major order, and clears the set.
func (c *Canvas) TakeDirty() []TileCoord {
	return c.dirty.Drain()
}

// Pixel returns the stored premultiplied pixel at (x, y) on a layer.
// Points outside the canvas and invalid layers read as transparent; an
// unallocated background tile reads as the clear color.
func (c *Canvas) Pixel(layer, x, y int) color.RGBA {
	if layer < 0 || layer >= len(c.layers) || !image.Pt(x, y).In(c.Bounds()) {
		return color.RGBA{}
	}
	l := c.layers[layer]
	t := l.tiles.Get(c.coordOf(x, y))
	if t == nil {
		if l.background {
			return c.ClearColor()
		}
		return color.RGBA{}
	}
	lx, ly := c.local(x, y)
	off := t.PixelOffset(lx, ly)
	t.RLock()
	defer t.RUnlock()
	return color.RGBA{R: t.Data[off], G: t.Data[off+1], B: t.Data[off+2], A: t.Data[off+3]}
}

func (c *Canvas) coordOf(x, y int) TileCoord {
	return TileCoord{X: x >> c.shift, Y: y >> c.shift}
}

func (c *Canvas) local(x, y int) (int, int) {
	mask := c.tileSize - 1
	return x & mask, y & mask
}

// tileRect returns the canvas-space rectangle of tile tc.
func (c *Canvas) tileRect(tc TileCoord) image.Rectangle {
	x, y := tc.X<<c.shift, tc.Y<<c.shift
	return image.Rect(x, y, x+c.tileSize, y+c.tileSize)
}

// tilesIn lists the tiles intersecting r in row-major order.
func (c *Canvas) tilesIn(r image.Rectangle) []TileCoord {
	if r.Empty() {
		return nil
	}
	tx0, ty0 := r.Min.X>>c.shift, r.Min.Y>>c.shift
	tx1, ty1 := (r.Max.X-1)>>c.shift, (r.Max.Y-1)>>c.shift
	out := make([]TileCoord, 0, (tx1-tx0+1)*(ty1-ty0+1))
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			out = append(out, TileCoord{X: tx, Y: ty})
		}
	}
	return out
}

// markTiles flags display tiles as needing recomposition.
func (c *Canvas) markTiles(coords []TileCoord) {
	for _, tc := range coords {
		c.dirty.MarkCoord(tc)
	}
}

// markLayer flags every allocated tile of l.
func (c *Canvas) markLayer(l *Layer) {
	c.markTiles(l.tiles.Coords())
}

// jitter returns a uniform offset in [-amount, amount] on each axis.
func (c *Canvas) jitter(amount float32) (float32, float32) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	jx := (c.rng.Float32()*2 - 1) * amount
	jy := (c.rng.Float32()*2 - 1) * amount
	return jx, jy
}

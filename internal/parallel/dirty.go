package parallel

import (
	"image"
	"math/bits"
	"sync/atomic"
)

// DirtyRegion tracks which display tiles need recompositing using an atomic
// bitmap, one bit per tile packed into uint64 words.
//
// Only tiles inside the canvas grid [0, tilesX) x [0, tilesY) are tracked;
// marks outside it are dropped since nothing displays them.
// All methods are safe for concurrent use without external synchronization.
type DirtyRegion struct {
	// words is the bitmap. Bit index = ty*tilesX + tx.
	words []atomic.Uint64

	tilesX   int
	tilesY   int
	tileSize int
}

// NewDirtyRegion creates a clean tracker for a tilesX x tilesY grid of
// tiles with the given edge. Returns nil if any dimension is not positive.
func NewDirtyRegion(tilesX, tilesY, tileSize int) *DirtyRegion {
	if tilesX <= 0 || tilesY <= 0 || tileSize <= 0 {
		return nil
	}

	numWords := (tilesX*tilesY + 63) / 64
	return &DirtyRegion{
		words:    make([]atomic.Uint64, numWords),
		tilesX:   tilesX,
		tilesY:   tilesY,
		tileSize: tileSize,
	}
}

// Mark marks a single tile as dirty with an atomic OR.
func (d *DirtyRegion) Mark(tx, ty int) {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return
	}
	idx := ty*d.tilesX + tx
	d.words[idx/64].Or(1 << (idx & 63))
}

// MarkCoord marks the tile at c.
func (d *DirtyRegion) MarkCoord(c TileCoord) {
	d.Mark(c.X, c.Y)
}

// MarkRect marks every tile intersecting the pixel rectangle r.
func (d *DirtyRegion) MarkRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, d.tilesX*d.tileSize, d.tilesY*d.tileSize))
	if r.Empty() {
		return
	}

	tx1 := r.Min.X / d.tileSize
	ty1 := r.Min.Y / d.tileSize
	tx2 := (r.Max.X - 1) / d.tileSize
	ty2 := (r.Max.Y - 1) / d.tileSize

	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			d.Mark(tx, ty)
		}
	}
}

// MarkAll marks every tile as dirty.
func (d *DirtyRegion) MarkAll() {
	totalTiles := d.tilesX * d.tilesY
	fullWords := totalTiles / 64
	remainder := totalTiles % 64

	for i := 0; i < fullWords; i++ {
		d.words[i].Store(^uint64(0))
	}
	if remainder > 0 {
		d.words[fullWords].Store((uint64(1) << remainder) - 1)
	}
}

// Clear marks every tile as clean.
func (d *DirtyRegion) Clear() {
	for i := range d.words {
		d.words[i].Store(0)
	}
}

// IsDirty reports whether the tile at (tx, ty) is marked.
func (d *DirtyRegion) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return false
	}
	idx := ty*d.tilesX + tx
	return d.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// IsEmpty reports whether no tile is marked.
func (d *DirtyRegion) IsEmpty() bool {
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of marked tiles.
func (d *DirtyRegion) Count() int {
	count := 0
	for i := range d.words {
		count += bits.OnesCount64(d.words[i].Load())
	}
	return count
}

// Drain atomically takes every marked tile and clears the marks. Tiles are
// returned in row-major order.
func (d *DirtyRegion) Drain() []TileCoord {
	var dirty []TileCoord
	for wordIdx := range d.words {
		word := d.words[wordIdx].Swap(0)
		dirty = d.appendBits(dirty, wordIdx, word)
	}
	return dirty
}

// ForEachDirty calls fn for each marked tile without clearing it.
func (d *DirtyRegion) ForEachDirty(fn func(c TileCoord)) {
	if fn == nil {
		return
	}
	for wordIdx := range d.words {
		for _, c := range d.appendBits(nil, wordIdx, d.words[wordIdx].Load()) {
			fn(c)
		}
	}
}

func (d *DirtyRegion) appendBits(dst []TileCoord, wordIdx int, word uint64) []TileCoord {
	totalTiles := d.tilesX * d.tilesY
	for word != 0 {
		bitIdx := bits.TrailingZeros64(word)
		tileIdx := wordIdx*64 + bitIdx
		if tileIdx >= totalTiles {
			break
		}
		dst = append(dst, TileCoord{X: tileIdx % d.tilesX, Y: tileIdx / d.tilesX})
		word &^= 1 << bitIdx
	}
	return dst
}

// TilesX returns the number of tiles horizontally.
func (d *DirtyRegion) TilesX() int {
	return d.tilesX
}

// TilesY returns the number of tiles vertically.
func (d *DirtyRegion) TilesY() int {
	return d.tilesY
}

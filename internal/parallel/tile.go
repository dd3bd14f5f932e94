// Package parallel provides the tile storage and worker infrastructure the
// painting core runs on.
//
// Layers are stored as sparse maps of square tiles. Every tile owns its pixel
// buffer and its own lock, so disjoint tiles can be written concurrently:
//
//   - Tile: N x N premultiplied sRGB RGBA pixels behind a sync.RWMutex
//   - TileMap: signed (tx, ty) -> *Tile, lazily allocated
//   - BufferPool: sync.Pool of tile-sized byte buffers
//   - WorkerPool: fixed goroutine pool with work stealing
//   - DirtyRegion: lock-free bitmap of display tiles needing recomposition
//
// Thread safety: all types are safe for concurrent use. Pixel data of a tile
// must only be accessed while holding that tile's lock.
package parallel

import (
	"image"
	"sync"
	"sync/atomic"
)

// DefaultTileSize is the default tile edge in pixels.
// 64x64 RGBA is 16KB per tile, which fits L1 cache.
const DefaultTileSize = 64

// TileCoord is a signed tile coordinate. Tiles outside the canvas grid are
// valid; transforms can move content there.
type TileCoord struct {
	X, Y int
}

// Tile is a square block of premultiplied sRGB RGBA pixels.
//
// Data is row-major with a stride of Size*4 bytes. The embedded lock gates
// all access to Data.
type Tile struct {
	mu sync.RWMutex

	// Coord is the tile position in tile units.
	Coord TileCoord

	// Size is the tile edge in pixels.
	Size int

	// Data contains Size*Size*4 bytes.
	Data []byte

	empty atomic.Bool
}

// NewTile wraps buf as a tile at c. len(buf) must be size*size*4.
func NewTile(c TileCoord, size int, buf []byte) *Tile {
	t := &Tile{Coord: c, Size: size, Data: buf}
	t.empty.Store(true)
	return t
}

// Lock acquires the tile for writing.
func (t *Tile) Lock() { t.mu.Lock() }

// Unlock releases a write lock.
func (t *Tile) Unlock() { t.mu.Unlock() }

// RLock acquires the tile for reading.
func (t *Tile) RLock() { t.mu.RLock() }

// RUnlock releases a read lock.
func (t *Tile) RUnlock() { t.mu.RUnlock() }

// IsEmpty reports the emptiness hint. A true result means every pixel is
// transparent; false means nothing.
func (t *Tile) IsEmpty() bool {
	return t.empty.Load()
}

// SetEmpty updates the emptiness hint.
func (t *Tile) SetEmpty(v bool) {
	t.empty.Store(v)
}

// RecomputeEmpty scans the alpha channel and refreshes the hint.
// The caller must hold the tile lock.
func (t *Tile) RecomputeEmpty() bool {
	for i := 3; i < len(t.Data); i += 4 {
		if t.Data[i] != 0 {
			t.empty.Store(false)
			return false
		}
	}
	t.empty.Store(true)
	return true
}

// Fill sets every pixel to the given premultiplied color.
// The caller must hold the tile lock.
func (t *Tile) Fill(r, g, b, a uint8) {
	if r|g|b|a == 0 {
		clear(t.Data)
		t.empty.Store(true)
		return
	}
	d := t.Data
	for i := 0; i+3 < len(d); i += 4 {
		d[i], d[i+1], d[i+2], d[i+3] = r, g, b, a
	}
	t.empty.Store(a == 0)
}

// Bounds returns the tile's pixel rectangle in canvas space.
func (t *Tile) Bounds() image.Rectangle {
	x, y := t.Coord.X*t.Size, t.Coord.Y*t.Size
	return image.Rect(x, y, x+t.Size, y+t.Size)
}

// PixelOffset returns the byte offset into Data for the tile-local pixel
// (px, py), or -1 if it is outside the tile.
func (t *Tile) PixelOffset(px, py int) int {
	if px < 0 || px >= t.Size || py < 0 || py >= t.Size {
		return -1
	}
	return (py*t.Size + px) * 4
}

// Stride returns the row stride in bytes.
func (t *Tile) Stride() int {
	return t.Size * 4
}

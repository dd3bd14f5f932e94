package parallel

import (
	"slices"
	"sync"
)

// TileMap is a sparse per-layer map from signed tile coordinates to tiles.
//
// The map lock covers lookup and allocation only; it is never held while
// pixel data is touched.
type TileMap struct {
	mu    sync.RWMutex
	tiles map[TileCoord]*Tile
	pool  *BufferPool
	size  int
}

// NewTileMap creates an empty map whose tiles draw buffers from pool.
func NewTileMap(pool *BufferPool) *TileMap {
	size := pool.TileSize()
	return &TileMap{
		tiles: make(map[TileCoord]*Tile),
		pool:  pool,
		size:  size,
	}
}

// TileSize returns the tile edge in pixels.
func (m *TileMap) TileSize() int {
	return m.size
}

// Get returns the tile at c, or nil if it was never allocated.
func (m *TileMap) Get(c TileCoord) *Tile {
	m.mu.RLock()
	t := m.tiles[c]
	m.mu.RUnlock()
	return t
}

// GetOrCreate returns the tile at c, allocating it if needed. A new tile is
// passed to init (which may be nil) before any other goroutine can see it.
func (m *TileMap) GetOrCreate(c TileCoord, init func(*Tile)) *Tile {
	if t := m.Get(c); t != nil {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tiles[c]; ok {
		return t
	}
	t := NewTile(c, m.size, m.pool.Get())
	if init != nil {
		init(t)
	}
	m.tiles[c] = t
	return t
}

// Len returns the number of allocated tiles.
func (m *TileMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tiles)
}

// Coords returns the allocated tile coordinates in row-major order.
func (m *TileMap) Coords() []TileCoord {
	m.mu.RLock()
	out := make([]TileCoord, 0, len(m.tiles))
	for c := range m.tiles {
		out = append(out, c)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b TileCoord) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// Release returns every tile buffer to the pool and empties the map.
// No tile of this map may be in use afterwards.
func (m *TileMap) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c, t := range m.tiles {
		m.pool.Put(t.Data)
		t.Data = nil
		delete(m.tiles, c)
	}
}

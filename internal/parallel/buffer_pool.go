package parallel

import "sync"

// BufferPool reuses tile-sized pixel buffers via sync.Pool.
//
// Tiles, history snapshots and transform scratch all hold buffers of exactly
// size*size*4 bytes, so one pool per canvas serves all of them.
//
// Thread safety: BufferPool is safe for concurrent use.
type BufferPool struct {
	size  int
	bytes int
	pool  sync.Pool
}

// NewBufferPool creates a pool of buffers for tiles with the given edge.
func NewBufferPool(tileSize int) *BufferPool {
	p := &BufferPool{size: tileSize, bytes: tileSize * tileSize * 4}
	p.pool.New = func() any {
		b := make([]byte, p.bytes)
		return &b
	}
	return p
}

// TileSize returns the tile edge this pool serves.
func (p *BufferPool) TileSize() int {
	return p.size
}

// Get returns a zeroed buffer.
func (p *BufferPool) Get() []byte {
	b := *p.pool.Get().(*[]byte)
	clear(b)
	return b
}

// GetCopy returns a buffer holding a copy of src.
func (p *BufferPool) GetCopy(src []byte) []byte {
	b := *p.pool.Get().(*[]byte)
	copy(b, src)
	return b
}

// Put returns a buffer to the pool. Buffers of the wrong size are left to
// the garbage collector.
func (p *BufferPool) Put(b []byte) {
	if len(b) != p.bytes {
		return
	}
	p.pool.Put(&b)
}

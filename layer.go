package paint

import (
	"github.com/gogpu/paint/internal/parallel"
)

// Layer is one entry of the canvas layer stack.
//
// A layer owns its tiles and its undo history; both travel with it when
// the stack is reordered. Layer setters are not synchronized with
// compositing and should be called between frames.
type Layer struct {
	name       string
	visible    bool
	opacity    float32
	locked     bool
	background bool

	tiles   *parallel.TileMap
	history *History

	// clear is the premultiplied fill of new background tiles.
	clear [4]uint8
}

func newLayer(name string, buffers *parallel.BufferPool) *Layer {
	return &Layer{
		name:    name,
		visible: true,
		opacity: 1,
		tiles:   parallel.NewTileMap(buffers),
		history: newHistory(buffers),
	}
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// SetName renames the layer.
func (l *Layer) SetName(name string) { l.name = name }

// Visible reports whether the layer takes part in compositing.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible shows or hides the layer.
func (l *Layer) SetVisible(v bool) { l.visible = v }

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float32 { return l.opacity }

// SetOpacity sets the layer opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(o float32) {
	l.opacity = min(max(o, 0), 1)
}

// Locked reports whether brush and transform writes are rejected. The
// background layer is always locked.
func (l *Layer) Locked() bool { return l.locked || l.background }

// SetLocked locks or unlocks the layer. It has no effect on the background.
func (l *Layer) SetLocked(v bool) { l.locked = v }

// IsBackground reports whether this is the canvas background layer.
func (l *Layer) IsBackground() bool { return l.background }

// History returns the layer's undo history.
func (l *Layer) History() *History { return l.history }

// TileCount returns the number of allocated tiles.
func (l *Layer) TileCount() int { return l.tiles.Len() }

// initTile fills a freshly allocated tile: background tiles get the clear
// color, all others stay transparent.
func (l *Layer) initTile(t *parallel.Tile) {
	if l.background {
		t.Fill(l.clear[0], l.clear[1], l.clear[2], l.clear[3])
	}
}

// tile returns the tile at c, allocating it on first use.
func (l *Layer) tile(c TileCoord) *parallel.Tile {
	return l.tiles.GetOrCreate(c, l.initTile)
}

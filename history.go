package paint

import (
	"bytes"
	"image"
	"slices"

	"github.com/gogpu/paint/internal/parallel"
)

// TileSnapshot is a saved copy of a tile region taken before an action
// first modified it. Undo and redo swap it with the live pixels.
type TileSnapshot struct {
	layer *Layer

	// Coord is the tile the snapshot belongs to.
	Coord TileCoord

	// Rect is the saved region in tile-local pixels.
	Rect image.Rectangle

	// data is a tile-sized buffer in the tile layout.
	data []byte
}

// Layer returns the layer the snapshot was taken from.
func (s *TileSnapshot) Layer() *Layer { return s.layer }

// swap exchanges the snapshot buffer with the live tile buffer. Snapshots
// always cover the whole tile.
func (s *TileSnapshot) swap(t *parallel.Tile) {
	t.Lock()
	defer t.Unlock()
	s.data, t.Data = t.Data, s.data
	t.RecomputeEmpty()
}

type snapKey struct {
	layer *Layer
	coord TileCoord
}

// layerChange records a layer entering or leaving the stack as part of an
// action. inserted means the action put the layer in; undo takes it out.
type layerChange struct {
	layer    *Layer
	index    int
	inserted bool
}

// UndoAction is one undoable unit: the tile snapshots taken before an
// operation, plus the selection and layer-stack changes it made.
type UndoAction struct {
	snapshots []TileSnapshot
	touched   map[snapKey]struct{}

	hasSelection bool
	selection    Selection

	transform *Transform
	changes   []layerChange
}

func newUndoAction() *UndoAction {
	return &UndoAction{touched: make(map[snapKey]struct{})}
}

// Len returns the number of tile snapshots.
func (a *UndoAction) Len() int {
	return len(a.snapshots)
}

// Empty reports whether the action changed nothing.
func (a *UndoAction) Empty() bool {
	return len(a.snapshots) == 0 && len(a.changes) == 0
}

// Snapshots returns the snapshots in the order they were taken.
func (a *UndoAction) Snapshots() []TileSnapshot {
	return a.snapshots
}

// Tiles returns the distinct tiles the action covers.
func (a *UndoAction) Tiles() []TileCoord {
	seen := make(map[TileCoord]struct{}, len(a.snapshots))
	out := make([]TileCoord, 0, len(a.snapshots))
	for _, s := range a.snapshots {
		if _, ok := seen[s.Coord]; ok {
			continue
		}
		seen[s.Coord] = struct{}{}
		out = append(out, s.Coord)
	}
	return out
}

// Transform returns the parameters of the transform this action recorded.
func (a *UndoAction) Transform() (Transform, bool) {
	if a.transform == nil {
		return Transform{}, false
	}
	return *a.transform, true
}

// snapshot saves the whole tile tc of l unless the action already holds
// it, allocating the tile if needed. It reports whether a snapshot was taken.
func (a *UndoAction) snapshot(l *Layer, tc TileCoord, buffers *parallel.BufferPool) bool {
	key := snapKey{layer: l, coord: tc}
	if _, ok := a.touched[key]; ok {
		return false
	}
	a.touched[key] = struct{}{}

	t := l.tile(tc)
	t.RLock()
	data := buffers.GetCopy(t.Data)
	t.RUnlock()

	a.snapshots = append(a.snapshots, TileSnapshot{
		layer: l,
		Coord: tc,
		Rect:  image.Rect(0, 0, t.Size, t.Size),
		data:  data,
	})
	return true
}

// prune drops snapshots whose tile still holds the saved pixels, such as
// tiles a dab reached but the selection masked out entirely.
func (a *UndoAction) prune(buffers *parallel.BufferPool) {
	kept := a.snapshots[:0]
	for _, s := range a.snapshots {
		t := s.layer.tiles.Get(s.Coord)
		t.RLock()
		same := bytes.Equal(t.Data, s.data)
		t.RUnlock()
		if same {
			buffers.Put(s.data)
			delete(a.touched, snapKey{layer: s.layer, coord: s.Coord})
			continue
		}
		kept = append(kept, s)
	}
	clear(a.snapshots[len(kept):])
	a.snapshots = kept
}

// recordSelection stores sel as the selection to restore on undo.
func (a *UndoAction) recordSelection(sel Selection) {
	a.hasSelection = true
	a.selection = sel
}

func (a *UndoAction) release(buffers *parallel.BufferPool) {
	for i := range a.snapshots {
		buffers.Put(a.snapshots[i].data)
		a.snapshots[i].data = nil
	}
	a.snapshots = nil
}

// History is a layer's pair of undo and redo stacks, bounded only by memory.
type History struct {
	undo    []*UndoAction
	redo    []*UndoAction
	buffers *parallel.BufferPool
}

func newHistory(buffers *parallel.BufferPool) *History {
	return &History{buffers: buffers}
}

// Push records a new action and discards everything that could be redone.
// Nil and empty actions are ignored.
func (h *History) Push(a *UndoAction) {
	if a == nil || a.Empty() {
		return
	}
	a.touched = nil
	h.undo = append(h.undo, a)
	for _, r := range h.redo {
		r.release(h.buffers)
	}
	h.redo = h.redo[:0]
}

// CanUndo reports whether an action is available to undo.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether an action is available to redo.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen returns the depth of the undo stack.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the depth of the redo stack.
func (h *History) RedoLen() int { return len(h.redo) }

func pop(stack *[]*UndoAction) *UndoAction {
	s := *stack
	if len(s) == 0 {
		return nil
	}
	a := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return a
}

// Undo reverts the most recent action on a layer's history and returns the
// tiles it touched. Nothing happens for an invalid index or empty history.
func (c *Canvas) Undo(layer int) []TileCoord {
	if layer < 0 || layer >= len(c.layers) {
		Logger().Warn("paint: undo on invalid layer", "layer", layer)
		return nil
	}
	h := c.layers[layer].history
	a := pop(&h.undo)
	if a == nil {
		return nil
	}
	tiles := c.swapAction(a, true)
	h.redo = append(h.redo, a)
	Logger().Debug("paint: undo", "layer", layer, "tiles", len(tiles))
	return tiles
}

// Redo reapplies the most recently undone action on a layer.
func (c *Canvas) Redo(layer int) []TileCoord {
	if layer < 0 || layer >= len(c.layers) {
		Logger().Warn("paint: redo on invalid layer", "layer", layer)
		return nil
	}
	h := c.layers[layer].history
	a := pop(&h.redo)
	if a == nil {
		return nil
	}
	tiles := c.swapAction(a, false)
	h.undo = append(h.undo, a)
	Logger().Debug("paint: redo", "layer", layer, "tiles", len(tiles))
	return tiles
}

// swapAction exchanges every snapshot with live data, swaps the recorded
// selection and replays or reverts layer-stack changes.
func (c *Canvas) swapAction(a *UndoAction, undo bool) []TileCoord {
	c.workers.ForEach(len(a.snapshots), func(i int) {
		s := &a.snapshots[i]
		s.swap(s.layer.tile(s.Coord))
	})

	if a.hasSelection {
		c.selection, a.selection = a.selection, c.selection
	}

	tiles := a.Tiles()
	if undo {
		for i := len(a.changes) - 1; i >= 0; i-- {
			tiles = append(tiles, c.applyChange(a.changes[i], false)...)
		}
	} else {
		for _, ch := range a.changes {
			tiles = append(tiles, c.applyChange(ch, true)...)
		}
	}

	slices.SortFunc(tiles, compareCoords)
	tiles = slices.Compact(tiles)
	c.markTiles(tiles)
	return tiles
}

// applyChange puts a recorded layer into the stack or takes it out and
// returns the tiles whose composition changed.
func (c *Canvas) applyChange(ch layerChange, forward bool) []TileCoord {
	if ch.inserted == forward {
		c.insertLayer(ch.index, ch.layer)
	} else {
		c.detachLayer(ch.layer)
	}
	return ch.layer.tiles.Coords()
}

func compareCoords(a, b TileCoord) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

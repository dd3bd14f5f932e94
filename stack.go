package paint

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/paint/internal/blend"
	icolor "github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/parallel"
)

// LayerCount returns the number of layers, background included.
func (c *Canvas) LayerCount() int { return len(c.layers) }

// Layer returns the layer at index i, or nil if i is out of range.
func (c *Canvas) Layer(i int) *Layer {
	if i < 0 || i >= len(c.layers) {
		return nil
	}
	return c.layers[i]
}

// ActiveLayer returns the index of the layer receiving brush and transform
// writes.
func (c *Canvas) ActiveLayer() int { return c.active }

// SetActiveLayer selects the layer receiving writes.
func (c *Canvas) SetActiveLayer(i int) error {
	if i < 0 || i >= len(c.layers) {
		return fmt.Errorf("%w: %d", ErrInvalidLayer, i)
	}
	c.active = i
	return nil
}

// AddLayer appends an empty layer on top of the stack, makes it active and
// returns its index. An empty name becomes "Layer N".
func (c *Canvas) AddLayer(name string) int {
	if name == "" {
		name = fmt.Sprintf("Layer %d", len(c.layers))
	}
	c.layers = append(c.layers, newLayer(name, c.buffers))
	c.active = len(c.layers) - 1
	return c.active
}

// RemoveLayer deletes layer i together with its history. The background
// and the last drawable layer cannot be removed.
func (c *Canvas) RemoveLayer(i int) error {
	switch {
	case i < 0 || i >= len(c.layers):
		return fmt.Errorf("%w: %d", ErrInvalidLayer, i)
	case i == 0:
		return ErrBackgroundLayer
	case len(c.layers) <= 2:
		return ErrLastLayer
	}
	l := c.layers[i]
	c.detachLayer(l)
	c.markLayer(l)
	return nil
}

// MoveLayer moves the layer at from to index to. The layer keeps its tiles
// and history, and stays active if it was.
func (c *Canvas) MoveLayer(from, to int) error {
	n := len(c.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d", ErrInvalidLayer, from, to)
	}
	if from == 0 || to == 0 {
		return ErrBackgroundLayer
	}
	if from == to {
		return nil
	}

	activeLayer := c.layers[c.active]
	l := c.layers[from]
	c.layers = slices.Delete(c.layers, from, from+1)
	c.layers = slices.Insert(c.layers, to, l)
	c.active = slices.Index(c.layers, activeLayer)
	c.markLayer(l)
	return nil
}

// insertLayer puts l at index i (clamped above the background) and keeps
// the active layer pointing at the same layer.
func (c *Canvas) insertLayer(i int, l *Layer) {
	if slices.Contains(c.layers, l) {
		return
	}
	i = min(max(i, 1), len(c.layers))
	c.layers = slices.Insert(c.layers, i, l)
	if c.active >= i {
		c.active++
	}
}

// detachLayer removes l from the stack if present and fixes the active index.
func (c *Canvas) detachLayer(l *Layer) {
	i := slices.Index(c.layers, l)
	if i < 0 {
		return
	}
	c.layers = slices.Delete(c.layers, i, i+1)
	switch {
	case c.active > i:
		c.active--
	case c.active == i:
		c.active = min(max(i-1, 1), len(c.layers)-1)
	}
	if c.active < 0 {
		c.active = 0
	}
}

// ClearLayer resets every allocated tile of layer i to its initial state:
// the clear color for the background, transparent for other layers. The
// returned action is pushed on the layer's history; it is nil when the
// layer had nothing to clear.
func (c *Canvas) ClearLayer(i int) (*UndoAction, error) {
	if i < 0 || i >= len(c.layers) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayer, i)
	}
	l := c.layers[i]
	if l.locked {
		return nil, fmt.Errorf("%w: %q", ErrLayerLocked, l.name)
	}

	a := newUndoAction()
	var tiles []*parallel.Tile
	for _, tc := range l.tiles.Coords() {
		t := l.tiles.Get(tc)
		if !l.background && t.IsEmpty() {
			continue
		}
		a.snapshot(l, tc, c.buffers)
		tiles = append(tiles, t)
	}
	c.workers.ForEach(len(tiles), func(k int) {
		t := tiles[k]
		t.Lock()
		t.Fill(0, 0, 0, 0)
		l.initTile(t)
		t.Unlock()
	})

	a.prune(c.buffers)
	if a.Empty() {
		return nil, nil
	}
	l.history.Push(a)
	c.markTiles(a.Tiles())
	Logger().Debug("paint: layer cleared", "layer", i, "tiles", a.Len())
	return a, nil
}

// MergeDown composites layer i (scaled by its opacity) onto layer i-1 and
// removes it. The returned action is pushed on the history of the layer
// below; undoing it restores that layer and puts layer i back.
func (c *Canvas) MergeDown(i int) (*UndoAction, error) {
	if i < 0 || i >= len(c.layers) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayer, i)
	}
	if i == 0 {
		return nil, fmt.Errorf("%w: nothing below the background", ErrBackgroundLayer)
	}
	src, dst := c.layers[i], c.layers[i-1]
	if dst.locked && !dst.background {
		return nil, fmt.Errorf("%w: %q", ErrLayerLocked, dst.name)
	}

	type job struct {
		tile *parallel.Tile
		data []byte
	}
	var jobs []job
	a := newUndoAction()
	for _, tc := range src.tiles.Coords() {
		st := src.tiles.Get(tc)
		if st == nil || st.IsEmpty() {
			continue
		}
		st.RLock()
		data := c.buffers.GetCopy(st.Data)
		st.RUnlock()
		a.snapshot(dst, tc, c.buffers)
		jobs = append(jobs, job{tile: dst.tile(tc), data: data})
	}

	opacity := src.opacity
	space := c.space
	c.workers.ForEach(len(jobs), func(k int) {
		j := jobs[k]
		mergeTile(j.tile, j.data, opacity, space)
		c.buffers.Put(j.data)
	})

	a.changes = append(a.changes, layerChange{layer: src, index: i})
	c.detachLayer(src)
	c.markLayer(src)
	dst.history.Push(a)

	Logger().Debug("paint: merge down", "layer", i, "tiles", len(jobs))
	return a, nil
}

// mergeTile blends premultiplied src pixels scaled by opacity over t.
func mergeTile(t *parallel.Tile, src []byte, opacity float32, space icolor.Space) {
	if opacity <= 0 {
		return
	}
	t.Lock()
	defer t.Unlock()

	n := t.Size
	srcRow := make([]icolor.ColorF32, n)
	dstRow := make([]icolor.ColorF32, n)
	stride := t.Stride()
	wrote := false
	for y := 0; y < n; y++ {
		row := t.Data[y*stride : (y+1)*stride]
		srow := src[y*stride : (y+1)*stride]
		hit := false
		for x := 0; x < n; x++ {
			srcRow[x] = space.DecodeBytes(srow[x*4:])
			dstRow[x] = space.DecodeBytes(row[x*4:])
			hit = hit || srow[x*4+3] != 0
		}
		if !hit {
			continue
		}
		blend.ScaleBatch(srcRow, opacity)
		blend.OverBatch(dstRow, srcRow)
		for x := 0; x < n; x++ {
			if srow[x*4+3] != 0 {
				space.EncodeBytes(row[x*4:], dstRow[x])
				wrote = true
			}
		}
	}
	if wrote {
		t.SetEmpty(false)
	}
}

// FloatSelection lifts the selected pixels of the active layer into a new
// layer on top of the stack and erases them from the source. The new
// layer becomes active; its index is returned. The action is pushed on the
// source layer's history.
func (c *Canvas) FloatSelection(sel Selection) (int, *UndoAction, error) {
	if sel == nil || sel.Bounds().Empty() {
		return -1, nil, ErrEmptySelection
	}
	srcIdx := c.active
	src := c.layers[srcIdx]
	if src.Locked() {
		Logger().Warn("paint: float on locked layer", "layer", srcIdx)
		return -1, nil, fmt.Errorf("%w: %q", ErrLayerLocked, src.name)
	}

	floating := newLayer(src.name+" (floating)", c.buffers)
	bounds := sel.Bounds().Intersect(c.Bounds())

	var coords []TileCoord
	for _, tc := range c.tilesIn(bounds) {
		if t := src.tiles.Get(tc); t != nil && !t.IsEmpty() {
			coords = append(coords, tc)
		}
	}

	moved := make([]int, len(coords))
	c.workers.ForEach(len(coords), func(k int) {
		tc := coords[k]
		moved[k] = c.liftTile(src.tiles.Get(tc), floating.tile(tc), sel, bounds, tc)
	})

	total := 0
	for _, n := range moved {
		total += n
	}
	if total == 0 {
		floating.tiles.Release()
		return -1, nil, ErrEmptySelection
	}

	a := newUndoAction()
	for k, tc := range coords {
		if moved[k] > 0 {
			a.snapshot(src, tc, c.buffers)
		}
	}
	c.workers.ForEach(len(coords), func(k int) {
		if moved[k] > 0 {
			c.liftTile(src.tiles.Get(coords[k]), nil, sel, bounds, coords[k])
		}
	})

	c.layers = append(c.layers, floating)
	idx := len(c.layers) - 1
	a.changes = append(a.changes, layerChange{layer: floating, index: idx, inserted: true})
	c.active = idx
	src.history.Push(a)
	c.markLayer(floating)

	Logger().Debug("paint: float selection", "layer", srcIdx, "pixels", total, "new", idx)
	return idx, a, nil
}

// liftTile copies the selected non-transparent pixels of src into dst and
// returns how many there were. With a nil dst it clears them in src
// instead. dst belongs to a layer that is not yet in the stack, so only
// the src lock is taken.
func (c *Canvas) liftTile(src, dst *parallel.Tile, sel Selection, bounds image.Rectangle, tc TileCoord) int {
	r := c.tileRect(tc).Intersect(bounds)
	origin := c.tileRect(tc).Min

	erase := dst == nil
	if erase {
		src.Lock()
		defer src.Unlock()
	} else {
		src.RLock()
		defer src.RUnlock()
	}

	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			off := src.PixelOffset(x-origin.X, y-origin.Y)
			if src.Data[off+3] == 0 || !selectedPixel(sel, x, y) {
				continue
			}
			if erase {
				clear(src.Data[off : off+4])
			} else {
				copy(dst.Data[off:off+4], src.Data[off:off+4])
			}
			n++
		}
	}
	switch {
	case n > 0 && erase:
		src.RecomputeEmpty()
	case n > 0:
		dst.SetEmpty(false)
	}
	return n
}

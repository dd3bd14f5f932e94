package paint

import (
	"errors"
	"image/color"
	"slices"
	"testing"
)

func TestAddLayer(t *testing.T) {
	c := newTestCanvas(t, 32, 32)

	i := c.AddLayer("")
	if i != 2 || c.ActiveLayer() != 2 {
		t.Fatalf("AddLayer() = %d, active %d; want 2, 2", i, c.ActiveLayer())
	}
	if got := c.Layer(2).Name(); got != "Layer 2" {
		t.Errorf("default name = %q, want %q", got, "Layer 2")
	}
	if got := c.Layer(c.AddLayer("Ink")).Name(); got != "Ink" {
		t.Errorf("name = %q, want Ink", got)
	}
	if c.Layer(-1) != nil || c.Layer(4) != nil {
		t.Error("Layer() out of range should be nil")
	}
}

func TestRemoveLayer(t *testing.T) {
	c := newTestCanvas(t, 32, 32)

	tests := []struct {
		name string
		idx  int
		err  error
	}{
		{"background", 0, ErrBackgroundLayer},
		{"last drawable", 1, ErrLastLayer},
		{"out of range", 7, ErrInvalidLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.RemoveLayer(tt.idx); !errors.Is(err, tt.err) {
				t.Errorf("RemoveLayer(%d) = %v, want %v", tt.idx, err, tt.err)
			}
		})
	}

	c.AddLayer("A")
	if err := c.RemoveLayer(2); err != nil {
		t.Fatalf("RemoveLayer(2) = %v", err)
	}
	if c.LayerCount() != 2 || c.ActiveLayer() != 1 {
		t.Errorf("after remove: count %d active %d, want 2, 1", c.LayerCount(), c.ActiveLayer())
	}
}

func TestMoveLayer(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	c.AddLayer("A")
	c.AddLayer("B") // active, index 3

	dot(t, c, 3, 3, redColor)
	b := c.Layer(3)

	if err := c.MoveLayer(3, 1); err != nil {
		t.Fatalf("MoveLayer(3, 1) = %v", err)
	}
	names := []string{}
	for i := range c.LayerCount() {
		names = append(names, c.Layer(i).Name())
	}
	want := []string{"Background", "B", "Layer 1", "A"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
	if c.ActiveLayer() != 1 {
		t.Errorf("active = %d, want 1 (follows B)", c.ActiveLayer())
	}
	if c.Layer(1) != b || b.History().UndoLen() != 1 {
		t.Error("moved layer should keep its history")
	}
	if c.Pixel(1, 3, 3).A != 255 {
		t.Error("moved layer should keep its pixels")
	}

	for _, tt := range []struct{ from, to int }{{0, 2}, {2, 0}} {
		if err := c.MoveLayer(tt.from, tt.to); !errors.Is(err, ErrBackgroundLayer) {
			t.Errorf("MoveLayer(%d, %d) = %v, want ErrBackgroundLayer", tt.from, tt.to, err)
		}
	}
	if err := c.MoveLayer(1, 9); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("MoveLayer(1, 9) = %v, want ErrInvalidLayer", err)
	}
}

func TestSetActiveLayer(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	if err := c.SetActiveLayer(2); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("SetActiveLayer(2) = %v, want ErrInvalidLayer", err)
	}
	if err := c.SetActiveLayer(0); err != nil {
		t.Errorf("SetActiveLayer(0) = %v", err)
	}
}

func TestLayerSetters(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	l := c.Layer(1)

	l.SetName("Ink")
	l.SetVisible(false)
	l.SetLocked(true)
	if l.Name() != "Ink" || l.Visible() || !l.Locked() {
		t.Errorf("setters not applied: %q visible=%v locked=%v", l.Name(), l.Visible(), l.Locked())
	}
	for _, tt := range []struct{ in, want float32 }{{-1, 0}, {0.25, 0.25}, {3, 1}} {
		l.SetOpacity(tt.in)
		if l.Opacity() != tt.want {
			t.Errorf("SetOpacity(%v) -> %v, want %v", tt.in, l.Opacity(), tt.want)
		}
	}

	bg := c.Layer(0)
	bg.SetLocked(false)
	if !bg.Locked() {
		t.Error("background must stay locked")
	}
}

func mergeFixture(t *testing.T, space BlendSpace) *Canvas {
	t.Helper()
	c := newTestCanvas(t, 16, 16, WithClearColor(color.Transparent), WithBlendSpace(space))
	dot(t, c, 0, 0, redColor)
	c.AddLayer("B")
	dot(t, c, 0, 0, blueColor)
	c.Layer(2).SetOpacity(0.5)
	return c
}

func TestMergeDown(t *testing.T) {
	tests := []struct {
		name  string
		space BlendSpace
		want  color.RGBA
	}{
		{"linear", BlendLinear, color.RGBA{R: 188, B: 188, A: 255}},
		{"srgb", BlendSRGB, color.RGBA{R: 128, B: 128, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mergeFixture(t, tt.space)
			a, err := c.MergeDown(2)
			if err != nil {
				t.Fatalf("MergeDown(2) = %v", err)
			}
			if a == nil || a.Len() != 1 {
				t.Fatalf("merge action should hold one snapshot, got %v", a)
			}
			if c.LayerCount() != 2 {
				t.Fatalf("LayerCount() = %d, want 2", c.LayerCount())
			}
			if got := c.Pixel(1, 0, 0); !nearRGBA(got, tt.want, 2) {
				t.Errorf("merged pixel = %v, want %v", got, tt.want)
			}
			if got := c.Pixel(1, 1, 0); got != (color.RGBA{}) {
				t.Errorf("untouched pixel = %v, want transparent", got)
			}
		})
	}
}

func TestMergeDownUndoRedo(t *testing.T) {
	c := mergeFixture(t, BlendLinear)
	if _, err := c.MergeDown(2); err != nil {
		t.Fatal(err)
	}
	merged := c.Pixel(1, 0, 0)

	c.Undo(1)
	if c.LayerCount() != 3 {
		t.Fatalf("after undo LayerCount() = %d, want 3", c.LayerCount())
	}
	if got := c.Pixel(1, 0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("after undo lower pixel = %v, want red", got)
	}
	if got := c.Layer(2).Name(); got != "B" {
		t.Errorf("after undo layer 2 = %q, want B", got)
	}
	if got := c.Pixel(2, 0, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("after undo upper pixel = %v, want blue", got)
	}

	c.Redo(1)
	if c.LayerCount() != 2 {
		t.Fatalf("after redo LayerCount() = %d, want 2", c.LayerCount())
	}
	if got := c.Pixel(1, 0, 0); got != merged {
		t.Errorf("after redo pixel = %v, want %v", got, merged)
	}
}

func TestMergeDownErrors(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	c.AddLayer("top")

	if _, err := c.MergeDown(0); !errors.Is(err, ErrBackgroundLayer) {
		t.Errorf("MergeDown(0) = %v, want ErrBackgroundLayer", err)
	}
	if _, err := c.MergeDown(3); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("MergeDown(3) = %v, want ErrInvalidLayer", err)
	}
	c.Layer(1).SetLocked(true)
	if _, err := c.MergeDown(2); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("MergeDown onto locked layer = %v, want ErrLayerLocked", err)
	}
}

func TestMergeIntoBackground(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	dot(t, c, 4, 4, blackColor)
	if _, err := c.MergeDown(1); err != nil {
		t.Fatalf("MergeDown(1) = %v", err)
	}
	if got := c.Pixel(0, 4, 4); got != (color.RGBA{A: 255}) {
		t.Errorf("background pixel = %v, want black", got)
	}
	if got := c.Pixel(0, 5, 4); got != white {
		t.Errorf("background pixel = %v, want white", got)
	}
	if c.ActiveLayer() != 0 || c.LayerCount() != 1 {
		t.Errorf("active %d count %d, want 0, 1", c.ActiveLayer(), c.LayerCount())
	}
	c.Undo(0)
	if c.LayerCount() != 2 || c.Pixel(0, 4, 4) != white {
		t.Error("undo should restore the background and the merged layer")
	}
}

func TestFloatSelection(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	dot(t, c, 5, 5, redColor)
	dot(t, c, 20, 20, redColor)

	idx, a, err := c.FloatSelection(NewRectSelection(0, 0, 10, 10))
	if err != nil {
		t.Fatalf("FloatSelection() = %v", err)
	}
	if idx != 2 || c.ActiveLayer() != 2 || a == nil {
		t.Fatalf("FloatSelection() = %d, active %d", idx, c.ActiveLayer())
	}
	if got := c.Layer(2).Name(); got != "Layer 1 (floating)" {
		t.Errorf("floating name = %q", got)
	}
	if c.Pixel(2, 5, 5).A != 255 || c.Pixel(2, 20, 20).A != 0 {
		t.Error("floating layer should hold only the selected pixel")
	}
	if c.Pixel(1, 5, 5).A != 0 || c.Pixel(1, 20, 20).A != 255 {
		t.Error("source layer should lose only the selected pixel")
	}

	c.Undo(1)
	if c.LayerCount() != 2 {
		t.Fatalf("after undo LayerCount() = %d, want 2", c.LayerCount())
	}
	if c.Pixel(1, 5, 5).A != 255 {
		t.Error("undo should restore the lifted pixel")
	}
	if c.ActiveLayer() != 1 {
		t.Errorf("after undo active = %d, want 1", c.ActiveLayer())
	}

	c.Redo(1)
	if c.LayerCount() != 3 || c.Pixel(2, 5, 5).A != 255 || c.Pixel(1, 5, 5).A != 0 {
		t.Error("redo should lift the pixel again")
	}
}

func TestFloatSelectionErrors(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	if _, _, err := c.FloatSelection(nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("nil selection = %v, want ErrEmptySelection", err)
	}
	if _, _, err := c.FloatSelection(NewRectSelection(0, 0, 8, 8)); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty region = %v, want ErrEmptySelection", err)
	}
	if c.LayerCount() != 2 {
		t.Errorf("failed float should not add a layer")
	}
	_ = c.SetActiveLayer(0)
	if _, _, err := c.FloatSelection(NewRectSelection(0, 0, 8, 8)); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("locked layer = %v, want ErrLayerLocked", err)
	}
}

func TestClearLayer(t *testing.T) {
	c := newTestCanvas(t, 64, 64, WithTileSize(16))
	dot(t, c, 3, 3, redColor)
	dot(t, c, 40, 20, blueColor)
	before := layerPixels(c, 1)
	c.TakeDirty()

	a, err := c.ClearLayer(1)
	if err != nil {
		t.Fatalf("ClearLayer() = %v", err)
	}
	if a == nil || a.Len() != 2 {
		t.Fatalf("ClearLayer() action = %v, want 2 tile snapshots", a)
	}
	for _, p := range layerPixels(c, 1) {
		if p.A != 0 {
			t.Fatal("layer not cleared")
		}
	}
	if n := len(c.TakeDirty()); n != 2 {
		t.Errorf("dirty tiles = %d, want 2", n)
	}

	c.Undo(1)
	if !slices.Equal(layerPixels(c, 1), before) {
		t.Error("undo did not restore the cleared pixels")
	}
	c.Redo(1)
	if c.Pixel(1, 40, 20).A != 0 {
		t.Error("redo did not clear again")
	}

	if a, err := c.ClearLayer(1); a != nil || err != nil {
		t.Errorf("clearing an empty layer = (%v, %v), want (nil, nil)", a, err)
	}
}

func TestClearLayerErrors(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	if _, err := c.ClearLayer(5); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("ClearLayer(5) = %v, want ErrInvalidLayer", err)
	}
	c.Layer(1).SetLocked(true)
	if _, err := c.ClearLayer(1); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("locked = %v, want ErrLayerLocked", err)
	}
	if _, err := c.ClearLayer(0); err != nil {
		t.Errorf("ClearLayer(0) = %v, want the background to reset", err)
	}
}

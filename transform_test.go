package paint

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestApplyTransformWithSelection(t *testing.T) {
	c := newTestCanvas(t, 40, 40, WithTileSize(16))
	dot(t, c, 5, 5, redColor)
	dot(t, c, 20, 20, redColor)

	sel := NewRectSelection(0, 0, 10, 10)
	c.SetSelection(sel)
	a, err := c.ApplyTransform(Translate(3, 0), sel)
	if err != nil {
		t.Fatalf("ApplyTransform() = %v", err)
	}
	if c.Pixel(1, 8, 5).A != 255 || c.Pixel(1, 5, 5).A != 0 {
		t.Error("selected pixel should move from (5,5) to (8,5)")
	}
	if c.Pixel(1, 20, 20).A != 255 {
		t.Error("unselected pixel should stay")
	}
	if got, want := c.Selection(), Selection(NewRectSelection(3, 0, 13, 10)); got != want {
		t.Errorf("Selection() = %v, want %v", got, want)
	}
	if rec, ok := a.Transform(); !ok || rec.Offset != Pt(3, 0) {
		t.Errorf("recorded transform = %v, %v", rec, ok)
	}

	c.Undo(1)
	if c.Selection() != Selection(sel) {
		t.Errorf("after undo Selection() = %v, want %v", c.Selection(), sel)
	}
	if c.Pixel(1, 5, 5).A != 255 || c.Pixel(1, 8, 5).A != 0 {
		t.Error("undo should move the pixel back")
	}

	c.Redo(1)
	if c.Pixel(1, 8, 5).A != 255 || c.Selection() != Selection(NewRectSelection(3, 0, 13, 10)) {
		t.Error("redo should reapply pixels and selection")
	}
}

func TestApplyTransformRotation(t *testing.T) {
	c := newTestCanvas(t, 32, 32, WithClearColor(color.Transparent))
	dot(t, c, 20, 16, blueColor)

	tr := Transform{
		Rotation: math.Pi / 2,
		Scale:    Pt(1, 1),
		Pivot:    Pt(16, 16),
	}
	if _, err := c.ApplyTransform(tr, nil); err != nil {
		t.Fatalf("ApplyTransform() = %v", err)
	}
	if c.Pixel(1, 15, 20).A != 255 {
		t.Error("quarter turn about (16,16) should move (20,16) to (15,20)")
	}
	if c.Pixel(1, 20, 16).A != 0 {
		t.Error("source pixel should be cleared")
	}
}

func TestApplyTransformScale(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	dot(t, c, 4, 4, blackColor)

	tr := Transform{Scale: Pt(2, 2), Pivot: Pt(4, 4)}
	if _, err := c.ApplyTransform(tr, nil); err != nil {
		t.Fatalf("ApplyTransform() = %v", err)
	}
	for _, p := range [][2]int{{4, 4}, {5, 4}, {4, 5}, {5, 5}} {
		if c.Pixel(1, p[0], p[1]).A != 255 {
			t.Errorf("pixel %v should be covered by the scaled dot", p)
		}
	}
	if c.Pixel(1, 6, 4).A != 0 || c.Pixel(1, 3, 4).A != 0 {
		t.Error("scaled dot should be 2x2")
	}
}

func TestApplyTransformOffCanvasAndBack(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	dot(t, c, 2, 2, redColor)

	if _, err := c.ApplyTransform(Translate(-10, 0), nil); err != nil {
		t.Fatalf("move out: %v", err)
	}
	if c.Pixel(1, 2, 2).A != 0 {
		t.Error("pixel should have left the canvas")
	}
	if _, err := c.ApplyTransform(Translate(10, 0), nil); err != nil {
		t.Fatalf("move back: %v", err)
	}
	if c.Pixel(1, 2, 2).A != 255 {
		t.Error("pixel parked off canvas should come back")
	}
}

func TestApplyTransformErrors(t *testing.T) {
	c := newTestCanvas(t, 16, 16)

	if _, err := c.ApplyTransform(Translate(1, 1), nil); !errors.Is(err, ErrNothingToTransform) {
		t.Errorf("empty layer = %v, want ErrNothingToTransform", err)
	}
	dot(t, c, 1, 1, redColor)
	if _, err := c.ApplyTransform(Transform{}, nil); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("zero scale = %v, want ErrSingularTransform", err)
	}
	if _, err := c.ApplyTransform(Translate(1, 1), NewRectSelection(8, 8, 12, 12)); !errors.Is(err, ErrNothingToTransform) {
		t.Errorf("empty selection region = %v, want ErrNothingToTransform", err)
	}
	if c.Layer(1).History().UndoLen() != 1 {
		t.Error("failed transforms should not touch history")
	}

	_ = c.SetActiveLayer(0)
	if _, err := c.ApplyTransform(Translate(1, 1), nil); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("background = %v, want ErrLayerLocked", err)
	}
}

func TestTransformMatrix(t *testing.T) {
	m := Translate(3, -2).Matrix()
	want := [6]float64{1, 0, 3, 0, 1, -2}
	for i := range want {
		if math.Abs(m[i]-want[i]) > 1e-12 {
			t.Fatalf("Matrix() = %v, want %v", m, want)
		}
	}
}

package paint

import (
	"errors"
	"image/color"
	"slices"
	"testing"
)

func TestPixelPerfectLine(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point
		dabs     int
	}{
		{"horizontal", Pt(2.5, 2.5), Pt(10.7, 2.2), 9},
		{"diagonal", Pt(0.5, 0.5), Pt(5.5, 3.5), 6},
		{"same pixel", Pt(4.1, 4.1), Pt(4.9, 4.8), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, 32, 32)
			s, err := c.BeginStroke(NewPixelBrush(1, blackColor), Sample{X: tt.from.X, Y: tt.from.Y})
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Extend(Sample{X: tt.to.X, Y: tt.to.Y}); err != nil {
				t.Fatal(err)
			}
			if s.Dabs() != tt.dabs {
				t.Errorf("Dabs() = %d, want %d", s.Dabs(), tt.dabs)
			}
			s.End()

			painted := 0
			for _, p := range layerPixels(c, 1) {
				if p.A != 0 {
					painted++
				}
			}
			if painted != tt.dabs {
				t.Errorf("painted %d pixels, want %d", painted, tt.dabs)
			}
		})
	}
}

func TestPixelPerfectRow(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	stroke(t, c, NewPixelBrush(1, blackColor), Pt(2.5, 2.5), Pt(10.7, 2.2))
	for x := 0; x < 16; x++ {
		want := x >= 2 && x <= 10
		if got := c.Pixel(1, x, 2).A == 255; got != want {
			t.Errorf("pixel (%d,2) painted = %v, want %v", x, got, want)
		}
	}
}

func TestStabilizer(t *testing.T) {
	c := newTestCanvas(t, 64, 64)
	b := NewSoftBrush(10, 100, blackColor, 50)
	b.Stabilizer = 1

	s, err := c.BeginStroke(b, Sample{X: 10, Y: 10})
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Extend(Sample{X: 60, Y: 10})
	if s.Dabs() != 1 {
		t.Errorf("Dabs() = %d, want 1: the smoothed position moves only 2.5px", s.Dabs())
	}
	for range 40 {
		_ = s.Extend(Sample{X: 60, Y: 10})
	}
	if s.Dabs() < 5 {
		t.Errorf("Dabs() = %d, repeated samples should pull the stroke along", s.Dabs())
	}
	s.End()
}

func TestJitterIsSeeded(t *testing.T) {
	draw := func(seed uint64) []color.RGBA {
		c := newTestCanvas(t, 64, 32, WithJitterSeed(seed), WithClearColor(color.Transparent))
		b := NewSoftBrush(4, 100, blackColor, 50)
		b.Jitter = 100
		stroke(t, c, b, Pt(4, 16), Pt(60, 16))
		return layerPixels(c, 1)
	}

	a, b := draw(7), draw(7)
	if !slices.Equal(a, b) {
		t.Error("equal seeds should give identical strokes")
	}

	far := 0
	for i, p := range a {
		y := i / 64
		if p.A != 0 && (y < 13 || y > 19) {
			far++
		}
	}
	if far == 0 {
		t.Error("jitter should scatter dabs off the stroke line")
	}
}

func TestSeedDabNotJittered(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	b := NewSoftBrush(2, 100, blackColor, 50)
	b.Jitter = 500
	stroke(t, c, b, Pt(16.5, 16.5))
	if c.Pixel(1, 16, 16).A == 0 {
		t.Error("seed dab should land on the seed sample")
	}
}

func TestStrokeLifecycle(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	s, err := c.BeginStroke(NewSoftBrush(6, 50, blackColor, 25), Sample{X: 8, Y: 8})
	if err != nil {
		t.Fatal(err)
	}
	if a := s.End(); a == nil {
		t.Fatal("End() = nil for a painting stroke")
	}
	if err := s.Extend(Sample{X: 9, Y: 9}); !errors.Is(err, ErrStrokeEnded) {
		t.Errorf("Extend after End = %v, want ErrStrokeEnded", err)
	}
	if a := s.End(); a != nil {
		t.Error("second End() should return nil")
	}
	if got := c.Layer(1).History().UndoLen(); got != 1 {
		t.Errorf("UndoLen() = %d, want 1", got)
	}
}

func TestStrokeRejected(t *testing.T) {
	c := newTestCanvas(t, 32, 32)

	bad := NewSoftBrush(0, 50, blackColor, 25)
	if _, err := c.BeginStroke(bad, Sample{}); !errors.Is(err, ErrInvalidBrush) {
		t.Errorf("invalid brush = %v, want ErrInvalidBrush", err)
	}

	c.Layer(1).SetLocked(true)
	if _, err := c.BeginStroke(NewPixelBrush(1, blackColor), Sample{}); !errors.Is(err, ErrLayerLocked) {
		t.Errorf("locked layer = %v, want ErrLayerLocked", err)
	}
}

func TestEmptyStrokeIsDropped(t *testing.T) {
	c := newTestCanvas(t, 32, 32)
	b := NewSoftBrush(6, 50, blackColor, 25)
	b.Options.Opacity = 0

	if a := stroke(t, c, b, Pt(4, 4), Pt(20, 20)); a != nil {
		t.Errorf("End() = %v, want nil for an invisible stroke", a)
	}
	outside := NewSoftBrush(4, 50, blackColor, 25)
	if a := stroke(t, c, outside, Pt(-50, -50), Pt(-40, -50)); a != nil {
		t.Errorf("End() = %v, want nil for an off-canvas stroke", a)
	}
	if c.Layer(1).History().CanUndo() {
		t.Error("empty strokes should not reach the history")
	}
}

func TestPressureScalesDiameter(t *testing.T) {
	painted := func(pressure float32) int {
		c := newTestCanvas(t, 128, 128)
		s, err := c.BeginStroke(NewSoftBrush(40, 50, blackColor, 10), Sample{X: 20, Y: 64, Pressure: pressure})
		if err != nil {
			t.Fatalf("BeginStroke() = %v", err)
		}
		if err := s.Extend(Sample{X: 100, Y: 64, Pressure: pressure}); err != nil {
			t.Fatalf("Extend() = %v", err)
		}
		s.End()
		n := 0
		for _, p := range layerPixels(c, 1) {
			if p.A != 0 {
				n++
			}
		}
		return n
	}

	full, none, light := painted(1), painted(0), painted(0.1)
	if none != full {
		t.Errorf("pressure 0 painted %d pixels, want %d like full pressure", none, full)
	}
	if light >= full/4 {
		t.Errorf("pressure 0.1 painted %d pixels, want far fewer than %d", light, full)
	}
	if light == 0 {
		t.Error("pressure 0.1 painted nothing, want a one-pixel-floor stroke")
	}
}

func TestPressureFollowsSamples(t *testing.T) {
	c := newTestCanvas(t, 128, 64)
	s, err := c.BeginStroke(NewSoftBrush(30, 100, blackColor, 5), Sample{X: 16, Y: 32, Pressure: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Extend(Sample{X: 112, Y: 32, Pressure: 0.2}); err != nil {
		t.Fatal(err)
	}
	s.End()

	if a := c.Pixel(1, 16, 20).A; a == 0 {
		t.Error("full-pressure seed dab should reach 12px above its center")
	}
	if a := c.Pixel(1, 100, 20).A; a != 0 {
		t.Errorf("light dab alpha 12px above the line = %d, want 0", a)
	}
}

func TestMaskedStrokeIsDropped(t *testing.T) {
	c := newTestCanvas(t, 64, 64)
	sel, err := NewLassoSelection(Pt(0, 0), Pt(40, 0), Pt(0, 40))
	if err != nil {
		t.Fatal(err)
	}
	c.SetSelection(sel)

	// The dab footprint overlaps the lasso bounds but no pixel inside it.
	if a := stroke(t, c, NewSoftBrush(10, 50, blackColor, 25), Pt(36, 36), Pt(37, 37)); a != nil {
		t.Errorf("End() = %v, want nil for a stroke the selection masked out", a)
	}
	if n := c.Layer(1).History().UndoLen(); n != 0 {
		t.Errorf("UndoLen() = %d, want 0", n)
	}
}

func BenchmarkSoftStroke(b *testing.B) {
	c := newTestCanvas(b, 1024, 1024)
	brush := NewSoftBrush(64, 20, redColor, 10)
	b.ReportAllocs()
	for b.Loop() {
		s, _ := c.BeginStroke(brush, Sample{X: 100, Y: 100})
		_ = s.Extend(Sample{X: 900, Y: 800})
		s.End()
	}
}

package paint

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestCompositeLayerFlags(t *testing.T) {
	tests := []struct {
		name  string
		setup func(l *Layer)
		want  color.RGBA
	}{
		{"visible", func(*Layer) {}, color.RGBA{A: 255}},
		{"hidden", func(l *Layer) { l.SetVisible(false) }, white},
		{"zero opacity", func(l *Layer) { l.SetOpacity(0) }, white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, 16, 16)
			dot(t, c, 3, 3, blackColor)
			tt.setup(c.Layer(1))
			if got := composite(t, c).RGBAAt(3, 3); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeHalfOpacity(t *testing.T) {
	c := newTestCanvas(t, 16, 16, WithBlendSpace(BlendSRGB))
	dot(t, c, 3, 3, blackColor)
	c.Layer(1).SetOpacity(0.5)
	want := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	if got := composite(t, c).RGBAAt(3, 3); !nearRGBA(got, want, 1) {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestCompositeDestinationOffset(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	dot(t, c, 1, 1, blackColor)

	dst := image.NewRGBA(image.Rect(10, 10, 20, 20))
	if err := c.Composite(image.Rect(0, 0, 4, 4), 1, dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(11, 11); got != (color.RGBA{A: 255}) {
		t.Errorf("dst (11,11) = %v, want black", got)
	}
	if got := dst.RGBAAt(10, 10); got != white {
		t.Errorf("dst (10,10) = %v, want white", got)
	}
	if got := dst.RGBAAt(14, 14); got != (color.RGBA{}) {
		t.Errorf("dst (14,14) = %v, want untouched", got)
	}
}

func TestCompositeOutsideCanvas(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	dst := image.NewRGBA(image.Rect(0, 0, 8, 4))
	if err := c.Composite(image.Rect(-4, 0, 4, 4), 1, dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
	if got := dst.RGBAAt(4, 0); got != white {
		t.Errorf("inside pixel = %v, want white", got)
	}
}

func TestCompositeErrors(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))

	if err := c.Composite(c.Bounds(), 0, dst); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("step 0 = %v, want ErrInvalidStep", err)
	}
	if err := c.Composite(c.Bounds(), 2, dst); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("small dst = %v, want ErrBufferTooSmall", err)
	}
	if err := c.Composite(c.Bounds(), 4, dst); err != nil {
		t.Errorf("exact dst = %v", err)
	}
	if err := c.Composite(image.Rectangle{}, 1, nil); err != nil {
		t.Errorf("empty rect = %v", err)
	}
	if _, err := c.CompositeDirty(dst); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("CompositeDirty small dst = %v, want ErrBufferTooSmall", err)
	}
}

// Rects inside one tile and rects spanning tiles take different paths and
// must agree.
func TestCompositeTilePaths(t *testing.T) {
	c := newTestCanvas(t, 48, 48, WithTileSize(16))
	stroke(t, c, NewSoftBrush(20, 10, redColor, 15), Pt(4, 4), Pt(44, 40))
	c.AddLayer("top")
	c.Layer(2).SetOpacity(0.6)
	stroke(t, c, NewSoftBrush(9, 70, blueColor, 15), Pt(40, 4), Pt(4, 44))

	full := composite(t, c)
	for ty := 0; ty < 3; ty++ {
		for tx := 0; tx < 3; tx++ {
			r := image.Rect(tx*16, ty*16, tx*16+16, ty*16+16)
			part := image.NewRGBA(image.Rect(0, 0, 16, 16))
			if err := c.Composite(r, 1, part); err != nil {
				t.Fatal(err)
			}
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					if a, b := part.RGBAAt(x, y), full.RGBAAt(r.Min.X+x, r.Min.Y+y); a != b {
						t.Fatalf("tile (%d,%d) pixel (%d,%d): %v vs %v", tx, ty, x, y, a, b)
					}
				}
			}
		}
	}
}

func TestCompositeDirty(t *testing.T) {
	c := newTestCanvas(t, 40, 40, WithTileSize(16))
	dst := image.NewRGBA(c.Bounds())

	tiles, err := c.CompositeDirty(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 9 {
		t.Errorf("first CompositeDirty() = %d tiles, want 9", len(tiles))
	}
	if got := dst.RGBAAt(39, 39); got != white {
		t.Errorf("dst corner = %v, want white", got)
	}

	dot(t, c, 20, 3, blackColor)
	tiles, err = c.CompositeDirty(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 1 || tiles[0] != (TileCoord{X: 1, Y: 0}) {
		t.Errorf("CompositeDirty() = %v, want [{1 0}]", tiles)
	}
	if got := dst.RGBAAt(20, 3); got != (color.RGBA{A: 255}) {
		t.Errorf("dst (20,3) = %v, want black", got)
	}

	if tiles, _ := c.CompositeDirty(dst); len(tiles) != 0 {
		t.Errorf("clean canvas recomposed %v", tiles)
	}
}

func BenchmarkComposite(b *testing.B) {
	c := newTestCanvas(b, 512, 512)
	stroke(b, c, NewSoftBrush(40, 30, redColor, 10), Pt(10, 10), Pt(500, 480))
	c.AddLayer("")
	stroke(b, c, NewSoftBrush(25, 60, blueColor, 10), Pt(500, 10), Pt(10, 480))
	dst := image.NewRGBA(c.Bounds())

	b.ReportAllocs()
	for b.Loop() {
		_ = c.Composite(c.Bounds(), 1, dst)
	}
}

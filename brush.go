package paint

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/paint/internal/blend"
)

// BrushKind selects the dab rasterizer.
type BrushKind int

const (
	// SoftBrush produces antialiased, softness-shaped dabs rasterized in
	// parallel across footprint tiles.
	SoftBrush BrushKind = iota

	// PixelBrush produces hard-edged dabs, rasterized serially.
	PixelBrush
)

// String returns the brush kind name.
func (k BrushKind) String() string {
	switch k {
	case SoftBrush:
		return "soft"
	case PixelBrush:
		return "pixel"
	default:
		return "unknown"
	}
}

// TipShape is the footprint of a dab.
type TipShape int

const (
	// TipCircle is a round tip measured by Euclidean distance.
	TipCircle TipShape = iota
	// TipSquare is an axis-aligned square measured by Chebyshev distance.
	TipSquare
	// TipCustom samples a TipMask stretched over the dab square.
	TipCustom
)

func (s TipShape) String() string {
	switch s {
	case TipCircle:
		return "circle"
	case TipSquare:
		return "square"
	case TipCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// SoftnessMode selects how coverage falls off from the center.
type SoftnessMode int

const (
	// SoftnessGaussian is a smoothstep falloff starting at the hardness radius.
	SoftnessGaussian SoftnessMode = iota
	// SoftnessCurve evaluates BrushOptions.Curve.
	SoftnessCurve
)

// BlendMode selects how a dab combines with existing pixels.
type BlendMode int

const (
	// BlendNormal paints source-over.
	BlendNormal BlendMode = iota
	// BlendErase removes coverage by the dab alpha.
	BlendErase
)

func (m BlendMode) mode() blend.Mode {
	if m == BlendErase {
		return blend.ModeErase
	}
	return blend.ModeNormal
}

// TipMask is an 8-bit coverage mask used by TipCustom.
type TipMask struct {
	Width, Height int
	Data          []uint8
}

// NewTipMask wraps row-major mask data of size w x h.
func NewTipMask(w, h int, data []uint8) (*TipMask, error) {
	if w <= 0 || h <= 0 || len(data) != w*h {
		return nil, fmt.Errorf("%w: mask %dx%d with %d bytes", ErrInvalidBrush, w, h, len(data))
	}
	return &TipMask{Width: w, Height: h, Data: data}, nil
}

// NewTipMaskFromImage resamples img into a size x size mask. Dark, opaque
// pixels paint: coverage is alpha times one minus luminance, so both ink on
// white and ink on transparent work.
func NewTipMaskFromImage(img image.Image, size int) (*TipMask, error) {
	if img == nil || size <= 0 || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty tip image", ErrInvalidBrush)
	}
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]uint8, size*size)
	for i := range data {
		p := scaled.Pix[i*4 : i*4+4]
		// Premultiplied luminance, so alpha - luma is ink coverage.
		luma := (299*uint32(p[0]) + 587*uint32(p[1]) + 114*uint32(p[2]) + 500) / 1000
		a := uint32(p[3])
		if luma > a {
			luma = a
		}
		data[i] = uint8(a - luma) //nolint:gosec // a <= 255
	}
	return &TipMask{Width: size, Height: size, Data: data}, nil
}

// at returns the mask value at integer position, 0 outside.
func (m *TipMask) at(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return float32(m.Data[y*m.Width+x]) / 255
}

// Tip combines a shape with the mask used by TipCustom.
type Tip struct {
	Shape TipShape
	Mask  *TipMask
}

// BrushOptions holds the per-dab parameters of a brush.
type BrushOptions struct {
	Diameter float32 // pixels, > 0
	Hardness float32 // 0..100
	Softness SoftnessMode
	Curve    Curve
	Tip      Tip
	Color    color.NRGBA // straight alpha
	Spacing  float32     // percent of diameter, > 0
	Flow     float32     // 0..100
	Opacity  float32     // 0..1
	Blend    BlendMode
}

// Brush is a complete brush: options plus rasterizer and stroke behaviour.
type Brush struct {
	Options      BrushOptions
	Kind         BrushKind
	PixelPerfect bool
	Antialias    bool
	Jitter       float32 // percent of diameter, >= 0
	Stabilizer   float32 // 0 (off) .. 1 (heaviest smoothing)
}

// NewSoftBrush returns a round gaussian soft brush with full flow and
// opacity and antialiasing on.
func NewSoftBrush(diameter, hardness float32, c color.Color, spacing float32) Brush {
	return Brush{
		Options: BrushOptions{
			Diameter: diameter,
			Hardness: hardness,
			Softness: SoftnessGaussian,
			Curve:    DefaultCurve(),
			Tip:      Tip{Shape: TipCircle},
			Color:    toNRGBA(c),
			Spacing:  spacing,
			Flow:     100,
			Opacity:  1,
			Blend:    BlendNormal,
		},
		Kind:      SoftBrush,
		Antialias: true,
	}
}

// NewPixelBrush returns a square pixel-art pen with pixel-perfect stepping.
func NewPixelBrush(diameter float32, c color.Color) Brush {
	return Brush{
		Options: BrushOptions{
			Diameter: diameter,
			Hardness: 100,
			Softness: SoftnessGaussian,
			Curve:    DefaultCurve(),
			Tip:      Tip{Shape: TipSquare},
			Color:    toNRGBA(c),
			Spacing:  10,
			Flow:     100,
			Opacity:  1,
			Blend:    BlendNormal,
		},
		Kind:         PixelBrush,
		PixelPerfect: true,
	}
}

func toNRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// Validate checks the brush parameters and returns an error wrapping
// ErrInvalidBrush describing the first problem found.
func (b Brush) Validate() error {
	o := b.Options
	switch {
	case !(o.Diameter > 0):
		return fmt.Errorf("%w: diameter %v", ErrInvalidBrush, o.Diameter)
	case o.Hardness < 0 || o.Hardness > 100:
		return fmt.Errorf("%w: hardness %v", ErrInvalidBrush, o.Hardness)
	case !(o.Spacing > 0):
		return fmt.Errorf("%w: spacing %v", ErrInvalidBrush, o.Spacing)
	case o.Flow < 0 || o.Flow > 100:
		return fmt.Errorf("%w: flow %v", ErrInvalidBrush, o.Flow)
	case o.Opacity < 0 || o.Opacity > 1:
		return fmt.Errorf("%w: opacity %v", ErrInvalidBrush, o.Opacity)
	case b.Jitter < 0:
		return fmt.Errorf("%w: jitter %v", ErrInvalidBrush, b.Jitter)
	case b.Stabilizer < 0 || b.Stabilizer > 1:
		return fmt.Errorf("%w: stabilizer %v", ErrInvalidBrush, b.Stabilizer)
	case o.Tip.Shape == TipCustom && (o.Tip.Mask == nil || len(o.Tip.Mask.Data) != o.Tip.Mask.Width*o.Tip.Mask.Height || o.Tip.Mask.Width <= 0):
		return fmt.Errorf("%w: custom tip without a valid mask", ErrInvalidBrush)
	case o.Softness == SoftnessCurve && len(o.Curve.Points) == 0:
		return fmt.Errorf("%w: softness curve has no points", ErrInvalidBrush)
	}
	return nil
}

// spacingDistance is the arc length between dab centers.
func (b Brush) spacingDistance() float32 {
	return max(0.5, b.Options.Spacing/100*b.Options.Diameter)
}

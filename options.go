package paint

import (
	"image/color"
	"runtime"

	icolor "github.com/gogpu/paint/internal/color"
	"github.com/gogpu/paint/internal/parallel"
)

// BlendSpace selects the space brush, merge and compositing arithmetic
// happens in.
type BlendSpace int

const (
	// BlendLinear blends in linear RGB. This is the default and gives
	// physically even gradients.
	BlendLinear BlendSpace = iota

	// BlendSRGB blends directly on the stored gamma-encoded values, the way
	// most legacy editors do. Half-opaque blue over red gives (128,0,128).
	BlendSRGB
)

// String returns the space name.
func (s BlendSpace) String() string {
	switch s {
	case BlendLinear:
		return "linear"
	case BlendSRGB:
		return "srgb"
	default:
		return "unknown"
	}
}

func (s BlendSpace) space() icolor.Space {
	if s == BlendSRGB {
		return icolor.SpaceSRGB
	}
	return icolor.SpaceLinear
}

// Option configures a Canvas during creation.
//
// Example:
//
//	c, err := paint.NewCanvas(2048, 2048,
//	    paint.WithTileSize(128),
//	    paint.WithClearColor(color.Transparent),
//	)
type Option func(*canvasOptions)

type canvasOptions struct {
	tileSize int
	clear    color.Color
	workers  int
	space    BlendSpace
	seed     uint64
}

func defaultOptions() canvasOptions {
	return canvasOptions{
		tileSize: parallel.DefaultTileSize,
		clear:    color.White,
		workers:  runtime.GOMAXPROCS(0),
		space:    BlendLinear,
		seed:     0x9e3779b97f4a7c15,
	}
}

// WithTileSize sets the tile edge in pixels. It must be a power of two.
// The default is 64.
func WithTileSize(n int) Option {
	return func(o *canvasOptions) {
		o.tileSize = n
	}
}

// WithClearColor sets the color backing the background layer.
// The default is opaque white.
func WithClearColor(c color.Color) Option {
	return func(o *canvasOptions) {
		o.clear = c
	}
}

// WithWorkers sets the size of the canvas worker pool. Zero or a negative
// value means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *canvasOptions) {
		o.workers = n
	}
}

// WithBlendSpace selects linear or sRGB blending.
func WithBlendSpace(s BlendSpace) Option {
	return func(o *canvasOptions) {
		o.space = s
	}
}

// WithJitterSeed seeds the generator used for brush jitter, making jittered
// strokes reproducible.
func WithJitterSeed(seed uint64) Option {
	return func(o *canvasOptions) {
		o.seed = seed
	}
}

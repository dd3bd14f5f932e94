package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/paint"
)

// Script is a TOML scene: canvas settings followed by operations replayed
// in order.
type Script struct {
	Canvas CanvasConfig `toml:"canvas"`
	Ops    []Op         `toml:"op"`
}

// CanvasConfig mirrors the paint.NewCanvas options.
type CanvasConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	TileSize   int    `toml:"tile_size"`
	Clear      string `toml:"clear"`
	BlendSpace string `toml:"blend_space"` // "linear" or "srgb"
	Seed       uint64 `toml:"seed"`
}

// Op is one scripted operation. Kind selects which fields are read:
//
//	stroke     brush fields, points and optional per-point pressure
//	layer      name, opacity, hidden
//	select     rect or circle
//	deselect   nothing
//	transform  dx, dy, rotation (degrees), scale, pivot
//	merge      index
//	clear      index
//	float      rect or circle
//	undo, redo index
type Op struct {
	Kind string `toml:"kind"`

	Brush      string       `toml:"brush"` // "soft" or "pixel"
	Diameter   float32      `toml:"diameter"`
	Hardness   float32      `toml:"hardness"`
	Spacing    float32      `toml:"spacing"`
	Color      string       `toml:"color"`
	Opacity    *float32     `toml:"opacity"`
	Flow       *float32     `toml:"flow"`
	Erase      bool         `toml:"erase"`
	Jitter     float32      `toml:"jitter"`
	Stabilizer float32      `toml:"stabilizer"`
	Points     [][2]float32 `toml:"points"`
	Pressure   []float32    `toml:"pressure"`

	Name   string `toml:"name"`
	Hidden bool   `toml:"hidden"`

	Rect   []float32 `toml:"rect"`   // x0, y0, x1, y1
	Circle []float32 `toml:"circle"` // cx, cy, r

	DX       float32    `toml:"dx"`
	DY       float32    `toml:"dy"`
	Rotation float32    `toml:"rotation"`
	Scale    []float32  `toml:"scale"` // one uniform or two per-axis factors
	Pivot    [2]float32 `toml:"pivot"`

	Index int `toml:"index"`
}

const demoScript = `
[canvas]
width = 320
height = 200
clear = "#f4efe6"

[[op]]
kind = "stroke"
brush = "soft"
diameter = 36
hardness = 20
spacing = 12
color = "#d2452f"
points = [[30, 150], [90, 60], [160, 130], [230, 50], [290, 120]]

[[op]]
kind = "layer"
name = "Ink"
opacity = 0.8

[[op]]
kind = "stroke"
brush = "pixel"
diameter = 3
color = "#1d2b53"
points = [[20, 180], [300, 20]]

[[op]]
kind = "select"
circle = [160, 100, 60]

[[op]]
kind = "stroke"
brush = "soft"
diameter = 80
hardness = 0
spacing = 10
color = "#29adff"
opacity = 0.5
points = [[100, 100], [220, 100]]

[[op]]
kind = "deselect"

[[op]]
kind = "transform"
dx = 10
rotation = 8
pivot = [160, 100]

[[op]]
kind = "merge"
index = 2
`

// ParseScript decodes a TOML scene and fills in defaults.
func ParseScript(data string) (*Script, error) {
	s := &Script{}
	md, err := toml.Decode(data, s)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("parsing script: unknown key %q", keys[0].String())
	}
	if s.Canvas.Width == 0 {
		s.Canvas.Width = 256
	}
	if s.Canvas.Height == 0 {
		s.Canvas.Height = 256
	}
	return s, nil
}

// Run replays the script on a new canvas.
func (s *Script) Run() (*paint.Canvas, error) {
	opts, err := s.Canvas.options()
	if err != nil {
		return nil, err
	}
	c, err := paint.NewCanvas(s.Canvas.Width, s.Canvas.Height, opts...)
	if err != nil {
		return nil, err
	}
	for i, op := range s.Ops {
		if err := op.apply(c); err != nil {
			c.Close()
			return nil, fmt.Errorf("op %d (%s): %w", i+1, op.Kind, err)
		}
	}
	return c, nil
}

func (cc CanvasConfig) options() ([]paint.Option, error) {
	var opts []paint.Option
	if cc.TileSize != 0 {
		opts = append(opts, paint.WithTileSize(cc.TileSize))
	}
	if cc.Clear != "" {
		col, err := parseHexColor(cc.Clear)
		if err != nil {
			return nil, err
		}
		opts = append(opts, paint.WithClearColor(col))
	}
	switch strings.ToLower(cc.BlendSpace) {
	case "", "linear":
	case "srgb":
		opts = append(opts, paint.WithBlendSpace(paint.BlendSRGB))
	default:
		return nil, fmt.Errorf("unknown blend space %q", cc.BlendSpace)
	}
	if cc.Seed != 0 {
		opts = append(opts, paint.WithJitterSeed(cc.Seed))
	}
	return opts, nil
}

func (op *Op) apply(c *paint.Canvas) error {
	switch op.Kind {
	case "stroke":
		return op.stroke(c)
	case "layer":
		l := c.Layer(c.AddLayer(op.Name))
		if op.Opacity != nil {
			l.SetOpacity(*op.Opacity)
		}
		l.SetVisible(!op.Hidden)
		return nil
	case "select":
		sel, err := op.selection()
		if err != nil {
			return err
		}
		c.SetSelection(sel)
		return nil
	case "deselect":
		c.ClearSelection()
		return nil
	case "transform":
		_, err := c.ApplyTransform(op.transform(), c.Selection())
		return err
	case "merge":
		_, err := c.MergeDown(op.Index)
		return err
	case "clear":
		_, err := c.ClearLayer(op.Index)
		return err
	case "float":
		sel, err := op.selection()
		if err != nil {
			return err
		}
		_, _, err = c.FloatSelection(sel)
		return err
	case "undo":
		c.Undo(op.Index)
		return nil
	case "redo":
		c.Redo(op.Index)
		return nil
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
}

func (op *Op) brush() (paint.Brush, error) {
	col, err := parseHexColor(op.Color)
	if err != nil {
		return paint.Brush{}, err
	}
	var b paint.Brush
	switch op.Brush {
	case "", "soft":
		b = paint.NewSoftBrush(op.Diameter, op.Hardness, col, op.Spacing)
	case "pixel":
		b = paint.NewPixelBrush(op.Diameter, col)
		if op.Spacing != 0 {
			b.Options.Spacing = op.Spacing
		}
	default:
		return paint.Brush{}, fmt.Errorf("unknown brush %q", op.Brush)
	}
	if op.Opacity != nil {
		b.Options.Opacity = *op.Opacity
	}
	if op.Flow != nil {
		b.Options.Flow = *op.Flow
	}
	if op.Erase {
		b.Options.Blend = paint.BlendErase
	}
	b.Jitter = op.Jitter
	b.Stabilizer = op.Stabilizer
	return b, nil
}

func (op *Op) stroke(c *paint.Canvas) error {
	if len(op.Points) == 0 {
		return errors.New("stroke needs at least one point")
	}
	b, err := op.brush()
	if err != nil {
		return err
	}
	if len(op.Pressure) != 0 && len(op.Pressure) != len(op.Points) {
		return fmt.Errorf("pressure has %d values for %d points", len(op.Pressure), len(op.Points))
	}
	s, err := c.BeginStroke(b, op.sample(0))
	if err != nil {
		return err
	}
	for i := 1; i < len(op.Points); i++ {
		if err := s.Extend(op.sample(i)); err != nil {
			return err
		}
	}
	s.End()
	return nil
}

func (op *Op) sample(i int) paint.Sample {
	s := paint.Sample{X: op.Points[i][0], Y: op.Points[i][1], Pressure: 1}
	if len(op.Pressure) > 0 {
		s.Pressure = op.Pressure[i]
	}
	return s
}

func (op *Op) selection() (paint.Selection, error) {
	switch {
	case len(op.Rect) == 4:
		r := op.Rect
		return paint.NewRectSelection(r[0], r[1], r[2], r[3]), nil
	case len(op.Circle) == 3:
		return paint.CircleSelection{Center: paint.Pt(op.Circle[0], op.Circle[1]), Radius: op.Circle[2]}, nil
	}
	return nil, errors.New("selection needs rect = [x0, y0, x1, y1] or circle = [cx, cy, r]")
}

func (op *Op) transform() paint.Transform {
	t := paint.Translate(op.DX, op.DY)
	t.Rotation = op.Rotation * math.Pi / 180
	t.Pivot = paint.Pt(op.Pivot[0], op.Pivot[1])
	switch len(op.Scale) {
	case 1:
		t.Scale = paint.Pt(op.Scale[0], op.Scale[0])
	case 2:
		t.Scale = paint.Pt(op.Scale[0], op.Scale[1])
	}
	return t
}

// parseHexColor reads "#rrggbb" or "#rrggbbaa" as a straight-alpha color.
func parseHexColor(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q (expected 6 or 8 hex digits)", hex)
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

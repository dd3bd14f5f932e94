package paint

import (
	"fmt"
	"image"

	"github.com/gogpu/paint/internal/geom"
)

// Stroke turns a sequence of input samples into dabs on one layer.
//
// A stroke is created by Canvas.BeginStroke, fed with Extend and finished
// with End. All dabs of a stroke share one UndoAction. A stroke is not safe
// for concurrent use, and only one stroke should be in progress per canvas.
type Stroke struct {
	canvas *Canvas
	layer  *Layer
	brush  Brush
	base   float32 // diameter at full pressure
	sel    Selection
	action *UndoAction

	last      geom.Vec2
	hasLast   bool
	untilNext float32
	spacing   float32

	dabs  int
	ended bool
}

// BeginStroke starts a stroke on the active layer with b and paints the
// first dab at seed. The active selection at this point masks the whole
// stroke.
func (c *Canvas) BeginStroke(b Brush, seed Sample) (*Stroke, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	l := c.layers[c.active]
	if l.Locked() {
		Logger().Warn("paint: stroke on locked layer", "layer", c.active, "name", l.name)
		return nil, fmt.Errorf("%w: %q", ErrLayerLocked, l.name)
	}

	s := &Stroke{
		canvas: c,
		layer:  l,
		brush:  b,
		base:   b.Options.Diameter,
		sel:    c.selection,
		action: newUndoAction(),
	}
	s.add(seed)
	return s, nil
}

// Extend feeds the next input sample.
func (s *Stroke) Extend(sample Sample) error {
	if s.ended {
		return ErrStrokeEnded
	}
	s.add(sample)
	return nil
}

func (s *Stroke) add(sample Sample) {
	s.press(sample.Pressure)
	raw := sample.vec()
	if s.brush.PixelPerfect {
		s.stepPixels(raw)
		return
	}

	pos := raw
	if s.hasLast && s.brush.Stabilizer > 0 {
		pos = s.last.Lerp(raw, 1-0.95*s.brush.Stabilizer)
	}

	if !s.hasLast {
		s.emit(pos)
		s.untilNext = s.spacing
		s.last, s.hasLast = pos, true
		return
	}

	seg := pos.Sub(s.last)
	left := seg.Len()
	if left == 0 {
		return
	}
	dir := seg.Mul(1 / left)
	p := s.last
	for left >= s.untilNext {
		p = p.Add(dir.Mul(s.untilNext))
		left -= s.untilNext
		s.emit(s.jittered(p))
		s.untilNext = s.spacing
	}
	s.untilNext -= left
	s.last = pos
}

// press sets the dab diameter for pressure p: base*p, but never below one
// pixel unless the brush itself is smaller. Spacing follows the diameter.
func (s *Stroke) press(p float32) {
	d := s.base
	if p > 0 && p < 1 {
		d = max(s.base*p, min(1, s.base))
	}
	s.brush.Options.Diameter = d
	s.spacing = s.brush.spacingDistance()
}

// stepPixels dabs every pixel of the Bresenham line from the previous
// sample to raw, each at its pixel center. The first pixel of the line was
// painted by the previous sample and is skipped.
func (s *Stroke) stepPixels(raw geom.Vec2) {
	x1, y1 := raw.Floor()
	if !s.hasLast {
		s.emit(pixelCenter(image.Pt(x1, y1)))
		s.last, s.hasLast = raw, true
		return
	}
	x0, y0 := s.last.Floor()
	s.last = raw
	if x0 == x1 && y0 == y1 {
		return
	}
	for _, p := range geom.Line(image.Pt(x0, y0), image.Pt(x1, y1))[1:] {
		s.emit(pixelCenter(p))
	}
}

func pixelCenter(p image.Point) geom.Vec2 {
	return geom.V(float32(p.X)+0.5, float32(p.Y)+0.5)
}

func (s *Stroke) jittered(p geom.Vec2) geom.Vec2 {
	if s.brush.Jitter <= 0 {
		return p
	}
	jx, jy := s.canvas.jitter(s.brush.Jitter / 100 * s.brush.Options.Diameter)
	return p.Add(geom.V(jx, jy))
}

func (s *Stroke) emit(p geom.Vec2) {
	s.canvas.dab(s.layer, s.action, &s.brush, p, s.sel)
	s.dabs++
}

// Dabs returns the number of dabs emitted so far.
func (s *Stroke) Dabs() int { return s.dabs }

// End finishes the stroke and pushes its action on the layer history. It
// returns nil if the stroke changed nothing or was already ended.
func (s *Stroke) End() *UndoAction {
	if s.ended {
		return nil
	}
	s.ended = true
	s.hasLast = false
	a := s.action
	s.action = nil
	a.prune(s.canvas.buffers)
	if a.Empty() {
		return nil
	}
	s.layer.history.Push(a)
	Logger().Debug("paint: stroke ended", "layer", s.layer.name, "dabs", s.dabs, "tiles", a.Len())
	return a
}

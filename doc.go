// Package paint is the painting core of a tile-based raster editor.
//
// # Overview
//
// A Canvas holds an ordered stack of layers. Each layer stores its pixels
// as a sparse map of square tiles (64x64 by default) that are allocated on
// first write, each with its own lock. Pixels are premultiplied sRGB RGBA,
// 8 bits per channel; all blending happens in linear RGB (or, on request,
// directly in sRGB).
//
// # Quick Start
//
//	c, _ := paint.NewCanvas(1024, 768)
//	defer c.Close()
//
//	brush := paint.NewSoftBrush(24, 50, color.Black, 10)
//	s, _ := c.BeginStroke(brush, paint.Sample{X: 100, Y: 100})
//	s.Extend(paint.Sample{X: 400, Y: 220})
//	s.End() // pushed onto the active layer's history
//
//	out := image.NewRGBA(image.Rect(0, 0, 1024, 768))
//	c.Composite(c.Bounds(), 1, out)
//
// # Architecture
//
//   - Strokes turn input samples into evenly spaced dabs (spacing, jitter,
//     stabilizer, pixel-perfect Bresenham stepping).
//   - Every dab snapshots each tile it touches the first time in a stroke,
//     then rasterizes its footprint tiles in parallel on the worker pool.
//   - Undo and redo swap snapshots with live tile data, per layer.
//   - Composite flattens visible layers into an *image.RGBA, optionally
//     box-filtered by an integer step.
//   - ApplyTransform moves pixels of the active layer by an affine map with
//     nearest-neighbour reverse mapping.
//
// # Coordinate System
//
// Origin (0,0) is the top-left corner, X increases right and Y down. Pixel
// (x, y) covers [x, x+1) x [y, y+1); its center is (x+0.5, y+0.5).
//
// # Concurrency
//
// Drawing, transforms and undo must be issued from one goroutine at a time.
// Composite may run concurrently with drawing: it reads each tile under
// that tile's lock.
package paint

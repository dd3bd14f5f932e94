// Command paintdemo replays a TOML paint script on a tiled canvas and writes
// the flattened result as a PNG.
//
// Usage:
//
//	paintdemo -script scene.toml -output scene.png
//	paintdemo -script scene.toml -watch      # re-render on every save
//
// Without -script a built-in scene is rendered.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/paint"
)

func main() {
	var (
		script  = flag.String("script", "", "TOML scene script (default: built-in demo)")
		output  = flag.String("output", "paint.png", "output PNG file")
		step    = flag.Int("step", 1, "downsample step (1 = full size)")
		watch   = flag.Bool("watch", false, "re-render when the script changes")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	paint.SetLogger(log)

	if *watch && *script == "" {
		log.Error("-watch needs -script")
		os.Exit(2)
	}

	if err := render(*script, *output, *step); err != nil {
		log.Error("render failed", "err", err)
		if !*watch {
			os.Exit(1)
		}
	} else {
		log.Info("wrote", "output", *output)
	}

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := watchScript(ctx, log, *script, func() error {
			return render(*script, *output, *step)
		}); err != nil {
			log.Error("watch failed", "err", err)
			os.Exit(1)
		}
	}
}

// render loads the script (or the demo), replays it and writes the PNG.
func render(scriptPath, output string, step int) error {
	data := demoScript
	if scriptPath != "" {
		b, err := os.ReadFile(scriptPath)
		if err != nil {
			return err
		}
		data = string(b)
	}
	s, err := ParseScript(data)
	if err != nil {
		return err
	}
	c, err := s.Run()
	if err != nil {
		return err
	}
	defer c.Close()

	img, err := flatten(c, step)
	if err != nil {
		return err
	}
	return writePNG(output, img)
}

// flatten composites the whole canvas, downsampled by step.
func flatten(c *paint.Canvas, step int) (*image.RGBA, error) {
	if step < 1 {
		return nil, fmt.Errorf("invalid step %d", step)
	}
	w := (c.Width() + step - 1) / step
	h := (c.Height() + step - 1) / step
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := c.Composite(c.Bounds(), step, img); err != nil {
		return nil, err
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// watchScript calls fn after every burst of writes to path until ctx ends.
// The directory is watched rather than the file so editors that replace the
// file on save keep triggering.
func watchScript(ctx context.Context, log *slog.Logger, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	log.Info("watching", "script", abs)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(200*time.Millisecond, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(200 * time.Millisecond)
			}

		case <-fire:
			if err := fn(); err != nil {
				log.Error("render failed", "err", err)
				continue
			}
			log.Info("re-rendered", "script", abs)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}

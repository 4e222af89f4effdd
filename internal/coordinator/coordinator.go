// Package coordinator owns the capture pipeline: it consumes trigger
// events in arrival order, applies the settle delay, refreshes window
// geometry, captures, annotates click positions, and persists numbered
// output files. At most one request is ever in flight; the trigger
// channel is the FIFO backlog, so filenames are assigned in trigger
// arrival order regardless of capture latency.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clickshot/clickshot/internal/annotate"
	"github.com/clickshot/clickshot/internal/capture"
	"github.com/clickshot/clickshot/internal/config"
	"github.com/clickshot/clickshot/internal/logger"
	"github.com/clickshot/clickshot/internal/trigger"
	"github.com/clickshot/clickshot/internal/window"
)

// Resolver re-queries the target window's current bounds
type Resolver interface {
	Refresh(h *window.Handle) (*window.Handle, error)
}

// Grabber captures the pixels for a screen region
type Grabber interface {
	Grab(g window.Geometry) (*capture.Frame, error)
}

// Namer issues sequence filenames; Commit consumes the current one
type Namer interface {
	Next() (string, error)
	Commit()
}

// Renderer draws the click marker onto a copy of the frame
type Renderer func(src *image.RGBA, at image.Point, spec annotate.Spec) (*image.RGBA, error)

// Options configures a capture session
type Options struct {
	Target    *window.Handle
	OutputDir string
	Format    string
	Delay     time.Duration

	Annotate bool
	Spec     annotate.Spec

	Gif        bool
	GifOptions annotate.ZoomOptions
}

// request is one accepted trigger moving through the pipeline
type request struct {
	trigger     trigger.Event
	requestedAt time.Time
}

// Coordinator serializes triggers into the single capture pipeline
type Coordinator struct {
	opts     Options
	events   <-chan trigger.Event
	resolver Resolver
	grabber  Grabber
	namer    Namer
	render   Renderer

	target   *window.Handle
	captured int
}

// New wires a coordinator. The events channel is the FIFO backlog; its
// buffering determines how many triggers can queue while a capture runs.
func New(events <-chan trigger.Event, resolver Resolver, grabber Grabber, namer Namer, opts Options) *Coordinator {
	return &Coordinator{
		opts:     opts,
		events:   events,
		resolver: resolver,
		grabber:  grabber,
		namer:    namer,
		render:   annotate.Render,
		target:   opts.Target,
	}
}

// Captured reports how many frames were persisted so far
func (c *Coordinator) Captured() int {
	return c.captured
}

// Run consumes triggers until the context is cancelled or the event
// channel closes. An in-flight request always finishes persisting before
// Run returns; queued backlog is discarded on cancellation.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			c.handle(ev)
		}
	}
}

// handle runs one trigger through the pipeline. Per-request failures are
// logged and isolated; they never stop the loop.
func (c *Coordinator) handle(ev trigger.Event) {
	log := logger.WithComponent("coordinator")

	// Idle: clicks outside the target window's current bounds are
	// discarded before anything else happens.
	if ev.Kind == trigger.Click {
		fresh, err := c.resolver.Refresh(c.target)
		if err != nil {
			log.Warn().
				Err(err).
				Time("trigger_at", ev.At).
				Msg("Discarding click, window bounds unavailable")
			return
		}
		c.target = fresh
		if !fresh.Geometry.Contains(ev.Pos) {
			log.Debug().
				Int("x", ev.Pos.X).
				Int("y", ev.Pos.Y).
				Msg("Click outside target window, discarded")
			return
		}
	}

	req := request{trigger: ev, requestedAt: time.Now()}

	// Debouncing: let the UI settle after the trigger. Cancellation does
	// not abandon the request; it is already in flight.
	if c.opts.Delay > 0 {
		time.Sleep(c.opts.Delay)
	}

	// Capturing: geometry is refreshed fresh for every capture.
	fresh, err := c.resolver.Refresh(c.target)
	if err != nil {
		if errors.Is(err, window.ErrWindowClosed) {
			log.Warn().
				Err(err).
				Time("requested_at", req.requestedAt).
				Msg("Window closed, aborting request")
			return
		}
		log.Error().
			Err(err).
			Time("requested_at", req.requestedAt).
			Msg("Failed to refresh window geometry")
		return
	}
	c.target = fresh

	frame, err := c.grabber.Grab(fresh.Geometry)
	if err != nil {
		log.Error().
			Err(err).
			Time("requested_at", req.requestedAt).
			Msg("Capture failed")
		return
	}

	// The click position in window-relative coordinates; the marker and
	// the zoom GIF both aim at it, independently of each other.
	var markerAt image.Point
	if ev.Kind == trigger.Click {
		markerAt = ev.Pos.Sub(fresh.Geometry.Origin())
	}

	// Annotating: click triggers only, render-on-copy.
	img := frame.Image
	annotated := false
	if ev.Kind == trigger.Click && c.opts.Annotate {
		out, err := c.render(img, markerAt, c.opts.Spec)
		if err != nil {
			log.Error().Err(err).Msg("Annotation failed, persisting unannotated frame")
		} else {
			img = out
			annotated = true
		}
	}

	// Persisting: the counter advances only after a successful write.
	name, err := c.namer.Next()
	if err != nil {
		log.Error().
			Err(err).
			Time("requested_at", req.requestedAt).
			Msg("Skipping capture")
		return
	}

	path := filepath.Join(c.opts.OutputDir, name)
	if err := c.saveImage(img, path); err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to persist capture")
		return
	}
	c.namer.Commit()
	c.captured++

	log.Info().
		Str("file", path).
		Str("trigger", ev.Kind.String()).
		Bool("annotated", annotated).
		Msg("Capture saved")

	if ev.Kind == trigger.Click && c.opts.Gif {
		gifPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".gif"
		if err := c.saveZoomGIF(frame.Image, markerAt, gifPath); err != nil {
			log.Error().Err(err).Str("file", gifPath).Msg("Failed to write zoom GIF")
		} else {
			log.Info().Str("file", gifPath).Msg("Zoom GIF saved")
		}
	}
}

func (c *Coordinator) saveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch c.opts.Format {
	case config.FormatJPG:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Coordinator) saveZoomGIF(img image.Image, at image.Point, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := annotate.WriteZoomGIF(f, img, at, c.opts.GifOptions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

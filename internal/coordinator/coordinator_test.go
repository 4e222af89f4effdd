package coordinator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickshot/clickshot/internal/annotate"
	"github.com/clickshot/clickshot/internal/capture"
	"github.com/clickshot/clickshot/internal/config"
	"github.com/clickshot/clickshot/internal/sequence"
	"github.com/clickshot/clickshot/internal/trigger"
	"github.com/clickshot/clickshot/internal/window"
)

type fakeResolver struct {
	handle   window.Handle
	failures int
	calls    int
}

func (f *fakeResolver) Refresh(h *window.Handle) (*window.Handle, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("%w: %q (id %d)", window.ErrWindowClosed, h.Title, h.ID)
	}
	fresh := f.handle
	return &fresh, nil
}

type fakeGrabber struct {
	grabs    int
	gradient bool
}

func (f *fakeGrabber) Grab(g window.Geometry) (*capture.Frame, error) {
	f.grabs++
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			px := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if f.gradient {
				px = color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255}
			}
			img.SetRGBA(x, y, px)
		}
	}
	return &capture.Frame{Image: img, Geometry: g}, nil
}

var testGeometry = window.Geometry{X: 100, Y: 300, Width: 400, Height: 200}

func testTarget() *window.Handle {
	return &window.Handle{ID: 7, Title: "Test Window", Geometry: testGeometry}
}

func testSpec() annotate.Spec {
	return annotate.Spec{
		Shape:     config.ShapeRectangle,
		Color:     color.RGBA{R: 255, A: 255},
		LineWidth: 2,
		Size:      20,
	}
}

// newTestCoordinator wires fakes around a real sequence namer
func newTestCoordinator(t *testing.T, events <-chan trigger.Event, opts Options) (*Coordinator, *fakeResolver, *fakeGrabber) {
	t.Helper()

	resolver := &fakeResolver{handle: *testTarget()}
	grabber := &fakeGrabber{}
	if opts.Target == nil {
		opts.Target = testTarget()
	}
	if opts.Format == "" {
		opts.Format = config.FormatPNG
	}
	namer := sequence.NewNamer(opts.OutputDir, opts.Format)

	return New(events, resolver, grabber, namer, opts), resolver, grabber
}

func click(x, y int) trigger.Event {
	return trigger.Event{Kind: trigger.Click, Pos: image.Pt(x, y), At: time.Now()}
}

func hotkey() trigger.Event {
	return trigger.Event{Kind: trigger.Hotkey, At: time.Now()}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSequentialOutputInArrivalOrder(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 16)
	coord, _, grabber := newTestCoordinator(t, events, Options{OutputDir: dir})

	for i := 0; i < 5; i++ {
		events <- click(150+i, 350+i)
	}
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 5, coord.Captured())
	assert.Equal(t, 5, grabber.grabs)
	assert.Equal(t, []string{"001.png", "002.png", "003.png", "004.png", "005.png"}, listFiles(t, dir))
}

func TestClickOutsideBoundsProducesNothing(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 4)
	coord, _, grabber := newTestCoordinator(t, events, Options{OutputDir: dir})

	events <- click(50, 50)    // left of and above the window
	events <- click(700, 400)  // right of the window
	events <- click(200, 600)  // below the window
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 0, coord.Captured())
	assert.Equal(t, 0, grabber.grabs)
	assert.Empty(t, listFiles(t, dir))
}

func TestHotkeySkipsContainmentAndAnnotation(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 1)

	rendered := 0
	coord, _, _ := newTestCoordinator(t, events, Options{
		OutputDir: dir,
		Annotate:  true,
		Spec:      testSpec(),
	})
	coord.render = func(src *image.RGBA, at image.Point, spec annotate.Spec) (*image.RGBA, error) {
		rendered++
		return annotate.Render(src, at, spec)
	}

	events <- hotkey()
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 1, coord.Captured())
	assert.Equal(t, 0, rendered, "hotkey captures are never annotated")
	assert.Equal(t, []string{"001.png"}, listFiles(t, dir))
}

func TestWindowClosedAbortsRequestNotLoop(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 2)
	coord, resolver, _ := newTestCoordinator(t, events, Options{OutputDir: dir})
	resolver.failures = 1

	events <- hotkey() // aborted: window closed during capture
	events <- hotkey() // must still succeed
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 1, coord.Captured())
	assert.Equal(t, []string{"001.png"}, listFiles(t, dir))
}

func TestAnnotationPointIsWindowRelative(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 1)

	var got image.Point
	coord, _, _ := newTestCoordinator(t, events, Options{
		OutputDir: dir,
		Annotate:  true,
		Spec:      testSpec(),
	})
	coord.render = func(src *image.RGBA, at image.Point, spec annotate.Spec) (*image.RGBA, error) {
		got = at
		return annotate.Render(src, at, spec)
	}

	// Window origin is (100, 300); a click at (120, 340) must annotate (20, 40)
	events <- click(120, 340)
	close(events)

	require.NoError(t, coord.Run(context.Background()))
	assert.Equal(t, image.Pt(20, 40), got)
}

func TestAnnotationDisabled(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 1)

	rendered := 0
	coord, _, _ := newTestCoordinator(t, events, Options{
		OutputDir: dir,
		Annotate:  false,
		Spec:      testSpec(),
	})
	coord.render = func(src *image.RGBA, at image.Point, spec annotate.Spec) (*image.RGBA, error) {
		rendered++
		return src, nil
	}

	events <- click(200, 400)
	close(events)

	require.NoError(t, coord.Run(context.Background()))
	assert.Equal(t, 1, coord.Captured())
	assert.Equal(t, 0, rendered)
}

func TestZoomGIFSharesSequenceNumber(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 2)
	coord, _, _ := newTestCoordinator(t, events, Options{
		OutputDir:  dir,
		Annotate:   true,
		Spec:       testSpec(),
		Gif:        true,
		GifOptions: annotate.DefaultZoomOptions(testSpec()),
	})

	events <- click(200, 400)
	events <- click(210, 410)
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	assert.Equal(t, 2, coord.Captured())
	assert.Equal(t, []string{"001.gif", "001.png", "002.gif", "002.png"}, listFiles(t, dir))
}

func TestZoomGIFFollowsClickWhenAnnotationDisabled(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 2)
	coord, _, grabber := newTestCoordinator(t, events, Options{
		OutputDir:  dir,
		Annotate:   false,
		Spec:       testSpec(),
		Gif:        true,
		GifOptions: annotate.DefaultZoomOptions(testSpec()),
	})
	grabber.gradient = true

	// Opposite corners of the window; if the zoom target tracks the
	// click, the two animations must crop different regions.
	events <- click(120, 320)
	events <- click(480, 480)
	close(events)

	require.NoError(t, coord.Run(context.Background()))

	a, err := os.ReadFile(filepath.Join(dir, "001.gif"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "002.gif"))
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b), "zoom target must follow the click position")
}

func TestDebounceDelayIsApplied(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event, 2)
	coord, _, _ := newTestCoordinator(t, events, Options{
		OutputDir: dir,
		Delay:     30 * time.Millisecond,
	})

	events <- hotkey()
	events <- hotkey()
	close(events)

	start := time.Now()
	require.NoError(t, coord.Run(context.Background()))
	elapsed := time.Since(start)

	assert.Equal(t, 2, coord.Captured())
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond, "each request waits the settle delay")
}

func TestCancelledContextStopsLoop(t *testing.T) {
	dir := t.TempDir()
	events := make(chan trigger.Event) // unbuffered: nothing queued
	coord, _, _ := newTestCoordinator(t, events, Options{OutputDir: dir})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop after cancellation")
	}
	assert.Equal(t, 0, coord.Captured())
}

func TestRunCreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	events := make(chan trigger.Event, 1)
	coord, _, _ := newTestCoordinator(t, events, Options{OutputDir: dir})

	events <- hotkey()
	close(events)

	require.NoError(t, coord.Run(context.Background()))
	assert.Equal(t, []string{"001.png"}, listFiles(t, dir))
}

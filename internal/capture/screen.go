package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/clickshot/clickshot/internal/window"
)

// ScreenGrabber captures screen regions through the portable screenshot
// library. Used when the X11 grabber cannot serve a request.
type ScreenGrabber struct{}

// NewScreenGrabber returns the fallback grabber
func NewScreenGrabber() *ScreenGrabber {
	return &ScreenGrabber{}
}

// Name returns the grabber name
func (c *ScreenGrabber) Name() string {
	return "screenshot"
}

// Close is a no-op; the library holds no persistent connection
func (c *ScreenGrabber) Close() error {
	return nil
}

// Grab captures a screen region
func (c *ScreenGrabber) Grab(g window.Geometry) (*Frame, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("invalid capture region %dx%d", g.Width, g.Height)
	}

	img, err := screenshot.CaptureRect(image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height))
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}

	return &Frame{Image: img, Geometry: g}, nil
}

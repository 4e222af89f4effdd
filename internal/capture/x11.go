package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/clickshot/clickshot/internal/window"
)

// X11Grabber captures screen regions via xproto.GetImage
type X11Grabber struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	mu     sync.Mutex
}

// NewX11Grabber connects to the X server
func NewX11Grabber() (*X11Grabber, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11Grabber{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}, nil
}

// Name returns the grabber name
func (c *X11Grabber) Name() string {
	return "x11"
}

// Close closes the X11 connection
func (c *X11Grabber) Close() error {
	c.conn.Close()
	return nil
}

// Grab captures a region of the root window
func (c *X11Grabber) Grab(g window.Geometry) (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("invalid capture region %dx%d", g.Width, g.Height)
	}

	reply, err := xproto.GetImage(
		c.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.root),
		int16(g.X), int16(g.Y),
		uint16(g.Width), uint16(g.Height),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return &Frame{
		Image:    c.convertImageData(reply.Data, g.Width, g.Height),
		Geometry: g,
	}, nil
}

// convertImageData converts X11 image data to RGBA
func (c *X11Grabber) convertImageData(data []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	depth := int(c.screen.RootDepth)

	if depth == 24 || depth == 32 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := (y*width + x) * 4
				if i+3 < len(data) {
					// BGRA to RGBA
					img.Set(x, y, color.RGBA{
						R: data[i+2],
						G: data[i+1],
						B: data[i],
						A: 255,
					})
				}
			}
		}
	}

	return img
}

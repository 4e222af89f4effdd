package window

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/clickshot/clickshot/internal/logger"
)

// Resolver finds and tracks windows over an X11 connection
type Resolver struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewResolver connects to the X server
func NewResolver() (*Resolver, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	return &Resolver{conn: conn, root: root}, nil
}

// Close closes the X11 connection
func (r *Resolver) Close() error {
	r.conn.Close()
	return nil
}

// Resolve fuzzy-matches a window by title or class. On ties between
// equally strong matches the most recently focused window wins, using
// EWMH stacking order as the recency signal; when stacking order is
// unavailable the query is ambiguous.
func (r *Resolver) Resolve(query string) (*Handle, error) {
	log := logger.WithComponent("window")

	windows, stacked, err := r.list()
	if err != nil {
		return nil, err
	}

	best := bestMatches(query, windows)
	switch {
	case len(best) == 0:
		return nil, fmt.Errorf("%w: no window matches %q", ErrWindowNotFound, query)
	case len(best) == 1:
		return windows[best[0]], nil
	}

	if stacked {
		// Stacking order is bottom-to-top: the last match is topmost,
		// i.e. the most recently focused of the candidates.
		h := windows[best[len(best)-1]]
		log.Debug().
			Int("candidates", len(best)).
			Str("title", h.Title).
			Msg("Tie-break by stacking order")
		return h, nil
	}

	return nil, fmt.Errorf("%w: %d windows match %q", ErrAmbiguousWindow, len(best), query)
}

// Refresh re-queries the current bounds for a handle
func (r *Resolver) Refresh(h *Handle) (*Handle, error) {
	win := xproto.Window(h.ID)

	geom, err := xproto.GetGeometry(r.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: %q (id %d)", ErrWindowClosed, h.Title, h.ID)
	}

	fresh := *h
	fresh.Geometry = Geometry{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}

	// GetGeometry coordinates are parent-relative; translate the window
	// origin into root (screen) coordinates.
	trans, err := xproto.TranslateCoordinates(r.conn, win, r.root, 0, 0).Reply()
	if err != nil {
		return nil, fmt.Errorf("%w: %q (id %d)", ErrWindowClosed, h.Title, h.ID)
	}
	fresh.Geometry.X = int(trans.DstX)
	fresh.Geometry.Y = int(trans.DstY)

	return &fresh, nil
}

// List returns all visible windows, topmost last when EWMH stacking
// information is available.
func (r *Resolver) List() ([]*Handle, error) {
	windows, _, err := r.list()
	return windows, err
}

func (r *Resolver) list() (windows []*Handle, stacked bool, err error) {
	log := logger.WithComponent("window")

	// _NET_CLIENT_LIST_STACKING is preferred: bottom-to-top order doubles
	// as a focus-recency signal for tie-breaking.
	windows, err = r.listClientList("_NET_CLIENT_LIST_STACKING")
	if err == nil && len(windows) > 0 {
		log.Debug().Int("count", len(windows)).Msg("List: using _NET_CLIENT_LIST_STACKING")
		return windows, true, nil
	}

	windows, err = r.listClientList("_NET_CLIENT_LIST")
	if err == nil && len(windows) > 0 {
		log.Debug().Int("count", len(windows)).Msg("List: using _NET_CLIENT_LIST")
		return windows, false, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("List: EWMH failed, falling back to QueryTree")
	}

	windows, err = r.listQueryTree()
	if err != nil {
		return nil, false, err
	}
	log.Debug().Int("count", len(windows)).Msg("List: using QueryTree fallback")
	return windows, false, nil
}

// listClientList reads an EWMH window-list property off the root window
func (r *Resolver) listClientList(prop string) ([]*Handle, error) {
	atom, err := r.getAtom(prop)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s atom: %w", prop, err)
	}

	reply, err := xproto.GetProperty(
		r.conn,
		false,
		r.root,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s property: %w", prop, err)
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("%s is empty", prop)
	}

	// The property value is an array of 32-bit window IDs
	windows := make([]*Handle, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		winID := xproto.Window(uint32(reply.Value[i]) |
			uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 |
			uint32(reply.Value[i+3])<<24)

		h, err := r.handleFor(winID)
		if err != nil {
			continue
		}
		if h.Title == "" && h.Class == "" {
			continue
		}
		windows = append(windows, h)
	}

	return windows, nil
}

// listQueryTree walks the root window's children directly
func (r *Resolver) listQueryTree() ([]*Handle, error) {
	tree, err := xproto.QueryTree(r.conn, r.root).Reply()
	if err != nil {
		return nil, err
	}

	windows := make([]*Handle, 0)
	for _, child := range tree.Children {
		h, err := r.handleFor(child)
		if err != nil {
			continue
		}
		// Skip windows without titles or class (usually not user windows)
		if h.Title == "" && h.Class == "" {
			continue
		}
		windows = append(windows, h)
	}

	return windows, nil
}

// handleFor retrieves identity and geometry for a window
func (r *Resolver) handleFor(win xproto.Window) (*Handle, error) {
	h := &Handle{ID: uint32(win)}

	geom, err := xproto.GetGeometry(r.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, err
	}
	h.Geometry = Geometry{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}
	if trans, err := xproto.TranslateCoordinates(r.conn, win, r.root, 0, 0).Reply(); err == nil {
		h.Geometry.X = int(trans.DstX)
		h.Geometry.Y = int(trans.DstY)
	}

	// Window title
	if atom, err := r.getAtom("_NET_WM_NAME"); err == nil {
		if title, err := r.getProperty(win, atom); err == nil {
			h.Title = title
		}
	}
	if h.Title == "" {
		if atom, err := r.getAtom("WM_NAME"); err == nil {
			if title, err := r.getProperty(win, atom); err == nil {
				h.Title = title
			}
		}
	}

	// WM_CLASS format is: instance\0class\0 (two null-terminated strings)
	if atom, err := r.getAtom("WM_CLASS"); err == nil {
		if raw, err := r.getProperty(win, atom); err == nil {
			parts := strings.Split(raw, "\x00")
			if len(parts) >= 2 && parts[1] != "" {
				h.Class = parts[1]
			} else if len(parts) >= 1 && parts[0] != "" {
				h.Class = parts[0]
			}
		}
	}

	// PID
	if atom, err := r.getAtom("_NET_WM_PID"); err == nil {
		reply, err := xproto.GetProperty(
			r.conn,
			false,
			win,
			atom,
			xproto.AtomCardinal,
			0,
			1,
		).Reply()
		if err == nil && len(reply.Value) >= 4 {
			h.PID = int(uint32(reply.Value[0]) |
				uint32(reply.Value[1])<<8 |
				uint32(reply.Value[2])<<16 |
				uint32(reply.Value[3])<<24)
		}
	}

	return h, nil
}

// getAtom gets an atom ID by name
func (r *Resolver) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(r.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// getProperty gets a property value as a string
func (r *Resolver) getProperty(win xproto.Window, atom xproto.Atom) (string, error) {
	reply, err := xproto.GetProperty(
		r.conn,
		false,
		win,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property")
	}
	return string(reply.Value), nil
}

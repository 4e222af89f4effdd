package window

import (
	"errors"
	"image"
)

var (
	// ErrWindowNotFound indicates no window title matched the query.
	ErrWindowNotFound = errors.New("window not found")

	// ErrAmbiguousWindow indicates multiple equally strong matches with no
	// way to break the tie.
	ErrAmbiguousWindow = errors.New("ambiguous window query")

	// ErrWindowClosed indicates the target window no longer exists.
	ErrWindowClosed = errors.New("window closed")
)

// Geometry represents window geometry in screen coordinates
type Geometry struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Contains reports whether a screen point falls inside the geometry.
func (g Geometry) Contains(p image.Point) bool {
	return p.X >= g.X && p.X < g.X+g.Width &&
		p.Y >= g.Y && p.Y < g.Y+g.Height
}

// Origin returns the top-left corner in screen coordinates.
func (g Geometry) Origin() image.Point {
	return image.Point{X: g.X, Y: g.Y}
}

// Handle identifies a live window and its current bounds. Geometry may
// change between captures; refresh it through the resolver rather than
// caching across requests.
type Handle struct {
	ID       uint32   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Class    string   `json:"class" yaml:"class"`
	PID      int      `json:"pid" yaml:"pid"`
	Geometry Geometry `json:"geometry" yaml:"geometry"`
}

package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/clickshot/clickshot/internal/config"
)

// Spec is the immutable marker style applied to captures
type Spec struct {
	Shape     string
	Color     color.RGBA
	LineWidth int
	Size      int
	Padding   int
}

// SpecFromConfig resolves a validated annotation config into a render spec
func SpecFromConfig(c config.AnnotationConfig) (Spec, error) {
	switch c.Shape {
	case config.ShapeRectangle, config.ShapeCircle:
	default:
		return Spec{}, fmt.Errorf("%w: %q", config.ErrUnsupportedShape, c.Shape)
	}

	col, err := ParseHexColor(c.Color)
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		Shape:     c.Shape,
		Color:     col,
		LineWidth: c.LineWidth,
		Size:      c.Size,
		Padding:   c.Padding,
	}, nil
}

// ParseHexColor converts a hex color string like "#FF3B30" to RGBA
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// Render draws the marker centered on the given window-relative point and
// returns a new image; the source pixels are never mutated. The shape is
// clipped at the image edges, so points near a border are fine.
func Render(src *image.RGBA, at image.Point, spec Spec) (*image.RGBA, error) {
	switch spec.Shape {
	case config.ShapeRectangle, config.ShapeCircle:
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedShape, spec.Shape)
	}

	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, src.Bounds(), src, src.Bounds().Min, draw.Src)

	half := spec.Size/2 + spec.Padding
	switch spec.Shape {
	case config.ShapeRectangle:
		r := image.Rect(at.X-half, at.Y-half, at.X+half, at.Y+half)
		strokeRect(dst, r, spec.Color, spec.LineWidth)
	case config.ShapeCircle:
		strokeCircle(dst, at, half, spec.Color, spec.LineWidth)
	}

	return dst, nil
}

// fillRect fills a rectangle clipped to the image bounds
func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// strokeRect draws a rectangle outline of the given line width
func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA, lw int) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+lw), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-lw, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+lw, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-lw, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// strokeCircle draws a circle outline of the given line width
func strokeCircle(img *image.RGBA, center image.Point, radius int, c color.RGBA, lw int) {
	inner := radius - lw
	if inner < 0 {
		inner = 0
	}
	outerSq := radius * radius
	innerSq := inner * inner

	box := image.Rect(
		center.X-radius, center.Y-radius,
		center.X+radius+1, center.Y+radius+1,
	).Intersect(img.Bounds())

	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dx := x - center.X
			dy := y - center.Y
			d := dx*dx + dy*dy
			if d <= outerSq && d >= innerSq {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

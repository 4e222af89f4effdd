package annotate

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ZoomOptions controls the zoom-to-click GIF rendered alongside a capture
type ZoomOptions struct {
	// Frames is the number of zoom transition frames.
	Frames int
	// HoldFrames holds the fully zoomed view at the end.
	HoldFrames int
	// ZoomFactor is the final magnification (4.0 = 400%).
	ZoomFactor float64
	// FrameDelay is the per-frame delay in 10ms units, as GIF encodes it.
	FrameDelay int
	// MaxWidth caps the GIF width; height keeps the source aspect ratio.
	MaxWidth int
	// Marker is drawn once the zoom is close enough to read.
	Marker Spec
}

// DefaultZoomOptions mirrors the tuning used for tutorial output
func DefaultZoomOptions(marker Spec) ZoomOptions {
	return ZoomOptions{
		Frames:     12,
		HoldFrames: 3,
		ZoomFactor: 4.0,
		FrameDelay: 8,
		MaxWidth:   800,
		Marker:     marker,
	}
}

// WriteZoomGIF writes an animated GIF that starts at the full capture and
// eases into the click point, so a reader sees where on the screen the
// click happened. The marker appears on the zoomed-in frames.
func WriteZoomGIF(w io.Writer, src image.Image, at image.Point, opts ZoomOptions) error {
	b := src.Bounds()
	imgW, imgH := b.Dx(), b.Dy()
	if imgW == 0 || imgH == 0 {
		return fmt.Errorf("empty source image")
	}
	if opts.Frames < 2 {
		opts.Frames = 2
	}
	if opts.ZoomFactor < 1 {
		opts.ZoomFactor = 1
	}

	// Clamp the target to the image
	target := image.Pt(
		clamp(at.X, 0, imgW-1),
		clamp(at.Y, 0, imgH-1),
	)

	gifW := imgW
	if opts.MaxWidth > 0 && gifW > opts.MaxWidth {
		gifW = opts.MaxWidth
	}
	gifH := gifW * imgH / imgW
	if gifH == 0 {
		gifH = 1
	}

	anim := &gif.GIF{LoopCount: 0}
	total := opts.Frames + opts.HoldFrames

	for i := 0; i < total; i++ {
		t := 1.0
		if i < opts.Frames {
			t = float64(i) / float64(opts.Frames-1)
		}
		// Ease-in-out for a smooth ramp
		tEase := (1 - math.Cos(t*math.Pi)) / 2

		zoomW := float64(imgW) / (1 + (opts.ZoomFactor-1)*tEase)
		zoomH := float64(imgH) / (1 + (opts.ZoomFactor-1)*tEase)

		cropX := float64(target.X) - zoomW/2
		cropY := float64(target.Y) - zoomH/2
		cropX = clampF(cropX, 0, float64(imgW)-zoomW)
		cropY = clampF(cropY, 0, float64(imgH)-zoomH)

		cropRect := image.Rect(
			b.Min.X+int(cropX),
			b.Min.Y+int(cropY),
			b.Min.X+int(cropX+zoomW),
			b.Min.Y+int(cropY+zoomH),
		)

		frame := image.NewRGBA(image.Rect(0, 0, gifW, gifH))
		xdraw.ApproxBiLinear.Scale(frame, frame.Bounds(), src, cropRect, xdraw.Src, nil)

		if tEase > 0.5 {
			markerAt := image.Pt(
				int((float64(target.X)-cropX)/zoomW*float64(gifW)),
				int((float64(target.Y)-cropY)/zoomH*float64(gifH)),
			)
			marked, err := Render(frame, markerAt, opts.Marker)
			if err != nil {
				return err
			}
			frame = marked
		}

		paletted := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, image.Point{})

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, opts.FrameDelay)
	}

	return gif.EncodeAll(w, anim)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package capture

import (
	"image"

	"github.com/clickshot/clickshot/internal/logger"
	"github.com/clickshot/clickshot/internal/window"
)

// Frame is a captured pixel buffer together with the geometry it was
// captured against. Owned by the coordinator until persisted.
type Frame struct {
	Image    *image.RGBA
	Geometry window.Geometry
}

// Grabber captures a screen region as raw pixels
type Grabber interface {
	Grab(g window.Geometry) (*Frame, error)
	Name() string
	Close() error
}

// Service routes capture requests to the preferred grabber, falling back
// when the primary fails mid-session.
type Service struct {
	primary  Grabber
	fallback Grabber
}

// NewService builds the default grabber chain: X11 GetImage first, the
// portable screenshot library as fallback.
func NewService() (*Service, error) {
	log := logger.WithComponent("capture")

	var primary Grabber
	x11, err := NewX11Grabber()
	if err != nil {
		log.Warn().Err(err).Msg("X11 grabber unavailable, using fallback only")
	} else {
		primary = x11
	}

	return &Service{
		primary:  primary,
		fallback: NewScreenGrabber(),
	}, nil
}

// Grab captures the given screen region
func (s *Service) Grab(g window.Geometry) (*Frame, error) {
	log := logger.WithComponent("capture")

	if s.primary != nil {
		frame, err := s.primary.Grab(g)
		if err == nil {
			return frame, nil
		}
		log.Warn().
			Err(err).
			Str("grabber", s.primary.Name()).
			Msg("Primary grabber failed, trying fallback")
	}

	return s.fallback.Grab(g)
}

// Name identifies the service for logs
func (s *Service) Name() string {
	return "service"
}

// Close releases both grabbers
func (s *Service) Close() error {
	if s.primary != nil {
		if err := s.primary.Close(); err != nil {
			return err
		}
	}
	return s.fallback.Close()
}

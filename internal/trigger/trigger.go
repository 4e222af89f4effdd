package trigger

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/clickshot/clickshot/internal/logger"
)

// Kind distinguishes the two trigger producers
type Kind int

const (
	// Click is a global pointer click; always carries a screen position.
	Click Kind = iota
	// Hotkey is the manual trigger; carries no position.
	Hotkey
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Hotkey:
		return "hotkey"
	}
	return "unknown"
}

// Event is a single trigger. Pos is valid only for Click events.
type Event struct {
	Kind Kind
	Pos  image.Point
	At   time.Time
}

// Options configures the trigger source
type Options struct {
	// ManualOnly disables the click producer; the hotkey stays active.
	ManualOnly bool
	// Hotkey is the manual trigger combo, e.g. "ctrl+shift+s".
	Hotkey string
	// PollInterval is the pointer poll period. Zero means the default.
	PollInterval time.Duration
}

const defaultPollInterval = 15 * time.Millisecond

// Source unifies the click and hotkey producers into one ordered stream.
// Each producer runs on its own X connection and pushes into a shared
// FIFO channel in the order the underlying notifications arrive.
type Source struct {
	opts   Options
	combo  keyCombo
	events chan Event
	stop   chan struct{}
	wg     sync.WaitGroup

	// Producer hooks; tests swap these for fakes.
	startClicks func() error
	startHotkey func() error

	clickConn  *xgb.Conn
	hotkeyConn *xgb.Conn
}

// NewSource validates options and parses the hotkey combo. Invalid combos
// fail here, before any listening starts.
func NewSource(opts Options) (*Source, error) {
	combo, err := parseCombo(opts.Hotkey)
	if err != nil {
		return nil, fmt.Errorf("invalid hotkey %q: %w", opts.Hotkey, err)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	s := &Source{
		opts:   opts,
		combo:  combo,
		events: make(chan Event, 256),
		stop:   make(chan struct{}),
	}
	s.startClicks = s.connectClicks
	s.startHotkey = s.connectHotkey
	return s, nil
}

// Events returns the unified trigger stream. The channel is closed after
// Stop returns.
func (s *Source) Events() <-chan Event {
	return s.events
}

// Start begins listening. Manual-only mode skips the click producer;
// the hotkey producer always runs.
func (s *Source) Start() error {
	log := logger.WithComponent("trigger")

	if !s.opts.ManualOnly {
		if err := s.startClicks(); err != nil {
			return err
		}
		log.Info().Msg("Click producer started")
	} else {
		log.Info().Msg("Manual-only mode, click producer disabled")
	}

	if err := s.startHotkey(); err != nil {
		s.closeConns()
		return err
	}
	log.Info().Str("combo", s.opts.Hotkey).Msg("Hotkey producer started")

	return nil
}

// connectClicks opens the click producer's X connection and starts the
// pointer watcher.
func (s *Source) connectClicks() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server for click events: %w", err)
	}
	s.clickConn = conn
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	s.wg.Add(1)
	go s.watchClicks(conn, root)
	return nil
}

// connectHotkey opens the hotkey producer's X connection, grabs the combo
// and starts the key watcher.
func (s *Source) connectHotkey() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server for hotkey events: %w", err)
	}
	s.hotkeyConn = conn
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	if err := s.grabHotkey(conn, root); err != nil {
		return err
	}
	s.wg.Add(1)
	go s.watchHotkey(conn)
	return nil
}

// Stop shuts the producers down and closes the event channel
func (s *Source) Stop() {
	close(s.stop)
	s.wg.Wait()
	s.closeConns()
	close(s.events)
}

func (s *Source) closeConns() {
	if s.clickConn != nil {
		s.clickConn.Close()
		s.clickConn = nil
	}
	if s.hotkeyConn != nil {
		s.hotkeyConn.Close()
		s.hotkeyConn = nil
	}
}

func (s *Source) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.stop:
	}
}

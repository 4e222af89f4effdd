package trigger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/clickshot/clickshot/internal/logger"
)

// keyCombo is a parsed key combination: a modifier mask plus one keysym.
type keyCombo struct {
	mods   uint16
	keysym xproto.Keysym
}

var namedKeysyms = map[string]xproto.Keysym{
	"space":  0x0020,
	"tab":    0xff09,
	"enter":  0xff0d,
	"return": 0xff0d,
	"esc":    0xff1b,
	"escape": 0xff1b,
	"print":  0xff61,
}

// parseCombo parses combos like "ctrl+shift+s": zero or more modifiers
// followed by exactly one key.
func parseCombo(s string) (keyCombo, error) {
	var combo keyCombo

	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return combo, errors.New("empty combo")
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		last := i == len(parts)-1

		switch part {
		case "ctrl", "control":
			combo.mods |= xproto.ModMaskControl
			continue
		case "shift":
			combo.mods |= xproto.ModMaskShift
			continue
		case "alt":
			combo.mods |= xproto.ModMask1
			continue
		case "super", "cmd", "win":
			combo.mods |= xproto.ModMask4
			continue
		}

		if !last {
			return keyCombo{}, fmt.Errorf("unknown modifier %q", part)
		}

		if sym, ok := namedKeysyms[part]; ok {
			combo.keysym = sym
			return combo, nil
		}
		if len(part) == 2 || len(part) == 3 {
			if n, err := parseFunctionKey(part); err == nil {
				combo.keysym = 0xffbe + xproto.Keysym(n-1)
				return combo, nil
			}
		}
		if len(part) == 1 {
			c := part[0]
			if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
				// Latin keysyms equal their ASCII codes
				combo.keysym = xproto.Keysym(c)
				return combo, nil
			}
		}
		return keyCombo{}, fmt.Errorf("unknown key %q", part)
	}

	return keyCombo{}, errors.New("combo has no key, only modifiers")
}

func parseFunctionKey(s string) (int, error) {
	if s[0] != 'f' {
		return 0, errors.New("not a function key")
	}
	n := 0
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0, errors.New("not a function key")
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 12 {
		return 0, errors.New("function key out of range")
	}
	return n, nil
}

// grabHotkey resolves the combo's keysym to a keycode and grabs it on the
// root window, including Caps Lock / Num Lock variants.
func (s *Source) grabHotkey(conn *xgb.Conn, root xproto.Window) error {
	setup := xproto.Setup(conn)
	min, max := setup.MinKeycode, setup.MaxKeycode
	count := byte(max - min + 1)

	mapping, err := xproto.GetKeyboardMapping(conn, min, count).Reply()
	if err != nil {
		return fmt.Errorf("failed to get keyboard mapping: %w", err)
	}

	per := int(mapping.KeysymsPerKeycode)
	var keycode xproto.Keycode
search:
	for kc := 0; kc < int(count); kc++ {
		for col := 0; col < per && col < 2; col++ {
			if mapping.Keysyms[kc*per+col] == s.combo.keysym {
				keycode = min + xproto.Keycode(kc)
				break search
			}
		}
	}
	if keycode == 0 {
		return fmt.Errorf("no keycode maps to hotkey %q", s.opts.Hotkey)
	}

	lockVariants := []uint16{
		0,
		xproto.ModMaskLock,
		xproto.ModMask2,
		xproto.ModMaskLock | xproto.ModMask2,
	}
	for _, extra := range lockVariants {
		err := xproto.GrabKeyChecked(
			conn,
			true,
			root,
			s.combo.mods|extra,
			keycode,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check()
		if err != nil {
			return fmt.Errorf("failed to grab hotkey %q: %w", s.opts.Hotkey, err)
		}
	}

	return nil
}

// watchHotkey delivers grabbed key presses as Hotkey events
func (s *Source) watchHotkey(conn *xgb.Conn) {
	defer s.wg.Done()
	log := logger.WithComponent("trigger")

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		ev, err := conn.PollForEvent()
		if err != nil {
			// A poll error means the connection is unusable; retrying
			// would spin.
			log.Error().Err(err).Msg("X11 event poll failed, hotkey listener stopping")
			return
		}
		if ev == nil {
			time.Sleep(25 * time.Millisecond)
			continue
		}

		if _, ok := ev.(xproto.KeyPressEvent); ok {
			log.Debug().Msg("Hotkey pressed")
			s.emit(Event{Kind: Hotkey, At: time.Now()})
		}
	}
}

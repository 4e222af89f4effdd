package trigger

import (
	"image"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/clickshot/clickshot/internal/logger"
)

// watchClicks polls the global pointer state and emits a Click event on
// every Button1 press edge, with the position in root coordinates. Clicks
// land here regardless of which window has focus; filtering against the
// target window happens in the coordinator.
func (s *Source) watchClicks(conn *xgb.Conn, root xproto.Window) {
	defer s.wg.Done()
	log := logger.WithComponent("trigger")

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var down bool
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			reply, err := xproto.QueryPointer(conn, root).Reply()
			if err != nil {
				log.Debug().Err(err).Msg("Pointer query failed")
				continue
			}

			pressed := reply.Mask&xproto.ButtonMask1 != 0
			if pressed && !down {
				pos := image.Pt(int(reply.RootX), int(reply.RootY))
				log.Debug().
					Int("x", pos.X).
					Int("y", pos.Y).
					Msg("Pointer click")
				s.emit(Event{Kind: Click, Pos: pos, At: time.Now()})
			}
			down = pressed
		}
	}
}

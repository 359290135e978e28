package app

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtranslit/internal/logger"
)

const postRetry = 10 * time.Millisecond

// newPoster returns a func that runs f on the screen's event loop. A full
// event queue is retried until it drains or done closes, so no callback is
// dropped while the loop runs.
func newPoster(s tcell.Screen, done <-chan struct{}) func(func()) {
	return func(f func()) {
		ev := tcell.NewEventInterrupt(f)
		if err := s.PostEvent(ev); err == nil {
			return
		}
		logger.Debug("app: event queue full, retrying callback")
		go func() {
			ticker := time.NewTicker(postRetry)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := s.PostEvent(ev); err == nil {
						return
					}
				}
			}
		}()
	}
}

package quiz

import (
	"context"
	"time"
)

// Clock is the single tick source a session's timers hang off. The session
// never reads wall time directly; it consumes logical one-second ticks, so
// tests can drive Session.Tick by hand.
type Clock interface {
	// Run delivers one tick per second to fn until ctx is cancelled.
	Run(ctx context.Context, fn func())
}

// WallClock ticks on real wall-clock seconds. Drift under scheduler pressure
// is tolerated and not corrected.
type WallClock struct{}

func (WallClock) Run(ctx context.Context, fn func()) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

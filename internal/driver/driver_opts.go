package driver

import "time"

type TickDriverOpt func(*TickDriver)

func WithTickLength(tickLength time.Duration) TickDriverOpt {
	return func(d *TickDriver) {
		d.tickLength = tickLength
	}
}

// WithClock replaces time.Now for measuring elapsed time.
func WithClock(clock func() time.Time) TickDriverOpt {
	return func(d *TickDriver) {
		d.clock = clock
	}
}

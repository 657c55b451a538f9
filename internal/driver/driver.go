package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = 50 * time.Millisecond
)

// Manager is advanced once per tick by the time since its last tick.
type Manager interface {
	Tick(ctx context.Context, elapsed time.Duration) error
}

type TickDriver struct {
	tickLength time.Duration
	clock      func() time.Time
	managers   []Manager
	last       time.Time
}

func NewTickDriver(managers []Manager, opts ...TickDriverOpt) *TickDriver {
	d := &TickDriver{
		tickLength: DefaultTickLength,
		clock:      time.Now,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *TickDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	d.last = d.clock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// Tick advances every manager, in order, by the time since the previous
// tick. The first tick is one tick length long.
func (d *TickDriver) Tick(ctx context.Context) error {
	now := d.clock()
	elapsed := d.tickLength
	if !d.last.IsZero() {
		elapsed = now.Sub(d.last)
	}
	d.last = now

	for _, m := range d.managers {
		if err := m.Tick(ctx, elapsed); err != nil {
			return err
		}
	}
	return nil
}

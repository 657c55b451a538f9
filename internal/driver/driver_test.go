package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type recordingManager struct {
	elapsed []time.Duration
	err     error
}

func (m *recordingManager) Tick(_ context.Context, elapsed time.Duration) error {
	m.elapsed = append(m.elapsed, elapsed)
	return m.err
}

func TestTickDriver_Tick(t *testing.T) {
	tests := map[string]struct {
		steps      []time.Duration
		expElapsed []time.Duration
	}{
		"first tick is one tick length": {
			steps:      []time.Duration{0},
			expElapsed: []time.Duration{100 * time.Millisecond},
		},
		"measures time between ticks": {
			steps:      []time.Duration{0, 120 * time.Millisecond, 80 * time.Millisecond},
			expElapsed: []time.Duration{100 * time.Millisecond, 120 * time.Millisecond, 80 * time.Millisecond},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			now := time.Unix(1000, 0)
			m := &recordingManager{}
			d := NewTickDriver([]Manager{m}, WithTickLength(100*time.Millisecond), WithClock(func() time.Time { return now }))

			for _, s := range tt.steps {
				now = now.Add(s)
				if err := d.Tick(context.Background()); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			testutil.AssertEqual(t, "ticks", len(m.elapsed), len(tt.expElapsed))
			for i := range tt.expElapsed {
				testutil.AssertEqual(t, "elapsed", m.elapsed[i], tt.expElapsed[i])
			}
		})
	}
}

func TestTickDriver_StopsOnError(t *testing.T) {
	first := &recordingManager{err: errors.New("boom")}
	second := &recordingManager{}
	d := NewTickDriver([]Manager{first, second}, WithTickLength(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- d.Start(context.Background()) }()

	select {
	case err := <-done:
		testutil.AssertErrorContains(t, err, "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
	testutil.AssertEqual(t, "second skipped", len(second.elapsed), 0)
}

func TestTickDriver_Cancel(t *testing.T) {
	d := NewTickDriver(nil, WithTickLength(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
}

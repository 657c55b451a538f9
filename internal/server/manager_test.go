package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
	"github.com/pixil98/go-mmo/internal/worker"
	"github.com/pixil98/go-testutil"
)

type recorder struct {
	mu   sync.Mutex
	sent map[string][]protocol.Message
}

func (r *recorder) Publish(session string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var p protocol.Parser
	p.Feed(data)
	msgs, _ := p.Drain()
	r.sent[session] = append(r.sent[session], msgs...)
	return nil
}

func (r *recorder) find(session string, code protocol.Code) (protocol.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.sent[session] {
		if m.Code == code {
			return m, true
		}
	}
	return protocol.Message{}, false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.sent)
}

type fakeBus struct {
	mu       sync.Mutex
	subjects []string
	handler  func(string, []byte)
}

func (b *fakeBus) Publish(string, []byte) error { return nil }

func (b *fakeBus) Subscribe(subject string, h func(string, []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects = append(b.subjects, subject)
	b.handler = h
	return func() {}, nil
}

func (b *fakeBus) subscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler != nil
}

type memSaver struct {
	mu    sync.Mutex
	saved map[string]*game.UserRecord
}

func (s *memSaver) SaveState(key string, rec *game.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[key] = rec
	return nil
}

func (s *memSaver) get(key string) *game.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[key]
}

type fixture struct {
	mgr   *Manager
	pub   *recorder
	saver *memSaver
	bus   *fakeBus
	queue *worker.Queue
	now   time.Time
}

func newFixture(t *testing.T, opts ...ManagerOpt) *fixture {
	t.Helper()
	f := &fixture{
		pub:   &recorder{sent: map[string][]protocol.Message{}},
		saver: &memSaver{saved: map[string]*game.UserRecord{}},
		bus:   &fakeBus{},
		queue: worker.NewQueue(),
		now:   time.Unix(1000, 0),
	}
	reg := game.NewRegistry()
	reg.UserType.Stats = stats.Stats{MaxHealth: 100, MaxEnergy: 50, Speed: 100}

	world := game.NewWorld(reg, f.pub, game.WithRNG(game.NewRNG(7)), game.WithClock(func() time.Time { return f.now }))
	f.mgr = NewManager(world, f.bus, f.saver, f.queue, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = f.queue.Start(ctx) }()
	t.Cleanup(cancel)
	return f
}

func (f *fixture) send(session string, m protocol.Message) {
	f.mgr.receive(session, m.Compile())
}

func (f *fixture) tick(t *testing.T, d time.Duration) {
	t.Helper()
	f.now = f.now.Add(d)
	if err := f.mgr.Tick(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (f *fixture) join(t *testing.T, session, name string) {
	t.Helper()
	if err := f.mgr.Join(session, name, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManager_Join(t *testing.T) {
	f := newFixture(t)
	f.join(t, "s1", "Alice")

	err := f.mgr.Join("s2", "alice", nil)
	testutil.AssertErrorContains(t, err, "already in world")

	f.tick(t, 50*time.Millisecond)
	_, ok := f.pub.find("s1", protocol.SVWelcome)
	testutil.AssertEqual(t, "welcomed", ok, true)
}

func TestManager_Leave(t *testing.T) {
	f := newFixture(t)
	f.join(t, "s1", "Alice")
	f.join(t, "s2", "Bob")
	f.tick(t, 50*time.Millisecond)

	f.mgr.Leave("s1")
	f.mgr.Leave("unknown")
	f.tick(t, 50*time.Millisecond)
	f.queue.Wait()

	testutil.AssertEqual(t, "saved", f.saver.get("alice") != nil, true)
	m, ok := f.pub.find("s2", protocol.SVUserDisconnected)
	testutil.AssertEqual(t, "told", ok, true)
	testutil.AssertEqual(t, "who", m.Args[0], "Alice")

	var users int
	f.mgr.Do(func(w *game.World) { users = len(w.Users()) })
	testutil.AssertEqual(t, "users", users, 1)
}

func TestManager_Dispatch(t *testing.T) {
	tests := map[string]struct {
		session string
		msg     protocol.Message
		expTo   string
		expCode protocol.Code
		expArg  string
	}{
		"ping": {
			session: "s1",
			msg:     protocol.New(protocol.CLPing, "42"),
			expTo:   "s1",
			expCode: protocol.SVPingReply,
			expArg:  "42",
		},
		"say reaches everyone": {
			session: "s1",
			msg:     protocol.New(protocol.CLSay, "hello"),
			expTo:   "s2",
			expCode: protocol.SVSay,
			expArg:  "Alice",
		},
		"whisper": {
			session: "s1",
			msg:     protocol.New(protocol.CLWhisper, "bob", "psst"),
			expTo:   "s2",
			expCode: protocol.SVWhisper,
			expArg:  "Alice",
		},
		"whisper to nobody": {
			session: "s1",
			msg:     protocol.New(protocol.CLWhisper, "carol", "psst"),
			expTo:   "s1",
			expCode: protocol.SVInvalidUser,
		},
		"unknown recipe": {
			session: "s1",
			msg:     protocol.New(protocol.CLCraft, "sword"),
			expTo:   "s1",
			expCode: protocol.SVInvalidItem,
		},
		"unknown talent": {
			session: "s1",
			msg:     protocol.New(protocol.CLTakeTalent, "swift"),
			expTo:   "s1",
			expCode: protocol.SVInvalidTalent,
		},
		"missing entity": {
			session: "s1",
			msg:     protocol.New(protocol.CLTargetEntity, 999),
			expTo:   "s1",
			expCode: protocol.SVDoesntExist,
		},
		"target self by name": {
			session: "s1",
			msg:     protocol.New(protocol.CLTargetPlayer, "alice"),
			expTo:   "s1",
			expCode: protocol.SVInvalidUser,
		},
		"bad slot": {
			session: "s1",
			msg:     protocol.New(protocol.CLDrop, 99),
			expTo:   "s1",
			expCode: protocol.SVInvalidSlot,
		},
		"move": {
			session: "s1",
			msg:     protocol.New(protocol.CLLocation, 1.0, 1.0),
			expTo:   "s2",
			expCode: protocol.SVLocation,
			expArg:  "Alice",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.join(t, "s1", "Alice")
			f.join(t, "s2", "Bob")
			f.tick(t, 50*time.Millisecond)
			f.pub.reset()

			f.send(tt.session, tt.msg)
			f.tick(t, time.Second)

			m, ok := f.pub.find(tt.expTo, tt.expCode)
			if !ok {
				t.Fatalf("%s was not sent to %s", tt.expCode, tt.expTo)
			}
			if tt.expArg != "" {
				testutil.AssertEqual(t, "arg", m.Args[0], tt.expArg)
			}
		})
	}
}

func TestManager_NonFiniteLocation(t *testing.T) {
	tests := map[string]struct {
		msg protocol.Message
	}{
		"nan move":      {msg: protocol.New(protocol.CLLocation, "NaN", "NaN")},
		"infinite move": {msg: protocol.New(protocol.CLLocation, "+Inf", "0")},
		"negative inf":  {msg: protocol.New(protocol.CLLocation, "1", "-Inf")},
		"nan construct": {msg: protocol.New(protocol.CLConstruct, "fire", "NaN", "1")},
		"inf construct": {msg: protocol.New(protocol.CLConstruct, "fire", "2", "Inf")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.join(t, "s1", "Alice")
			f.join(t, "s2", "Bob")
			f.tick(t, 50*time.Millisecond)

			var before game.Point
			f.mgr.Do(func(w *game.World) {
				e, _ := w.User("alice")
				before = e.Location()
			})
			f.pub.reset()

			f.send("s1", tt.msg)
			f.tick(t, time.Second)

			_, moved := f.pub.find("s2", protocol.SVLocation)
			testutil.AssertEqual(t, "broadcast", moved, false)
			f.mgr.Do(func(w *game.World) {
				e, _ := w.User("alice")
				testutil.AssertEqual(t, "x", e.Location().X(), before.X())
				testutil.AssertEqual(t, "y", e.Location().Y(), before.Y())
				testutil.AssertEqual(t, "entities", len(w.Entities()), 2)
			})
		})
	}
}

func TestManager_IgnoredMessages(t *testing.T) {
	f := newFixture(t)
	f.join(t, "s1", "Alice")
	f.tick(t, 50*time.Millisecond)
	f.pub.reset()

	f.send("s1", protocol.New(protocol.CLGather))
	f.send("s1", protocol.New(protocol.CLIAm, "alice", "pw", protocol.Version))
	f.send("stranger", protocol.New(protocol.CLPing))
	f.mgr.receive("s1", []byte("not a frame"))
	f.tick(t, 50*time.Millisecond)

	_, ok := f.pub.find("s1", protocol.SVPingReply)
	testutil.AssertEqual(t, "nothing answered", ok, false)
	_, ok = f.pub.find("stranger", protocol.SVPingReply)
	testutil.AssertEqual(t, "stranger ignored", ok, false)
}

func TestManager_SavePeriod(t *testing.T) {
	f := newFixture(t, WithSavePeriod(time.Second))
	f.join(t, "s1", "Alice")

	f.tick(t, 500*time.Millisecond)
	f.queue.Wait()
	testutil.AssertEqual(t, "not yet", f.saver.get("alice") == nil, true)

	f.tick(t, 500*time.Millisecond)
	f.queue.Wait()
	testutil.AssertEqual(t, "saved", f.saver.get("alice") != nil, true)
}

func TestManager_Start(t *testing.T) {
	f := newFixture(t)
	f.join(t, "s1", "Alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.mgr.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !f.bus.subscribed() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	testutil.AssertEqual(t, "subscribed", f.bus.subscribed(), true)
	testutil.AssertEqual(t, "subject", f.bus.subjects[0], "server.*")

	f.bus.handler("server.s1", protocol.New(protocol.CLPing, "1").Compile())
	f.tick(t, 50*time.Millisecond)
	_, ok := f.pub.find("s1", protocol.SVPingReply)
	testutil.AssertEqual(t, "inbox wired", ok, true)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	testutil.AssertEqual(t, "saved on shutdown", f.saver.get("alice") != nil, true)
}

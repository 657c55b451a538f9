// Package server runs the simulation: it owns the world, feeds it the
// messages sessions forward, and saves players as they play.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/messaging"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/worker"
)

// DefaultSavePeriod is how often every player in the world is saved.
const DefaultSavePeriod = 30 * time.Second

// Saver persists a player's state under their account key.
type Saver interface {
	SaveState(key string, rec *game.UserRecord) error
}

type inbound struct {
	session string
	msg     protocol.Message
}

// Manager owns the world. Tick runs on the driver goroutine; Join, Leave
// and Do may be called from anywhere.
type Manager struct {
	world *game.World
	bus   messaging.Bus
	saver Saver
	queue *worker.Queue

	savePeriod time.Duration
	untilSave  time.Duration

	// mu guards world and sessions.
	mu       sync.Mutex
	sessions map[string]string

	inboxMu sync.Mutex
	inbox   []inbound
}

type ManagerOpt func(*Manager)

// WithSavePeriod overrides DefaultSavePeriod.
func WithSavePeriod(d time.Duration) ManagerOpt {
	return func(m *Manager) {
		m.savePeriod = d
	}
}

func NewManager(world *game.World, bus messaging.Bus, saver Saver, queue *worker.Queue, opts ...ManagerOpt) *Manager {
	m := &Manager{
		world:      world,
		bus:        bus,
		saver:      saver,
		queue:      queue,
		savePeriod: DefaultSavePeriod,
		sessions:   map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.untilSave = m.savePeriod
	world.OnLeave(m.save)
	return m
}

// Join puts a logged in player into the world. It satisfies player.World.
func (m *Manager) Join(session, name string, rec *game.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.world.AddUser(name, session, rec)
	if err != nil {
		return err
	}
	e.User().Contact(m.world.Now())
	m.sessions[session] = name
	return nil
}

// Leave saves and removes the player on session, if any.
func (m *Manager) Leave(session string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.sessions[session]
	if !ok {
		return
	}
	delete(m.sessions, session)

	if err := m.world.RemoveUser(name); err != nil {
		slog.Warn("removing user", "user", name, "error", err)
	}
}

// Do runs f with exclusive access to the world.
func (m *Manager) Do(f func(w *game.World)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(m.world)
}

// Tick handles everything received since the last tick, advances the world
// by elapsed, then flushes the world's outbox.
func (m *Manager) Tick(ctx context.Context, elapsed time.Duration) error {
	msgs := m.takeInbox()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, in := range msgs {
		m.dispatch(ctx, in)
	}

	m.world.Tick(elapsed)

	m.untilSave -= elapsed
	if m.untilSave <= 0 {
		m.saveAll()
		m.untilSave = m.savePeriod
	}

	m.world.Flush(ctx)
	return nil
}

func (m *Manager) dispatch(ctx context.Context, in inbound) {
	name, ok := m.sessions[in.session]
	if !ok {
		slog.DebugContext(ctx, "message from unknown session", "session", in.session, "code", in.msg.Code)
		return
	}
	e, ok := m.world.User(name)
	if !ok {
		return
	}
	u := e.User()
	u.Contact(m.world.Now())

	h, ok := handlers[in.msg.Code]
	if !ok {
		slog.WarnContext(ctx, "unhandled message", "user", name, "code", in.msg.Code)
		return
	}
	if err := h(m.world, u, in.msg); err != nil {
		m.world.Reject(e, err)
	}
}

func (m *Manager) takeInbox() []inbound {
	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()
	msgs := m.inbox
	m.inbox = nil
	return msgs
}

// receive decodes frames published by a session.
func (m *Manager) receive(session string, data []byte) {
	var p protocol.Parser
	p.Feed(data)
	msgs, errs := p.Drain()
	for _, err := range errs {
		slog.Warn("discarding malformed frame", "session", session, "error", err)
	}

	m.inboxMu.Lock()
	defer m.inboxMu.Unlock()
	for _, msg := range msgs {
		m.inbox = append(m.inbox, inbound{session: session, msg: msg})
	}
}

func accountKey(name string) string {
	return cases.Fold().String(name)
}

// save snapshots u now and writes it on the queue.
func (m *Manager) save(u *game.User) {
	key := accountKey(u.Name())
	rec := u.Snapshot()
	m.queue.Enqueue(func() {
		if err := m.saver.SaveState(key, rec); err != nil {
			slog.Error("saving user", "user", key, "error", err)
		}
	})
}

func (m *Manager) saveAll() {
	for _, e := range m.world.Users() {
		m.save(e.User())
	}
}

type readyWaiter interface {
	WaitReady(ctx context.Context) error
}

// Start subscribes to the inbox and holds the subscription until ctx is
// cancelled. Everyone still in the world is saved before it returns.
func (m *Manager) Start(ctx context.Context) error {
	if r, ok := m.bus.(readyWaiter); ok {
		if err := r.WaitReady(ctx); err != nil {
			return fmt.Errorf("waiting for message bus: %w", err)
		}
	}

	unsub, err := messaging.SubscribeInbox(m.bus, m.receive)
	if err != nil {
		return fmt.Errorf("subscribing to inbox: %w", err)
	}
	defer unsub()

	<-ctx.Done()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.world.Users() {
		u := e.User()
		if err := m.saver.SaveState(accountKey(u.Name()), u.Snapshot()); err != nil {
			slog.Error("saving user on shutdown", "user", u.Name(), "error", err)
		}
	}
	return nil
}

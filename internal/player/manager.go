package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/messaging"
	"github.com/pixil98/go-mmo/internal/socket"
)

const (
	// DefaultClientTimeout is how long a logged in client may stay silent.
	DefaultClientTimeout = 10 * time.Second
	// DefaultLoginTimeout is how long a new connection has to identify.
	DefaultLoginTimeout = 30 * time.Second
)

// World is what sessions need from the game server.
type World interface {
	Join(session, name string, rec *game.UserRecord) error
	Leave(session string)
}

// SessionManager runs every client connection: the login handshake, then
// forwarding frames between the socket and the message bus.
type SessionManager struct {
	accounts *Accounts
	world    World
	bus      messaging.Bus

	clientTimeout time.Duration
	loginTimeout  time.Duration

	mu     sync.Mutex
	online map[string]*Session
	unsubs map[string]func()
}

type SessionManagerOpt func(*SessionManager)

func WithClientTimeout(d time.Duration) SessionManagerOpt {
	return func(m *SessionManager) {
		m.clientTimeout = d
	}
}

func WithLoginTimeout(d time.Duration) SessionManagerOpt {
	return func(m *SessionManager) {
		m.loginTimeout = d
	}
}

func NewSessionManager(accounts *Accounts, world World, bus messaging.Bus, opts ...SessionManagerOpt) *SessionManager {
	m := &SessionManager{
		accounts:      accounts,
		world:         world,
		bus:           bus,
		clientTimeout: DefaultClientTimeout,
		loginTimeout:  DefaultLoginTimeout,
		online:        map[string]*Session{},
		unsubs:        map[string]func(){},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online lists the display names of logged in users.
func (m *SessionManager) Online() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.online))
	for _, s := range m.online {
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}

func (m *SessionManager) isOnline(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.online[key]
	return ok
}

// attach marks the session online and starts copying its outbound frames
// to the socket.
func (m *SessionManager) attach(ctx context.Context, s *Session) error {
	unsub, err := messaging.SubscribeSession(m.bus, s.id, func(data []byte) {
		if _, err := s.sock.Write(data); err != nil && !errors.Is(err, socket.ErrClosed) {
			slog.WarnContext(ctx, "writing to client", "session", s.id, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[s.key] = s
	m.unsubs[s.id] = unsub
	return nil
}

func (m *SessionManager) detach(s *Session) {
	m.mu.Lock()
	unsub := m.unsubs[s.id]
	delete(m.unsubs, s.id)
	if cur, ok := m.online[s.key]; ok && cur == s {
		delete(m.online, s.key)
	}
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// RunSession serves one connection until the client leaves, times out, or
// ctx is cancelled. The socket reference is released on return.
func (m *SessionManager) RunSession(ctx context.Context, sock *socket.Socket) error {
	s := newSession(uuid.NewString(), sock)
	defer func() {
		if err := sock.Close(); err != nil {
			slog.WarnContext(ctx, "closing client socket", "session", s.id, "error", err)
		}
	}()

	// Unblock a pending read when the server shuts down.
	stop := context.AfterFunc(ctx, func() {
		_ = sock.SetReadDeadline(time.Now())
	})
	defer stop()

	slog.DebugContext(ctx, "session started", "session", s.id, "addr", sock.Addr())

	err := m.login(ctx, s)
	if err != nil {
		return quietEnd(err)
	}

	defer func() {
		m.detach(s)
		m.world.Leave(s.id)
		slog.InfoContext(ctx, "user logged out", "session", s.id, "user", s.name)
	}()

	return quietEnd(m.forward(ctx, s))
}

// forward publishes every frame the client sends to the world inbox.
func (m *SessionManager) forward(ctx context.Context, s *Session) error {
	subject := messaging.ServerSubject(s.id)
	for {
		msgs, err := s.next(ctx, m.clientTimeout)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := m.bus.Publish(subject, msg.Compile()); err != nil {
				return fmt.Errorf("forwarding %s: %w", msg.Code, err)
			}
		}
	}
}

// quietEnd drops the errors that are a normal way for a session to end.
func quietEnd(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Start keeps the manager alive as a worker until ctx is cancelled.
// Sessions stop on their own when the same context ends.
func (m *SessionManager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

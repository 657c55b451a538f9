package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/socket"
)

const (
	// DefaultMaxClients is how many game connections may be open at once.
	DefaultMaxClients = 20
	// DefaultRejectLinger is how long a rejected connection stays open so
	// the client can read SV_SERVER_FULL.
	DefaultRejectLinger = 5000 * time.Millisecond
)

// SessionRunner serves one accepted game connection.
type SessionRunner interface {
	RunSession(ctx context.Context, sock *socket.Socket) error
}

// GameListener accepts game clients over TCP.
type GameListener struct {
	addr       string
	registry   *socket.Registry
	sessions   SessionRunner
	maxClients int
	linger     time.Duration

	ready    chan struct{}
	mu       sync.Mutex
	listener net.Listener
}

type GameListenerOpt func(*GameListener)

func WithMaxClients(n int) GameListenerOpt {
	return func(l *GameListener) {
		l.maxClients = n
	}
}

// WithRejectLinger overrides DefaultRejectLinger.
func WithRejectLinger(d time.Duration) GameListenerOpt {
	return func(l *GameListener) {
		l.linger = d
	}
}

func NewGameListener(host string, port uint16, registry *socket.Registry, sessions SessionRunner, opts ...GameListenerOpt) *GameListener {
	l := &GameListener{
		addr:       net.JoinHostPort(host, fmt.Sprint(port)),
		registry:   registry,
		sessions:   sessions,
		maxClients: DefaultMaxClients,
		linger:     DefaultRejectLinger,
		ready:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ready is closed once the listener is accepting connections.
func (l *GameListener) Ready() <-chan struct{} {
	return l.ready
}

// Addr is the bound address, empty before Ready.
func (l *GameListener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return ""
	}
	return l.listener.Addr().String()
}

func (l *GameListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", l.addr)
		}
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	l.mu.Lock()
	l.listener = listener
	l.mu.Unlock()
	close(l.ready)

	slog.InfoContext(ctx, "listening for clients", "addr", listener.Addr().String(), "max_clients", l.maxClients)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting connection", "error", err)
			continue
		}

		sock := l.registry.Wrap(conn, conn.RemoteAddr().String())
		if l.registry.Live() > l.maxClients {
			l.reject(ctx, sock)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.sessions.RunSession(connCtx, sock); err != nil {
				slog.WarnContext(ctx, "client session", "addr", sock.Addr(), "error", err)
			}
		}()
	}
}

// reject tells the client the server is full and closes after a delay.
func (l *GameListener) reject(ctx context.Context, sock *socket.Socket) {
	slog.WarnContext(ctx, "server full, rejecting client", "addr", sock.Addr())
	if err := sock.Send(protocol.New(protocol.SVServerFull)); err != nil {
		slog.WarnContext(ctx, "sending server full", "addr", sock.Addr(), "error", err)
	}
	sock.Linger(l.linger)
	if err := sock.Close(); err != nil {
		slog.WarnContext(ctx, "closing rejected client", "addr", sock.Addr(), "error", err)
	}
}

// Package client is a minimal game client connection, used to drive a
// server from tests and tools.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pixil98/go-mmo/internal/protocol"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrTooSoon      = errors.New("too soon since last connection attempt")
)

// DefaultRetryInterval is the least time between two connection attempts.
const DefaultRetryInterval = 3 * time.Second

type State int

const (
	Initialized State = iota
	Trying
	Connected
	ConnectionError
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Trying:
		return "trying"
	case Connected:
		return "connected"
	case ConnectionError:
		return "connection error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Connection is one client connection to a game server. A failed
// connection stays in ConnectionError until Connect succeeds again.
type Connection struct {
	addr          string
	retryInterval time.Duration
	dialTimeout   time.Duration
	clock         func() time.Time

	mu          sync.Mutex
	state       State
	conn        net.Conn
	lastAttempt time.Time

	parser protocol.Parser
	buf    []byte
}

type ConnectionOpt func(*Connection)

// WithRetryInterval overrides DefaultRetryInterval.
func WithRetryInterval(d time.Duration) ConnectionOpt {
	return func(c *Connection) {
		c.retryInterval = d
	}
}

func WithDialTimeout(d time.Duration) ConnectionOpt {
	return func(c *Connection) {
		c.dialTimeout = d
	}
}

func WithClock(clock func() time.Time) ConnectionOpt {
	return func(c *Connection) {
		c.clock = clock
	}
}

func NewConnection(addr string, opts ...ConnectionOpt) *Connection {
	c := &Connection{
		addr:          addr,
		retryInterval: DefaultRetryInterval,
		dialTimeout:   5 * time.Second,
		clock:         time.Now,
		buf:           make([]byte, protocol.BufferSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the server unless already connected. Attempts closer
// together than the retry interval fail with ErrTooSoon. A new connection
// pings the server straight away.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Connected {
		c.mu.Unlock()
		return nil
	}
	now := c.clock()
	if !c.lastAttempt.IsZero() && now.Sub(c.lastAttempt) < c.retryInterval {
		c.mu.Unlock()
		return ErrTooSoon
	}
	c.lastAttempt = now
	c.state = Trying
	c.mu.Unlock()

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = ConnectionError
		slog.WarnContext(ctx, "connecting to server", "addr", c.addr, "error", err)
		return fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	c.conn = conn
	c.state = Connected
	c.parser = protocol.Parser{}

	return c.sendLocked(protocol.New(protocol.CLPing, now.UnixMilli()))
}

// Login sends CL_I_AM for name with this build's protocol version.
func (c *Connection) Login(name, password string) error {
	return c.Send(protocol.New(protocol.CLIAm, name, password, protocol.Version))
}

// Send writes one message. A failed write is logged and moves the
// connection to ConnectionError.
func (c *Connection) Send(m protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return ErrNotConnected
	}
	return c.sendLocked(m)
}

func (c *Connection) sendLocked(m protocol.Message) error {
	if _, err := c.conn.Write(m.Compile()); err != nil {
		slog.Warn("sending to server", "addr", c.addr, "code", m.Code, "error", err)
		c.failLocked()
		return fmt.Errorf("sending %s: %w", m.Code, err)
	}
	return nil
}

// Poll waits up to timeout for data and returns every complete message
// received. Nothing arriving in time is not an error.
func (c *Connection) Poll(timeout time.Duration) ([]protocol.Message, error) {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := c.conn
	c.mu.Unlock()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}
	n, err := conn.Read(c.buf)
	if n > 0 {
		c.parser.Feed(c.buf[:n])
	}
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		c.mu.Lock()
		c.failLocked()
		c.mu.Unlock()
		return nil, fmt.Errorf("reading from server: %w", err)
	}

	msgs, errs := c.parser.Drain()
	for _, e := range errs {
		slog.Warn("discarding malformed frame from server", "addr", c.addr, "error", e)
	}
	return msgs, nil
}

// Await polls until a message with code arrives or timeout passes. Other
// messages are dropped.
func (c *Connection) Await(code protocol.Code, timeout time.Duration) (protocol.Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return protocol.Message{}, fmt.Errorf("waiting for %s: %w", code, os.ErrDeadlineExceeded)
		}
		msgs, err := c.Poll(min(left, 100*time.Millisecond))
		if err != nil {
			return protocol.Message{}, err
		}
		for _, m := range msgs {
			if m.Code == code {
				return m, nil
			}
		}
	}
}

// Close drops the connection and returns to Initialized.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		c.state = Initialized
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = Initialized
	return err
}

func (c *Connection) failLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = ConnectionError
}

package socket

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-mmo/internal/protocol"
)

var ErrClosed = errors.New("socket closed")

// DefaultWriteTimeout bounds a single send on connections that support
// deadlines.
const DefaultWriteTimeout = 5 * time.Second

// Registry tracks every live connection handle. The first handle registered
// runs the init hook and the last one to be physically closed runs the
// teardown hook.
type Registry struct {
	mu          sync.Mutex
	live        int
	initialized bool
	onInit      func()
	onTeardown  func()

	// sendMu serialises writes across all sockets.
	sendMu       sync.Mutex
	writeTimeout time.Duration
}

type RegistryOpt func(*Registry)

// WithInit sets a hook run when the first socket is registered.
func WithInit(f func()) RegistryOpt {
	return func(r *Registry) {
		r.onInit = f
	}
}

// WithTeardown sets a hook run after the last socket is physically closed.
func WithTeardown(f func()) RegistryOpt {
	return func(r *Registry) {
		r.onTeardown = f
	}
}

// WithWriteTimeout overrides DefaultWriteTimeout.
func WithWriteTimeout(d time.Duration) RegistryOpt {
	return func(r *Registry) {
		r.writeTimeout = d
	}
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Live is the number of handles not yet physically closed.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

func (r *Registry) register() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live == 0 && !r.initialized {
		r.initialized = true
		if r.onInit != nil {
			r.onInit()
		}
	}
	r.live++
}

func (r *Registry) unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live--
	if r.live == 0 && r.initialized {
		r.initialized = false
		if r.onTeardown != nil {
			r.onTeardown()
		}
	}
}

// handle is the shared state behind every copy of a Socket.
type handle struct {
	conn   io.ReadWriteCloser
	addr   string
	refs   int
	linger time.Duration
	closed bool
}

// Socket is one reference to a connection. Copies made with Clone share the
// connection; it is closed once every copy has been closed.
type Socket struct {
	reg      *Registry
	h        *handle
	released bool
}

// Wrap registers conn and returns its first reference.
func (r *Registry) Wrap(conn io.ReadWriteCloser, addr string) *Socket {
	r.register()
	return &Socket{
		reg: r,
		h:   &handle{conn: conn, addr: addr, refs: 1},
	}
}

// Clone returns a new reference to the same connection.
func (s *Socket) Clone() *Socket {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.h.refs++
	return &Socket{reg: s.reg, h: s.h}
}

// Linger defers the physical close by d once the last reference goes.
func (s *Socket) Linger(d time.Duration) {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.h.linger = d
}

// Refs is the number of open references to the connection.
func (s *Socket) Refs() int {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.h.refs
}

func (s *Socket) Addr() string {
	return s.h.addr
}

// Close releases this reference. Closing the same reference twice is a
// no-op. When the last reference is released the connection is closed,
// after the linger delay if one was set.
func (s *Socket) Close() error {
	s.reg.mu.Lock()
	if s.released {
		s.reg.mu.Unlock()
		return nil
	}
	s.released = true
	s.h.refs--
	if s.h.refs > 0 || s.h.closed {
		s.reg.mu.Unlock()
		return nil
	}
	s.h.closed = true
	linger := s.h.linger
	s.reg.mu.Unlock()

	if linger > 0 {
		time.AfterFunc(linger, func() {
			if err := s.closeConn(); err != nil {
				slog.Warn("closing lingering socket", "addr", s.h.addr, "error", err)
			}
		})
		return nil
	}
	return s.closeConn()
}

func (s *Socket) closeConn() error {
	defer s.reg.unregister()
	err := s.h.conn.Close()
	if err != nil {
		return fmt.Errorf("closing %s: %w", s.h.addr, err)
	}
	return nil
}

func (s *Socket) isClosed() bool {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.released || s.h.closed
}

// Read reads from the connection.
func (s *Socket) Read(p []byte) (int, error) {
	return s.h.conn.Read(p)
}

// SetReadDeadline bounds the next Read on connections that support
// deadlines. It is a no-op otherwise.
func (s *Socket) SetReadDeadline(t time.Time) error {
	if dc, ok := s.h.conn.(interface{ SetReadDeadline(time.Time) error }); ok {
		return dc.SetReadDeadline(t)
	}
	return nil
}

// Write writes raw bytes under the registry's send lock.
func (s *Socket) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}

	s.reg.sendMu.Lock()
	defer s.reg.sendMu.Unlock()

	if dc, ok := s.h.conn.(interface{ SetWriteDeadline(time.Time) error }); ok && s.reg.writeTimeout > 0 {
		_ = dc.SetWriteDeadline(time.Now().Add(s.reg.writeTimeout))
	}
	return s.h.conn.Write(p)
}

// Send compiles and writes a message. Frames longer than
// protocol.BufferSize are still sent but logged, since the peer may not
// read them in one piece.
func (s *Socket) Send(m protocol.Message) error {
	frame := m.Compile()
	if len(frame) > protocol.BufferSize {
		slog.Warn("oversized frame", "addr", s.h.addr, "code", m.Code, "bytes", len(frame))
	}
	_, err := s.Write(frame)
	if err != nil {
		return fmt.Errorf("sending %s to %s: %w", m.Code, s.h.addr, err)
	}
	return nil
}

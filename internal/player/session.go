package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/socket"
)

var ErrTimedOut = errors.New("client timed out")

// Session is one connected client.
type Session struct {
	id   string
	name string
	key  string
	sock *socket.Socket

	parser  protocol.Parser
	buf     []byte
	pending []protocol.Message
}

func newSession(id string, sock *socket.Socket) *Session {
	return &Session{
		id:   id,
		sock: sock,
		buf:  make([]byte, protocol.BufferSize),
	}
}

func (s *Session) Id() string {
	return s.id
}

// Name is the display name once logged in, empty before.
func (s *Session) Name() string {
	return s.name
}

func (s *Session) Addr() string {
	return s.sock.Addr()
}

func (s *Session) send(ctx context.Context, m protocol.Message) {
	if err := s.sock.Send(m); err != nil {
		slog.WarnContext(ctx, "sending to client", "session", s.id, "error", err)
	}
}

// next returns buffered messages, reading from the socket when there are
// none. A read that takes longer than timeout fails with ErrTimedOut.
func (s *Session) next(ctx context.Context, timeout time.Duration) ([]protocol.Message, error) {
	if len(s.pending) > 0 {
		msgs := s.pending
		s.pending = nil
		return msgs, nil
	}

	if err := s.sock.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}
	n, err := s.sock.Read(s.buf)
	if n > 0 {
		s.parser.Feed(s.buf[:n])
	}
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, os.ErrDeadlineExceeded):
			return nil, ErrTimedOut
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		default:
			return nil, fmt.Errorf("reading from client: %w", err)
		}
	}

	msgs, errs := s.parser.Drain()
	for _, e := range errs {
		slog.WarnContext(ctx, "discarding malformed frame", "session", s.id, "error", e)
	}
	return msgs, nil
}

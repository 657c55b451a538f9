package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/protocol"
)

// login waits for a successful CL_I_AM. Failed attempts are answered and
// the client may try again until the login timeout passes without a
// message.
func (m *SessionManager) login(ctx context.Context, s *Session) error {
	for {
		msgs, err := s.next(ctx, m.loginTimeout)
		if err != nil {
			return err
		}

		for i, msg := range msgs {
			switch msg.Code {
			case protocol.CLPing:
				s.send(ctx, msg.Echo(protocol.SVPingReply))
				continue
			case protocol.CLIAm:
			default:
				slog.DebugContext(ctx, "ignoring message before login", "session", s.id, "code", msg.Code)
				continue
			}

			ok, err := m.identify(ctx, s, msg)
			if err != nil {
				return err
			}
			if ok {
				s.pending = msgs[i+1:]
				return nil
			}
		}
	}
}

// identify handles one CL_I_AM name password version. It reports whether
// the session is now in the world.
func (m *SessionManager) identify(ctx context.Context, s *Session, msg protocol.Message) (bool, error) {
	version, _ := msg.Str(2)
	if version != protocol.Version {
		s.send(ctx, protocol.New(protocol.SVWrongVersion, protocol.Version))
		return false, nil
	}

	raw, _ := msg.Str(0)
	display, key, err := NormalizeName(raw)
	if err != nil {
		s.send(ctx, protocol.New(protocol.SVInvalidUsername))
		return false, nil
	}

	if m.isOnline(key) {
		s.send(ctx, protocol.New(protocol.SVDuplicateUsername))
		return false, nil
	}

	password, _ := msg.Str(1)
	acct, created, err := m.accounts.Login(display, key, password)
	if errors.Is(err, ErrWrongPassword) {
		s.send(ctx, protocol.New(protocol.SVWrongPassword))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("logging in %s: %w", key, err)
	}

	s.name = acct.Name
	s.key = key

	if err := m.attach(ctx, s); err != nil {
		return false, err
	}

	err = m.world.Join(s.id, s.name, acct.State)
	if errors.Is(err, game.ErrUserExists) {
		m.detach(s)
		s.name, s.key = "", ""
		s.send(ctx, protocol.New(protocol.SVDuplicateUsername))
		return false, nil
	}
	if err != nil {
		m.detach(s)
		return false, fmt.Errorf("joining world: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "session", s.id, "user", s.name, "new", created, "addr", s.Addr())
	return true, nil
}

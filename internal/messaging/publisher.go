package messaging

import (
	"errors"
	"strings"
)

var ErrNotStarted = errors.New("nats server not started")

const (
	clientPrefix = "client."
	serverPrefix = "server."
)

// ClientSubject carries frames from the world to one session.
func ClientSubject(session string) string {
	return clientPrefix + session
}

// ServerSubject carries frames from one session to the world.
func ServerSubject(session string) string {
	return serverPrefix + session
}

// SessionFromSubject returns the session id of a client or server subject.
func SessionFromSubject(subject string) (string, bool) {
	for _, prefix := range []string{clientPrefix, serverPrefix} {
		if s, ok := strings.CutPrefix(subject, prefix); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Bus is the subset of NatsServer sessions and the world talk through.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

// SessionPublisher delivers world output to session subjects.
type SessionPublisher struct {
	bus Bus
}

func NewSessionPublisher(bus Bus) *SessionPublisher {
	return &SessionPublisher{bus: bus}
}

func (p *SessionPublisher) Publish(session string, data []byte) error {
	return p.bus.Publish(ClientSubject(session), data)
}

// SubscribeSession calls handler with every frame published to session.
func SubscribeSession(bus Bus, session string, handler func(data []byte)) (func(), error) {
	return bus.Subscribe(ClientSubject(session), func(_ string, data []byte) {
		handler(data)
	})
}

// SubscribeInbox calls handler with every frame any session sends to the
// world, along with the sending session.
func SubscribeInbox(bus Bus, handler func(session string, data []byte)) (func(), error) {
	return bus.Subscribe(serverPrefix+"*", func(subject string, data []byte) {
		if session, ok := SessionFromSubject(subject); ok {
			handler(session, data)
		}
	})
}

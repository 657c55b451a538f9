package player

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/socket"
	"github.com/pixil98/go-mmo/internal/storage"
)

// memBus delivers publishes synchronously to matching subscriptions. A
// subject ending in ".*" matches any single trailing token.
type memBus struct {
	mu   sync.Mutex
	subs map[int]memSub
	next int
}

type memSub struct {
	subject string
	handler func(string, []byte)
}

func newMemBus() *memBus {
	return &memBus{subs: map[int]memSub{}}
}

func (b *memBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	var matched []func(string, []byte)
	for _, s := range b.subs {
		if s.subject == subject || (strings.HasSuffix(s.subject, ".*") && strings.HasPrefix(subject, strings.TrimSuffix(s.subject, "*"))) {
			matched = append(matched, s.handler)
		}
	}
	b.mu.Unlock()
	for _, h := range matched {
		h(subject, data)
	}
	return nil
}

func (b *memBus) Subscribe(subject string, handler func(string, []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = memSub{subject: subject, handler: handler}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}, nil
}

type fakeWorld struct {
	mu     sync.Mutex
	taken  map[string]bool
	joined map[string]string
	left   []string
}

func newFakeWorld(taken ...string) *fakeWorld {
	w := &fakeWorld{taken: map[string]bool{}, joined: map[string]string{}}
	for _, name := range taken {
		w.taken[name] = true
	}
	return w
}

func (w *fakeWorld) Join(session, name string, _ *game.UserRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.taken[name] {
		return game.ErrUserExists
	}
	w.joined[session] = name
	return nil
}

func (w *fakeWorld) Leave(session string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.left = append(w.left, session)
}

func (w *fakeWorld) sessionOf(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for s, n := range w.joined {
		if n == name {
			return s
		}
	}
	return ""
}

func (w *fakeWorld) leftCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.left)
}

func newTestAccounts(t *testing.T) *Accounts {
	t.Helper()
	store, err := storage.NewFileStore[*Account](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewAccounts(store, WithHashCost(bcrypt.MinCost))
}

// testClient is the far end of a session's connection.
type testClient struct {
	conn net.Conn
	msgs chan protocol.Message
}

func (c *testClient) send(t *testing.T, m protocol.Message) {
	t.Helper()
	if _, err := c.conn.Write(m.Compile()); err != nil {
		t.Fatalf("client write: %v", err)
	}
}

func (c *testClient) expect(t *testing.T, code protocol.Code) protocol.Message {
	t.Helper()
	for {
		select {
		case m, ok := <-c.msgs:
			if !ok {
				t.Fatalf("connection closed waiting for %s", code)
			}
			if m.Code == code {
				return m
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", code)
		}
	}
}

// startSession runs a session over an in-memory pipe. The returned channel
// yields RunSession's result.
func startSession(t *testing.T, m *SessionManager) (*testClient, <-chan error) {
	t.Helper()
	server, client := net.Pipe()
	reg := socket.NewRegistry()
	sock := reg.Wrap(server, "pipe")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.RunSession(ctx, sock) }()

	c := &testClient{conn: client, msgs: make(chan protocol.Message, 32)}
	go func() {
		defer close(c.msgs)
		var p protocol.Parser
		buf := make([]byte, protocol.BufferSize)
		for {
			n, err := client.Read(buf)
			if n > 0 {
				p.Feed(buf[:n])
				msgs, _ := p.Drain()
				for _, msg := range msgs {
					c.msgs <- msg
				}
			}
			if err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		_ = client.Close()
	})
	return c, done
}

func iAm(name, password, version string) protocol.Message {
	return protocol.New(protocol.CLIAm, name, password, version)
}

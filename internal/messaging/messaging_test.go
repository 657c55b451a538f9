package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestSessionFromSubject(t *testing.T) {
	tests := map[string]struct {
		subject string
		exp     string
		expOk   bool
	}{
		"client subject": {subject: ClientSubject("abc-123"), exp: "abc-123", expOk: true},
		"server subject": {subject: ServerSubject("abc-123"), exp: "abc-123", expOk: true},
		"empty session":  {subject: "client."},
		"other subject":  {subject: "player-bob"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := SessionFromSubject(tt.subject)
			testutil.AssertEqual(t, "session", got, tt.exp)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
		})
	}
}

func startServer(t *testing.T) *NatsServer {
	t.Helper()
	s, err := NewNatsServer(WithPort(RandomPort))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := s.WaitReady(waitCtx); err != nil {
		t.Fatalf("server not ready: %v", err)
	}
	return s
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithPort(RandomPort))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertErrorContains(t, s.Publish("client.x", nil), "not started")
	_, err = s.Subscribe("client.x", func(string, []byte) {})
	testutil.AssertErrorContains(t, err, "not started")
}

func TestSessionPublisher(t *testing.T) {
	s := startServer(t)

	got := make(chan string, 4)
	unsub, err := SubscribeSession(s, "alice", func(data []byte) { got <- string(data) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	pub := NewSessionPublisher(s)
	if err := pub.Publish("bob", []byte("not for alice")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pub.Publish("alice", []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "frame", receive(t, got), "hello")
}

func TestSubscribeInbox(t *testing.T) {
	s := startServer(t)

	got := make(chan string, 4)
	unsub, err := SubscribeInbox(s, func(session string, data []byte) { got <- session + ":" + string(data) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	if err := s.Publish(ServerSubject("s1"), []byte("ping")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "inbox", receive(t, got), "s1:ping")
}

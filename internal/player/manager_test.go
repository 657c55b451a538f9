package player

import (
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/messaging"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-testutil"
)

func TestSessionManager_Handshake(t *testing.T) {
	tests := map[string]struct {
		existing string
		taken    []string
		msg      protocol.Message
		expCode  protocol.Code
	}{
		"wrong version": {
			msg:     iAm("alice", "pw", "0.9"),
			expCode: protocol.SVWrongVersion,
		},
		"invalid name": {
			msg:     iAm("al1ce", "pw", protocol.Version),
			expCode: protocol.SVInvalidUsername,
		},
		"wrong password": {
			existing: "other",
			msg:      iAm("alice", "pw", protocol.Version),
			expCode:  protocol.SVWrongPassword,
		},
		"already in world": {
			taken:   []string{"Alice"},
			msg:     iAm("alice", "pw", protocol.Version),
			expCode: protocol.SVDuplicateUsername,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			accts := newTestAccounts(t)
			if tt.existing != "" {
				if _, _, err := accts.Login("Alice", "alice", tt.existing); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			world := newFakeWorld(tt.taken...)
			m := NewSessionManager(accts, world, newMemBus())

			c, _ := startSession(t, m)
			c.send(t, tt.msg)
			c.expect(t, tt.expCode)

			// The client may retry after a failed attempt.
			c.send(t, protocol.New(protocol.CLPing, "7"))
			reply := c.expect(t, protocol.SVPingReply)
			testutil.AssertEqual(t, "ping arg", reply.Args[0], "7")
			testutil.AssertEqual(t, "online", len(m.Online()), 0)
		})
	}
}

func TestSessionManager_Forwarding(t *testing.T) {
	bus := newMemBus()
	world := newFakeWorld()
	m := NewSessionManager(newTestAccounts(t), world, bus)

	inbox := make(chan protocol.Message, 4)
	unsub, err := messaging.SubscribeInbox(bus, func(session string, data []byte) {
		var p protocol.Parser
		p.Feed(data)
		msgs, _ := p.Drain()
		for _, msg := range msgs {
			inbox <- msg
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	c, done := startSession(t, m)
	c.send(t, iAm("alice", "pw", protocol.Version))

	var session string
	deadline := time.Now().Add(2 * time.Second)
	for session == "" && time.Now().Before(deadline) {
		session = world.sessionOf("Alice")
		time.Sleep(5 * time.Millisecond)
	}
	if session == "" {
		t.Fatal("user never joined")
	}
	testutil.AssertEqual(t, "online", len(m.Online()), 1)

	c.send(t, protocol.New(protocol.CLSay, "hello"))
	select {
	case msg := <-inbox:
		testutil.AssertEqual(t, "code", msg.Code, protocol.CLSay)
		testutil.AssertEqual(t, "text", msg.Args[0], "hello")
	case <-time.After(2 * time.Second):
		t.Fatal("message was not forwarded")
	}

	pub := messaging.NewSessionPublisher(bus)
	if err := pub.Publish(session, protocol.New(protocol.SVSay, "Bob", "hi").Compile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	said := c.expect(t, protocol.SVSay)
	testutil.AssertEqual(t, "speaker", said.Args[0], "Bob")

	_ = c.conn.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
	testutil.AssertEqual(t, "left", world.leftCount(), 1)
	testutil.AssertEqual(t, "offline", len(m.Online()), 0)
}

func TestSessionManager_ClientTimeout(t *testing.T) {
	world := newFakeWorld()
	m := NewSessionManager(newTestAccounts(t), world, newMemBus(), WithClientTimeout(50*time.Millisecond))

	c, done := startSession(t, m)
	c.send(t, iAm("alice", "pw", protocol.Version))

	select {
	case err := <-done:
		testutil.AssertErrorContains(t, err, "timed out")
	case <-time.After(2 * time.Second):
		t.Fatal("session did not time out")
	}
	testutil.AssertEqual(t, "left", world.leftCount(), 1)
}

func TestSessionManager_LoginTimeout(t *testing.T) {
	world := newFakeWorld()
	m := NewSessionManager(newTestAccounts(t), world, newMemBus(), WithLoginTimeout(50*time.Millisecond))

	_, done := startSession(t, m)
	select {
	case err := <-done:
		testutil.AssertErrorContains(t, err, "timed out")
	case <-time.After(2 * time.Second):
		t.Fatal("login did not time out")
	}
	testutil.AssertEqual(t, "never joined", world.leftCount(), 0)
}

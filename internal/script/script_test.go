package script

import (
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-testutil"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) error { return nil }

func setup(t *testing.T, src string, opts ...RunnerOpt) (*game.Entity, *game.Entity, *item.Item) {
	t.Helper()
	reg := game.NewRegistry()
	apple := &item.Item{ID: "apple", Name: "apple", StackSize: 5}
	reg.Items[apple.ID] = apple
	shrine := &game.EntityType{
		ID:     "shrine",
		Name:   "Shrine",
		Kind:   game.KindObject,
		Action: &game.ObjectAction{Label: "Pray", Script: src},
	}
	reg.EntityTypes[shrine.ID] = shrine

	w := game.NewWorld(reg, nopPublisher{}, game.WithScripts(NewRunner(opts...)))
	u, err := w.AddUser("alice", "s1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := w.AddObject(shrine, game.Point{5, 0}, "bob")
	return u, obj, apple
}

func TestRunner_RunAction(t *testing.T) {
	tests := map[string]struct {
		src       string
		arg       string
		expApples uint
		expErr    string
	}{
		"gives items": {
			src:       `give("apple", 2)`,
			expApples: 2,
		},
		"default quantity": {
			src:       `give("apple")`,
			expApples: 1,
		},
		"reads globals": {
			src:       `if object.type == "shrine" and object.owner == "bob" and performer.name == "alice" then give("apple", 3) end`,
			expApples: 3,
		},
		"uses arg": {
			src:       `give("apple", tonumber(arg))`,
			arg:       "4",
			expApples: 4,
		},
		"failed give reports": {
			src:    `local ok, msg = give("pear", 1) if not ok then error(msg) end`,
			expErr: "rejected",
		},
		"dofile removed": {
			src:    `dofile("/etc/passwd")`,
			expErr: "running script",
		},
		"os not loaded": {
			src:    `os.exit(1)`,
			expErr: "running script",
		},
		"syntax error": {
			src:    `give(`,
			expErr: "running script",
		},
		"negative quantity": {
			src:    `give("apple", -1)`,
			expErr: "must not be negative",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			u, obj, apple := setup(t, tt.src)
			err := u.User().PerformObjectAction(obj.Serial(), tt.arg)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "apples", u.User().Inventory().Count(apple), tt.expApples)
		})
	}
}

func TestRunner_Timeout(t *testing.T) {
	u, obj, _ := setup(t, `while true do end`, WithTimeout(20*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- u.User().PerformObjectAction(obj.Serial(), "") }()

	select {
	case err := <-done:
		testutil.AssertErrorContains(t, err, "running script")
	case <-time.After(2 * time.Second):
		t.Fatal("script was not stopped")
	}
}

func TestRunner_NoPerformer(t *testing.T) {
	_, obj, _ := setup(t, `give("apple")`)
	err := NewRunner().RunAction(`give("apple")`, &game.ActionCall{Object: obj})
	testutil.AssertErrorContains(t, err, "no performing player")
}

package game

import (
	"context"
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
)

// fixedRNG always hits and always lands on the mean.
type fixedRNG struct {
	f float64
	n int
}

func (r fixedRNG) Float64() float64     { return r.f }
func (r fixedRNG) IntN(n int) int       { return min(r.n, n-1) }
func (r fixedRNG) NormFloat64() float64 { return 0 }

type recorder struct {
	sent map[string][]protocol.Message
}

func newRecorder() *recorder {
	return &recorder{sent: map[string][]protocol.Message{}}
}

func (r *recorder) Publish(session string, data []byte) error {
	var p protocol.Parser
	p.Feed(data)
	msgs, _ := p.Drain()
	r.sent[session] = append(r.sent[session], msgs...)
	return nil
}

func (r *recorder) codes(session string) []protocol.Code {
	var out []protocol.Code
	for _, m := range r.sent[session] {
		out = append(out, m.Code)
	}
	return out
}

func (r *recorder) has(session string, code protocol.Code) bool {
	for _, m := range r.sent[session] {
		if m.Code == code {
			return true
		}
	}
	return false
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	reg   *Registry
	world *World
	pub   *recorder
	clock *clock

	wood, stone, axe *item.Item
	tree, stump      *EntityType
	wolf             *EntityType
	wall             *EntityType
}

func newFixture(opts ...WorldOpt) *fixture {
	reg := NewRegistry()
	reg.UserType.Collision = Rect{W: 10, H: 10}
	reg.UserType.Stats = stats.Stats{MaxHealth: 100, MaxEnergy: 50, Attack: 10, AttackTime: time.Second, Speed: 100}

	f := &fixture{
		reg:   reg,
		pub:   newRecorder(),
		clock: &clock{now: time.Unix(1000, 0)},
		wood:  &item.Item{ID: "wood", Name: "wood", Classes: []string{"fuel"}, StackSize: 10},
		stone: &item.Item{ID: "stone", Name: "stone", StackSize: 10},
		axe:   &item.Item{ID: "axe", Name: "axe", Classes: []string{"woodcutting"}, StackSize: 1},
	}
	for _, it := range []*item.Item{f.wood, f.stone, f.axe} {
		reg.Items[it.ID] = it
	}

	f.stump = &EntityType{ID: "stump", Name: "stump", Kind: KindObject, Stats: stats.Stats{MaxHealth: 1}}
	yield := &Yield{}
	yield.Add(YieldEntry{Item: f.wood, InitMean: 3, GatherMean: 1})
	f.tree = &EntityType{
		ID:         "tree",
		Name:       "tree",
		Kind:       KindObject,
		Collision:  Rect{W: 10, H: 10},
		Collides:   true,
		Stats:      stats.Stats{MaxHealth: 1},
		Yield:      yield,
		GatherTime: time.Second,
		GatherTool: "woodcutting",
		Transform:  &TransformSpec{Into: f.stump, Delay: 2 * time.Second, MustBeGathered: true},
	}

	loot := &LootTable{}
	loot.AddSimple(f.stone, 1)
	f.wolf = &EntityType{
		ID:         "wolf",
		Name:       "wolf",
		Kind:       KindNPC,
		Collision:  Rect{W: 10, H: 10},
		Stats:      stats.Stats{MaxHealth: 20, Attack: 5, AttackTime: time.Second},
		Loot:       loot,
		CorpseTime: 3 * time.Second,
	}

	f.wall = &EntityType{
		ID:               "wall",
		Name:             "wall",
		Kind:             KindObject,
		Collision:        Rect{W: 10, H: 10},
		Collides:         true,
		Stats:            stats.Stats{MaxHealth: 1},
		Materials:        item.NewItemSet(map[*item.Item]uint{f.stone: 2}),
		ConstructionTime: time.Second,
	}
	for _, t := range []*EntityType{f.tree, f.stump, f.wolf, f.wall} {
		reg.EntityTypes[t.ID] = t
	}

	opts = append([]WorldOpt{WithRNG(fixedRNG{f: 0.99}), WithClock(f.clock.Now)}, opts...)
	f.world = NewWorld(reg, f.pub, opts...)
	return f
}

func (f *fixture) addUser(name string) *Entity {
	e, err := f.world.AddUser(name, name+"-session", nil)
	if err != nil {
		panic(err)
	}
	return e
}

// flush publishes queued messages and returns what the user received.
func (f *fixture) flush(e *Entity) []protocol.Code {
	f.world.Flush(context.Background())
	return f.pub.codes(e.user.session)
}

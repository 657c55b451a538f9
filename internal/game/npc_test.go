package game

import (
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/stats"
	"github.com/pixil98/go-testutil"
)

func TestThreatTable_Target(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	carol := f.addUser("carol")

	tests := map[string]struct {
		ops func(tt *ThreatTable)
		exp *Entity
	}{
		"empty": {
			ops: func(tt *ThreatTable) {},
		},
		"aware only": {
			ops: func(tt *ThreatTable) { tt.MakeAwareOf(bob) },
			exp: bob,
		},
		"most threat": {
			ops: func(tt *ThreatTable) { tt.Add(alice, 5); tt.Add(bob, 8) },
			exp: bob,
		},
		"threat accumulates": {
			ops: func(tt *ThreatTable) { tt.Add(alice, 5); tt.Add(bob, 8); tt.Add(alice, 4) },
			exp: alice,
		},
		"ties go to the oldest": {
			ops: func(tt *ThreatTable) { tt.Add(carol, 3); tt.Add(bob, 3) },
			exp: bob,
		},
		"aware keeps threat": {
			ops: func(tt *ThreatTable) { tt.Add(carol, 3); tt.MakeAwareOf(carol); tt.Add(bob, 2) },
			exp: carol,
		},
		"forgotten": {
			ops: func(tt *ThreatTable) { tt.Add(alice, 9); tt.Add(bob, 1); tt.Forget(alice) },
			exp: bob,
		},
		"cleared": {
			ops: func(tt *ThreatTable) { tt.Add(alice, 9); tt.Clear() },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var table ThreatTable
			tt.ops(&table)
			testutil.AssertEqual(t, "target", table.Target() == tt.exp, true)
		})
	}
}

func TestNPC_TopThreatIsTarget(t *testing.T) {
	f := newFixture()
	w := f.world
	alice := f.addUser("alice")
	bob := f.addUser("bob")
	alice.loc = Point{0, 0}
	bob.loc = Point{0, 20}
	wolf := w.AddNPC(f.wolf, Point{15, 0})

	if err := alice.User().TargetEntity(wolf.Serial()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Tick(time.Second)
	testutil.AssertEqual(t, "attacker targeted", wolf.Target() == alice, true)
	testutil.AssertEqual(t, "threat is damage", wolf.NPC().Threat().Threat(alice), uint32(10))

	wolf.NPC().Threat().Add(bob, 50)
	w.Tick(time.Millisecond)
	testutil.AssertEqual(t, "switched", wolf.Target() == bob, true)

	bob.ReduceHealth(1000)
	testutil.AssertEqual(t, "dead forgotten", wolf.NPC().Threat().IsAwareOf(bob), false)
	w.Tick(time.Millisecond)
	testutil.AssertEqual(t, "back to alice", wolf.Target() == alice, true)

	wolf.ReduceHealth(1000)
	testutil.AssertEqual(t, "corpse has no threat", wolf.NPC().Threat().Len(), 0)
}

func TestNPC_Chase(t *testing.T) {
	f := newFixture()
	w := f.world
	hound := *f.wolf
	hound.AggroRange = 150
	hound.Stats = stats.Stats{MaxHealth: 20, Attack: 5, AttackTime: time.Second, Speed: 50}

	u := f.addUser("alice")
	u.loc = Point{0, 0}
	npc := w.AddNPC(&hound, Point{100, 0})

	w.Tick(time.Second)
	testutil.AssertEqual(t, "noticed", npc.Target() == u, true)
	testutil.AssertEqual(t, "first step waits", npc.Location().X(), 100.0)

	f.clock.advance(time.Second)
	w.Tick(time.Second)
	testutil.AssertEqual(t, "closing in", npc.Location().X(), 50.0)
	testutil.AssertEqual(t, "out of reach", u.Health(), uint32(100))

	f.clock.advance(time.Second)
	w.Tick(time.Second)
	testutil.AssertEqual(t, "stops in melee range", npc.Location().X(), 16.0)
	testutil.AssertEqual(t, "attacks", u.Health(), uint32(95))
}

func TestNPC_GiveUp(t *testing.T) {
	tests := map[string]struct {
		userAt Point
		npcAt  Point
	}{
		"target fled":  {userAt: Point{1000, 0}, npcAt: Point{50, 0}},
		"strayed home": {userAt: Point{790, 0}, npcAt: Point{800, 0}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			w := f.world
			hound := *f.wolf
			hound.Stats = stats.Stats{MaxHealth: 20, Attack: 5, AttackTime: time.Second, Speed: 50}

			u := f.addUser("alice")
			u.loc = Point{0, 0}
			npc := w.AddNPC(&hound, Point{100, 0})
			npc.SetTarget(u)
			npc.ReduceHealth(5)

			u.loc = tt.userAt
			npc.loc = tt.npcAt
			w.Tick(time.Second)

			testutil.AssertEqual(t, "target dropped", npc.Target() == nil, true)
			testutil.AssertEqual(t, "threat cleared", npc.NPC().Threat().Len(), 0)
			testutil.AssertEqual(t, "home", npc.Location(), Point{100, 0})
			testutil.AssertEqual(t, "healed", npc.Health(), uint32(20))
		})
	}
}

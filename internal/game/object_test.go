package game

import (
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-testutil"
)

func codeOf(err error) protocol.Code {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code
	}
	return -1
}

func TestObject_ChooseGatherItem(t *testing.T) {
	tests := map[string]struct {
		n   int
		exp string
	}{
		"first unit":   {n: 0, exp: "stone"},
		"second unit":  {n: 1, exp: "wood"},
		"last unit":    {n: 3, exp: "wood"},
		"out of range": {n: 10, exp: "wood"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			tree := f.world.AddObject(f.tree, Point{100, 100}, "")
			o := tree.Object()
			o.contents = item.NewItemSet(map[*item.Item]uint{f.wood: 3, f.stone: 1})

			got := o.ChooseGatherItem(fixedRNG{n: tt.n})
			testutil.AssertEqual(t, "item", got.ID, tt.exp)
		})
	}
}

func TestObject_ChooseGatherQuantity(t *testing.T) {
	f := newFixture()
	y := &Yield{}
	y.Add(YieldEntry{Item: f.wood, InitMean: 2, GatherMean: 5})
	rich := *f.tree
	rich.Yield = y

	o := f.world.AddObject(&rich, Point{100, 100}, "").Object()
	testutil.AssertEqual(t, "stock", o.Contents().Quantity(f.wood), uint(2))
	testutil.AssertEqual(t, "capped at stock", o.ChooseGatherQuantity(f.wood, fixedRNG{}), uint(2))
}

func TestObject_ContentsIsCopy(t *testing.T) {
	f := newFixture()
	y := &Yield{}
	y.Add(YieldEntry{Item: f.wood, InitMean: 3, GatherMean: 1})
	rich := *f.tree
	rich.Yield = y

	o := f.world.AddObject(&rich, Point{100, 100}, "").Object()
	got := o.Contents()
	got.Remove(f.wood, 3)
	testutil.AssertEqual(t, "copy emptied", got.IsEmpty(), true)
	testutil.AssertEqual(t, "stock kept", o.Contents().Quantity(f.wood), uint(3))
}

func TestUser_Gather(t *testing.T) {
	f := newFixture()
	w := f.world
	u := f.addUser("alice")
	tree := w.AddObject(f.tree, Point{15, 0}, "")
	far := w.AddObject(f.tree, Point{200, 0}, "")

	testutil.AssertEqual(t, "needs tools", codeOf(u.User().BeginGather(tree.Serial())), protocol.SVNeedTools)

	u.User().inventory[0] = item.Slot{Item: f.axe, Qty: 1}
	testutil.AssertEqual(t, "too far", codeOf(u.User().BeginGather(far.Serial())), protocol.SVTooFar)
	testutil.AssertEqual(t, "missing", codeOf(u.User().BeginGather(999)), protocol.SVDoesntExist)

	for range 3 {
		if err := u.User().BeginGather(tree.Serial()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, "busy", u.User().IsBusy(), true)
		w.Tick(time.Second)
		testutil.AssertEqual(t, "idle", u.User().IsBusy(), false)
	}

	testutil.AssertEqual(t, "wood gathered", u.User().Inventory().Count(f.wood), uint(3))
	testutil.AssertEqual(t, "tree emptied", tree.Object().Contents().IsEmpty(), true)
	testutil.AssertEqual(t, "still a tree", tree.Type().ID, "tree")
	testutil.AssertEqual(t, "countdown", tree.Object().Transformation().Remaining(), time.Second)

	w.Tick(time.Second)
	testutil.AssertEqual(t, "became a stump", tree.Type().ID, "stump")
	testutil.AssertEqual(t, "not removed", tree.IsRemoved(), false)
	testutil.AssertEqual(t, "finished", tree.Object().Transformation().Active(), false)

	codes := f.flush(u)
	var finished int
	for _, c := range codes {
		if c == protocol.SVActionFinished {
			finished++
		}
	}
	testutil.AssertEqual(t, "finished messages", finished, 3)
}

func TestUser_GatherDepletes(t *testing.T) {
	f := newFixture()
	w := f.world
	bush := *f.tree
	bush.ID = "bush"
	bush.Transform = nil
	bush.GatherTool = ""

	u := f.addUser("alice")
	e := w.AddObject(&bush, Point{15, 0}, "")

	for range 3 {
		if err := u.User().BeginGather(e.Serial()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w.Tick(time.Second)
	}

	_, ok := w.Entity(e.Serial())
	testutil.AssertEqual(t, "removed once empty", ok, false)
	testutil.AssertEqual(t, "gone from world", len(w.Entities()), 1)
}

func TestTransformation(t *testing.T) {
	tests := map[string]struct {
		spec      *TransformSpec
		noInto    bool
		contents  bool
		dead      bool
		elapsed   time.Duration
		expType   string
		expActive bool
	}{
		"immediate": {
			spec:    &TransformSpec{Delay: 0},
			elapsed: time.Millisecond,
			expType: "stump",
		},
		"counting down": {
			spec:      &TransformSpec{Delay: 5 * time.Second},
			elapsed:   time.Second,
			expType:   "sapling",
			expActive: true,
		},
		"reaches zero": {
			spec:    &TransformSpec{Delay: time.Second},
			elapsed: time.Second,
			expType: "stump",
		},
		"waits to be gathered": {
			spec:      &TransformSpec{Delay: 0, MustBeGathered: true},
			contents:  true,
			elapsed:   time.Second,
			expType:   "sapling",
			expActive: true,
		},
		"paused while dead": {
			spec:      &TransformSpec{Delay: 0},
			dead:      true,
			elapsed:   time.Second,
			expType:   "sapling",
			expActive: true,
		},
		"no target type": {
			spec:    &TransformSpec{Delay: 0},
			noInto:  true,
			elapsed: time.Second,
			expType: "sapling",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			sapling := &EntityType{ID: "sapling", Kind: KindObject, CorpseTime: time.Minute}
			spec := *tt.spec
			if !tt.noInto {
				spec.Into = f.stump
			}
			sapling.Transform = &spec

			e := f.world.AddObject(sapling, Point{100, 100}, "")
			if tt.contents {
				e.Object().contents.Add(f.wood, 1)
			}
			o := e.Object()
			if tt.dead {
				e.health = 0
			}

			o.transformation.update(o, tt.elapsed)
			testutil.AssertEqual(t, "type", e.Type().ID, tt.expType)
			testutil.AssertEqual(t, "active", o.Transformation().Active(), tt.expActive)
		})
	}
}

package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
)

// Object is the variant for static world objects: trees, rocks and player
// constructions.
type Object struct {
	entity         *Entity
	contents       item.ItemSet
	owner          string
	transformation Transformation
}

func newObject(e *Entity) *Object {
	o := &Object{entity: e}
	o.reset()
	return o
}

func (o *Object) reset() {
	t := o.entity.typ
	if t.Yield != nil {
		o.contents = t.Yield.Instantiate(o.entity.world.rng)
	} else {
		o.contents = item.ItemSet{}
	}
	o.transformation.reset(t.Transform)
}

func (o *Object) Entity() *Entity {
	return o.entity
}

// Contents is a copy of what is left to gather.
func (o *Object) Contents() item.ItemSet {
	return o.contents.Clone()
}

// Owner is the name of the player who built the object, if any.
func (o *Object) Owner() string {
	return o.owner
}

func (o *Object) Transformation() *Transformation {
	return &o.transformation
}

// ChooseGatherItem picks an item weighted by how many of each remain.
func (o *Object) ChooseGatherItem(rng RNG) *item.Item {
	total := o.contents.Total()
	if total == 0 {
		return nil
	}
	n := uint(rng.IntN(int(total)))
	for _, en := range o.contents.Items() {
		if n < en.Qty {
			return en.Item
		}
		n -= en.Qty
	}
	return nil
}

// ChooseGatherQuantity rolls how many of it one gather takes, limited to
// what is left.
func (o *Object) ChooseGatherQuantity(it *item.Item, rng RNG) uint {
	qty := uint(1)
	if y := o.entity.typ.Yield; y != nil {
		qty = y.GatherQuantity(it, rng)
	}
	return min(qty, o.contents.Quantity(it))
}

// removeGathered takes items out of the object. An object left empty is
// removed unless it is waiting to transform once gathered.
func (o *Object) removeGathered(it *item.Item, qty uint) {
	o.contents.Remove(it, qty)
	if !o.contents.IsEmpty() {
		return
	}
	if spec := o.entity.typ.Transform; spec != nil && spec.Into != nil && spec.MustBeGathered {
		o.entity.world.Broadcast(o.entity.loc, protocol.New(protocol.SVTransformTime, o.entity.serial, o.transformation.remaining.Milliseconds()))
		return
	}
	o.entity.MarkForRemoval()
}

func (o *Object) update(elapsed time.Duration) {
	o.transformation.update(o, elapsed)
}

// changeType turns the object into t, restocking it from t's yield.
func (o *Object) changeType(t *EntityType) {
	e := o.entity
	e.typ = t
	o.reset()
	e.UpdateStats()
	e.health = e.stats.MaxHealth
	e.world.Broadcast(e.loc, objectMessage(e))
	if o.transformation.Active() {
		e.world.Broadcast(e.loc, protocol.New(protocol.SVTransformTime, e.serial, o.transformation.remaining.Milliseconds()))
	}
}

// Transformation counts down an object's change into another type.
type Transformation struct {
	active    bool
	remaining time.Duration
}

func (t *Transformation) reset(spec *TransformSpec) {
	if spec == nil || spec.Into == nil {
		*t = Transformation{}
		return
	}
	*t = Transformation{active: true, remaining: spec.Delay}
}

// Active reports whether the object will transform.
func (t *Transformation) Active() bool {
	return t.active
}

func (t *Transformation) Remaining() time.Duration {
	return t.remaining
}

// update advances the countdown. It is paused while the object is dead or
// still holds items it must be emptied of first.
func (t *Transformation) update(o *Object, elapsed time.Duration) {
	spec := o.entity.typ.Transform
	if !t.active || spec == nil || spec.Into == nil || o.entity.IsDead() {
		return
	}
	if spec.MustBeGathered && !o.contents.IsEmpty() {
		return
	}
	if elapsed < t.remaining {
		t.remaining -= elapsed
		return
	}
	t.remaining = 0
	t.active = false
	o.changeType(spec.Into)
}

package game

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

type actionKind int

const (
	actionGather actionKind = iota
	actionCraft
	actionConstruct
)

// userAction is a timed action in progress. Only the fields for its kind
// are set.
type userAction struct {
	kind      actionKind
	remaining time.Duration

	target    *Entity
	recipe    *Recipe
	construct *EntityType
	cost      item.ItemSet
	loc       Point
}

// ActionCall is the context an object action script runs with.
type ActionCall struct {
	Object    *Entity
	Performer *Entity
	Arg       string
}

// ActionRunner runs object action scripts.
type ActionRunner interface {
	RunAction(script string, call *ActionCall) error
}

// reject tells a player why their request failed. Errors that are not
// player-facing are logged instead.
func (w *World) reject(e *Entity, err error) {
	var ue *UserError
	if errors.As(err, &ue) {
		w.Send(e, ue.Message())
		return
	}
	slog.Warn("player request failed", "user", e.Name(), "error", err)
}

// Reject is reject for callers outside the simulation loop's own actions.
func (w *World) Reject(e *Entity, err error) {
	w.reject(e, err)
}

func (u *User) inRange(t *Entity) bool {
	return RectDistance(u.entity.CollisionRect(), t.CollisionRect()) <= ActionDistance
}

func (u *User) startAction(a *userAction, d time.Duration) {
	a.remaining = d
	u.action = a
	u.send(protocol.New(protocol.SVActionStarted, d.Milliseconds()))
}

// CancelAction abandons the action in progress, if any.
func (u *User) CancelAction() {
	if u.action == nil {
		return
	}
	u.action = nil
	u.send(protocol.New(protocol.SVActionInterrupted))
}

func (u *User) IsBusy() bool {
	return u.action != nil
}

func (u *User) sendHint(t unlocks.Trigger) {
	info := u.entity.world.reg.Unlocks.EffectInfo(t, u.known)
	if info.HasEffect {
		u.send(protocol.New(protocol.SVUnlockHint, info.Message))
	}
}

// triggerUnlocks rolls t against the unlock graph and announces anything
// newly learned.
func (u *User) triggerUnlocks(t unlocks.Trigger) {
	w := u.entity.world
	var recipes, constructions []any
	for _, eff := range w.reg.Unlocks.Roll(t, u.known, w.rng) {
		u.known.Learn(eff)
		switch eff.Kind {
		case unlocks.UnlockRecipe:
			recipes = append(recipes, eff.ID)
		case unlocks.UnlockConstruction:
			constructions = append(constructions, eff.ID)
		}
	}
	if len(recipes) > 0 {
		u.send(protocol.New(protocol.SVNewRecipes, recipes...))
	}
	if len(constructions) > 0 {
		u.send(protocol.New(protocol.SVNewConstructions, constructions...))
	}
}

func (u *User) complete(a *userAction) error {
	switch a.kind {
	case actionGather:
		return u.completeGather(a)
	case actionCraft:
		return u.completeCraft(a)
	case actionConstruct:
		return u.completeConstruct(a)
	default:
		panic(fmt.Sprintf("unhandled action kind %d", a.kind))
	}
}

// BeginGather starts gathering from an object.
func (u *User) BeginGather(serial Serial) error {
	w := u.entity.world
	t, ok := w.Entity(serial)
	if !ok || t.object == nil || t.object.contents.IsEmpty() {
		return userError(protocol.SVDoesntExist)
	}
	if !u.inRange(t) {
		return userError(protocol.SVTooFar)
	}
	if tool := t.typ.GatherTool; tool != "" && !u.inventory.HasClasses([]string{tool}) {
		return userError(protocol.SVNeedTools)
	}

	u.startAction(&userAction{kind: actionGather, target: t}, t.typ.GatherTime)
	u.sendHint(unlocks.Trigger{Kind: unlocks.OnGather, ID: t.typ.ID})
	return nil
}

func (u *User) completeGather(a *userAction) error {
	w := u.entity.world
	t := a.target
	if t.IsRemoved() || t.object == nil {
		return userError(protocol.SVDoesntExist)
	}
	o := t.object
	it := o.ChooseGatherItem(w.rng)
	if it == nil {
		return userError(protocol.SVDoesntExist)
	}
	taken := o.ChooseGatherQuantity(it, w.rng)
	qty := taken
	if bonus := u.entity.stats.GatherBonus; bonus > 0 && w.rng.Float64()*100 < float64(bonus) {
		qty++
	}
	if !u.inventory.CanFit(it, qty) {
		return userError(protocol.SVInventoryFull)
	}

	_, touched := u.inventory.Add(it, qty)
	typeID := t.typ.ID
	o.removeGathered(it, taken)
	u.sendSlots(containerInventory, touched)

	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnGather, ID: typeID})
	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnAcquire, ID: it.ID})
	return nil
}

// canCraft checks that r could be crafted from the current inventory.
func (u *User) canCraft(r *Recipe) error {
	if !r.Materials.SatisfiedBy(u.inventory) {
		return userError(protocol.SVNeedMaterials)
	}
	if !u.inventory.HasClasses(r.Tools) {
		return userError(protocol.SVNeedTools)
	}
	after := slices.Clone(u.inventory)
	after.Remove(r.Materials)
	if !after.CanFit(r.Product, r.quantity()) {
		return userError(protocol.SVInventoryFull)
	}
	return nil
}

// BeginCraft starts crafting a known recipe.
func (u *User) BeginCraft(id string) error {
	r, ok := u.entity.world.reg.Recipes[id]
	if !ok {
		return userError(protocol.SVInvalidItem)
	}
	if !u.known.Has(unlocks.Effect{Kind: unlocks.UnlockRecipe, ID: id}) {
		return userError(protocol.SVUnknownRecipe)
	}
	if err := u.canCraft(r); err != nil {
		return err
	}

	u.startAction(&userAction{kind: actionCraft, recipe: r}, r.Time)
	u.sendHint(unlocks.Trigger{Kind: unlocks.OnCraft, ID: id})
	return nil
}

func (u *User) completeCraft(a *userAction) error {
	r := a.recipe
	if err := u.canCraft(r); err != nil {
		return err
	}

	touched := u.inventory.Remove(r.Materials)
	_, added := u.inventory.Add(r.Product, r.quantity())
	touched = append(touched, added...)
	slices.Sort(touched)
	u.sendSlots(containerInventory, slices.Compact(touched))

	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnCraft, ID: r.ID})
	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnAcquire, ID: r.Product.ID})
	return nil
}

// constructionCost is what building t costs this player. A known
// construction costs its materials; otherwise a carried item that
// constructs t is used up instead.
func (u *User) constructionCost(t *EntityType) (item.ItemSet, error) {
	if u.known.Has(unlocks.Effect{Kind: unlocks.UnlockConstruction, ID: t.ID}) && !t.Materials.IsEmpty() {
		return t.Materials.Clone(), nil
	}
	for _, s := range u.inventory {
		if !s.IsEmpty() && s.Item.Constructs == t.ID {
			return item.NewItemSet(map[*item.Item]uint{s.Item: 1}), nil
		}
	}
	if t.Materials.IsEmpty() {
		return item.ItemSet{}, userError(protocol.SVCannotConstruct)
	}
	return item.ItemSet{}, userError(protocol.SVUnknownConstruction)
}

// BeginConstruct starts building an object of type id at loc.
func (u *User) BeginConstruct(id string, loc Point) error {
	w := u.entity.world
	t, ok := w.reg.EntityTypes[id]
	if !ok || t.Kind != KindObject {
		return userError(protocol.SVCannotConstruct)
	}
	cost, err := u.constructionCost(t)
	if err != nil {
		return err
	}
	if RectDistance(u.entity.CollisionRect(), t.CollisionAt(loc)) > ActionDistance {
		return userError(protocol.SVTooFar)
	}
	if !w.IsLocationValid(t, loc, nil) {
		return userError(protocol.SVBlocked)
	}
	if !cost.SatisfiedBy(u.inventory) {
		return userError(protocol.SVNeedMaterials)
	}

	u.startAction(&userAction{kind: actionConstruct, construct: t, cost: cost, loc: loc}, t.ConstructionTime)
	u.sendHint(unlocks.Trigger{Kind: unlocks.OnConstruct, ID: id})
	return nil
}

// completeConstruct places the object. Materials are only used up once
// the object is placed.
func (u *User) completeConstruct(a *userAction) error {
	w := u.entity.world
	t := a.construct
	if !w.IsLocationValid(t, a.loc, nil) {
		return userError(protocol.SVBlocked)
	}
	if !a.cost.SatisfiedBy(u.inventory) {
		return userError(protocol.SVNeedMaterials)
	}

	u.sendSlots(containerInventory, u.inventory.Remove(a.cost))
	w.AddObject(t, a.loc, u.name)
	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnConstruct, ID: t.ID})
	return nil
}

// TakeItem moves a slot of a corpse's loot into the inventory.
func (u *User) TakeItem(serial Serial, slot int) error {
	w := u.entity.world
	t, ok := w.Entity(serial)
	if !ok {
		return userError(protocol.SVDoesntExist)
	}
	if !u.inRange(t) {
		return userError(protocol.SVTooFar)
	}
	if t.loot == nil || slot < 0 || slot >= len(t.loot.slots) {
		return userError(protocol.SVInvalidSlot)
	}
	s := t.loot.slots[slot]
	if s.IsEmpty() {
		return userError(protocol.SVEmptySlot)
	}
	if !u.inventory.CanFit(s.Item, s.Qty) {
		return userError(protocol.SVInventoryFull)
	}

	s, err := t.loot.TakeSlot(slot)
	switch {
	case errors.Is(err, ErrInvalidSlot):
		return userError(protocol.SVInvalidSlot)
	case errors.Is(err, ErrEmptySlot):
		return userError(protocol.SVEmptySlot)
	case err != nil:
		return fmt.Errorf("taking loot: %w", err)
	}

	_, touched := u.inventory.Add(s.Item, s.Qty)
	u.sendSlots(containerInventory, touched)
	t.notifyWatchers(slotMessage(serial.String(), slot, item.Slot{}))
	if t.loot.IsEmpty() {
		w.Broadcast(t.loc, protocol.New(protocol.SVNotLootable, serial))
	}

	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnAcquire, ID: s.Item.ID})
	return nil
}

// StartWatching subscribes the player to changes in an entity's loot and
// sends its current contents.
func (u *User) StartWatching(serial Serial) error {
	t, ok := u.entity.world.Entity(serial)
	if !ok {
		return userError(protocol.SVDoesntExist)
	}
	if !u.inRange(t) {
		return userError(protocol.SVTooFar)
	}
	t.AddWatcher(u.name)
	t.sendLootTo(u.entity)
	return nil
}

func (u *User) StopWatching(serial Serial) {
	if t, ok := u.entity.world.Entity(serial); ok {
		t.RemoveWatcher(u.name)
	}
}

// TargetEntity sets the player's combat target. Serial zero clears it.
func (u *User) TargetEntity(serial Serial) error {
	if serial == 0 {
		u.entity.SetTarget(nil)
		return nil
	}
	t, ok := u.entity.world.Entity(serial)
	if !ok {
		return userError(protocol.SVDoesntExist)
	}
	if t.IsDead() {
		return userError(protocol.SVTargetDead)
	}
	u.entity.SetTarget(t)
	return nil
}

// TargetUser targets another player by name.
func (u *User) TargetUser(name string) error {
	t, ok := u.entity.world.User(name)
	if !ok || t == u.entity {
		return userError(protocol.SVInvalidUser)
	}
	if t.IsDead() {
		return userError(protocol.SVTargetDead)
	}
	u.entity.SetTarget(t)
	return nil
}

// PerformObjectAction runs an object's scripted action.
func (u *User) PerformObjectAction(serial Serial, arg string) error {
	w := u.entity.world
	t, ok := w.Entity(serial)
	if !ok || t.object == nil {
		return userError(protocol.SVDoesntExist)
	}
	if !u.inRange(t) {
		return userError(protocol.SVTooFar)
	}
	act := t.typ.Action
	if act == nil || w.scripts == nil {
		return userError(protocol.SVNoAction)
	}

	err := w.scripts.RunAction(act.Script, &ActionCall{Object: t, Performer: u.entity, Arg: arg})
	if err != nil {
		return fmt.Errorf("running action %q on %s: %w", act.Label, t.typ.ID, err)
	}
	u.send(protocol.New(protocol.SVObjectAction, serial, act.Label))
	return nil
}

// Say speaks to every player.
func (u *User) Say(text string) {
	u.entity.world.BroadcastAll(protocol.New(protocol.SVSay, u.name, text))
}

// Whisper speaks privately to one player.
func (u *User) Whisper(to, text string) error {
	t, ok := u.entity.world.User(to)
	if !ok {
		return userError(protocol.SVInvalidUser)
	}
	t.user.Tell(u.name, text)
	return nil
}

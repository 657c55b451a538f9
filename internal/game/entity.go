package game

import (
	"sort"
	"strconv"
	"time"

	"github.com/pixil98/go-mmo/internal/combat"
	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
)

// Serial identifies an entity for the lifetime of the process.
type Serial uint64

func (s Serial) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// Entity is anything in the world. Exactly one of user, object and npc is
// set, matching the type's kind.
type Entity struct {
	world  *World
	serial Serial
	typ    *EntityType
	loc    Point

	// lastMove is when the location was last updated, for speed checks.
	lastMove time.Time

	health uint32
	energy uint32
	stats  stats.Stats

	target      *Entity
	attackTimer time.Duration
	corpseTimer time.Duration
	sinceRegen  time.Duration
	// deaths counts how often the entity has died, so effects queued
	// before a respawn can tell it apart from the entity they hit.
	deaths uint32

	buffs    []*Buff
	debuffs  []*Buff
	loot     *Loot
	watchers map[string]struct{}

	removalPending bool
	removed        bool
	spawner        *Spawner

	user   *User
	object *Object
	npc    *NPC
}

func (w *World) newEntity(t *EntityType, loc Point) *Entity {
	e := &Entity{
		world:    w,
		serial:   w.nextSerial(),
		typ:      t,
		loc:      loc,
		lastMove: w.Now(),
		watchers: map[string]struct{}{},
	}

	switch t.Kind {
	case KindUser:
		e.user = newUser(e)
	case KindObject:
		e.object = newObject(e)
	case KindNPC:
		e.npc = newNPC(e)
	default:
		panic(unknownKind(t.Kind))
	}

	e.UpdateStats()
	e.health = e.stats.MaxHealth
	e.energy = e.stats.MaxEnergy
	return e
}

func (e *Entity) Serial() Serial {
	return e.serial
}

func (e *Entity) Type() *EntityType {
	return e.typ
}

func (e *Entity) Kind() Kind {
	return e.typ.Kind
}

func (e *Entity) Location() Point {
	return e.loc
}

func (e *Entity) Health() uint32 {
	return e.health
}

func (e *Entity) Energy() uint32 {
	return e.energy
}

func (e *Entity) Stats() stats.Stats {
	return e.stats
}

func (e *Entity) Target() *Entity {
	return e.target
}

func (e *Entity) Loot() *Loot {
	return e.loot
}

func (e *Entity) Buffs() []*Buff {
	return e.buffs
}

func (e *Entity) Debuffs() []*Buff {
	return e.debuffs
}

// User returns the player variant, or nil.
func (e *Entity) User() *User {
	return e.user
}

// Object returns the object variant, or nil.
func (e *Entity) Object() *Object {
	return e.object
}

// NPC returns the NPC variant, or nil.
func (e *Entity) NPC() *NPC {
	return e.npc
}

func (e *Entity) IsDead() bool {
	return e.health == 0
}

// IsRemoved reports whether the entity has left, or is about to leave, the
// world.
func (e *Entity) IsRemoved() bool {
	return e.removalPending || e.removed
}

func (e *Entity) CollisionRect() Rect {
	return e.typ.CollisionAt(e.loc)
}

// Name is what players see the entity called.
func (e *Entity) Name() string {
	if e.user != nil {
		return e.user.name
	}
	return e.typ.Name
}

// WireID is how the entity is referred to in protocol messages.
func (e *Entity) WireID() string {
	if e.user != nil {
		return e.user.name
	}
	return e.serial.String()
}

// MarkForRemoval removes the entity at the end of the current tick. Marking
// twice has no further effect.
func (e *Entity) MarkForRemoval() {
	if e.removalPending || e.removed {
		return
	}
	e.removalPending = true
	e.world.markForRemoval(e)
}

func (e *Entity) healthMessage() protocol.Message {
	switch e.typ.Kind {
	case KindUser:
		return protocol.New(protocol.SVPlayerHealth, e.user.name, e.health)
	case KindObject, KindNPC:
		return protocol.New(protocol.SVEntityHealth, e.serial, e.health)
	default:
		panic(unknownKind(e.typ.Kind))
	}
}

// ReduceHealth applies damage. Reaching zero kills the entity; damage to
// the dead is ignored, so death happens once.
func (e *Entity) ReduceHealth(dmg uint32) {
	if dmg == 0 || e.IsDead() {
		return
	}
	if dmg >= e.health {
		e.health = 0
	} else {
		e.health -= dmg
	}
	e.world.Broadcast(e.loc, e.healthMessage())
	if e.IsDead() {
		e.onDeath()
	}
}

// Heal restores health up to the maximum. The dead cannot be healed.
func (e *Entity) Heal(amount uint32) {
	if amount == 0 || e.IsDead() || e.health >= e.stats.MaxHealth {
		return
	}
	e.health = min(e.health+amount, e.stats.MaxHealth)
	e.world.Broadcast(e.loc, e.healthMessage())
}

func (e *Entity) restoreEnergy(amount uint32) {
	if amount == 0 || e.energy >= e.stats.MaxEnergy {
		return
	}
	e.energy = min(e.energy+amount, e.stats.MaxEnergy)
	if e.user != nil {
		e.world.Send(e, protocol.New(protocol.SVPlayerEnergy, e.user.name, e.energy))
	}
}

func (e *Entity) onDeath() {
	e.deaths++
	e.target = nil
	e.buffs = nil
	e.debuffs = nil

	switch e.typ.Kind {
	case KindUser:
		e.world.forgetThreat(e)
		e.user.onDeath()
		return
	case KindNPC:
		e.npc.onDeath()
		e.corpseTimer = e.typ.CorpseTime
	case KindObject:
		e.corpseTimer = 0
	default:
		panic(unknownKind(e.typ.Kind))
	}

	if e.corpseTimer == 0 {
		e.MarkForRemoval()
	}
}

// UpdateStats recomputes stats from the type, then gear, buffs, debuffs and
// talents.
func (e *Entity) UpdateStats() {
	var gear, talents []stats.Mod
	if e.user != nil {
		gear = e.user.gearMods()
		talents = e.user.talentMods()
	}
	s := stats.Compose(e.typ.Stats, gear, buffMods(e.buffs), buffMods(e.debuffs), talents)
	s.MaxHealth = max(s.MaxHealth, 1)
	e.stats = s

	e.health = min(e.health, s.MaxHealth)
	e.energy = min(e.energy, s.MaxEnergy)
	if e.user != nil {
		e.user.sendStats()
	}
}

func buffMods(bs []*Buff) []stats.Mod {
	if len(bs) == 0 {
		return nil
	}
	out := make([]stats.Mod, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.typ.Stats)
	}
	return out
}

// ApplyBuff adds a buff cast by caster. It is refused when the same buff
// is already active or the entity is dead.
func (e *Entity) ApplyBuff(t *BuffType, caster *Entity) bool {
	return e.applyBuff(&e.buffs, t, caster, protocol.SVEntityGotBuff)
}

func (e *Entity) ApplyDebuff(t *BuffType, caster *Entity) bool {
	return e.applyBuff(&e.debuffs, t, caster, protocol.SVEntityGotDebuff)
}

func (e *Entity) applyBuff(set *[]*Buff, t *BuffType, caster *Entity, code protocol.Code) bool {
	if e.IsDead() {
		return false
	}
	for _, b := range *set {
		if b.typ == t && !b.expired {
			return false
		}
	}
	*set = append(*set, newBuff(t, e, caster))
	e.UpdateStats()
	e.world.Broadcast(e.loc, protocol.New(code, e.WireID(), t.ID))
	return true
}

// Dispel expires every buff and debuff with the given ID.
func (e *Entity) Dispel(id string) bool {
	var found bool
	for _, set := range [][]*Buff{e.buffs, e.debuffs} {
		for _, b := range set {
			if b.typ.ID == id && !b.expired {
				b.Expire()
				found = true
			}
		}
	}
	return found
}

func (e *Entity) updateBuffs(elapsed time.Duration) {
	deaths := e.deaths
	for _, set := range [][]*Buff{e.buffs, e.debuffs} {
		for _, b := range set {
			e.proc(b, b.Update(elapsed), deaths)
			// Death cleared both sets.
			if e.deaths != deaths {
				return
			}
		}
	}

	var lost bool
	e.buffs, lost = e.purgeBuffs(e.buffs, protocol.SVEntityLostBuff)
	var lostDebuff bool
	e.debuffs, lostDebuff = e.purgeBuffs(e.debuffs, protocol.SVEntityLostDebuff)
	if (lost || lostDebuff) && !e.IsDead() {
		e.UpdateStats()
	}
}

func (e *Entity) proc(b *Buff, n int, deaths uint32) {
	eff := b.typ.Effect
	if eff == nil {
		return
	}
	for range n {
		if e.IsDead() || e.deaths != deaths {
			return
		}
		raw := eff.Amount
		if eff.School.IsMagic() && b.caster != nil && !b.caster.IsRemoved() {
			raw += float64(b.caster.stats.MagicDamage)
		}
		switch eff.Type {
		case combat.Heal:
			e.Heal(combat.Magnitude(raw, e.world.rng))
		case combat.Damage:
			dmg := combat.Magnitude(combat.Mitigate(raw, combat.Hit, e.stats, eff.School), e.world.rng)
			if e.npc != nil {
				e.npc.onAttackedBy(b.caster, dmg)
			}
			e.ReduceHealth(dmg)
		case combat.Debuff:
		}
	}
}

func (e *Entity) purgeBuffs(set []*Buff, code protocol.Code) ([]*Buff, bool) {
	kept := set[:0]
	var lost bool
	for _, b := range set {
		if !b.expired {
			kept = append(kept, b)
			continue
		}
		lost = true
		e.world.Broadcast(e.loc, protocol.New(code, e.WireID(), b.typ.ID))
	}
	clear(set[len(kept):])
	return kept, lost
}

func (e *Entity) regen(elapsed time.Duration) {
	e.sinceRegen += elapsed
	for e.sinceRegen >= RegenInterval {
		e.sinceRegen -= RegenInterval
		e.Heal(e.stats.Hps)
		e.restoreEnergy(e.stats.Eps)
	}
}

func (e *Entity) AddWatcher(name string) {
	e.watchers[foldName(name)] = struct{}{}
}

func (e *Entity) RemoveWatcher(name string) {
	delete(e.watchers, foldName(name))
}

func (e *Entity) IsWatchedBy(name string) bool {
	_, ok := e.watchers[foldName(name)]
	return ok
}

// Watchers lists the players watching this entity's contents.
func (e *Entity) Watchers() []string {
	out := make([]string, 0, len(e.watchers))
	for name := range e.watchers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *Entity) notifyWatchers(msg protocol.Message) {
	for _, name := range e.Watchers() {
		if u, ok := e.world.User(name); ok {
			e.world.Send(u, msg)
		}
	}
}

// sendLootTo describes every slot of the corpse's loot.
func (e *Entity) sendLootTo(viewer *Entity) {
	if e.loot == nil {
		return
	}
	for i, s := range e.loot.slots {
		viewer.world.Send(viewer, slotMessage(e.serial.String(), i, s))
	}
}

func slotMessage(container string, i int, s item.Slot) protocol.Message {
	if s.IsEmpty() {
		return protocol.New(protocol.SVInventory, container, i, "", 0)
	}
	return protocol.New(protocol.SVInventory, container, i, s.Item.ID, s.Qty)
}

// Update advances the entity by elapsed. Dead entities only wait out their
// corpse timer.
func (e *Entity) Update(elapsed time.Duration) {
	if e.removalPending {
		return
	}
	if e.IsDead() {
		if elapsed >= e.corpseTimer {
			e.corpseTimer = 0
			e.MarkForRemoval()
		} else {
			e.corpseTimer -= elapsed
		}
		return
	}

	e.regen(elapsed)
	e.updateBuffs(elapsed)
	if e.IsDead() {
		return
	}

	switch e.typ.Kind {
	case KindUser:
		e.user.update(elapsed)
	case KindObject:
		e.object.update(elapsed)
	case KindNPC:
		e.npc.update()
	default:
		panic(unknownKind(e.typ.Kind))
	}

	e.updateCombat(elapsed)
}

package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/combat"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
)

// SetTarget makes t the entity's combat target. A nil target stops combat.
// An NPC adds t to its threat table, or forgets every enemy for nil.
func (e *Entity) SetTarget(t *Entity) {
	e.target = t
	if e.npc == nil {
		return
	}
	if t == nil {
		e.npc.threat.Clear()
	} else {
		e.npc.threat.MakeAwareOf(t)
	}
}

// canBeAttackedBy reports whether attacker may fight e. Players are only
// attacked by NPCs; objects only when tagged attackable.
func (e *Entity) canBeAttackedBy(attacker *Entity) bool {
	if e == attacker || e.IsDead() || e.IsRemoved() {
		return false
	}
	switch e.typ.Kind {
	case KindUser:
		return attacker.typ.Kind == KindNPC
	case KindNPC:
		return true
	case KindObject:
		return e.typ.HasTag(TagAttackable)
	default:
		panic(unknownKind(e.typ.Kind))
	}
}

func (e *Entity) updateCombat(elapsed time.Duration) {
	if e.attackTimer > elapsed {
		e.attackTimer -= elapsed
	} else {
		e.attackTimer = 0
	}

	t := e.target
	if t == nil {
		return
	}
	if t.IsDead() || t.IsRemoved() {
		e.target = nil
		return
	}
	if e.attackTimer > 0 || e.stats.Stunned {
		return
	}
	dist := RectDistance(e.CollisionRect(), t.CollisionRect())
	if dist > combat.MeleeRange || !t.canBeAttackedBy(e) {
		return
	}

	e.attackTimer = e.stats.AttackTime
	e.attack(t, dist)
}

func (e *Entity) attack(t *Entity, dist float64) {
	w := e.world
	outcome := combat.Roll(e.stats, t.stats, combat.Damage, stats.Physical, dist, w.rng)

	switch outcome {
	case combat.Miss:
		w.Broadcast(t.loc, protocol.New(protocol.SVShowMissAt, t.loc.X(), t.loc.Y()))
	case combat.Dodge:
		w.Broadcast(t.loc, protocol.New(protocol.SVShowDodgeAt, t.loc.X(), t.loc.Y()))
	case combat.Block:
		w.Broadcast(t.loc, protocol.New(protocol.SVShowBlockAt, t.loc.X(), t.loc.Y()))
	case combat.Crit:
		w.Broadcast(t.loc, protocol.New(protocol.SVShowCritAt, t.loc.X(), t.loc.Y()))
	case combat.Hit, combat.Fail:
	}

	dmg := combat.Magnitude(combat.Mitigate(float64(e.stats.Attack), outcome, t.stats, stats.Physical), w.rng)
	if dmg > 0 {
		w.Broadcast(t.loc, hitMessage(e, t))
	}

	if t.npc != nil {
		t.npc.onAttackedBy(e, dmg)
	}
	t.ReduceHealth(dmg)
}

func hitMessage(attacker, defender *Entity) protocol.Message {
	switch {
	case attacker.user != nil && defender.user != nil:
		return protocol.New(protocol.SVPlayerHitPlayer, attacker.user.name, defender.user.name)
	case attacker.user != nil:
		return protocol.New(protocol.SVPlayerHitEntity, attacker.user.name, defender.serial)
	case defender.user != nil:
		return protocol.New(protocol.SVEntityHitPlayer, attacker.serial, defender.user.name)
	default:
		return protocol.New(protocol.SVEntityWasHit, attacker.serial, defender.serial)
	}
}

package game

import (
	"github.com/pixil98/go-mmo/internal/combat"
	"github.com/pixil98/go-mmo/internal/protocol"
)

const (
	// PursuitRange is how far away a target may get before an NPC gives
	// up on it.
	PursuitRange = 320.0
	// LeashRange is how far an NPC may chase from where it was placed.
	LeashRange = 640.0
)

// NPC is the variant for creatures. NPCs fight whoever tops their threat
// table; aggressive ones also notice players in range. NPCs with speed
// chase their target.
type NPC struct {
	entity  *Entity
	threat  ThreatTable
	home    Point
	chasing bool
}

func newNPC(e *Entity) *NPC {
	return &NPC{entity: e, home: e.loc}
}

func (n *NPC) Entity() *Entity {
	return n.entity
}

func (n *NPC) IsAggressive() bool {
	return n.entity.typ.AggroRange > 0
}

// Threat is the NPC's threat table.
func (n *NPC) Threat() *ThreatTable {
	return &n.threat
}

// Home is where the NPC returns when it gives up a chase.
func (n *NPC) Home() Point {
	return n.home
}

// onAttackedBy is called before attacker's damage lands.
func (n *NPC) onAttackedBy(attacker *Entity, amount uint32) {
	e := n.entity
	if attacker == nil || attacker.IsRemoved() || !attacker.canBeAttackedBy(e) {
		return
	}
	n.threat.Add(attacker, amount)
	if e.target == nil {
		e.target = attacker
	}
}

func (n *NPC) update() {
	e := n.entity
	n.threat.forgetGone()
	if n.IsAggressive() {
		for _, u := range e.world.Users() {
			if u.IsDead() || u.IsRemoved() {
				continue
			}
			if Distance(e.loc, u.loc) <= e.typ.AggroRange {
				n.threat.MakeAwareOf(u)
			}
		}
	}

	e.target = n.threat.Target()
	if e.target == nil {
		n.chasing = false
		return
	}

	dist := RectDistance(e.CollisionRect(), e.target.CollisionRect())
	if dist > PursuitRange || Distance(n.home, e.loc) > LeashRange {
		n.giveUp()
		return
	}
	if dist <= combat.MeleeRange || e.stats.Speed <= 0 {
		n.chasing = false
		return
	}
	n.chase()
}

// chase steps towards the target, stopping inside melee range.
func (n *NPC) chase() {
	e := n.entity
	if !n.chasing {
		// The first step is measured from when the chase began.
		n.chasing = true
		e.lastMove = e.world.Now()
		return
	}
	t := e.target
	delta := t.loc.Sub(e.loc)
	if delta.Len() == 0 {
		return
	}
	dest := t.loc.Sub(delta.Normalize().Mul(combat.MeleeRange / 2))
	e.UpdateLocation(dest)
}

// giveUp forgets every enemy and sends the NPC home at full health.
func (n *NPC) giveUp() {
	e := n.entity
	w := e.world
	n.threat.Clear()
	n.chasing = false
	e.target = nil

	if e.loc != n.home && w.IsLocationValid(e.typ, n.home, e) {
		e.loc = n.home
		e.lastMove = w.Now()
		w.Broadcast(e.loc, objectMessage(e))
	}
	if e.health < e.stats.MaxHealth {
		e.health = e.stats.MaxHealth
		w.Broadcast(e.loc, e.healthMessage())
	}
}

func (n *NPC) onDeath() {
	e := n.entity
	n.threat.Clear()
	n.chasing = false
	if e.typ.Loot == nil {
		return
	}
	e.loot = e.typ.Loot.Instantiate(e.world.rng)
	if !e.loot.IsEmpty() {
		e.world.Broadcast(e.loc, protocol.New(protocol.SVLootable, e.serial))
	}
}

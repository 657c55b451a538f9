package game

import (
	"github.com/pixil98/go-mmo/internal/protocol"
)

// moveStep is the resolution used when searching for how far along a
// blocked path an entity can go.
const moveStep = 1.0

// UpdateLocation moves the entity towards dest. The move is limited by the
// entity's speed and the time since its last move, and stops at the last
// valid point along the way. It returns where the entity ended up.
func (e *Entity) UpdateLocation(dest Point) Point {
	w := e.world
	now := w.Now()
	elapsed := now.Sub(e.lastMove)
	e.lastMove = now

	if e.IsDead() || e.stats.Stunned || e.IsRemoved() || !IsFinite(dest) {
		return e.loc
	}

	start := e.loc
	delta := dest.Sub(start)
	dist := delta.Len()
	if dist == 0 {
		return e.loc
	}

	maxDist := e.stats.Speed * elapsed.Seconds()
	if dist > maxDist {
		dist = maxDist
	}
	if dist <= 0 {
		return e.loc
	}
	dir := delta.Normalize()

	best := start
	if w.IsLocationValid(e.typ, start.Add(dir.Mul(dist)), e) {
		best = start.Add(dir.Mul(dist))
	} else {
		for d := moveStep; d < dist; d += moveStep {
			p := start.Add(dir.Mul(d))
			if !w.IsLocationValid(e.typ, p, e) {
				break
			}
			best = p
		}
	}

	if best == start {
		if e.user != nil {
			w.Send(e, protocol.New(protocol.SVLocationInstant, e.user.name, e.loc.X(), e.loc.Y()))
		}
		return e.loc
	}
	e.loc = best

	if e.user != nil {
		e.user.CancelAction()
		w.Broadcast(e.loc, protocol.New(protocol.SVLocation, e.user.name, e.loc.X(), e.loc.Y()))
		if best != dest {
			w.Send(e, protocol.New(protocol.SVLocationInstant, e.user.name, e.loc.X(), e.loc.Y()))
		}
	} else {
		w.Broadcast(e.loc, objectMessage(e))
	}
	return e.loc
}

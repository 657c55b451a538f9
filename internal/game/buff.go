package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/combat"
	"github.com/pixil98/go-mmo/internal/stats"
)

// SpellEffect is applied to a buff's owner each time the buff ticks.
type SpellEffect struct {
	Type   combat.Type
	School stats.School
	Amount float64
}

// BuffType is a shared buff or debuff template. A zero Duration never
// expires on its own.
type BuffType struct {
	ID       string
	Name     string
	Stats    stats.Mod
	Effect   *SpellEffect
	Duration time.Duration
	TickTime time.Duration
}

// Buff is one application of a BuffType to an owner by a caster.
type Buff struct {
	typ       *BuffType
	owner     *Entity
	caster    *Entity
	remaining time.Duration
	sinceProc time.Duration
	expired   bool
}

func newBuff(t *BuffType, owner, caster *Entity) *Buff {
	return &Buff{
		typ:       t,
		owner:     owner,
		caster:    caster,
		remaining: t.Duration,
	}
}

func (b *Buff) Type() *BuffType {
	return b.typ
}

func (b *Buff) Remaining() time.Duration {
	return b.remaining
}

func (b *Buff) HasExpired() bool {
	return b.expired
}

// Expire asks for the buff to be removed on the owner's next update.
func (b *Buff) Expire() {
	b.expired = true
}

// Update advances the buff and returns how many tick boundaries were
// crossed. Time past the end of a finite buff does not count towards
// ticks.
func (b *Buff) Update(elapsed time.Duration) int {
	if b.expired {
		return 0
	}

	active := elapsed
	if b.typ.Duration > 0 {
		if elapsed >= b.remaining {
			active = b.remaining
			b.remaining = 0
			b.expired = true
		} else {
			b.remaining -= elapsed
		}
	}

	if b.typ.Effect == nil || b.typ.TickTime <= 0 {
		return 0
	}

	var procs int
	b.sinceProc += active
	for b.sinceProc >= b.typ.TickTime {
		b.sinceProc -= b.typ.TickTime
		procs++
	}
	return procs
}

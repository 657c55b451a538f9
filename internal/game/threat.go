package game

// ThreatTable records how much each enemy has provoked an NPC. The NPC
// fights whoever tops the table.
type ThreatTable struct {
	threat map[*Entity]uint32
}

// MakeAwareOf adds e with no threat if it is not in the table yet.
func (t *ThreatTable) MakeAwareOf(e *Entity) {
	if t.threat == nil {
		t.threat = map[*Entity]uint32{}
	}
	if _, ok := t.threat[e]; !ok {
		t.threat[e] = 0
	}
}

func (t *ThreatTable) IsAwareOf(e *Entity) bool {
	_, ok := t.threat[e]
	return ok
}

// Add raises the threat of e by amount.
func (t *ThreatTable) Add(e *Entity, amount uint32) {
	t.MakeAwareOf(e)
	t.threat[e] += amount
}

func (t *ThreatTable) Threat(e *Entity) uint32 {
	return t.threat[e]
}

func (t *ThreatTable) Forget(e *Entity) {
	delete(t.threat, e)
}

func (t *ThreatTable) Clear() {
	clear(t.threat)
}

func (t *ThreatTable) Len() int {
	return len(t.threat)
}

// Target is the entity with the most threat. Ties go to the lowest serial.
func (t *ThreatTable) Target() *Entity {
	var best *Entity
	for e, v := range t.threat {
		if best == nil || v > t.threat[best] || (v == t.threat[best] && e.serial < best.serial) {
			best = e
		}
	}
	return best
}

// forgetGone drops entries that can no longer be fought.
func (t *ThreatTable) forgetGone() {
	for e := range t.threat {
		if e.IsDead() || e.IsRemoved() {
			delete(t.threat, e)
		}
	}
}

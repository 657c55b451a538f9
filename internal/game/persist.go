package game

import (
	"log/slog"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

// SlotRecord is a saved inventory or gear slot. Empty slots have no item.
type SlotRecord struct {
	Item string `json:"item,omitempty"`
	Qty  uint   `json:"qty,omitempty"`
}

// UserRecord is the saved state of a player.
type UserRecord struct {
	Location      *Point       `json:"location,omitempty"`
	Health        uint32       `json:"health"`
	Energy        uint32       `json:"energy"`
	Inventory     []SlotRecord `json:"inventory"`
	Gear          []SlotRecord `json:"gear"`
	Recipes       []string     `json:"recipes"`
	Constructions []string     `json:"constructions"`
	Talents       []string     `json:"talents,omitempty"`
}

func slotRecords(slots item.Slots) []SlotRecord {
	out := make([]SlotRecord, len(slots))
	for i, s := range slots {
		if !s.IsEmpty() {
			out[i] = SlotRecord{Item: s.Item.ID, Qty: s.Qty}
		}
	}
	return out
}

// Snapshot captures the player's state for saving.
func (u *User) Snapshot() *UserRecord {
	e := u.entity
	loc := e.loc
	return &UserRecord{
		Location:      &loc,
		Health:        e.health,
		Energy:        e.energy,
		Inventory:     slotRecords(u.inventory),
		Gear:          slotRecords(u.gear),
		Recipes:       sortedKeys(u.known.Recipes),
		Constructions: sortedKeys(u.known.Constructions),
		Talents:       u.Talents(),
	}
}

// restoreUser applies a saved record. References to definitions that no
// longer exist are dropped.
func (w *World) restoreUser(e *Entity, rec *UserRecord) {
	u := e.user
	w.restoreSlots(u.name, u.inventory, rec.Inventory)
	w.restoreSlots(u.name, u.gear, rec.Gear)
	for i, s := range u.gear {
		if !fitsSlot(containerGear, i, s) {
			slog.Warn("dropping misplaced gear", "user", u.name, "item", s.Item.ID, "slot", i)
			u.gear[i] = item.Slot{}
		}
	}

	for _, id := range rec.Recipes {
		if _, ok := w.reg.Recipes[id]; !ok {
			slog.Warn("dropping unknown recipe", "user", u.name, "recipe", id)
			continue
		}
		u.known.Learn(unlocks.Effect{Kind: unlocks.UnlockRecipe, ID: id})
	}
	for _, id := range rec.Constructions {
		if _, ok := w.reg.EntityTypes[id]; !ok {
			slog.Warn("dropping unknown construction", "user", u.name, "construction", id)
			continue
		}
		u.known.Learn(unlocks.Effect{Kind: unlocks.UnlockConstruction, ID: id})
	}
	for _, id := range rec.Talents {
		t, ok := w.reg.Talents[id]
		if !ok || len(u.talents) >= TalentPoints {
			slog.Warn("dropping talent", "user", u.name, "talent", id)
			continue
		}
		u.talents[id] = t
	}

	e.UpdateStats()
	if rec.Health > 0 {
		e.health = min(rec.Health, e.stats.MaxHealth)
	}
	e.energy = min(rec.Energy, e.stats.MaxEnergy)
}

func (w *World) restoreSlots(user string, slots item.Slots, recs []SlotRecord) {
	for i, r := range recs {
		if r.Item == "" || r.Qty == 0 {
			continue
		}
		if i >= len(slots) {
			slog.Warn("dropping slot out of range", "user", user, "slot", i)
			continue
		}
		it, ok := w.reg.Items[r.Item]
		if !ok {
			slog.Warn("dropping unknown item", "user", user, "item", r.Item)
			continue
		}
		slots[i] = item.Slot{Item: it, Qty: r.Qty}
	}
}

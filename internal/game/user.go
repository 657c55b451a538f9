package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

const (
	InventorySize = 10

	containerInventory = "inventory"
	containerGear      = "gear"
)

// User is the variant for connected players.
type User struct {
	entity  *Entity
	name    string
	session string

	inventory item.Slots
	gear      item.Slots
	known     unlocks.Known
	talents   map[string]*Talent
	action    *userAction

	lastContact time.Time
}

func newUser(e *Entity) *User {
	return &User{
		entity:    e,
		inventory: item.NewSlots(InventorySize),
		gear:      item.NewSlots(item.GearSlotCount),
		known:     unlocks.NewKnown(),
		talents:   map[string]*Talent{},
	}
}

func (u *User) Entity() *Entity {
	return u.entity
}

func (u *User) Name() string {
	return u.name
}

// Session is the id outbound messages for this player are published under.
func (u *User) Session() string {
	return u.session
}

func (u *User) Inventory() item.Slots {
	return u.inventory
}

func (u *User) Gear() item.Slots {
	return u.gear
}

func (u *User) Known() unlocks.Known {
	return u.known
}

// Contact records that the client was heard from.
func (u *User) Contact(t time.Time) {
	u.lastContact = t
}

func (u *User) LastContact() time.Time {
	return u.lastContact
}

func (u *User) gearMods() []stats.Mod {
	var out []stats.Mod
	for _, s := range u.gear {
		if !s.IsEmpty() && s.Item.Gear != nil {
			out = append(out, s.Item.Gear.Stats)
		}
	}
	return out
}

func (u *User) send(msg protocol.Message) {
	u.entity.world.Send(u.entity, msg)
}

func (u *User) sendStats() {
	if u.session == "" {
		return
	}
	s := u.entity.stats
	u.send(protocol.New(protocol.SVYourStats,
		s.MaxHealth, s.MaxEnergy, s.Hps, s.Eps,
		s.Attack, s.Armor, s.AirResist, s.EarthResist, s.FireResist, s.WaterResist,
		s.Hit, s.Crit, s.Dodge, s.Block, s.BlockValue, s.GatherBonus,
		s.MagicDamage, s.AttackTime.Milliseconds(), s.Speed,
	))
}

func (u *User) container(name string) (item.Slots, bool) {
	switch name {
	case containerInventory:
		return u.inventory, true
	case containerGear:
		return u.gear, true
	default:
		return nil, false
	}
}

func (u *User) sendSlot(container string, i int) {
	slots, ok := u.container(container)
	if !ok || i < 0 || i >= len(slots) {
		return
	}
	u.send(slotMessage(container, i, slots[i]))
}

func (u *User) sendSlots(container string, idx []int) {
	for _, i := range idx {
		u.sendSlot(container, i)
	}
}

// onDeath respawns the player at full health.
func (u *User) onDeath() {
	e := u.entity
	w := e.world
	u.CancelAction()
	e.UpdateStats()
	e.health = e.stats.MaxHealth
	e.energy = e.stats.MaxEnergy
	e.loc = w.spawnLocation()
	e.lastMove = w.Now()

	w.Broadcast(e.loc, protocol.New(protocol.SVLocationInstant, u.name, e.loc.X(), e.loc.Y()))
	w.Broadcast(e.loc, e.healthMessage())
	u.send(protocol.New(protocol.SVPlayerEnergy, u.name, e.energy))
}

func (u *User) update(elapsed time.Duration) {
	a := u.action
	if a == nil {
		return
	}
	if elapsed < a.remaining {
		a.remaining -= elapsed
		return
	}
	u.action = nil

	if err := u.complete(a); err != nil {
		u.entity.world.reject(u.entity, err)
		return
	}
	u.send(protocol.New(protocol.SVActionFinished))
}

// SwapSlots moves the contents of one slot into another, exchanging them
// if both are occupied. Gear slots only accept gear of the matching slot.
func (u *User) SwapSlots(fromContainer string, from int, toContainer string, to int) error {
	src, ok := u.container(fromContainer)
	if !ok || from < 0 || from >= len(src) {
		return userError(protocol.SVInvalidSlot)
	}
	dst, ok := u.container(toContainer)
	if !ok || to < 0 || to >= len(dst) {
		return userError(protocol.SVInvalidSlot)
	}
	if src[from].IsEmpty() {
		return userError(protocol.SVEmptySlot)
	}
	if !fitsSlot(toContainer, to, src[from]) || !fitsSlot(fromContainer, from, dst[to]) {
		return userError(protocol.SVInvalidItem)
	}

	src[from], dst[to] = dst[to], src[from]
	u.sendSlot(fromContainer, from)
	u.sendSlot(toContainer, to)
	if fromContainer == containerGear || toContainer == containerGear {
		u.entity.UpdateStats()
	}
	return nil
}

func fitsSlot(container string, i int, s item.Slot) bool {
	if container != containerGear || s.IsEmpty() {
		return true
	}
	return s.Item.Gear != nil && int(s.Item.Gear.Slot) == i
}

// Drop destroys the contents of an inventory slot.
func (u *User) Drop(slot int) error {
	if slot < 0 || slot >= len(u.inventory) {
		return userError(protocol.SVInvalidSlot)
	}
	if u.inventory[slot].IsEmpty() {
		return userError(protocol.SVEmptySlot)
	}
	u.inventory[slot] = item.Slot{}
	u.sendSlot(containerInventory, slot)
	return nil
}

// GiveItem adds items straight to the inventory.
func (u *User) GiveItem(id string, qty uint) error {
	it, ok := u.entity.world.reg.Items[id]
	if !ok {
		return userError(protocol.SVInvalidItem)
	}
	if qty == 0 {
		return nil
	}
	if !u.inventory.CanFit(it, qty) {
		return userError(protocol.SVInventoryFull)
	}
	_, touched := u.inventory.Add(it, qty)
	u.sendSlots(containerInventory, touched)
	u.triggerUnlocks(unlocks.Trigger{Kind: unlocks.OnAcquire, ID: it.ID})
	return nil
}

// Tell sends the player a private message from the named speaker.
func (u *User) Tell(from, text string) {
	u.send(protocol.New(protocol.SVWhisper, from, text))
}

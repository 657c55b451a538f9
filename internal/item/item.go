package item

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-mmo/internal/stats"
)

// GearSlot is the equipment slot an item occupies when worn.
type GearSlot int

const (
	GearHead GearSlot = iota
	GearBody
	GearLegs
	GearFeet
	GearWeapon
	GearOffhand
	GearHands
	GearNeck

	GearSlotCount = 8
)

var gearSlotNames = [GearSlotCount]string{"head", "body", "legs", "feet", "weapon", "offhand", "hands", "neck"}

func (s GearSlot) String() string {
	if s < 0 || s >= GearSlotCount {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return gearSlotNames[s]
}

func (s *GearSlot) UnmarshalText(text []byte) error {
	for i, name := range gearSlotNames {
		if name == string(text) {
			*s = GearSlot(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gear slot: %s", text)
}

func (s GearSlot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Gear describes how an item behaves when equipped.
type Gear struct {
	Slot  GearSlot  `json:"slot"`
	Stats stats.Mod `json:"stats"`
}

// Item is an immutable item definition shared by every stack of it.
type Item struct {
	ID        string
	Name      string
	Classes   []string
	StackSize uint
	Gear      *Gear
	// Constructs is the object type id placed when this item is used to
	// build something, empty if the item cannot be placed.
	Constructs string
}

// HasClass reports whether the item is tagged with class.
func (i *Item) HasClass(class string) bool {
	return slices.Contains(i.Classes, class)
}

func (i *Item) stackSize() uint {
	if i.StackSize == 0 {
		return 1
	}
	return i.StackSize
}

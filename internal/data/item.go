package data

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/item"
)

// ItemSpec is an item definition as stored on disk.
type ItemSpec struct {
	Name       string     `json:"name"`
	Classes    []string   `json:"classes,omitempty"`
	StackSize  uint       `json:"stack_size,omitempty"`
	Gear       *item.Gear `json:"gear,omitempty"`
	Constructs string     `json:"constructs,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *ItemSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if s.Gear != nil && (s.Gear.Slot < 0 || s.Gear.Slot >= item.GearSlotCount) {
		el.Add(fmt.Errorf("gear slot %d is invalid", s.Gear.Slot))
	}
	return el.Err()
}

func (s *ItemSpec) build(id string) *item.Item {
	return &item.Item{
		ID:         id,
		Name:       s.Name,
		Classes:    s.Classes,
		StackSize:  s.StackSize,
		Gear:       s.Gear,
		Constructs: s.Constructs,
	}
}

// RecipeSpec is a crafting recipe as stored on disk.
type RecipeSpec struct {
	Name           string          `json:"name"`
	Product        string          `json:"product"`
	Quantity       uint            `json:"quantity,omitempty"`
	Materials      map[string]uint `json:"materials"`
	Tools          []string        `json:"tools,omitempty"`
	Time           Duration        `json:"time"`
	KnownByDefault bool            `json:"known_by_default,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *RecipeSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Product == "" {
		el.Add(fmt.Errorf("recipe product is required"))
	}
	for id, qty := range s.Materials {
		if qty == 0 {
			el.Add(fmt.Errorf("material %q quantity must be positive", id))
		}
	}
	if s.Time < 0 {
		el.Add(fmt.Errorf("recipe time must not be negative"))
	}
	return el.Err()
}

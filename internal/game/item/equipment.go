package item

import (
	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/game/stats"
)

// Slot identifies one of the six equipment slots.
type Slot string

const (
	// SlotWeapon is the main weapon slot.
	SlotWeapon Slot = "weapon"
	// SlotBody is the body armor slot.
	SlotBody Slot = "body"
	// SlotShield is the shield slot.
	SlotShield Slot = "shield"
	// SlotHelmet is the helmet slot.
	SlotHelmet Slot = "helmet"
	// SlotBoots is the boots slot.
	SlotBoots Slot = "boots"
	// SlotAccessory is the accessory slot.
	SlotAccessory Slot = "accessory"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotWeapon, SlotBody, SlotShield, SlotHelmet, SlotBoots, SlotAccessory}

// slotCategories maps each slot to the single item category it accepts.
var slotCategories = map[Slot]string{
	SlotWeapon:    CategoryWeapon,
	SlotBody:      CategoryBody,
	SlotShield:    CategoryShield,
	SlotHelmet:    CategoryHelmet,
	SlotBoots:     CategoryBoots,
	SlotAccessory: CategoryAccessory,
}

// SlotCategory returns the item category the given slot accepts, or ""
// for an unknown slot.
func SlotCategory(slot Slot) string {
	return slotCategories[slot]
}

// EquipmentSet holds the six optional slot references for a character.
type EquipmentSet struct {
	slots map[Slot]*Item
}

// NewEquipmentSet returns an EquipmentSet with all slots empty.
func NewEquipmentSet() *EquipmentSet {
	return &EquipmentSet{slots: make(map[Slot]*Item)}
}

// Equip places it into slot, replacing any previous occupant.
//
// Precondition: it must be non-nil.
// Postcondition: Returns the replaced item (nil if the slot was empty), or
// a fault.ValidationError when the item is not equippable or its category
// does not match the slot.
func (e *EquipmentSet) Equip(slot Slot, it *Item) (*Item, error) {
	want, ok := slotCategories[slot]
	if !ok {
		return nil, fault.Validationf("invalid_slot", "unknown equipment slot %q", slot)
	}
	if !it.Equippable {
		return nil, fault.Validationf("not_equippable", "item %q cannot be equipped", it.ID)
	}
	if it.Category != want {
		return nil, fault.Validationf("slot_mismatch",
			"item %q has category %q; slot %q requires %q", it.ID, it.Category, slot, want)
	}
	prev := e.slots[slot]
	e.slots[slot] = it
	return prev, nil
}

// Unequip clears slot and returns the removed item, or nil if empty.
func (e *EquipmentSet) Unequip(slot Slot) *Item {
	prev := e.slots[slot]
	delete(e.slots, slot)
	return prev
}

// At returns the item occupying slot, or nil when empty.
func (e *EquipmentSet) At(slot Slot) *Item {
	return e.slots[slot]
}

// Contributions returns one stats.Contribution per equipped item, each at
// scale 1, for feeding the stat aggregation.
//
// Postcondition: len(result) equals the number of occupied slots.
func (e *EquipmentSet) Contributions() []stats.Contribution {
	out := make([]stats.Contribution, 0, len(e.slots))
	for _, slot := range Slots {
		if it := e.slots[slot]; it != nil {
			out = append(out, stats.Contribution{Values: it.Effects, Scale: 1})
		}
	}
	return out
}

package item

import "github.com/fennwald/emberquest/internal/game/fault"

// Stack is one inventory entry: an item template reference and a count.
type Stack struct {
	ItemID   string
	Quantity int
}

// Inventory is a per-character stacked item container. Stacks honor each
// template's MaxStack; a single item may occupy several stacks.
// It is not safe for concurrent use; the caller must serialise access.
type Inventory struct {
	reg    *Registry
	stacks []Stack
}

// NewInventory creates an empty Inventory resolving templates through reg.
//
// Precondition: reg must be non-nil.
func NewInventory(reg *Registry) *Inventory {
	return &Inventory{reg: reg}
}

// Add places quantity units of itemID into the inventory, filling existing
// stacks before opening new ones.
//
// Precondition: quantity > 0.
// Postcondition: Count(itemID) grows by quantity, or a
// fault.ValidationError is returned and state is unchanged.
func (inv *Inventory) Add(itemID string, quantity int) error {
	def, ok := inv.reg.Item(itemID)
	if !ok {
		return fault.NotFound("item", itemID)
	}
	if quantity <= 0 {
		return fault.Validationf("invalid_quantity", "quantity must be > 0, got %d", quantity)
	}

	remaining := quantity
	for i := range inv.stacks {
		if remaining == 0 {
			break
		}
		if inv.stacks[i].ItemID != itemID || inv.stacks[i].Quantity >= def.MaxStack {
			continue
		}
		take := def.MaxStack - inv.stacks[i].Quantity
		if take > remaining {
			take = remaining
		}
		inv.stacks[i].Quantity += take
		remaining -= take
	}
	for remaining > 0 {
		take := remaining
		if take > def.MaxStack {
			take = def.MaxStack
		}
		inv.stacks = append(inv.stacks, Stack{ItemID: itemID, Quantity: take})
		remaining -= take
	}
	return nil
}

// Remove takes quantity units of itemID out of the inventory.
//
// Precondition: quantity > 0.
// Postcondition: Count(itemID) shrinks by quantity, or a
// fault.ValidationError is returned and state is unchanged.
func (inv *Inventory) Remove(itemID string, quantity int) error {
	if quantity <= 0 {
		return fault.Validationf("invalid_quantity", "quantity must be > 0, got %d", quantity)
	}
	if inv.Count(itemID) < quantity {
		return fault.Validationf("insufficient_items",
			"have %d of %q, need %d", inv.Count(itemID), itemID, quantity)
	}

	remaining := quantity
	kept := inv.stacks[:0]
	for _, s := range inv.stacks {
		if s.ItemID != itemID || remaining == 0 {
			kept = append(kept, s)
			continue
		}
		if s.Quantity > remaining {
			s.Quantity -= remaining
			remaining = 0
			kept = append(kept, s)
			continue
		}
		remaining -= s.Quantity
	}
	inv.stacks = kept
	return nil
}

// Count returns the total quantity of itemID across all stacks.
func (inv *Inventory) Count(itemID string) int {
	total := 0
	for _, s := range inv.stacks {
		if s.ItemID == itemID {
			total += s.Quantity
		}
	}
	return total
}

// Use consumes one unit of a usable item and returns its template so the
// caller can apply its effects.
//
// Postcondition: Count(itemID) shrinks by 1 on success; returns
// fault.NotFound for unknown items and fault.ValidationError for items
// that are not usable or not held.
func (inv *Inventory) Use(itemID string) (*Item, error) {
	def, ok := inv.reg.Item(itemID)
	if !ok {
		return nil, fault.NotFound("item", itemID)
	}
	if !def.Usable {
		return nil, fault.Validationf("not_usable", "item %q cannot be used", itemID)
	}
	if err := inv.Remove(itemID, 1); err != nil {
		return nil, err
	}
	return def, nil
}

// Stacks returns a copy of the current stack list.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, len(inv.stacks))
	copy(out, inv.stacks)
	return out
}

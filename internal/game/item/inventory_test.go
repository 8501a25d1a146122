package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/game/item"
	"github.com/fennwald/emberquest/internal/game/stats"
)

func testRegistry(t *testing.T) *item.Registry {
	t.Helper()
	reg, err := item.NewRegistry([]*item.Item{
		{ID: "potion", Name: "Potion", Category: item.CategoryConsumable,
			Effects: stats.EffectValues{RestoreHP: 30}, MaxStack: 5, Usable: true},
		{ID: "herb", Name: "Herb", Category: item.CategoryMaterial, MaxStack: 10},
		{ID: "iron_sword", Name: "Iron Sword", Category: item.CategoryWeapon,
			MaxStack: 1, Equippable: true},
	})
	require.NoError(t, err)
	return reg
}

func TestInventory_AddSplitsIntoStacks(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("potion", 12))
	assert.Equal(t, 12, inv.Count("potion"))
	// MaxStack 5 → stacks of 5, 5, 2.
	assert.Len(t, inv.Stacks(), 3)
}

func TestInventory_AddFillsExistingStackFirst(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("herb", 7))
	require.NoError(t, inv.Add("herb", 3))
	assert.Equal(t, 10, inv.Count("herb"))
	assert.Len(t, inv.Stacks(), 1)
}

func TestInventory_AddUnknownItem(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	err := inv.Add("mystery", 1)
	require.Error(t, err)
	assert.True(t, fault.IsNotFound(err))
}

func TestInventory_RemoveAcrossStacks(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("potion", 12))
	require.NoError(t, inv.Remove("potion", 8))
	assert.Equal(t, 4, inv.Count("potion"))
}

func TestInventory_RemoveInsufficient(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("potion", 2))
	err := inv.Remove("potion", 5)
	require.Error(t, err)
	assert.True(t, fault.IsValidation(err))
	assert.Equal(t, 2, inv.Count("potion"), "state unchanged on failure")
}

func TestInventory_Use(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("potion", 1))
	def, err := inv.Use("potion")
	require.NoError(t, err)
	assert.Equal(t, 30, def.Effects.RestoreHP)
	assert.Equal(t, 0, inv.Count("potion"))

	_, err = inv.Use("potion")
	require.Error(t, err, "using an item not held fails")
}

func TestInventory_UseNotUsable(t *testing.T) {
	inv := item.NewInventory(testRegistry(t))
	require.NoError(t, inv.Add("iron_sword", 1))
	_, err := inv.Use("iron_sword")
	require.Error(t, err)
	assert.True(t, fault.IsValidation(err))
}

// Adding then removing the same quantity always restores the prior count,
// and no stack ever exceeds its template's MaxStack.
func TestInventory_Property_AddRemoveRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inv := item.NewInventory(testRegistry(t))
		n := rapid.IntRange(1, 40).Draw(rt, "n")
		require.NoError(rt, inv.Add("potion", n))
		for _, s := range inv.Stacks() {
			assert.LessOrEqual(rt, s.Quantity, 5)
		}
		require.NoError(rt, inv.Remove("potion", n))
		assert.Equal(rt, 0, inv.Count("potion"))
	})
}

func TestNewRegistry_DuplicateID(t *testing.T) {
	_, err := item.NewRegistry([]*item.Item{
		{ID: "x", Name: "A", Category: item.CategoryMaterial, MaxStack: 1},
		{ID: "x", Name: "B", Category: item.CategoryMaterial, MaxStack: 1},
	})
	require.Error(t, err)
}

func TestItem_Validate(t *testing.T) {
	valid := &item.Item{ID: "ok", Name: "OK", Category: item.CategoryMaterial, MaxStack: 1}
	assert.NoError(t, valid.Validate())

	bad := &item.Item{ID: "", Name: "", Category: "hat", MaxStack: 0, Durability: -1}
	assert.Error(t, bad.Validate())
}

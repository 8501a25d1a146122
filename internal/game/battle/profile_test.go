package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/item"
)

type fakeCharacterSource struct {
	char *character.Character
}

func (s *fakeCharacterSource) GetByUser(_ context.Context, _ int64) (*character.Character, error) {
	return s.char, nil
}

func testRegistry(t *testing.T) *item.Registry {
	t.Helper()
	reg, err := item.NewRegistry([]*item.Item{{
		ID:       "potion",
		Name:     "Potion",
		Category: item.CategoryConsumable,
		Usable:   true,
		MaxStack: 10,
	}})
	require.NoError(t, err)
	return reg
}

func TestProfileSharesRuntimeAcrossCalls(t *testing.T) {
	c := character.New("Arin")
	c.ID = 11
	mgr := battle.NewProfileManager(&fakeCharacterSource{char: c}, testRegistry(t))
	ctx := context.Background()

	first, err := mgr.Profile(ctx, 1)
	require.NoError(t, err)
	second, err := mgr.Profile(ctx, 1)
	require.NoError(t, err)

	// Equipment and effects persist between requests within the process.
	assert.Same(t, first.Equipment, second.Equipment)
	assert.Same(t, first.Effects, second.Effects)
	assert.Same(t, first.Inventory, second.Inventory)
}

func TestGrantStarterKit(t *testing.T) {
	c := character.New("Arin")
	c.ID = 11
	mgr := battle.NewProfileManager(&fakeCharacterSource{char: c}, testRegistry(t))

	require.NoError(t, mgr.GrantStarterKit(1, c.ID))

	profile, err := mgr.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, profile.Skills, "power strike")
	assert.Equal(t, 3, profile.Inventory.Count("potion"))
}

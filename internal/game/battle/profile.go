package battle

import (
	"context"
	"fmt"
	"sync"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/effect"
	"github.com/fennwald/emberquest/internal/game/item"
	"github.com/fennwald/emberquest/internal/game/skill"
)

// CharacterSource resolves the live character owned by a user.
type CharacterSource interface {
	GetByUser(ctx context.Context, userID int64) (*character.Character, error)
}

// ProfileManager implements ProfileSource. The character record is loaded
// fresh on every call; equipment, skills, effects, and inventory are
// per-process runtime state keyed by user, created lazily.
type ProfileManager struct {
	characters CharacterSource
	items      *item.Registry

	mu       sync.Mutex
	runtimes map[int64]*runtimeState
}

type runtimeState struct {
	equipment *item.EquipmentSet
	skills    map[string]*skill.Skill
	effects   *effect.Tracker
	inventory *item.Inventory
}

// NewProfileManager wires a ProfileManager over the character source and
// item registry.
//
// Precondition: characters and items must be non-nil.
func NewProfileManager(characters CharacterSource, items *item.Registry) *ProfileManager {
	return &ProfileManager{
		characters: characters,
		items:      items,
		runtimes:   make(map[int64]*runtimeState),
	}
}

// Profile loads the user's combat profile.
//
// Postcondition: Returns a profile whose runtime state is shared across
// calls for the same user, or the character source's error.
func (m *ProfileManager) Profile(ctx context.Context, userID int64) (*Profile, error) {
	c, err := m.characters.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rt := m.runtime(userID, c.ID)
	return &Profile{
		Character: c,
		Equipment: rt.equipment,
		Skills:    rt.skills,
		Effects:   rt.effects,
		Inventory: rt.inventory,
	}, nil
}

func (m *ProfileManager) runtime(userID, characterID int64) *runtimeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.runtimes[userID]
	if !ok {
		rt = &runtimeState{
			equipment: item.NewEquipmentSet(),
			skills:    make(map[string]*skill.Skill),
			effects:   effect.NewTracker(characterID),
			inventory: item.NewInventory(m.items),
		}
		m.runtimes[userID] = rt
	}
	return rt
}

// GrantStarterKit gives a fresh character its starting skill and supplies.
// Safe to call once per user, right after character creation.
//
// Postcondition: the user's runtime holds the starter skill and three
// potions, or an error when the starter content is missing.
func (m *ProfileManager) GrantStarterKit(userID, characterID int64) error {
	rt := m.runtime(userID, characterID)

	strike, err := skill.New(characterID, skill.TypePhysical, "power strike")
	if err != nil {
		return fmt.Errorf("creating starter skill: %w", err)
	}
	strike.BasePower = 6
	strike.SPCost = 4
	strike.Accuracy = 5

	m.mu.Lock()
	defer m.mu.Unlock()
	rt.skills[strike.Name] = strike
	if err := rt.inventory.Add("potion", 3); err != nil {
		return fmt.Errorf("granting starter potions: %w", err)
	}
	return nil
}

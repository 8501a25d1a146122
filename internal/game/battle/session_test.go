package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/encounter"
	"github.com/fennwald/emberquest/internal/game/fault"
)

func testSnapshots() (battle.CharacterSnapshot, battle.MonsterSnapshot) {
	c := character.New("Arin")
	m := &encounter.Monster{
		ID:    "slime",
		Name:  "Slime",
		Level: 1,
		MaxHP: 20,
		Stats: character.BaseStats{Attack: 6, Defense: 2, Agility: 4, Evasion: 5, Accuracy: 70},
	}
	return battle.SnapshotCharacter(c, c.Stats), battle.SnapshotMonster(m)
}

func TestNewSessionDefaults(t *testing.T) {
	char, monster := testSnapshots()
	s := battle.NewSession(7, char, monster, "forest")

	assert.Equal(t, battle.StatusActive, s.Status)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, "forest", s.Location)
	assert.NotEmpty(t, s.BattleID)
	assert.Empty(t, s.Log)

	other := battle.NewSession(7, char, monster, "forest")
	assert.NotEqual(t, s.BattleID, other.BattleID)
}

func TestSnapshotMonsterStartsAtFullHealth(t *testing.T) {
	_, monster := testSnapshots()
	assert.Equal(t, monster.MaxHP, monster.HP)
	assert.False(t, monster.IsDead())
}

func TestAddLogTagsCurrentTurn(t *testing.T) {
	char, monster := testSnapshots()
	s := battle.NewSession(1, char, monster, "forest")

	require.NoError(t, s.AddLog("attack", "first swing"))
	require.NoError(t, s.AdvanceTurn())
	require.NoError(t, s.AddLog("attack", "second swing"))

	require.Len(t, s.Log, 2)
	assert.Equal(t, 1, s.Log[0].Turn)
	assert.Equal(t, 2, s.Log[1].Turn)
	assert.Equal(t, 2, s.Turn)
}

func TestCompletedSessionRejectsActions(t *testing.T) {
	char, monster := testSnapshots()
	s := battle.NewSession(1, char, monster, "forest")
	require.NoError(t, s.Complete())

	assert.Equal(t, battle.StatusCompleted, s.Status)
	assert.False(t, s.IsActive())

	err := s.AddLog("attack", "too late")
	assert.True(t, fault.IsConflict(err))
	assert.True(t, fault.IsConflict(s.AdvanceTurn()))
	assert.True(t, fault.IsConflict(s.Complete()))
	assert.Empty(t, s.Log)
}

func TestCharacterSnapshotDamageClamps(t *testing.T) {
	char, _ := testSnapshots()

	char.ApplyDamage(char.MaxHP + 100)
	assert.Equal(t, 0, char.HP)
	assert.True(t, char.IsDead())

	char.Heal(char.MaxHP + 100)
	assert.Equal(t, char.MaxHP, char.HP)
	assert.False(t, char.IsDead())
}

func TestMonsterSnapshotDamageFloorsAtZero(t *testing.T) {
	_, monster := testSnapshots()
	monster.ApplyDamage(5)
	assert.Equal(t, 15, monster.HP)
	monster.ApplyDamage(100)
	assert.Equal(t, 0, monster.HP)
	assert.True(t, monster.IsDead())
}

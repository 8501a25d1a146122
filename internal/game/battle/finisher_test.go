package battle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/encounter"
	"github.com/fennwald/emberquest/internal/game/reward"
)

type fakeCharacterStore struct {
	char  *character.Character
	saved bool
}

func (s *fakeCharacterStore) Get(_ context.Context, _ int64) (*character.Character, error) {
	return s.char, nil
}

func (s *fakeCharacterStore) Save(_ context.Context, _ *character.Character) error {
	s.saved = true
	return nil
}

type fakeHistoryStore struct {
	entries []battle.HistoryEntry
}

func (s *fakeHistoryStore) Record(_ context.Context, entry battle.HistoryEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func finisherFixture(t *testing.T) (*battle.RewardFinisher, *fakeCharacterStore, *fakeHistoryStore, *battle.Session) {
	t.Helper()

	c := character.New("Arin")
	c.ID = 11
	c.Gold = 250
	chars := &fakeCharacterStore{char: c}
	history := &fakeHistoryStore{}

	f := battle.NewRewardFinisher(chars, history, &scriptSource{}, zaptest.NewLogger(t))

	wolf := &encounter.Monster{
		ID:    "wolf",
		Name:  "Wolf",
		Level: 4,
		MaxHP: 30,
		Stats: character.BaseStats{Attack: 12, Defense: 4, Agility: 10, Evasion: 8, Accuracy: 75},
	}
	sess := battle.NewSession(1, battle.SnapshotCharacter(c, c.Stats), battle.SnapshotMonster(wolf), "forest")
	return f, chars, history, sess
}

func TestFinishVictoryAwardsExperienceAndGold(t *testing.T) {
	f, chars, history, sess := finisherFixture(t)
	sess.Turn = 3
	sess.Character.HP = 30
	require.NoError(t, sess.Complete())

	require.NoError(t, f.Finish(context.Background(), sess, reward.ResultVictory))

	// 102 experience against a 100 threshold yields one level-up, which
	// refills vitals.
	assert.Equal(t, 2, chars.char.Level)
	assert.Equal(t, 2, chars.char.Experience)
	assert.Equal(t, chars.char.MaxHP, chars.char.HP)
	// Midline variance puts the gold gain at exactly level * 8.
	assert.Equal(t, 250+32, chars.char.Gold)
	assert.True(t, chars.saved)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, sess.BattleID, entry.BattleID)
	assert.Equal(t, reward.ResultVictory, entry.Result)
	assert.Equal(t, 102, entry.Experience)
	assert.Equal(t, 32, entry.GoldDelta)
	assert.Equal(t, 1, entry.LevelsGained)
}

func TestFinishVictoryWithoutLevelUpKeepsBattleToll(t *testing.T) {
	f, chars, _, sess := finisherFixture(t)
	// A quick win grants the bonus multiplier: round(4*15 * 1.9) = 114,
	// still one level at a 100 threshold; stretch the fight instead.
	sess.Turn = 20
	sess.Character.HP = 12
	sess.Character.SP = 7
	require.NoError(t, sess.Complete())

	require.NoError(t, f.Finish(context.Background(), sess, reward.ResultVictory))

	// 15 turns past the bonus window floors the multiplier at 0.5:
	// round(60 * 0.5) = 30 experience, no level-up.
	assert.Equal(t, 1, chars.char.Level)
	assert.Equal(t, 30, chars.char.Experience)
	assert.Equal(t, 12, chars.char.HP)
	assert.Equal(t, 7, chars.char.SP)
}

func TestFinishDefeatCostsGoldAndRevivesAtOneHP(t *testing.T) {
	f, chars, history, sess := finisherFixture(t)
	sess.Character.HP = 0
	require.NoError(t, sess.Complete())

	require.NoError(t, f.Finish(context.Background(), sess, reward.ResultDefeat))

	assert.Equal(t, 1, chars.char.Level)
	assert.Equal(t, 0, chars.char.Experience)
	assert.Equal(t, 225, chars.char.Gold)
	assert.Equal(t, 1, chars.char.HP)

	require.Len(t, history.entries, 1)
	assert.Equal(t, reward.ResultDefeat, history.entries[0].Result)
	assert.Equal(t, -25, history.entries[0].GoldDelta)
}

func TestFinishEscapeCostsHalfTheDefeatToll(t *testing.T) {
	f, chars, _, sess := finisherFixture(t)
	sess.Character.HP = 40
	require.NoError(t, sess.Complete())

	require.NoError(t, f.Finish(context.Background(), sess, reward.ResultEscape))

	assert.Equal(t, 0, chars.char.Experience)
	assert.Equal(t, 250-13, chars.char.Gold)
	assert.Equal(t, 40, chars.char.HP)
}

func TestFinishGoldNeverGoesNegative(t *testing.T) {
	f, chars, _, sess := finisherFixture(t)
	chars.char.Gold = 0
	require.NoError(t, sess.Complete())

	require.NoError(t, f.Finish(context.Background(), sess, reward.ResultDefeat))
	assert.Equal(t, 0, chars.char.Gold)
}

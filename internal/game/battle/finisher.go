package battle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/dice"
	"github.com/fennwald/emberquest/internal/game/reward"
)

// CharacterStore persists reward outcomes onto the live character record.
type CharacterStore interface {
	Get(ctx context.Context, characterID int64) (*character.Character, error)
	// Save persists the character's level, experience, gold, and vitals.
	Save(ctx context.Context, c *character.Character) error
}

// HistoryEntry is one completed-battle record for the battle history log.
type HistoryEntry struct {
	BattleID     string
	UserID       int64
	CharacterID  int64
	MonsterID    string
	Location     string
	Result       reward.Result
	Turns        int
	Experience   int
	GoldDelta    int
	LevelsGained int
	EndedAt      time.Time
}

// HistoryStore appends completed-battle records. Records are insert-only.
type HistoryStore interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// RewardFinisher computes and applies terminal battle rewards: experience
// and gold on victory, gold loss on defeat or escape, and one history
// record either way.
type RewardFinisher struct {
	characters CharacterStore
	history    HistoryStore
	src        dice.Source
	logger     *zap.Logger
}

// NewRewardFinisher wires a RewardFinisher.
//
// Precondition: all arguments must be non-nil.
func NewRewardFinisher(characters CharacterStore, history HistoryStore, src dice.Source, logger *zap.Logger) *RewardFinisher {
	return &RewardFinisher{
		characters: characters,
		history:    history,
		src:        src,
		logger:     logger,
	}
}

// Finish applies rewards for the completed session and records history.
// Snapshot vitals are written back to the live character, except after a
// defeat, where the character is revived at 1 HP.
//
// Postcondition: the character's gold never drops below 0, and exactly one
// history record is written per completed battle.
func (f *RewardFinisher) Finish(ctx context.Context, s *Session, result reward.Result) error {
	c, err := f.characters.Get(ctx, s.Character.CharacterID)
	if err != nil {
		return fmt.Errorf("loading character %d: %w", s.Character.CharacterID, err)
	}

	exp := reward.Experience(s.Monster.Level, s.Turn, result)
	goldDelta := reward.GoldGain(f.src, s.Monster.Level, result) - reward.GoldLoss(c.Gold, result)

	levels := c.GainExperience(exp)
	c.Gold += goldDelta
	if c.Gold < 0 {
		c.Gold = 0
	}

	// Level-ups refill vitals; otherwise carry the battle's toll over.
	if levels == 0 {
		c.SetHP(s.Character.HP)
		c.SetMP(s.Character.MP)
		c.SetSP(s.Character.SP)
	}
	if result == reward.ResultDefeat {
		c.SetHP(1)
	}

	if err := f.characters.Save(ctx, c); err != nil {
		return fmt.Errorf("saving character %d: %w", c.ID, err)
	}

	entry := HistoryEntry{
		BattleID:     s.BattleID,
		UserID:       s.UserID,
		CharacterID:  c.ID,
		MonsterID:    s.Monster.MonsterID,
		Location:     s.Location,
		Result:       result,
		Turns:        s.Turn,
		Experience:   exp,
		GoldDelta:    goldDelta,
		LevelsGained: levels,
		EndedAt:      time.Now().UTC(),
	}
	if err := f.history.Record(ctx, entry); err != nil {
		return fmt.Errorf("recording battle history: %w", err)
	}

	f.logger.Info("battle rewards applied",
		zap.String("battle_id", s.BattleID),
		zap.String("result", string(result)),
		zap.Int("experience", exp),
		zap.Int("gold_delta", goldDelta),
		zap.Int("levels_gained", levels),
	)
	return nil
}

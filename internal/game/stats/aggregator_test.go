package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/stats"
)

func base() character.BaseStats {
	return character.BaseStats{Attack: 10, Defense: 8, Agility: 8, Evasion: 5, MagicAttack: 6, Accuracy: 80}
}

func TestAggregate_NoContributions(t *testing.T) {
	got := stats.Aggregate(base())
	assert.Equal(t, base(), got.Stats)
	assert.Equal(t, stats.NeutralMovement(), got.Movement)
	assert.Nil(t, got.Special)
}

func TestAggregate_EquipmentSumsFieldwise(t *testing.T) {
	got := stats.Aggregate(base(),
		stats.Contribution{Values: stats.EffectValues{Attack: 5, Defense: 3}, Scale: 1},
		stats.Contribution{Values: stats.EffectValues{Attack: 2, Evasion: 1}, Scale: 1},
	)
	assert.Equal(t, 17, got.Stats.Attack)
	assert.Equal(t, 11, got.Stats.Defense)
	assert.Equal(t, 6, got.Stats.Evasion)
}

func TestAggregate_SkillScalesWithLevel(t *testing.T) {
	got := stats.Aggregate(base(),
		stats.Contribution{Values: stats.EffectValues{Attack: 2}, Scale: 3},
	)
	assert.Equal(t, 16, got.Stats.Attack, "skill bonus multiplies by level")
}

func TestAggregate_MovementKeptSeparate(t *testing.T) {
	got := stats.Aggregate(base(),
		stats.Contribution{Values: stats.EffectValues{DiceBonus: 2, ExtraDice: 1, MovementMultiplier: 1.5}, Scale: 1},
		stats.Contribution{Values: stats.EffectValues{DiceBonus: 1, MovementMultiplier: 2.0}, Scale: 1},
	)
	assert.Equal(t, base(), got.Stats, "movement fields never touch combat stats")
	assert.Equal(t, 3, got.Movement.DiceBonus)
	assert.Equal(t, 1, got.Movement.ExtraDice)
	assert.InDelta(t, 3.0, got.Movement.Multiplier, 1e-9, "multipliers compound")
}

func TestAggregate_SpecialKeysPreserved(t *testing.T) {
	got := stats.Aggregate(base(),
		stats.Contribution{Values: stats.EffectValues{Extra: map[string]float64{"status_immunity": 1}}, Scale: 1},
		stats.Contribution{Values: stats.EffectValues{Extra: map[string]float64{"status_immunity": 1, "thorns": 4}}, Scale: 1},
	)
	assert.True(t, got.HasSpecial("status_immunity"))
	assert.InDelta(t, 2.0, got.Special["status_immunity"], 1e-9)
	assert.InDelta(t, 4.0, got.Special["thorns"], 1e-9)
	assert.False(t, got.HasSpecial("unknown"))
}

func TestAggregate_NegativeScaleContributesZero(t *testing.T) {
	got := stats.Aggregate(base(),
		stats.Contribution{Values: stats.EffectValues{Attack: 100, MovementMultiplier: 5}, Scale: -2},
	)
	assert.Equal(t, base(), got.Stats)
	assert.Equal(t, stats.NeutralMovement(), got.Movement)
}

func TestAggregate_DoesNotMutateInputs(t *testing.T) {
	b := base()
	extra := map[string]float64{"k": 1}
	contrib := stats.Contribution{Values: stats.EffectValues{Attack: 3, Extra: extra}, Scale: 2}
	_ = stats.Aggregate(b, contrib)
	assert.Equal(t, base(), b)
	assert.InDelta(t, 1.0, extra["k"], 1e-9)
}

// Aggregation is field-wise linear: contributing (a then b) equals
// contributing (b then a).
func TestAggregate_Property_OrderIndependentStats(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		va := stats.EffectValues{
			Attack:  rapid.IntRange(-10, 10).Draw(rt, "a_atk"),
			Defense: rapid.IntRange(-10, 10).Draw(rt, "a_def"),
		}
		vb := stats.EffectValues{
			Attack:  rapid.IntRange(-10, 10).Draw(rt, "b_atk"),
			Evasion: rapid.IntRange(-10, 10).Draw(rt, "b_eva"),
		}
		sa := rapid.IntRange(0, 5).Draw(rt, "a_scale")
		sb := rapid.IntRange(0, 5).Draw(rt, "b_scale")

		ab := stats.Aggregate(base(),
			stats.Contribution{Values: va, Scale: sa},
			stats.Contribution{Values: vb, Scale: sb},
		)
		ba := stats.Aggregate(base(),
			stats.Contribution{Values: vb, Scale: sb},
			stats.Contribution{Values: va, Scale: sa},
		)
		assert.Equal(rt, ab.Stats, ba.Stats)
	})
}

func TestEffectValues_IsZero(t *testing.T) {
	assert.True(t, stats.EffectValues{}.IsZero())
	assert.False(t, stats.EffectValues{Attack: 1}.IsZero())
	assert.False(t, stats.EffectValues{MovementMultiplier: 1.2}.IsZero())
	assert.False(t, stats.EffectValues{Extra: map[string]float64{"x": 1}}.IsZero())
}

func TestEffectValues_StatDelta(t *testing.T) {
	v := stats.EffectValues{Attack: 2, Defense: 1, MagicAttack: 3}
	d := v.StatDelta(4)
	assert.Equal(t, character.BaseStats{Attack: 8, Defense: 4, MagicAttack: 12}, d)
}

package stats

import "github.com/fennwald/emberquest/internal/game/character"

// Contribution is one bonus source feeding the aggregation: an equipped
// item (scale 1), a skill (scale = skill level), or an active effect
// (scale 1).
type Contribution struct {
	Values EffectValues
	Scale  int
}

// Computed is the effective stat set produced by Aggregate.
type Computed struct {
	// Stats is the combat stat block after all contributions.
	Stats character.BaseStats
	// Movement aggregates the movement-only fields separately.
	Movement MovementEffects
	// Special preserves unmatched effect keys (summed per key, scaled).
	Special map[string]float64
}

// HasSpecial reports whether the named special effect was contributed with
// a non-zero value.
func (c Computed) HasSpecial(key string) bool {
	return c.Special[key] != 0
}

// Aggregate combines base stats with every contribution into an effective
// stat set. Pure function: no input is mutated, missing contributions
// simply add zero.
//
// Combat stat fields sum field-wise, each contribution multiplied by its
// scale. Movement fields aggregate separately: dice bonuses and extra dice
// sum, multipliers compound multiplicatively (a zero multiplier on a
// contribution means "no change", not "times zero"). Extra keys sum into
// Special, scaled.
//
// Postcondition: result.Movement.Multiplier > 0 when all contributed
// multipliers are > 0; result.Special is non-nil only if at least one
// extra key was contributed.
func Aggregate(base character.BaseStats, contribs ...Contribution) Computed {
	out := Computed{
		Stats:    base,
		Movement: NeutralMovement(),
	}

	for _, c := range contribs {
		scale := c.Scale
		if scale < 0 {
			scale = 0
		}
		out.Stats = out.Stats.Add(c.Values.StatDelta(scale))

		out.Movement.DiceBonus += c.Values.DiceBonus * scale
		out.Movement.ExtraDice += c.Values.ExtraDice * scale
		if c.Values.MovementMultiplier != 0 && scale > 0 {
			out.Movement.Multiplier *= c.Values.MovementMultiplier
		}

		for key, val := range c.Values.Extra {
			if out.Special == nil {
				out.Special = make(map[string]float64)
			}
			out.Special[key] += val * float64(scale)
		}
	}

	return out
}

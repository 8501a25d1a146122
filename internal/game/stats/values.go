// Package stats defines the typed effect-value structure and the pure
// aggregation of base stats, equipment, skills, and temporary effects into
// an effective stat set.
package stats

import "github.com/fennwald/emberquest/internal/game/character"

// EffectValues is the tagged representation of an effect map. Known numeric
// fields are explicit struct members; anything else lands in Extra so that
// forward-compatible or custom keys are preserved rather than silently
// dropped.
type EffectValues struct {
	// Combat stat deltas.
	Attack      int `yaml:"attack"`
	Defense     int `yaml:"defense"`
	Agility     int `yaml:"agility"`
	Evasion     int `yaml:"evasion"`
	MagicAttack int `yaml:"magic_attack"`
	Accuracy    int `yaml:"accuracy"`

	// Movement-only fields; never folded into combat stats.
	DiceBonus          int     `yaml:"dice_bonus"`
	ExtraDice          int     `yaml:"extra_dice"`
	MovementMultiplier float64 `yaml:"movement_multiplier"`

	// Restoration fields consumed by the effect-application step.
	RestoreHP int `yaml:"restore_hp"`
	RestoreMP int `yaml:"restore_mp"`
	RestoreSP int `yaml:"restore_sp"`

	// Extra holds unmatched keys such as status_immunity.
	Extra map[string]float64 `yaml:"extra"`
}

// StatDelta returns the combat-stat portion of the values, multiplied by
// scale. Movement and restoration fields are excluded.
//
// Precondition: scale >= 0.
func (v EffectValues) StatDelta(scale int) character.BaseStats {
	return character.BaseStats{
		Attack:      v.Attack * scale,
		Defense:     v.Defense * scale,
		Agility:     v.Agility * scale,
		Evasion:     v.Evasion * scale,
		MagicAttack: v.MagicAttack * scale,
		Accuracy:    v.Accuracy * scale,
	}
}

// Scaled returns a copy with every additive numeric field multiplied by
// scale. MovementMultiplier is compounding, not additive, so it passes
// through unchanged.
//
// Precondition: scale >= 0.
func (v EffectValues) Scaled(scale int) EffectValues {
	out := v
	out.Attack *= scale
	out.Defense *= scale
	out.Agility *= scale
	out.Evasion *= scale
	out.MagicAttack *= scale
	out.Accuracy *= scale
	out.DiceBonus *= scale
	out.ExtraDice *= scale
	out.RestoreHP *= scale
	out.RestoreMP *= scale
	out.RestoreSP *= scale
	if len(v.Extra) > 0 {
		out.Extra = make(map[string]float64, len(v.Extra))
		for k, val := range v.Extra {
			out.Extra[k] = val * float64(scale)
		}
	}
	return out
}

// IsZero reports whether every field holds its zero value.
func (v EffectValues) IsZero() bool {
	return v.Attack == 0 && v.Defense == 0 && v.Agility == 0 &&
		v.Evasion == 0 && v.MagicAttack == 0 && v.Accuracy == 0 &&
		v.DiceBonus == 0 && v.ExtraDice == 0 && v.MovementMultiplier == 0 &&
		v.RestoreHP == 0 && v.RestoreMP == 0 && v.RestoreSP == 0 &&
		len(v.Extra) == 0
}

// MovementEffects is the movement-subsystem projection of aggregated
// effects. The zero bonus identity is {0, 0, 1.0}.
type MovementEffects struct {
	DiceBonus  int
	ExtraDice  int
	Multiplier float64
}

// NeutralMovement returns the identity movement projection.
//
// Postcondition: DiceBonus == 0, ExtraDice == 0, Multiplier == 1.0.
func NeutralMovement() MovementEffects {
	return MovementEffects{Multiplier: 1.0}
}

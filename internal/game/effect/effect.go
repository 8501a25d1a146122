// Package effect tracks time-limited buffs: duration countdown, activation
// state, and the movement-subsystem projection.
package effect

import (
	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/game/stats"
)

// Source identifies what created a temporary effect.
type Source string

const (
	// SourceSkill marks effects created by skill activation.
	SourceSkill Source = "skill"
	// SourceItem marks effects created by item use.
	SourceItem Source = "item"
)

// ActiveEffect is one temporary modifier on a character.
//
// Invariant: RemainingDuration reaches 0 exactly when IsActive becomes
// false, and is monotonically non-increasing otherwise.
type ActiveEffect struct {
	ID          int64
	CharacterID int64

	Name   string
	Source Source

	Values            stats.EffectValues
	RemainingDuration int
	IsActive          bool
}

// DecreaseDuration reduces the effect's remaining duration by amount,
// clamping at 0 and deactivating the effect when it expires.
//
// Precondition: amount >= 1.
// Postcondition: Returns true iff the effect is still active;
// e.RemainingDuration >= 0; e.IsActive == (e.RemainingDuration > 0).
func (e *ActiveEffect) DecreaseDuration(amount int) bool {
	if !e.IsActive {
		return false
	}
	e.RemainingDuration -= amount
	if e.RemainingDuration <= 0 {
		e.RemainingDuration = 0
		e.IsActive = false
	}
	return e.IsActive
}

// Projection is the movement-subsystem view of an effect.
type Projection struct {
	Movement stats.MovementEffects
	Special  map[string]float64
}

// ProjectMovement returns the effect's movement projection: dice bonus,
// extra dice, movement multiplier, and any special effect keys. Inactive or
// expired effects project the neutral identity.
//
// Postcondition: inactive effects yield DiceBonus 0, ExtraDice 0,
// Multiplier 1.0, and no special effects.
func (e *ActiveEffect) ProjectMovement() Projection {
	p := Projection{Movement: stats.NeutralMovement()}
	if !e.IsActive || e.RemainingDuration <= 0 {
		return p
	}
	p.Movement.DiceBonus = e.Values.DiceBonus
	p.Movement.ExtraDice = e.Values.ExtraDice
	if e.Values.MovementMultiplier != 0 {
		p.Movement.Multiplier = e.Values.MovementMultiplier
	}
	if len(e.Values.Extra) > 0 {
		p.Special = make(map[string]float64, len(e.Values.Extra))
		for k, v := range e.Values.Extra {
			p.Special[k] = v
		}
	}
	return p
}

// Contribution returns the effect's stat-aggregation contribution.
// Inactive effects contribute at scale 0.
func (e *ActiveEffect) Contribution() stats.Contribution {
	scale := 1
	if !e.IsActive {
		scale = 0
	}
	return stats.Contribution{Values: e.Values, Scale: scale}
}

// Tracker holds the active effects for one character.
// It is not safe for concurrent use; the caller must serialise access.
type Tracker struct {
	characterID int64
	effects     []*ActiveEffect
}

// NewTracker creates an empty Tracker for the given character.
func NewTracker(characterID int64) *Tracker {
	return &Tracker{characterID: characterID}
}

// Create adds a temporary effect with the given duration.
//
// Re-applying an effect with the same name and source refreshes the
// existing one: its duration becomes max(existing, duration) and its
// values are overwritten. Durations never stack.
//
// Precondition: duration >= 1.
// Postcondition: Returns the live effect with IsActive == true and
// RemainingDuration >= duration's prior remaining value, or a
// fault.ValidationError for an empty name or non-positive duration.
func (t *Tracker) Create(name string, values stats.EffectValues, duration int, source Source) (*ActiveEffect, error) {
	if name == "" {
		return nil, fault.Validationf("invalid_effect_name", "effect name must not be empty")
	}
	if duration < 1 {
		return nil, fault.Validationf("invalid_effect_duration", "duration must be >= 1, got %d", duration)
	}

	if existing := t.find(name, source); existing != nil && existing.IsActive {
		if duration > existing.RemainingDuration {
			existing.RemainingDuration = duration
		}
		existing.Values = values
		return existing, nil
	}

	e := &ActiveEffect{
		CharacterID:       t.characterID,
		Name:              name,
		Source:            source,
		Values:            values,
		RemainingDuration: duration,
		IsActive:          true,
	}
	t.effects = append(t.effects, e)
	return e, nil
}

// find returns the tracked effect with the given name and source, or nil.
func (t *Tracker) find(name string, source Source) *ActiveEffect {
	for _, e := range t.effects {
		if e.Name == name && e.Source == source {
			return e
		}
	}
	return nil
}

// Tick decrements every active effect's duration by 1 and returns the
// names of effects that expired on this tick. Expired effects are dropped
// from the tracker.
//
// Postcondition: Every returned name corresponds to an effect whose
// IsActive is now false.
func (t *Tracker) Tick() []string {
	var expired []string
	kept := t.effects[:0]
	for _, e := range t.effects {
		if e.DecreaseDuration(1) {
			kept = append(kept, e)
		} else {
			expired = append(expired, e.Name)
		}
	}
	t.effects = kept
	return expired
}

// Active returns the currently active effects.
//
// The slice is a new allocation, but the pointed-to effects are shared.
func (t *Tracker) Active() []*ActiveEffect {
	out := make([]*ActiveEffect, 0, len(t.effects))
	for _, e := range t.effects {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

// Contributions returns one stats.Contribution per active effect.
func (t *Tracker) Contributions() []stats.Contribution {
	active := t.Active()
	out := make([]stats.Contribution, 0, len(active))
	for _, e := range active {
		out = append(out, e.Contribution())
	}
	return out
}

// ProjectMovement folds every active effect's movement projection into a
// single block for the movement subsystem: bonuses and extra dice sum,
// multipliers compound.
//
// Postcondition: with no active effects the result is the neutral identity.
func (t *Tracker) ProjectMovement() Projection {
	out := Projection{Movement: stats.NeutralMovement()}
	for _, e := range t.Active() {
		p := e.ProjectMovement()
		out.Movement.DiceBonus += p.Movement.DiceBonus
		out.Movement.ExtraDice += p.Movement.ExtraDice
		out.Movement.Multiplier *= p.Movement.Multiplier
		for k, v := range p.Special {
			if out.Special == nil {
				out.Special = make(map[string]float64)
			}
			out.Special[k] += v
		}
	}
	return out
}

// Package skill defines per-character skills and their leveling lifecycle.
package skill

import (
	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/game/stats"
)

// Type classifies how a skill resolves in combat.
type Type string

const (
	// TypePhysical resolves with the actor's attack stat.
	TypePhysical Type = "physical"
	// TypeMagical resolves with the actor's magic_attack stat.
	TypeMagical Type = "magical"
	// TypeSupport always hits, deals no damage, and applies its effect
	// through the effect-application step.
	TypeSupport Type = "support"
)

// validTypes is the set of valid skill types.
var validTypes = map[Type]bool{
	TypePhysical: true,
	TypeMagical:  true,
	TypeSupport:  true,
}

// ExperienceThreshold returns the skill experience required to advance
// from the given level to the next one.
//
// Precondition: level >= 1.
func ExperienceThreshold(level int) int {
	return level * 50
}

// Skill is a per-character skill. Created on first use at level 1; effect
// values scale linearly with level.
//
// Invariant: Level >= 1; Experience < ExperienceThreshold(Level).
type Skill struct {
	ID          int64
	CharacterID int64

	Type       Type
	Name       string
	Level      int
	Experience int

	// Effects hold the per-level effect values; the aggregated
	// contribution is Effects scaled by Level.
	Effects   stats.EffectValues
	BasePower int
	SPCost    int
	Accuracy  int
	// Duration is the number of ticks a temporary effect created by this
	// skill lasts. 0 means instantaneous.
	Duration int
	Active   bool
}

// New creates a level-1 active skill of the given type.
//
// Postcondition: Returns the skill, or a fault.ValidationError for an
// unknown type or empty name.
func New(characterID int64, typ Type, name string) (*Skill, error) {
	if !validTypes[typ] {
		return nil, fault.Validationf("invalid_skill_type", "unknown skill type %q", typ)
	}
	if name == "" {
		return nil, fault.Validationf("invalid_skill_name", "skill name must not be empty")
	}
	return &Skill{
		CharacterID: characterID,
		Type:        typ,
		Name:        name,
		Level:       1,
		Active:      true,
	}, nil
}

// GainExperience adds amount skill experience and applies any level-ups it
// pays for.
//
// Precondition: amount >= 0.
// Postcondition: Returns levels gained (>= 0); the threshold invariant
// holds afterwards.
func (s *Skill) GainExperience(amount int) int {
	s.Experience += amount
	levels := 0
	for s.Experience >= ExperienceThreshold(s.Level) {
		s.Experience -= ExperienceThreshold(s.Level)
		s.Level++
		levels++
	}
	return levels
}

// Contribution returns the skill's aggregation contribution: its effect
// values at a scale equal to the current level. Deactivated skills
// contribute at scale 0.
func (s *Skill) Contribution() stats.Contribution {
	scale := s.Level
	if !s.Active {
		scale = 0
	}
	return stats.Contribution{Values: s.Effects, Scale: scale}
}

// Deactivate switches the skill off; its bonuses stop contributing until
// reactivated.
func (s *Skill) Deactivate() {
	s.Active = false
}

// Activate switches the skill back on.
func (s *Skill) Activate() {
	s.Active = true
}

// IsMagical reports whether the skill resolves with magic attack power.
func (s *Skill) IsMagical() bool {
	return s.Type == TypeMagical
}

// IsSupport reports whether the skill is a support skill.
func (s *Skill) IsSupport() bool {
	return s.Type == TypeSupport
}

// Package combat resolves single attack or skill turns: hit, crit, damage.
package combat

import (
	"fmt"
	"math"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/dice"
	"github.com/fennwald/emberquest/internal/game/skill"
)

// Hit chance floor, critical parameters, and damage variance bounds.
const (
	hitChanceFloor = 10
	critChance     = 10
	critMultiplier = 1.5

	varianceLow  = 0.80
	varianceHigh = 1.20
)

// ActionResult holds the outcome of one resolved action.
type ActionResult struct {
	// Hit reports whether the action connected.
	Hit bool
	// Damage is the final damage dealt; 0 on miss and for support skills.
	Damage int
	// Critical is true when the critical roll succeeded on a hit.
	Critical bool
	// Message is the narrative line for the battle log.
	Message string
}

// Resolver resolves actions using an injected randomness source.
// No method mutates actor or target state; callers apply HP deltas.
type Resolver struct {
	src dice.Source
}

// NewResolver creates a Resolver drawing randomness from src.
//
// Precondition: src must be non-nil.
func NewResolver(src dice.Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve performs one action by actor against target. sk may be nil for a
// plain physical attack (base power 0, no bonus accuracy).
//
// Support skills always hit, deal no damage, and report a usage message;
// their game effect is applied by the effect-application step, not here.
//
// Hit chance is max(10, actorAccuracy + skillAccuracy - targetEvasion)
// against a uniform roll in [1, 100]. On hit, damage is
// max(1, basePower + attackPower - targetDefense) scaled by a uniform
// variance in [0.80, 1.20] and rounded, floor 1. An independent 10% roll
// makes the hit critical, multiplying damage by 1.5 (rounded).
//
// Postcondition: result.Hit implies result.Damage >= 1 for non-support
// actions; actor and target are unmodified.
func (r *Resolver) Resolve(actorName string, actor character.BaseStats, targetName string, target character.BaseStats, sk *skill.Skill) ActionResult {
	if sk != nil && sk.IsSupport() {
		return ActionResult{
			Hit:     true,
			Message: fmt.Sprintf("%s uses %s.", actorName, sk.Name),
		}
	}

	basePower := 0
	skillAccuracy := 0
	magical := false
	actionName := "attack"
	if sk != nil {
		basePower = sk.BasePower
		skillAccuracy = sk.Accuracy
		magical = sk.IsMagical()
		actionName = sk.Name
	}

	attackPower := actor.Attack
	if magical {
		attackPower = actor.MagicAttack
	}
	baseDamage := basePower + attackPower

	hitChance := actor.Accuracy + skillAccuracy - target.Evasion
	if hitChance < hitChanceFloor {
		hitChance = hitChanceFloor
	}
	if dice.Percent(r.src) > hitChance {
		return ActionResult{
			Message: fmt.Sprintf("%s's %s misses %s.", actorName, actionName, targetName),
		}
	}

	damage := baseDamage - target.Defense
	if damage < 1 {
		damage = 1
	}
	damage = int(math.Round(float64(damage) * dice.Variance(r.src, varianceLow, varianceHigh)))
	if damage < 1 {
		damage = 1
	}

	if dice.Percent(r.src) <= critChance {
		damage = int(math.Round(float64(damage) * critMultiplier))
		return ActionResult{
			Hit:      true,
			Damage:   damage,
			Critical: true,
			Message:  fmt.Sprintf("%s's %s critically hits %s for %d damage!", actorName, actionName, targetName, damage),
		}
	}

	return ActionResult{
		Hit:     true,
		Damage:  damage,
		Message: fmt.Sprintf("%s's %s hits %s for %d damage.", actorName, actionName, targetName, damage),
	}
}

// Package reward computes experience and gold deltas at battle end and
// applies them through the persistence collaborators.
package reward

import (
	"math"

	"github.com/fennwald/emberquest/internal/game/dice"
)

// Result is the terminal outcome of a battle.
type Result string

const (
	// ResultVictory means the monster's HP reached 0.
	ResultVictory Result = "victory"
	// ResultDefeat means the character's HP reached 0.
	ResultDefeat Result = "defeat"
	// ResultEscape means the character fled successfully.
	ResultEscape Result = "escape"
)

// Experience and gold formula parameters.
const (
	baseExpFloor     = 10
	expPerLevel      = 15
	turnBonusBase    = 2.0
	turnBonusPerTurn = 0.1
	turnBonusFloor   = 0.5

	defeatGoldLossRate = 0.10
	escapeGoldLossRate = 0.05
	goldPerLevel       = 8
)

// Experience returns the experience earned for a battle.
//
// Only victories award experience: baseExp = max(10, monsterLevel*15)
// scaled by turnBonus = max(0.5, 2 - turns*0.1), rounded.
//
// Precondition: monsterLevel >= 1, turns >= 1.
// Postcondition: result >= 0; result == 0 unless result is victory.
func Experience(monsterLevel, turns int, result Result) int {
	if result != ResultVictory {
		return 0
	}
	baseExp := monsterLevel * expPerLevel
	if baseExp < baseExpFloor {
		baseExp = baseExpFloor
	}
	turnBonus := turnBonusBase - float64(turns)*turnBonusPerTurn
	if turnBonus < turnBonusFloor {
		turnBonus = turnBonusFloor
	}
	return int(math.Round(float64(baseExp) * turnBonus))
}

// GoldLoss returns the gold forfeited for a battle: 10% of held gold on
// defeat, 5% on escape, 0 otherwise, rounded.
//
// Precondition: characterGold >= 0.
// Postcondition: 0 <= result <= characterGold.
func GoldLoss(characterGold int, result Result) int {
	switch result {
	case ResultDefeat:
		return int(math.Round(float64(characterGold) * defeatGoldLossRate))
	case ResultEscape:
		return int(math.Round(float64(characterGold) * escapeGoldLossRate))
	default:
		return 0
	}
}

// GoldGain returns the gold looted on victory: monsterLevel*8 scaled by a
// uniform variance in [0.80, 1.20], rounded. Non-victories yield 0.
//
// Precondition: src must be non-nil; monsterLevel >= 1.
// Postcondition: result >= 0.
func GoldGain(src dice.Source, monsterLevel int, result Result) int {
	if result != ResultVictory {
		return 0
	}
	base := float64(monsterLevel * goldPerLevel)
	return int(math.Round(base * dice.Variance(src, 0.80, 1.20)))
}

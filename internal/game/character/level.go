package character

import "github.com/fennwald/emberquest/internal/game/fault"

// Per-level growth applied on each level-up.
const (
	growthMaxHP  = 10
	growthMaxMP  = 5
	growthMaxSP  = 5
	growthAttack = 2
	growthOther  = 1
)

// ExperienceThreshold returns the experience required to advance from the
// given level to the next one.
//
// Precondition: level >= 1.
func ExperienceThreshold(level int) int {
	return level * 100
}

// New creates a level-1 character with starting stats and full vitals.
//
// Postcondition: Level == 1; ExperienceToNext == 100; HP/MP/SP at max.
func New(name string) *Character {
	c := &Character{
		Name:             name,
		Level:            1,
		ExperienceToNext: ExperienceThreshold(1),
		MaxHP:            50,
		MaxMP:            20,
		MaxSP:            20,
		Stats: BaseStats{
			Attack:      10,
			Defense:     8,
			Agility:     8,
			Evasion:     5,
			MagicAttack: 6,
			Accuracy:    80,
		},
	}
	c.RestoreAll()
	return c
}

// GainExperience adds amount experience and applies any level-ups it pays
// for. Multiple levels in one call are supported. Each level-up grows max
// vitals and stats, refills vitals to max, and recomputes ExperienceToNext
// as level * 100.
//
// Precondition: amount >= 0.
// Postcondition: Returns the number of levels gained (>= 0);
// c.ExperienceToNext == ExperienceThreshold(c.Level).
func (c *Character) GainExperience(amount int) int {
	c.Experience += amount

	levels := 0
	for c.Experience >= c.ExperienceToNext {
		c.Experience -= c.ExperienceToNext
		c.Level++
		levels++

		c.MaxHP += growthMaxHP
		c.MaxMP += growthMaxMP
		c.MaxSP += growthMaxSP
		c.Stats.Attack += growthAttack
		c.Stats.Defense += growthOther
		c.Stats.Agility += growthOther
		c.Stats.Evasion += growthOther
		c.Stats.MagicAttack += growthOther
		c.Stats.Accuracy += growthOther

		c.RestoreAll()
		c.ExperienceToNext = ExperienceThreshold(c.Level)
	}
	return levels
}

// SpendMP deducts cost from current MP.
//
// Postcondition: Returns a fault.ValidationError if MP < cost; otherwise
// MP is reduced by cost and remains >= 0.
func (c *Character) SpendMP(cost int) error {
	if c.MP < cost {
		return fault.Validationf("insufficient_mp", "need %d MP, have %d", cost, c.MP)
	}
	c.MP -= cost
	return nil
}

// SpendSP deducts cost from current SP.
//
// Postcondition: Returns a fault.ValidationError if SP < cost; otherwise
// SP is reduced by cost and remains >= 0.
func (c *Character) SpendSP(cost int) error {
	if c.SP < cost {
		return fault.Validationf("insufficient_sp", "need %d SP, have %d", cost, c.SP)
	}
	c.SP -= cost
	return nil
}

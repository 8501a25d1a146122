// Package character defines the character domain model and pure leveling logic.
package character

import "time"

// BaseStats holds the six combat stat values for a character or monster.
type BaseStats struct {
	Attack      int `yaml:"attack" json:"attack"`
	Defense     int `yaml:"defense" json:"defense"`
	Agility     int `yaml:"agility" json:"agility"`
	Evasion     int `yaml:"evasion" json:"evasion"`
	MagicAttack int `yaml:"magic_attack" json:"magic_attack"`
	Accuracy    int `yaml:"accuracy" json:"accuracy"`
}

// Add returns the field-wise sum of two stat sets.
func (s BaseStats) Add(o BaseStats) BaseStats {
	return BaseStats{
		Attack:      s.Attack + o.Attack,
		Defense:     s.Defense + o.Defense,
		Agility:     s.Agility + o.Agility,
		Evasion:     s.Evasion + o.Evasion,
		MagicAttack: s.MagicAttack + o.MagicAttack,
		Accuracy:    s.Accuracy + o.Accuracy,
	}
}

// Character represents a player character's persistent state.
//
// UserID and ID are set by the persistence layer; zero values indicate an
// unsaved character.
//
// Invariant: 0 <= HP <= MaxHP (same for MP and SP); Level >= 1;
// ExperienceToNext == Level * 100 after every level-up.
type Character struct {
	ID     int64
	UserID int64

	Name             string
	Level            int
	Experience       int
	ExperienceToNext int

	HP    int
	MaxHP int
	MP    int
	MaxMP int
	SP    int
	MaxSP int

	Stats BaseStats
	Gold  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// clamp bounds v into [0, max].
func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// SetHP sets current HP, clamped into [0, MaxHP].
//
// Postcondition: 0 <= c.HP <= c.MaxHP.
func (c *Character) SetHP(v int) {
	c.HP = clamp(v, c.MaxHP)
}

// SetMP sets current MP, clamped into [0, MaxMP].
//
// Postcondition: 0 <= c.MP <= c.MaxMP.
func (c *Character) SetMP(v int) {
	c.MP = clamp(v, c.MaxMP)
}

// SetSP sets current SP, clamped into [0, MaxSP].
//
// Postcondition: 0 <= c.SP <= c.MaxSP.
func (c *Character) SetSP(v int) {
	c.SP = clamp(v, c.MaxSP)
}

// ApplyDamage reduces current HP by dmg, flooring at 0.
//
// Precondition: dmg >= 0.
// Postcondition: c.HP >= 0.
func (c *Character) ApplyDamage(dmg int) {
	c.SetHP(c.HP - dmg)
}

// Heal raises current HP by amount, capped at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: c.HP <= c.MaxHP.
func (c *Character) Heal(amount int) {
	c.SetHP(c.HP + amount)
}

// IsDead reports whether current HP has reached 0.
func (c *Character) IsDead() bool {
	return c.HP <= 0
}

// RestoreAll refills HP, MP, and SP to their maximums.
func (c *Character) RestoreAll() {
	c.HP = c.MaxHP
	c.MP = c.MaxMP
	c.SP = c.MaxSP
}

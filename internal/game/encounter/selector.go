package encounter

import "github.com/fennwald/emberquest/internal/game/dice"

// Selector performs weighted-random monster selection per location.
type Selector struct {
	table    *Table
	monsters map[string]*Monster
	src      dice.Source
}

// NewSelector creates a Selector drawing randomness from src.
//
// Precondition: table, monsters, and src must be non-nil.
func NewSelector(table *Table, monsters map[string]*Monster, src dice.Source) *Selector {
	return &Selector{table: table, monsters: monsters, src: src}
}

// Select picks a monster for the given location and player level, or nil
// when nothing can spawn.
//
// Entries are walked in priority order. Spawn rates act as raw relative
// weights: a uniform draw in [0, totalWeight) lands in the first entry
// whose cumulative weight exceeds it. A total weight of 0, or no eligible
// entries, yields nil.
//
// Postcondition: a non-nil result is always a monster referenced by an
// active, level-eligible entry for the location.
func (s *Selector) Select(location string, playerLevel int) *Monster {
	var eligible []*SpawnEntry
	var total float64
	for _, e := range s.table.Entries(location) {
		if !e.EligibleFor(playerLevel) {
			continue
		}
		eligible = append(eligible, e)
		total += e.SpawnRate
	}
	if len(eligible) == 0 || total <= 0 {
		return nil
	}

	draw := s.src.Float64() * total
	var cum float64
	for _, e := range eligible {
		cum += e.SpawnRate
		if draw < cum {
			return s.monsters[e.MonsterID]
		}
	}
	// Floating-point edge: draw landed exactly on total.
	return s.monsters[eligible[len(eligible)-1].MonsterID]
}

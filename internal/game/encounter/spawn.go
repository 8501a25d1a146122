package encounter

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SpawnEntry is one weighted configuration row linking a location to a
// candidate monster. Entries are read-only configuration.
type SpawnEntry struct {
	Location  string  `yaml:"location"`
	MonsterID string  `yaml:"monster"`
	SpawnRate float64 `yaml:"spawn_rate"`
	Priority  int     `yaml:"priority"`
	// MinLevel and MaxLevel bound player eligibility; 0 means open.
	MinLevel int  `yaml:"min_level"`
	MaxLevel int  `yaml:"max_level"`
	Active   bool `yaml:"active"`
}

// EligibleFor reports whether an active entry admits a player of the given
// level. Either bound may be open (zero).
func (e *SpawnEntry) EligibleFor(playerLevel int) bool {
	if !e.Active {
		return false
	}
	if e.MinLevel > 0 && playerLevel < e.MinLevel {
		return false
	}
	if e.MaxLevel > 0 && playerLevel > e.MaxLevel {
		return false
	}
	return true
}

// Table holds every spawn entry, grouped by location.
type Table struct {
	byLocation map[string][]*SpawnEntry
}

// NewTable groups entries by location, ordering each group by priority
// descending (stable for equal priorities).
func NewTable(entries []*SpawnEntry) *Table {
	t := &Table{byLocation: make(map[string][]*SpawnEntry)}
	for _, e := range entries {
		t.byLocation[e.Location] = append(t.byLocation[e.Location], e)
	}
	for _, group := range t.byLocation {
		sortByPriorityDesc(group)
	}
	return t
}

// Entries returns the priority-ordered entries for a location.
func (t *Table) Entries(location string) []*SpawnEntry {
	return t.byLocation[location]
}

// Locations returns the number of configured locations.
func (t *Table) Locations() int {
	return len(t.byLocation)
}

// sortByPriorityDesc sorts entries in place, highest priority first,
// preserving input order for equal priorities.
func sortByPriorityDesc(entries []*SpawnEntry) {
	n := len(entries)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && entries[j].Priority > entries[j-1].Priority; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// Validate inspects the table for data-integrity problems and self-heals
// what it can. Problems are operator-visible warnings, never player-facing
// failures: spawn rates outside [0, 1] are clamped, per-location rate sums
// above 1.0 are kept as raw relative weights, zero active entries and
// duplicate priorities are reported. Unknown monster references are
// deactivated.
//
// Precondition: logger must be non-nil.
// Postcondition: Every entry has SpawnRate in [0, 1]; entries referencing
// unknown monsters are inactive.
func (t *Table) Validate(monsters map[string]*Monster, logger *zap.Logger) {
	for location, group := range t.byLocation {
		var sum float64
		active := 0
		seen := make(map[int]bool)

		for _, e := range group {
			if e.SpawnRate < 0 {
				logger.Warn("spawn rate below 0, clamping",
					zap.String("location", location),
					zap.String("monster", e.MonsterID),
					zap.Float64("spawn_rate", e.SpawnRate),
				)
				e.SpawnRate = 0
			}
			if e.SpawnRate > 1 {
				logger.Warn("spawn rate above 1, clamping",
					zap.String("location", location),
					zap.String("monster", e.MonsterID),
					zap.Float64("spawn_rate", e.SpawnRate),
				)
				e.SpawnRate = 1
			}
			if _, ok := monsters[e.MonsterID]; !ok {
				logger.Warn("spawn entry references unknown monster, deactivating",
					zap.String("location", location),
					zap.String("monster", e.MonsterID),
				)
				e.Active = false
			}
			if e.Active {
				active++
				sum += e.SpawnRate
				if seen[e.Priority] {
					logger.Warn("duplicate spawn priority",
						zap.String("location", location),
						zap.Int("priority", e.Priority),
					)
				}
				seen[e.Priority] = true
			}
		}

		if active == 0 {
			logger.Warn("location has no active spawn entries",
				zap.String("location", location),
			)
		}
		if sum > 1.0 {
			// Tolerated: rates are raw relative weights, not probabilities.
			logger.Warn("spawn rates sum above 1.0, treating as relative weights",
				zap.String("location", location),
				zap.Float64("sum", sum),
			)
		}
	}
}

// LoadSpawns reads all *.yaml and *.yml files from dir and parses each as
// a list of SpawnEntries.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all entries or the first encountered error;
// integrity checks are deferred to Table.Validate.
func LoadSpawns(dir string) ([]*SpawnEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadSpawns: cannot read directory %q: %w", dir, err)
	}

	var spawns []*SpawnEntry
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadSpawns: reading %q: %w", path, err)
		}
		var batch []*SpawnEntry
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("LoadSpawns: parsing %q: %w", path, err)
		}
		for _, s := range batch {
			if s.Location == "" || s.MonsterID == "" {
				return nil, fmt.Errorf("LoadSpawns: %q: entry must have location and monster", path)
			}
		}
		spawns = append(spawns, batch...)
	}
	return spawns, nil
}

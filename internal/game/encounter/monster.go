// Package encounter provides monster templates, per-location spawn tables,
// and weighted-random encounter selection.
package encounter

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fennwald/emberquest/internal/game/character"
)

// Monster defines the static properties of a monster template loaded from
// YAML. Templates are read-only configuration.
type Monster struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	MaxHP       int    `yaml:"max_hp"`

	Stats character.BaseStats `yaml:"stats"`
}

// Heal replaces missing or out-of-range fields with safe defaults and
// reports each substitution. Bad content rows are operator-visible
// warnings, not load failures; only a missing ID is unhealable.
func (m *Monster) Heal() []string {
	var healed []string
	if m.Name == "" {
		m.Name = m.ID
		healed = append(healed, fmt.Sprintf("empty name defaulted to %q", m.ID))
	}
	if m.Level < 1 {
		healed = append(healed, fmt.Sprintf("level %d clamped to 1", m.Level))
		m.Level = 1
	}
	if m.MaxHP < 1 {
		healed = append(healed, fmt.Sprintf("max_hp %d clamped to 1", m.MaxHP))
		m.MaxHP = 1
	}
	return healed
}

// LoadMonsters reads all *.yaml and *.yml files from dir, parses each as a
// list of Monsters, and returns a map keyed by ID. Invalid fields are
// healed with logged defaults; rows without an ID, and rows whose ID is
// already taken, are skipped with a warning. Only unreadable or unparsable
// files are errors.
//
// Precondition: dir is a readable directory path; logger must be non-nil.
func LoadMonsters(dir string, logger *zap.Logger) (map[string]*Monster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadMonsters: cannot read directory %q: %w", dir, err)
	}

	monsters := make(map[string]*Monster)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadMonsters: reading %q: %w", path, err)
		}
		var batch []*Monster
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("LoadMonsters: parsing %q: %w", path, err)
		}
		for _, m := range batch {
			if m.ID == "" {
				logger.Warn("monster entry has no id, skipping",
					zap.String("file", path),
					zap.String("name", m.Name),
				)
				continue
			}
			if healed := m.Heal(); len(healed) > 0 {
				logger.Warn("monster fields healed",
					zap.String("file", path),
					zap.String("monster", m.ID),
					zap.Strings("healed", healed),
				)
			}
			if _, exists := monsters[m.ID]; exists {
				logger.Warn("duplicate monster id, keeping first",
					zap.String("file", path),
					zap.String("monster", m.ID),
				)
				continue
			}
			monsters[m.ID] = m
		}
	}
	return monsters, nil
}

// Package item defines immutable item templates, the stacked inventory, and
// the six-slot equipment set.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fennwald/emberquest/internal/game/stats"
)

// Category constants for Item.Category.
const (
	CategoryWeapon     = "weapon"
	CategoryBody       = "body"
	CategoryShield     = "shield"
	CategoryHelmet     = "helmet"
	CategoryBoots      = "boots"
	CategoryAccessory  = "accessory"
	CategoryConsumable = "consumable"
	CategoryMaterial   = "material"
)

// validCategories is the set of valid Item categories.
var validCategories = map[string]bool{
	CategoryWeapon:     true,
	CategoryBody:       true,
	CategoryShield:     true,
	CategoryHelmet:     true,
	CategoryBoots:      true,
	CategoryAccessory:  true,
	CategoryConsumable: true,
	CategoryMaterial:   true,
}

// Item defines the static properties of an item loaded from YAML.
// Templates are shared and read-only from combat's perspective.
type Item struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Category    string             `yaml:"category"`
	Effects     stats.EffectValues `yaml:"effects"`
	MaxStack    int                `yaml:"max_stack"`
	Durability  int                `yaml:"durability"`
	Equippable  bool               `yaml:"equippable"`
	Usable      bool               `yaml:"usable"`
	Value       int                `yaml:"value"`
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (i *Item) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validCategories[i.Category] {
		errs = append(errs, fmt.Errorf("Category must be a known category; got %q", i.Category))
	}
	if i.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if i.Durability < 0 {
		errs = append(errs, errors.New("Durability must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// Registry indexes item templates by ID for read-only lookup.
type Registry struct {
	items map[string]*Item
}

// NewRegistry builds a Registry from the given templates.
//
// Precondition: every item must have a unique, non-empty ID.
// Postcondition: Returns a Registry answering Item lookups, or an error on
// duplicate IDs.
func NewRegistry(items []*Item) (*Registry, error) {
	reg := &Registry{items: make(map[string]*Item, len(items))}
	for _, it := range items {
		if _, exists := reg.items[it.ID]; exists {
			return nil, fmt.Errorf("duplicate item id %q", it.ID)
		}
		reg.items[it.ID] = it
	}
	return reg, nil
}

// Item returns the template with the given ID.
//
// Postcondition: Returns (item, true) if found, or (nil, false) otherwise.
func (r *Registry) Item(id string) (*Item, bool) {
	it, ok := r.items[id]
	return it, ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.items)
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as a
// list of Items, validates them, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Items or the first encountered error.
func LoadItems(dir string) ([]*Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*Item
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: reading %q: %w", path, err)
		}
		var batch []*Item
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("LoadItems: parsing %q: %w", path, err)
		}
		for _, it := range batch {
			if err := it.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: %q: %w", path, err)
			}
		}
		items = append(items, batch...)
	}
	return items, nil
}

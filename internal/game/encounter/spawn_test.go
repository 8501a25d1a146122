package encounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fennwald/emberquest/internal/game/encounter"
)

func TestNewTable_OrdersByPriorityDesc(t *testing.T) {
	table := encounter.NewTable([]*encounter.SpawnEntry{
		{Location: "forest", MonsterID: "a", Priority: 1, Active: true},
		{Location: "forest", MonsterID: "b", Priority: 5, Active: true},
		{Location: "forest", MonsterID: "c", Priority: 3, Active: true},
	})
	got := table.Entries("forest")
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].MonsterID)
	assert.Equal(t, "c", got[1].MonsterID)
	assert.Equal(t, "a", got[2].MonsterID)
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return zap.New(core), logs
}

func TestValidate_ClampsRates(t *testing.T) {
	logger, logs := observedLogger()
	entries := []*encounter.SpawnEntry{
		{Location: "forest", MonsterID: "slime", SpawnRate: -0.5, Priority: 1, Active: true},
		{Location: "forest", MonsterID: "wolf", SpawnRate: 1.8, Priority: 2, Active: true},
	}
	table := encounter.NewTable(entries)
	table.Validate(testMonsters(), logger)

	assert.InDelta(t, 0.0, entries[0].SpawnRate, 1e-9)
	assert.InDelta(t, 1.0, entries[1].SpawnRate, 1e-9)
	assert.GreaterOrEqual(t, logs.Len(), 2)
}

func TestValidate_WarnsOnSumAboveOne(t *testing.T) {
	logger, logs := observedLogger()
	table := encounter.NewTable([]*encounter.SpawnEntry{
		{Location: "forest", MonsterID: "slime", SpawnRate: 0.9, Priority: 1, Active: true},
		{Location: "forest", MonsterID: "wolf", SpawnRate: 0.9, Priority: 2, Active: true},
	})
	table.Validate(testMonsters(), logger)

	found := false
	for _, entry := range logs.All() {
		if entry.Message == "spawn rates sum above 1.0, treating as relative weights" {
			found = true
		}
	}
	assert.True(t, found, "sum warning emitted")
}

func TestValidate_WarnsOnZeroActive(t *testing.T) {
	logger, logs := observedLogger()
	table := encounter.NewTable([]*encounter.SpawnEntry{
		{Location: "crypt", MonsterID: "slime", SpawnRate: 0.5, Priority: 1, Active: false},
	})
	table.Validate(testMonsters(), logger)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "location has no active spawn entries", logs.All()[0].Message)
}

func TestValidate_WarnsOnDuplicatePriorities(t *testing.T) {
	logger, logs := observedLogger()
	table := encounter.NewTable([]*encounter.SpawnEntry{
		{Location: "forest", MonsterID: "slime", SpawnRate: 0.3, Priority: 2, Active: true},
		{Location: "forest", MonsterID: "wolf", SpawnRate: 0.3, Priority: 2, Active: true},
	})
	table.Validate(testMonsters(), logger)

	found := false
	for _, entry := range logs.All() {
		if entry.Message == "duplicate spawn priority" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_DeactivatesUnknownMonster(t *testing.T) {
	logger, _ := observedLogger()
	entries := []*encounter.SpawnEntry{
		{Location: "forest", MonsterID: "dragon_god", SpawnRate: 0.5, Priority: 1, Active: true},
	}
	table := encounter.NewTable(entries)
	table.Validate(testMonsters(), logger)
	assert.False(t, entries[0].Active)
}

func TestLoadMonstersAndSpawns(t *testing.T) {
	dir := t.TempDir()
	monsterYAML := `
- id: slime
  name: Slime
  level: 1
  max_hp: 20
  stats:
    attack: 4
    defense: 2
    agility: 3
    evasion: 2
    magic_attack: 0
    accuracy: 70
`
	spawnYAML := `
- location: forest
  monster: slime
  spawn_rate: 0.5
  priority: 1
  active: true
- location: forest
  monster: wolf
  spawn_rate: 0.3
  priority: 2
  min_level: 2
  active: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monsters.yaml"), []byte(monsterYAML), 0o644))

	monsters, err := encounter.LoadMonsters(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Contains(t, monsters, "slime")
	assert.Equal(t, 20, monsters["slime"].MaxHP)

	spawnDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(spawnDir, "forest.yaml"), []byte(spawnYAML), 0o644))
	spawns, err := encounter.LoadSpawns(spawnDir)
	require.NoError(t, err)
	require.Len(t, spawns, 2)
	assert.Equal(t, 2, spawns[1].MinLevel)

	table := encounter.NewTable(spawns)
	assert.Equal(t, 1, table.Locations())
	table.Validate(monsters, zaptest.NewLogger(t))
}

func TestLoadMonsters_HealsBadFields(t *testing.T) {
	dir := t.TempDir()
	bad := `
- id: husk
  name: ""
  level: 0
  max_hp: -5
- id: ""
  name: Nameless
  level: 3
  max_hp: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0o644))

	logger, logs := observedLogger()
	monsters, err := encounter.LoadMonsters(dir, logger)
	require.NoError(t, err)

	// Bad fields come back as documented defaults, not a refused load.
	require.Contains(t, monsters, "husk")
	healed := monsters["husk"]
	assert.Equal(t, "husk", healed.Name)
	assert.Equal(t, 1, healed.Level)
	assert.Equal(t, 1, healed.MaxHP)

	// The id-less row cannot be keyed and is skipped.
	assert.Len(t, monsters, 1)

	messages := make([]string, 0, logs.Len())
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "monster fields healed")
	assert.Contains(t, messages, "monster entry has no id, skipping")
}

func TestLoadMonsters_KeepsFirstOnDuplicateID(t *testing.T) {
	dir := t.TempDir()
	dup := `
- id: slime
  name: Slime
  level: 1
  max_hp: 20
- id: slime
  name: King Slime
  level: 9
  max_hp: 200
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte(dup), 0o644))

	logger, logs := observedLogger()
	monsters, err := encounter.LoadMonsters(dir, logger)
	require.NoError(t, err)
	require.Len(t, monsters, 1)
	assert.Equal(t, "Slime", monsters["slime"].Name)
	assert.GreaterOrEqual(t, logs.Len(), 1)
}

func TestLoadSpawns_RejectsMissingFields(t *testing.T) {
	dir := t.TempDir()
	bad := `
- location: ""
  monster: slime
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0o644))
	_, err := encounter.LoadSpawns(dir)
	require.Error(t, err)
}

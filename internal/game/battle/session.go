// Package battle owns the per-user battle session state machine and the
// turn-loop orchestration around it.
package battle

import (
	"time"

	"github.com/google/uuid"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/encounter"
	"github.com/fennwald/emberquest/internal/game/fault"
)

// Status is the lifecycle state of a battle session.
type Status string

const (
	// StatusActive is the single in-progress session a user may hold.
	StatusActive Status = "active"
	// StatusPaused is modeled in the schema but not exercised by any
	// business rule in this core.
	StatusPaused Status = "paused"
	// StatusCompleted is terminal.
	StatusCompleted Status = "completed"
)

// LogEntry is one ordered battle log line.
type LogEntry struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Turn    int    `json:"turn"`
}

// CharacterSnapshot is a value copy of the character state stored inside a
// session, independent of the live character record.
type CharacterSnapshot struct {
	CharacterID int64  `json:"character_id"`
	Name        string `json:"name"`
	Level       int    `json:"level"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	MP    int `json:"mp"`
	MaxMP int `json:"max_mp"`
	SP    int `json:"sp"`
	MaxSP int `json:"max_sp"`

	// Stats holds the effective combat stats as of the latest refresh.
	Stats character.BaseStats `json:"stats"`
	Gold  int                 `json:"gold"`
}

// SnapshotCharacter copies the live character into a snapshot with the
// given effective stats.
func SnapshotCharacter(c *character.Character, effective character.BaseStats) CharacterSnapshot {
	return CharacterSnapshot{
		CharacterID: c.ID,
		Name:        c.Name,
		Level:       c.Level,
		HP:          c.HP,
		MaxHP:       c.MaxHP,
		MP:          c.MP,
		MaxMP:       c.MaxMP,
		SP:          c.SP,
		MaxSP:       c.MaxSP,
		Stats:       effective,
		Gold:        c.Gold,
	}
}

// ApplyDamage reduces snapshot HP, flooring at 0.
//
// Postcondition: 0 <= s.HP <= s.MaxHP.
func (s *CharacterSnapshot) ApplyDamage(dmg int) {
	s.HP -= dmg
	if s.HP < 0 {
		s.HP = 0
	}
}

// Heal raises snapshot HP, capped at MaxHP.
//
// Postcondition: 0 <= s.HP <= s.MaxHP.
func (s *CharacterSnapshot) Heal(amount int) {
	s.HP += amount
	if s.HP > s.MaxHP {
		s.HP = s.MaxHP
	}
}

// IsDead reports whether the snapshot HP has reached 0.
func (s *CharacterSnapshot) IsDead() bool {
	return s.HP <= 0
}

// MonsterSnapshot is a value copy of the encountered monster stored inside
// a session.
type MonsterSnapshot struct {
	MonsterID string `json:"monster_id"`
	Name      string `json:"name"`
	Level     int    `json:"level"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"max_hp"`

	Stats character.BaseStats `json:"stats"`
}

// SnapshotMonster copies a monster template into a full-health snapshot.
func SnapshotMonster(m *encounter.Monster) MonsterSnapshot {
	return MonsterSnapshot{
		MonsterID: m.ID,
		Name:      m.Name,
		Level:     m.Level,
		HP:        m.MaxHP,
		MaxHP:     m.MaxHP,
		Stats:     m.Stats,
	}
}

// ApplyDamage reduces monster HP, flooring at 0.
//
// Postcondition: 0 <= s.HP <= s.MaxHP.
func (s *MonsterSnapshot) ApplyDamage(dmg int) {
	s.HP -= dmg
	if s.HP < 0 {
		s.HP = 0
	}
}

// IsDead reports whether the monster snapshot HP has reached 0.
func (s *MonsterSnapshot) IsDead() bool {
	return s.HP <= 0
}

// Session is the persisted battle record for one user.
//
// Invariant: at most one session per user has StatusActive; Turn starts at
// 1 and is monotonically increasing; the session is never physically
// deleted by this subsystem, only transitioned to StatusCompleted.
type Session struct {
	ID     int64
	UserID int64
	// BattleID is the opaque unique token identifying this battle.
	BattleID string

	Character CharacterSnapshot
	Monster   MonsterSnapshot

	Log      []LogEntry
	Turn     int
	Location string
	Status   Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an active session at turn 1 with an empty log.
//
// Postcondition: Status == StatusActive; Turn == 1; BattleID is a fresh
// opaque token.
func NewSession(userID int64, char CharacterSnapshot, monster MonsterSnapshot, location string) *Session {
	return &Session{
		UserID:    userID,
		BattleID:  uuid.NewString(),
		Character: char,
		Monster:   monster,
		Turn:      1,
		Location:  location,
		Status:    StatusActive,
	}
}

// IsActive reports whether the session accepts actions.
func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// requireActive returns a fault.ConflictError when the session is no
// longer active.
func (s *Session) requireActive() error {
	if !s.IsActive() {
		return fault.Conflictf("battle %s is %s, not active", s.BattleID, s.Status)
	}
	return nil
}

// AddLog appends an entry tagged with the current turn. The turn counter
// itself is advanced separately by the combat loop.
//
// Postcondition: Returns fault.ConflictError when the session is not
// active; otherwise the log grows by one entry carrying s.Turn.
func (s *Session) AddLog(action, message string) error {
	if err := s.requireActive(); err != nil {
		return err
	}
	s.Log = append(s.Log, LogEntry{Action: action, Message: message, Turn: s.Turn})
	return nil
}

// AdvanceTurn increments the turn counter.
//
// Postcondition: Returns fault.ConflictError when the session is not
// active; otherwise Turn grows by exactly 1.
func (s *Session) AdvanceTurn() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	s.Turn++
	return nil
}

// Complete transitions the session to its terminal state. Reward
// computation and history logging are the caller's responsibility and run
// after this transition.
//
// Postcondition: Status == StatusCompleted, or fault.ConflictError when
// the session was not active.
func (s *Session) Complete() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	s.Status = StatusCompleted
	return nil
}

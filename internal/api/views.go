package api

import (
	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/character"
)

// logTailLength bounds how many battle log lines a response carries.
const logTailLength = 10

// CharacterView is the JSON shape of a character record.
type CharacterView struct {
	ID               int64  `json:"id"`
	UserID           int64  `json:"user_id"`
	Name             string `json:"name"`
	Level            int    `json:"level"`
	Experience       int    `json:"experience"`
	ExperienceToNext int    `json:"experience_to_next"`
	HP               int    `json:"hp"`
	MaxHP            int    `json:"max_hp"`
	MP               int    `json:"mp"`
	MaxMP            int    `json:"max_mp"`
	SP               int    `json:"sp"`
	MaxSP            int    `json:"max_sp"`
	Gold             int    `json:"gold"`
}

func characterView(c *character.Character) CharacterView {
	return CharacterView{
		ID:               c.ID,
		UserID:           c.UserID,
		Name:             c.Name,
		Level:            c.Level,
		Experience:       c.Experience,
		ExperienceToNext: c.ExperienceToNext,
		HP:               c.HP,
		MaxHP:            c.MaxHP,
		MP:               c.MP,
		MaxMP:            c.MaxMP,
		SP:               c.SP,
		MaxSP:            c.MaxSP,
		Gold:             c.Gold,
	}
}

// SessionView is the JSON shape of a battle session.
type SessionView struct {
	BattleID  string                   `json:"battle_id"`
	Turn      int                      `json:"turn"`
	Status    string                   `json:"status"`
	Location  string                   `json:"location"`
	Character battle.CharacterSnapshot `json:"character"`
	Monster   battle.MonsterSnapshot   `json:"monster"`
	Log       []battle.LogEntry        `json:"log"`
}

func sessionView(s *battle.Session) SessionView {
	log := s.Log
	if len(log) > logTailLength {
		log = log[len(log)-logTailLength:]
	}
	return SessionView{
		BattleID:  s.BattleID,
		Turn:      s.Turn,
		Status:    string(s.Status),
		Location:  s.Location,
		Character: s.Character,
		Monster:   s.Monster,
		Log:       log,
	}
}

// OutcomeView is the JSON shape of a resolved action or flee attempt.
type OutcomeView struct {
	SessionView
	Over   bool   `json:"over"`
	Result string `json:"result,omitempty"`
}

func outcomeView(out *battle.Outcome) OutcomeView {
	return OutcomeView{
		SessionView: sessionView(out.Session),
		Over:        out.Over,
		Result:      string(out.Result),
	}
}

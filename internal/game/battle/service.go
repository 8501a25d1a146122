package battle

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/combat"
	"github.com/fennwald/emberquest/internal/game/dice"
	"github.com/fennwald/emberquest/internal/game/effect"
	"github.com/fennwald/emberquest/internal/game/encounter"
	"github.com/fennwald/emberquest/internal/game/fault"
	"github.com/fennwald/emberquest/internal/game/item"
	"github.com/fennwald/emberquest/internal/game/reward"
	"github.com/fennwald/emberquest/internal/game/skill"
	"github.com/fennwald/emberquest/internal/game/stats"
)

// Escape chance parameters for Flee.
const (
	escapeBase       = 50
	escapePerAgility = 2
	escapeFloor      = 10
	escapeCeiling    = 95
)

// ActionType identifies what the player does on their turn.
type ActionType string

const (
	// ActionAttack is a plain weapon attack.
	ActionAttack ActionType = "attack"
	// ActionSkill uses a named skill.
	ActionSkill ActionType = "skill"
	// ActionItem consumes a named usable item.
	ActionItem ActionType = "item"
)

// Action is one player turn submission.
type Action struct {
	Type ActionType
	// Name is the skill name for ActionSkill or the item ID for ActionItem.
	Name string
}

// Profile bundles everything needed to compute a character's effective
// stats for a turn.
type Profile struct {
	Character *character.Character
	Equipment *item.EquipmentSet
	Skills    map[string]*skill.Skill
	Effects   *effect.Tracker
	Inventory *item.Inventory
}

// EffectiveStats aggregates base stats with equipment, skill, and active
// effect contributions.
func (p *Profile) EffectiveStats() stats.Computed {
	var contribs []stats.Contribution
	if p.Equipment != nil {
		contribs = append(contribs, p.Equipment.Contributions()...)
	}
	for _, sk := range p.Skills {
		contribs = append(contribs, sk.Contribution())
	}
	if p.Effects != nil {
		contribs = append(contribs, p.Effects.Contributions()...)
	}
	return stats.Aggregate(p.Character.Stats, contribs...)
}

// Repository is the persistence boundary for battle sessions. All
// implementations must uphold the single-active-session invariant in
// CreateSession and the optimistic turn check in UpdateSnapshot.
type Repository interface {
	// CreateSession force-completes any existing active session for the
	// user, then inserts s, atomically.
	CreateSession(ctx context.Context, s *Session) error
	// GetActive returns the user's active session or a fault.NotFoundError.
	GetActive(ctx context.Context, userID int64) (*Session, error)
	// UpdateSnapshot persists s only if the stored row is still active at
	// expectedTurn; a lost race yields a fault.ConflictError.
	UpdateSnapshot(ctx context.Context, s *Session, expectedTurn int) error
	// Complete persists the terminal snapshot and status of s, guarded by
	// the same optimistic turn check as UpdateSnapshot.
	Complete(ctx context.Context, s *Session, expectedTurn int) error
}

// ProfileSource loads a user's combat profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID int64) (*Profile, error)
}

// Finisher is the reward/history collaborator invoked after a battle
// reaches a terminal state. It must run to completion before the battle is
// considered fully closed.
type Finisher interface {
	Finish(ctx context.Context, s *Session, result reward.Result) error
}

// Outcome reports the result of a submitted action.
type Outcome struct {
	Session *Session
	// Result is set when the battle reached a terminal state this turn.
	Result reward.Result
	// Over is true when the battle ended.
	Over bool
}

// Service orchestrates the battle loop: encounter selection, snapshotting,
// per-turn resolution, effect decay, and the terminal reward hand-off.
type Service struct {
	repo     Repository
	profiles ProfileSource
	selector *encounter.Selector
	resolver *combat.Resolver
	finisher Finisher
	src      dice.Source
	logger   *zap.Logger

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewService wires a battle Service.
//
// Precondition: all arguments must be non-nil.
func NewService(repo Repository, profiles ProfileSource, selector *encounter.Selector, resolver *combat.Resolver, finisher Finisher, src dice.Source, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		selector: selector,
		resolver: resolver,
		finisher: finisher,
		src:      src,
		logger:   logger,
		users:    make(map[int64]*sync.Mutex),
	}
}

// lockUser serializes battle mutations for one user. Profile runtime state
// (effects, skills, inventory) is shared between requests for the same
// user, so a turn must hold the user's lock from session read to commit.
// The optimistic turn check in the repository still guards writers in
// other processes.
func (s *Service) lockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Start begins a battle for the user at the given location. Any existing
// active session is force-completed by the repository, keeping the
// single-active invariant.
//
// Postcondition: Returns a session at turn 1 with an encounter log entry,
// or a fault.NotFoundError when nothing spawns at the location.
func (s *Service) Start(ctx context.Context, userID int64, location string) (*Session, error) {
	defer s.lockUser(userID)()

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	monster := s.selector.Select(location, profile.Character.Level)
	if monster == nil {
		return nil, fault.NotFound("monster", location)
	}

	computed := profile.EffectiveStats()
	sess := NewSession(userID,
		SnapshotCharacter(profile.Character, computed.Stats),
		SnapshotMonster(monster),
		location,
	)
	if err := sess.AddLog("encounter", fmt.Sprintf("A wild %s appears!", monster.Name)); err != nil {
		return nil, err
	}

	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("battle started",
		zap.Int64("user_id", userID),
		zap.String("battle_id", sess.BattleID),
		zap.String("location", location),
		zap.String("monster", monster.ID),
	)
	return sess, nil
}

// Current returns the user's active session.
func (s *Service) Current(ctx context.Context, userID int64) (*Session, error) {
	return s.repo.GetActive(ctx, userID)
}

// SubmitAction resolves one full turn: the player's action, the monster's
// counterattack if it survives, effect decay, and persistence under the
// optimistic turn check. Submissions for the same user run one at a time;
// a writer in another process that loses the turn race receives a
// fault.ConflictError.
func (s *Service) SubmitAction(ctx context.Context, userID int64, action Action) (*Outcome, error) {
	defer s.lockUser(userID)()

	sess, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	expectedTurn := sess.Turn

	// Refresh effective stats through the aggregator so equipment and
	// effect changes since the last turn are visible.
	computed := profile.EffectiveStats()
	sess.Character.Stats = computed.Stats

	if err := s.resolvePlayerAction(sess, profile, action); err != nil {
		return nil, err
	}

	if sess.Monster.IsDead() {
		return s.finish(ctx, sess, reward.ResultVictory, expectedTurn)
	}

	monsterResult := s.resolver.Resolve(sess.Monster.Name, sess.Monster.Stats, sess.Character.Name, sess.Character.Stats, nil)
	sess.Character.ApplyDamage(monsterResult.Damage)
	if err := sess.AddLog("monster_attack", monsterResult.Message); err != nil {
		return nil, err
	}

	if sess.Character.IsDead() {
		if err := sess.AddLog("defeat", fmt.Sprintf("%s falls in battle.", sess.Character.Name)); err != nil {
			return nil, err
		}
		return s.finish(ctx, sess, reward.ResultDefeat, expectedTurn)
	}

	s.tickEffects(sess, profile)

	if err := sess.AdvanceTurn(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSnapshot(ctx, sess, expectedTurn); err != nil {
		return nil, err
	}
	return &Outcome{Session: sess}, nil
}

// Flee attempts to escape. The chance is agility-weighted:
// clamp(50 + 2*(playerAgility - monsterAgility), 10, 95). A failed
// attempt costs the turn and exposes the player to a free attack.
func (s *Service) Flee(ctx context.Context, userID int64) (*Outcome, error) {
	defer s.lockUser(userID)()

	sess, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	expectedTurn := sess.Turn
	sess.Character.Stats = profile.EffectiveStats().Stats

	chance := escapeBase + escapePerAgility*(sess.Character.Stats.Agility-sess.Monster.Stats.Agility)
	if chance < escapeFloor {
		chance = escapeFloor
	}
	if chance > escapeCeiling {
		chance = escapeCeiling
	}

	if dice.Percent(s.src) <= chance {
		if err := sess.AddLog("escape", fmt.Sprintf("%s escapes from the %s.", sess.Character.Name, sess.Monster.Name)); err != nil {
			return nil, err
		}
		return s.finish(ctx, sess, reward.ResultEscape, expectedTurn)
	}

	if err := sess.AddLog("escape_failed", fmt.Sprintf("%s fails to escape!", sess.Character.Name)); err != nil {
		return nil, err
	}
	monsterResult := s.resolver.Resolve(sess.Monster.Name, sess.Monster.Stats, sess.Character.Name, sess.Character.Stats, nil)
	sess.Character.ApplyDamage(monsterResult.Damage)
	if err := sess.AddLog("monster_attack", monsterResult.Message); err != nil {
		return nil, err
	}
	if sess.Character.IsDead() {
		return s.finish(ctx, sess, reward.ResultDefeat, expectedTurn)
	}

	s.tickEffects(sess, profile)

	if err := sess.AdvanceTurn(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSnapshot(ctx, sess, expectedTurn); err != nil {
		return nil, err
	}
	return &Outcome{Session: sess}, nil
}

// resolvePlayerAction applies the player's chosen action to the session.
func (s *Service) resolvePlayerAction(sess *Session, profile *Profile, action Action) error {
	switch action.Type {
	case ActionAttack:
		result := s.resolver.Resolve(sess.Character.Name, sess.Character.Stats, sess.Monster.Name, sess.Monster.Stats, nil)
		sess.Monster.ApplyDamage(result.Damage)
		return sess.AddLog("attack", result.Message)

	case ActionSkill:
		sk, ok := profile.Skills[action.Name]
		if !ok || !sk.Active {
			return fault.NotFound("skill", action.Name)
		}
		if sess.Character.SP < sk.SPCost {
			return fault.Validationf("insufficient_sp", "skill %q costs %d SP, have %d", sk.Name, sk.SPCost, sess.Character.SP)
		}
		sess.Character.SP -= sk.SPCost

		result := s.resolver.Resolve(sess.Character.Name, sess.Character.Stats, sess.Monster.Name, sess.Monster.Stats, sk)
		sess.Monster.ApplyDamage(result.Damage)
		if err := sess.AddLog("skill", result.Message); err != nil {
			return err
		}
		s.applySkillEffects(sess, profile, sk)
		sk.GainExperience(skillUseExperience)
		return nil

	case ActionItem:
		if profile.Inventory == nil {
			return fault.NotFound("item", action.Name)
		}
		used, err := profile.Inventory.Use(action.Name)
		if err != nil {
			return err
		}
		s.applyRestores(sess, used.Effects)
		if profile.Effects != nil && hasTemporalEffect(used.Effects) {
			// Usable buff items grant a short default effect window.
			if _, err := profile.Effects.Create(used.ID, used.Effects, defaultItemEffectDuration, effect.SourceItem); err != nil {
				return err
			}
		}
		return sess.AddLog("item", fmt.Sprintf("%s uses %s.", sess.Character.Name, used.Name))

	default:
		return fault.Validationf("invalid_action", "unknown action type %q", action.Type)
	}
}

// Skill-use experience and item effect duration defaults.
const (
	skillUseExperience        = 5
	defaultItemEffectDuration = 3
)

// hasTemporalEffect reports whether values carry anything worth tracking
// as a temporary effect (stat or movement modifiers, not just restores).
func hasTemporalEffect(v stats.EffectValues) bool {
	noRestores := v
	noRestores.RestoreHP = 0
	noRestores.RestoreMP = 0
	noRestores.RestoreSP = 0
	return !noRestores.IsZero()
}

// applySkillEffects handles the effect-application step of a skill:
// restores land on the snapshot immediately, lasting modifiers register a
// temporary effect scaled by skill level.
func (s *Service) applySkillEffects(sess *Session, profile *Profile, sk *skill.Skill) {
	scaled := sk.Effects.Scaled(sk.Level)
	s.applyRestores(sess, scaled)
	if sk.Duration > 0 && hasTemporalEffect(scaled) && profile.Effects != nil {
		if _, err := profile.Effects.Create(sk.Name, scaled, sk.Duration, effect.SourceSkill); err != nil {
			s.logger.Warn("skill effect rejected",
				zap.String("skill", sk.Name),
				zap.Error(err),
			)
		}
	}
}

// applyRestores applies HP/MP/SP restoration to the character snapshot.
func (s *Service) applyRestores(sess *Session, v stats.EffectValues) {
	if v.RestoreHP > 0 {
		sess.Character.Heal(v.RestoreHP)
	}
	if v.RestoreMP > 0 {
		sess.Character.MP += v.RestoreMP
		if sess.Character.MP > sess.Character.MaxMP {
			sess.Character.MP = sess.Character.MaxMP
		}
	}
	if v.RestoreSP > 0 {
		sess.Character.SP += v.RestoreSP
		if sess.Character.SP > sess.Character.MaxSP {
			sess.Character.SP = sess.Character.MaxSP
		}
	}
}

// tickEffects decays every active effect by one turn and logs expiries.
func (s *Service) tickEffects(sess *Session, profile *Profile) {
	if profile.Effects == nil {
		return
	}
	for _, name := range profile.Effects.Tick() {
		if err := sess.AddLog("effect_expired", fmt.Sprintf("The %s effect wears off.", name)); err != nil {
			return
		}
	}
}

// finish transitions the session to completed, persists it, and runs the
// reward/history collaborator to completion.
func (s *Service) finish(ctx context.Context, sess *Session, result reward.Result, expectedTurn int) (*Outcome, error) {
	if result == reward.ResultVictory {
		if err := sess.AddLog("victory", fmt.Sprintf("%s defeats the %s!", sess.Character.Name, sess.Monster.Name)); err != nil {
			return nil, err
		}
	}
	if err := sess.Complete(); err != nil {
		return nil, err
	}
	if err := s.repo.Complete(ctx, sess, expectedTurn); err != nil {
		return nil, err
	}
	if err := s.finisher.Finish(ctx, sess, result); err != nil {
		return nil, fmt.Errorf("finishing battle %s: %w", sess.BattleID, err)
	}

	s.logger.Info("battle ended",
		zap.Int64("user_id", sess.UserID),
		zap.String("battle_id", sess.BattleID),
		zap.String("result", string(result)),
		zap.Int("turns", sess.Turn),
	)
	return &Outcome{Session: sess, Result: result, Over: true}, nil
}

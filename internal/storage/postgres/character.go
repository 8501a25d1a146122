package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fennwald/emberquest/internal/game/character"
	"github.com/fennwald/emberquest/internal/game/fault"
)

const characterColumns = `
	id, user_id, name, level, experience, experience_to_next,
	hp, max_hp, mp, max_mp, sp, max_sp,
	attack, defense, agility, evasion, magic_attack, accuracy,
	gold, created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character and returns it with ID and timestamps set.
// Each user holds at most one character.
//
// Precondition: c.UserID must be > 0; c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or a
// fault.ConflictError when the user already has one.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	var out character.Character
	err := r.db.QueryRow(ctx, `
		INSERT INTO characters
			(user_id, name, level, experience, experience_to_next,
			 hp, max_hp, mp, max_mp, sp, max_sp,
			 attack, defense, agility, evasion, magic_attack, accuracy, gold)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING`+characterColumns,
		c.UserID, c.Name, c.Level, c.Experience, c.ExperienceToNext,
		c.HP, c.MaxHP, c.MP, c.MaxMP, c.SP, c.MaxSP,
		c.Stats.Attack, c.Stats.Defense, c.Stats.Agility,
		c.Stats.Evasion, c.Stats.MagicAttack, c.Stats.Accuracy,
		c.Gold,
	).Scan(scanTargets(&out)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fault.Conflictf("user %d already has a character", c.UserID)
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return &out, nil
}

// Get retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or a fault.NotFoundError.
func (r *CharacterRepository) Get(ctx context.Context, id int64) (*character.Character, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUser retrieves the character owned by the given user.
//
// Precondition: userID must be > 0.
// Postcondition: Returns the Character or a fault.NotFoundError.
func (r *CharacterRepository) GetByUser(ctx context.Context, userID int64) (*character.Character, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *CharacterRepository) getBy(ctx context.Context, column string, key int64) (*character.Character, error) {
	var c character.Character
	err := r.db.QueryRow(ctx,
		`SELECT`+characterColumns+` FROM characters WHERE `+column+` = $1`,
		key,
	).Scan(scanTargets(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.NotFound("character", column+" "+strconv.FormatInt(key, 10))
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return &c, nil
}

// Save persists a character's progression and vitals after a battle:
// level, experience, gold, current and max vitals, and stats.
//
// Precondition: c.ID must be > 0.
// Postcondition: Returns nil on success, or a fault.NotFoundError when no
// row was updated.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters SET
			level = $2, experience = $3, experience_to_next = $4,
			hp = $5, max_hp = $6, mp = $7, max_mp = $8, sp = $9, max_sp = $10,
			attack = $11, defense = $12, agility = $13,
			evasion = $14, magic_attack = $15, accuracy = $16,
			gold = $17, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Level, c.Experience, c.ExperienceToNext,
		c.HP, c.MaxHP, c.MP, c.MaxMP, c.SP, c.MaxSP,
		c.Stats.Attack, c.Stats.Defense, c.Stats.Agility,
		c.Stats.Evasion, c.Stats.MagicAttack, c.Stats.Accuracy,
		c.Gold,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.NotFound("character", "id "+strconv.FormatInt(c.ID, 10))
	}
	return nil
}

// scanTargets returns scan destinations matching characterColumns order.
func scanTargets(c *character.Character) []any {
	return []any{
		&c.ID, &c.UserID, &c.Name, &c.Level, &c.Experience, &c.ExperienceToNext,
		&c.HP, &c.MaxHP, &c.MP, &c.MaxMP, &c.SP, &c.MaxSP,
		&c.Stats.Attack, &c.Stats.Defense, &c.Stats.Agility,
		&c.Stats.Evasion, &c.Stats.MagicAttack, &c.Stats.Accuracy,
		&c.Gold, &c.CreatedAt, &c.UpdatedAt,
	}
}

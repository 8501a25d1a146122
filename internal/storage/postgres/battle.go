package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/fault"
)

const sessionColumns = `
	id, user_id, battle_id, character_state, monster_state, battle_log,
	turn, location, status, created_at, updated_at`

// BattleRepository persists battle sessions. Character and monster
// snapshots and the battle log are stored as JSONB.
//
// Invariant: the partial unique index on (user_id) WHERE status = 'active'
// backs the single-active-session rule; turn-guarded UPDATEs back the
// optimistic concurrency check.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// CreateSession force-completes any active session for the user and
// inserts the new one, in a single transaction.
//
// Postcondition: s.ID and timestamps are set; the user has exactly one
// active session.
func (r *BattleRepository) CreateSession(ctx context.Context, s *battle.Session) error {
	charState, monState, logState, err := marshalSession(s)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE battle_sessions SET status = 'completed', updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'`,
		s.UserID,
	); err != nil {
		return fmt.Errorf("completing stale sessions: %w", err)
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO battle_sessions
			(user_id, battle_id, character_state, monster_state, battle_log,
			 turn, location, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		s.UserID, s.BattleID, charState, monState, logState,
		s.Turn, s.Location, string(s.Status),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("inserting battle session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing battle session: %w", err)
	}
	return nil
}

// GetActive returns the user's active session.
//
// Postcondition: Returns the session or a fault.NotFoundError.
func (r *BattleRepository) GetActive(ctx context.Context, userID int64) (*battle.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+sessionColumns+` FROM battle_sessions
		 WHERE user_id = $1 AND status = 'active'`,
		userID,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fault.NotFound("battle", fmt.Sprintf("user %d", userID))
		}
		return nil, fmt.Errorf("querying active battle: %w", err)
	}
	return s, nil
}

// UpdateSnapshot persists the session state, guarded by the optimistic
// turn check. The UPDATE's own row lock serializes concurrent writers;
// the turn predicate rejects the loser.
//
// Postcondition: Returns a fault.ConflictError when the stored row is no
// longer active at expectedTurn.
func (r *BattleRepository) UpdateSnapshot(ctx context.Context, s *battle.Session, expectedTurn int) error {
	return r.write(ctx, s, expectedTurn, "updating battle session")
}

// Complete persists the terminal snapshot and status, guarded by the same
// optimistic turn check as UpdateSnapshot.
//
// Precondition: s.Status must be a terminal status.
func (r *BattleRepository) Complete(ctx context.Context, s *battle.Session, expectedTurn int) error {
	return r.write(ctx, s, expectedTurn, "completing battle session")
}

func (r *BattleRepository) write(ctx context.Context, s *battle.Session, expectedTurn int, op string) error {
	charState, monState, logState, err := marshalSession(s)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE battle_sessions SET
			character_state = $3, monster_state = $4, battle_log = $5,
			turn = $6, status = $7, updated_at = NOW()
		WHERE battle_id = $1 AND status = 'active' AND turn = $2`,
		s.BattleID, expectedTurn,
		charState, monState, logState,
		s.Turn, string(s.Status),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Conflictf("battle %s modified by another request", s.BattleID)
	}
	return nil
}

func marshalSession(s *battle.Session) (charState, monState, logState []byte, err error) {
	if charState, err = json.Marshal(s.Character); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding character state: %w", err)
	}
	if monState, err = json.Marshal(s.Monster); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding monster state: %w", err)
	}
	if logState, err = json.Marshal(s.Log); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding battle log: %w", err)
	}
	return charState, monState, logState, nil
}

func scanSession(row pgx.Row) (*battle.Session, error) {
	var (
		s                            battle.Session
		charState, monState, logRaw []byte
		status                      string
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.BattleID, &charState, &monState, &logRaw,
		&s.Turn, &s.Location, &status, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(charState, &s.Character); err != nil {
		return nil, fmt.Errorf("decoding character state: %w", err)
	}
	if err := json.Unmarshal(monState, &s.Monster); err != nil {
		return nil, fmt.Errorf("decoding monster state: %w", err)
	}
	if err := json.Unmarshal(logRaw, &s.Log); err != nil {
		return nil, fmt.Errorf("decoding battle log: %w", err)
	}
	s.Status = battle.Status(status)
	return &s, nil
}

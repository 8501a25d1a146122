package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/reward"
)

// HistoryRepository appends completed-battle records. Rows are insert-only;
// nothing in the system updates or deletes them.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts one completed-battle row.
//
// Precondition: entry.BattleID must be non-empty and unique.
func (r *HistoryRepository) Record(ctx context.Context, entry battle.HistoryEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO battle_history
			(battle_id, user_id, character_id, monster_id, location,
			 result, turns, experience, gold_delta, levels_gained, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		entry.BattleID, entry.UserID, entry.CharacterID, entry.MonsterID,
		entry.Location, string(entry.Result), entry.Turns,
		entry.Experience, entry.GoldDelta, entry.LevelsGained, entry.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting battle history: %w", err)
	}
	return nil
}

// List returns the most recent completed battles for a user, newest first.
//
// Precondition: limit must be > 0.
func (r *HistoryRepository) List(ctx context.Context, userID int64, limit int) ([]battle.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT battle_id, user_id, character_id, monster_id, location,
		       result, turns, experience, gold_delta, levels_gained, ended_at
		FROM battle_history WHERE user_id = $1
		ORDER BY ended_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle history: %w", err)
	}
	defer rows.Close()

	entries := make([]battle.HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			e      battle.HistoryEntry
			result string
		)
		if err := rows.Scan(
			&e.BattleID, &e.UserID, &e.CharacterID, &e.MonsterID, &e.Location,
			&result, &e.Turns, &e.Experience, &e.GoldDelta, &e.LevelsGained,
			&e.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning battle history row: %w", err)
		}
		e.Result = reward.Result(result)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

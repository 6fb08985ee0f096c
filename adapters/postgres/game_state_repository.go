package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal/engine"
	"bayesbet/internal/errors"
	"bayesbet/ports"

	"github.com/jmoiron/sqlx"
)

// GameStateRepositoryImpl stores game snapshots as JSONB and mirrors the
// ranked leaderboard into game_leaderboards for querying.
type GameStateRepositoryImpl struct {
	db *sqlx.DB
}

// NewGameStateRepository creates a new PostgreSQL game state repository
func NewGameStateRepository(db *sqlx.DB) *GameStateRepositoryImpl {
	return &GameStateRepositoryImpl{db: db}
}

var _ ports.GameStateRepository = (*GameStateRepositoryImpl)(nil)

// LeaderboardRow is one persisted leaderboard line
type LeaderboardRow struct {
	GameID       string         `db:"game_id"`
	CompetitorID string         `db:"competitor_id"`
	Kind         string         `db:"kind"`
	Paradigm     sql.NullString `db:"paradigm"`
	Rank         int            `db:"rank"`
	Payoff       float64        `db:"payoff"`
}

// leaderboardRows ranks the state's competitors for persistence
func leaderboardRows(state game.State) []LeaderboardRow {
	entries := engine.Rank(state.Competitors)
	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = LeaderboardRow{
			GameID:       state.ID.String(),
			CompetitorID: string(e.ID),
			Kind:         string(e.Kind),
			Paradigm:     sql.NullString{String: string(e.Paradigm), Valid: e.Paradigm != ""},
			Rank:         e.Rank,
			Payoff:       e.Payoff,
		}
	}
	return rows
}

// SaveGame upserts the snapshot and replaces its leaderboard rows
func (r *GameStateRepositoryImpl) SaveGame(ctx context.Context, state game.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal game state")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_states (id, scenario_id, scenario_hash, rule, locked, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			scenario_id = EXCLUDED.scenario_id,
			scenario_hash = EXCLUDED.scenario_hash,
			rule = EXCLUDED.rule,
			locked = EXCLUDED.locked,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`,
		state.ID.String(), state.Scenario.ID, state.ScenarioHash.String(), string(state.Rule),
		state.Locked, stateJSON, state.CreatedAt, updatedAt)
	if err != nil {
		return errors.DatabaseError("failed to upsert game state", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_leaderboards WHERE game_id = $1`, state.ID.String()); err != nil {
		return errors.DatabaseError("failed to clear leaderboard", err)
	}
	if rows := leaderboardRows(state); len(rows) > 0 {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO game_leaderboards (game_id, competitor_id, kind, paradigm, rank, payoff)
			VALUES (:game_id, :competitor_id, :kind, :paradigm, :rank, :payoff)`, rows)
		if err != nil {
			return errors.DatabaseError("failed to insert leaderboard", err)
		}
	}

	return tx.Commit()
}

// GetGame retrieves a snapshot by id
func (r *GameStateRepositoryImpl) GetGame(ctx context.Context, id core.GameID) (game.State, error) {
	var stateJSON []byte
	err := r.db.QueryRowContext(ctx, `SELECT state FROM game_states WHERE id = $1`, id.String()).Scan(&stateJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return game.State{}, core.NewGameNotFoundError(id)
		}
		return game.State{}, errors.DatabaseError("failed to get game state", err)
	}
	return decodeState(stateJSON)
}

// ListGames returns snapshots newest first, optionally limited
func (r *GameStateRepositoryImpl) ListGames(ctx context.Context, limit int) ([]game.State, error) {
	query := `SELECT state FROM game_states ORDER BY updated_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var payloads [][]byte
	if err := r.db.SelectContext(ctx, &payloads, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list game states", err)
	}

	states := make([]game.State, 0, len(payloads))
	for _, payload := range payloads {
		state, err := decodeState(payload)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// DeleteGame removes a snapshot and, by cascade, its leaderboard
func (r *GameStateRepositoryImpl) DeleteGame(ctx context.Context, id core.GameID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_states WHERE id = $1`, id.String()); err != nil {
		return errors.DatabaseError("failed to delete game state", err)
	}
	return nil
}

// Leaderboard returns the persisted ranking for a game
func (r *GameStateRepositoryImpl) Leaderboard(ctx context.Context, id core.GameID) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT game_id, competitor_id, kind, paradigm, rank, payoff
		FROM game_leaderboards
		WHERE game_id = $1
		ORDER BY rank ASC`, id.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to get leaderboard", err)
	}
	return rows, nil
}

func decodeState(payload []byte) (game.State, error) {
	var state game.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return game.State{}, errors.DatabaseError("failed to unmarshal game state", err)
	}
	return state, nil
}

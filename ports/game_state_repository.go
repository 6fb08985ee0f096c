package ports

import (
	"context"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
)

// GameStateRepository persists game snapshots between host calls
type GameStateRepository interface {
	// SaveGame inserts or replaces the snapshot for state.ID
	SaveGame(ctx context.Context, state game.State) error

	// GetGame returns core.ErrGameNotFound (wrapped) when the id is unknown
	GetGame(ctx context.Context, id core.GameID) (game.State, error)

	// ListGames returns snapshots newest first, optionally limited
	ListGames(ctx context.Context, limit int) ([]game.State, error)

	// DeleteGame removes a snapshot; deleting an unknown id is not an error
	DeleteGame(ctx context.Context, id core.GameID) error
}

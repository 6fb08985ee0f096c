package memory

import (
	"context"
	"sort"
	"sync"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/ports"
)

// GameStateRepository keeps snapshots in process memory. Stored and
// returned states are clones, so callers never share maps with the store.
type GameStateRepository struct {
	mu     sync.RWMutex
	states map[core.GameID]game.State
}

// NewGameStateRepository creates an empty in-memory store
func NewGameStateRepository() *GameStateRepository {
	return &GameStateRepository{states: make(map[core.GameID]game.State)}
}

var _ ports.GameStateRepository = (*GameStateRepository)(nil)

func (r *GameStateRepository) SaveGame(ctx context.Context, state game.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ID] = state.Clone()
	return nil
}

func (r *GameStateRepository) GetGame(ctx context.Context, id core.GameID) (game.State, error) {
	if err := ctx.Err(); err != nil {
		return game.State{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[id]
	if !ok {
		return game.State{}, core.NewGameNotFoundError(id)
	}
	return state.Clone(), nil
}

func (r *GameStateRepository) ListGames(ctx context.Context, limit int) ([]game.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	states := make([]game.State, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, state.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		if !states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].UpdatedAt.After(states[j].UpdatedAt)
		}
		return states[i].ID > states[j].ID
	})
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}
	return states, nil
}

func (r *GameStateRepository) DeleteGame(ctx context.Context, id core.GameID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
	return nil
}

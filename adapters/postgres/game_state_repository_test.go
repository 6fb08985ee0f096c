package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"bayesbet/adapters/db/postgres/migrations"
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal"
	"bayesbet/internal/errors"
	"bayesbet/internal/testkit"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredState() game.State {
	s := testkit.ThreeHypothesisScenario()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return game.State{
		ID:        core.NewGameID(),
		Scenario:  *s,
		Rule:      game.RuleOddsAgainst,
		Bets:      game.Bets{testkit.H2: 20},
		Locked:    true,
		CreatedAt: now,
		UpdatedAt: now,
		Competitors: []game.Competitor{
			{ID: core.PersonaID(testkit.ParadigmFrequentist), Kind: game.KindPersona, Paradigm: testkit.ParadigmFrequentist, Payoff: 0},
			{ID: core.PlayerID, Kind: game.KindPlayer, Bets: game.Bets{testkit.H2: 20}, Payoff: 160},
		},
	}
}

func TestDecodeState_CorruptPayloadIsDatabaseError(t *testing.T) {
	_, err := decodeState([]byte(`{"id": 42`))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestLeaderboardRows(t *testing.T) {
	state := scoredState()
	rows := leaderboardRows(state)

	require.Len(t, rows, 2)
	assert.Equal(t, "player", rows[0].CompetitorID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.False(t, rows[0].Paradigm.Valid)
	assert.Equal(t, "persona:frequentist", rows[1].CompetitorID)
	assert.Equal(t, "frequentist", rows[1].Paradigm.String)
	assert.Equal(t, state.ID.String(), rows[1].GameID)

	assert.Empty(t, leaderboardRows(game.State{}))
}

// Runs against a real database when BAYESBET_TEST_DATABASE_URL is set
func TestGameStateRepository_Postgres(t *testing.T) {
	url := os.Getenv("BAYESBET_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BAYESBET_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.NewMigrator(db.DB, internal.NewLogger(internal.LogLevelError)).Up(ctx))

	repo := NewGameStateRepository(db)
	state := scoredState()
	require.NoError(t, repo.SaveGame(ctx, state))
	defer repo.DeleteGame(ctx, state.ID)

	got, err := repo.GetGame(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, got.ID)
	assert.Equal(t, state.Bets, got.Bets)
	assert.True(t, got.Locked)

	board, err := repo.Leaderboard(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "player", board[0].CompetitorID)

	// Saving again replaces rather than duplicates
	state.Competitors = state.Competitors[:1]
	require.NoError(t, repo.SaveGame(ctx, state))
	board, err = repo.Leaderboard(ctx, state.ID)
	require.NoError(t, err)
	assert.Len(t, board, 1)

	require.NoError(t, repo.DeleteGame(ctx, state.ID))
	_, err = repo.GetGame(ctx, state.ID)
	assert.ErrorIs(t, err, core.ErrGameNotFound)
}

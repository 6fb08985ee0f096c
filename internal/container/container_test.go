package container

import (
	"context"
	"testing"

	"bayesbet/adapters/memory"
	"bayesbet/app"
	"bayesbet/internal/config"
	"bayesbet/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_WiresMemoryStore(t *testing.T) {
	c, err := New(&config.Config{
		Game:     config.GameConfig{PayoffRule: "odds_against", PlayerBudget: 100, PersonaBudget: 100},
		Batch:    config.BatchConfig{Concurrency: 1},
		LogLevel: "ERROR",
	})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &memory.GameStateRepository{}, c.GameRepo)
	require.NotNil(t, c.GameService)
	require.NoError(t, c.Connect(context.Background()), "no DATABASE_URL means no connection")
	assert.Nil(t, c.DB)

	state, _, err := c.GameService.NewGame(context.Background(), app.NewGameRequest{Scenario: testkit.ThreeHypothesisScenario()})
	require.NoError(t, err)
	stored, err := c.GameRepo.GetGame(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, stored.ID)

	assert.Error(t, c.InitWithDatabase(context.Background(), nil))
}

package app

import (
	"context"
	"fmt"
	"testing"

	"bayesbet/adapters/memory"
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
	"bayesbet/internal"
	"bayesbet/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReader serves scenarios and posteriors from memory keyed by path
type stubReader struct {
	scenarios  map[string]*scenario.Scenario
	posteriors map[string]map[core.ParadigmID]game.Distribution
}

func (r *stubReader) ReadScenario(path string) (*scenario.Scenario, error) {
	s, ok := r.scenarios[path]
	if !ok {
		return nil, fmt.Errorf("no scenario at %s", path)
	}
	return s, nil
}

func (r *stubReader) ReadPosteriors(path string) (map[core.ParadigmID]game.Distribution, error) {
	p, ok := r.posteriors[path]
	if !ok {
		return nil, fmt.Errorf("no posteriors at %s", path)
	}
	return p, nil
}

func TestScoreBatch(t *testing.T) {
	gen := testkit.NewScenarioGenerator(testkit.DefaultGeneratorConfig())
	reader := &stubReader{
		scenarios: map[string]*scenario.Scenario{
			"reference.json": testkit.ThreeHypothesisScenario(),
		},
		posteriors: map[string]map[core.ParadigmID]game.Distribution{
			"reference-post.json": {testkit.ParadigmFrequentist: testkit.ReferencePosteriors()},
		},
	}
	jobs := []BatchJob{{ScenarioPath: "reference.json", PosteriorsPath: "reference-post.json"}}
	for i := 0; i < 6; i++ {
		path := fmt.Sprintf("generated-%d.json", i)
		s := gen.Generate(fmt.Sprintf("gen-%d", i))
		reader.scenarios[path] = s
		jobs = append(jobs, BatchJob{ScenarioPath: path})
	}
	jobs = append(jobs,
		BatchJob{ScenarioPath: "missing.json"},
		BatchJob{ScenarioPath: "reference.json", PosteriorsPath: "missing-post.json"},
	)

	svc := NewGameService(memory.NewGameStateRepository(), reader, reader, testConfig(), internal.NewLogger(internal.LogLevelError))
	results, err := svc.ScoreBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job, "results keep job order")
	}

	ref := results[0]
	require.NoError(t, ref.Err)
	assert.Equal(t, "three-hypotheses", ref.ScenarioID)
	assert.Equal(t, testkit.H2, ref.Result.Winner)
	assert.False(t, ref.Result.Provisional)
	// Only the persona competes; its proportional bets net 0
	require.Len(t, ref.Result.Leaderboard, 2)
	assert.Equal(t, 0.0, ref.Result.Leaderboard[0].Payoff)

	for _, r := range results[1:7] {
		require.NoError(t, r.Err)
		assert.True(t, r.Result.Provisional)
		assert.Len(t, r.Result.Leaderboard, 1+3, "player plus one persona per generated paradigm")
	}

	assert.Error(t, results[7].Err)
	assert.Nil(t, results[7].Result)
	assert.Error(t, results[8].Err)
}

func TestScoreBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{scenarios: map[string]*scenario.Scenario{"a.json": testkit.ThreeHypothesisScenario()}}
	svc := NewGameService(memory.NewGameStateRepository(), reader, reader, testConfig(), internal.NewLogger(internal.LogLevelError))

	_, err := svc.ScoreBatch(ctx, []BatchJob{{ScenarioPath: "a.json"}})
	assert.ErrorIs(t, err, context.Canceled)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bayesbet/app"
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal/config"
	"bayesbet/internal/container"
	"bayesbet/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContainer(t *testing.T) *container.Container {
	t.Helper()
	c, err := container.New(&config.Config{
		Game:     config.GameConfig{PayoffRule: game.RuleOddsAgainst, PlayerBudget: 100, PersonaBudget: 100},
		Batch:    config.BatchConfig{Concurrency: 2},
		LogLevel: "ERROR",
	})
	require.NoError(t, err)
	return c
}

func writeJSONFile(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestParseBets(t *testing.T) {
	bets, err := parseBets([]string{"H2=40", " H0 = 10.5 "})
	require.NoError(t, err)
	assert.Equal(t, []betInput{{Hypothesis: "H2", Amount: 40}, {Hypothesis: "H0", Amount: 10.5}}, bets)

	_, err = parseBets([]string{"H2"})
	assert.Error(t, err)
	_, err = parseBets([]string{"H2=lots"})
	assert.Error(t, err)
}

func TestParsePredictions(t *testing.T) {
	preds, err := parsePredictions([]string{"lab=H2:high", "field=none:low", "notes=H1"})
	require.NoError(t, err)
	assert.Equal(t, []predictionInput{
		{Cluster: "lab", Predicted: "H2", Confidence: game.ConfidenceHigh},
		{Cluster: "field", Predicted: core.NoHypothesis, Confidence: game.ConfidenceLow},
		{Cluster: "notes", Predicted: "H1", Confidence: game.ConfidenceMedium},
	}, preds)

	_, err = parsePredictions([]string{"H2:high"})
	assert.Error(t, err)
}

func TestParseJobs(t *testing.T) {
	jobs := parseJobs([]string{"a.xlsx:a-post.json", "b.json"})
	assert.Equal(t, []app.BatchJob{
		{ScenarioPath: "a.xlsx", PosteriorsPath: "a-post.json"},
		{ScenarioPath: "b.json"},
	}, jobs)
}

func TestRunEvidence(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runEvidence(&out, testkit.TwoParadigmScenario(), testkit.ParadigmSkeptic, false))

	text := out.String()
	assert.Contains(t, text, "precomputed")
	assert.Contains(t, text, "cumulative WoE [skeptic]")
	assert.NotContains(t, text, "cumulative WoE [frequentist]")

	assert.Error(t, runEvidence(&out, testkit.TwoParadigmScenario(), "bayesian", false))
}

func TestRunResolve_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runResolve(&out, testkit.ThreeHypothesisScenario(), "", true))

	var got map[core.ClusterID]core.HypothesisID
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, testkit.H2, got[testkit.ClusterLab])
}

func TestRunPlay_ReferenceGame(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeJSONFile(t, dir, "reference.json", testkit.ThreeHypothesisScenario())
	posteriorsPath := writeJSONFile(t, dir, "post.json", map[core.ParadigmID]game.Distribution{
		testkit.ParadigmFrequentist: testkit.ReferencePosteriors(),
	})
	exportPath := filepath.Join(dir, "results.xlsx")

	var out bytes.Buffer
	err := runPlay(context.Background(), &out, testContainer(t), playRequest{
		ScenarioPath:   scenarioPath,
		PosteriorsPath: posteriorsPath,
		Bets:           []betInput{{Hypothesis: testkit.H2, Amount: 40}},
		Predictions:    []predictionInput{{Cluster: testkit.ClusterLab, Predicted: testkit.H2, Confidence: game.ConfidenceHigh}},
		ExportPath:     exportPath,
		JSON:           true,
	})
	require.NoError(t, err)

	var result app.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.False(t, result.Provisional)
	require.Len(t, result.Leaderboard, 2)
	assert.Equal(t, core.PlayerID, result.Leaderboard[0].ID)
	assert.Equal(t, 160.0, result.Leaderboard[0].Payoff)
	assert.Equal(t, 30, result.Predictions.Total)

	_, err = os.Stat(exportPath)
	assert.NoError(t, err)
}

func TestRunPlay_OverBudget(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeJSONFile(t, dir, "reference.json", testkit.ThreeHypothesisScenario())

	var out bytes.Buffer
	err := runPlay(context.Background(), &out, testContainer(t), playRequest{
		ScenarioPath: scenarioPath,
		Bets:         []betInput{{Hypothesis: testkit.H0, Amount: 150}},
	})
	assert.ErrorIs(t, err, core.ErrBudgetExceeded)
}

func TestRunBatch_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeJSONFile(t, dir, "good.json", testkit.TwoParadigmScenario())

	var out bytes.Buffer
	err := runBatch(context.Background(), &out, testContainer(t), []app.BatchJob{
		{ScenarioPath: good},
		{ScenarioPath: filepath.Join(dir, "missing.json")},
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out.String(), "provisional")
}

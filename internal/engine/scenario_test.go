package engine

import (
	"math"
	"testing"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceScenario_EndToEnd(t *testing.T) {
	s := testkit.ThreeHypothesisScenario()
	paradigm, _ := s.Paradigm(testkit.ParadigmFrequentist)
	cluster := s.Clusters[0]
	order := s.HypothesisOrder()

	// Weight of evidence: H2 strongly positive, H0/H1 negative
	source := SourceFor(cluster, paradigm, order)
	require.Equal(t, MetricsDerived, source.Kind())
	assert.Greater(t, source.Weigh(testkit.H2).WoE, 9.0)
	assert.Less(t, source.Weigh(testkit.H0).WoE, 0.0)
	assert.Less(t, source.Weigh(testkit.H1).WoE, 0.0)

	// Resolution
	actual := ResolveCluster(cluster, paradigm.ID, order)
	require.Equal(t, testkit.H2, actual)

	// Prediction: H2 with high confidence earns the top bonus
	assert.Equal(t, POINTS_CORRECT_HIGH, ScorePrediction(testkit.H2, actual, game.ConfidenceHigh))

	// Wagering: player stakes 40 on H2; the persona splits 100 credits 50/30/20
	competitors := BuildCompetitors(s, game.Bets{testkit.H2: 40}, 100, "")
	require.Len(t, competitors, 2)
	assert.Equal(t, game.Bets{testkit.H0: 50, testkit.H1: 30, testkit.H2: 20}, competitors[1].Bets)

	priors := ReferenceDistribution(s, "", PriorsByParadigm(s))
	scored := ScoreAll(competitors, order, testkit.ReferencePosteriors(), priors)
	assert.Equal(t, 160.0, scored[0].Payoff)

	// The persona's H2 wager alone nets 80; its losing wagers cost 80
	assert.InDelta(t, 80.0, Payoff(20, 0.2, Outcome{Won: true}, game.RuleOddsAgainst), 1e-9)
	assert.Equal(t, 0.0, scored[1].Payoff)

	board := Rank(scored)
	assert.Equal(t, core.PlayerID, board[0].ID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 2, board[1].Rank)
}

func TestEvidenceTable_CoversEveryCell(t *testing.T) {
	s := testkit.TwoParadigmScenario()
	rows := EvidenceTable(s)
	require.Len(t, rows, len(s.Clusters)*len(s.Paradigms)*len(s.Hypotheses))

	for _, row := range rows {
		assert.False(t, math.IsNaN(row.WoE) || math.IsInf(row.WoE, 0))
		if row.Cluster == testkit.ClusterLab && row.Paradigm == testkit.ParadigmSkeptic {
			assert.Equal(t, MetricsPrecomputed, row.Source)
		} else {
			assert.Equal(t, MetricsDerived, row.Source)
		}
	}
}

func TestCumulativeWoE_SumsClusters(t *testing.T) {
	s := testkit.TwoParadigmScenario()

	totals := CumulativeWoE(s, testkit.ParadigmSkeptic)
	require.Len(t, totals, 3)

	paradigm, _ := s.Paradigm(testkit.ParadigmSkeptic)
	fieldNotes := SourceFor(s.Clusters[1], paradigm, s.HypothesisOrder()).Weigh(testkit.H0).WoE
	assert.InDelta(t, 3.01+fieldNotes, totals[testkit.H0], 1e-9)

	assert.Nil(t, CumulativeWoE(s, "unknown"))
}

func TestGeneratedScenarios_StayFinite(t *testing.T) {
	gen := testkit.NewScenarioGenerator(testkit.DefaultGeneratorConfig())
	for i := 0; i < 25; i++ {
		s := gen.Generate("g")
		for _, row := range EvidenceTable(s) {
			require.False(t, math.IsNaN(row.WoE) || math.IsInf(row.WoE, 0))
		}
		priors := ReferenceDistribution(s, "", PriorsByParadigm(s))
		scored := ScoreAll(BuildCompetitors(s, nil, 100, ""), s.HypothesisOrder(), gen.Posteriors(s), priors)
		for _, c := range scored {
			require.False(t, math.IsNaN(c.Payoff) || math.IsInf(c.Payoff, 0))
			require.LessOrEqual(t, c.Bets.Total(), 100.0)
		}
	}
}

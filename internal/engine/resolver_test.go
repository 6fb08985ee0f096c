package engine

import (
	"testing"

	"bayesbet/domain/core"
	"bayesbet/domain/scenario"

	"github.com/stretchr/testify/assert"
)

var order3 = []core.HypothesisID{"H0", "H1", "H2"}

func TestResolveCluster_LikelihoodFallback(t *testing.T) {
	tests := []struct {
		name        string
		likelihoods scenario.LikelihoodTable
		want        core.HypothesisID
	}{
		{"clear winner", scenario.LikelihoodTable{"H0": {Value: 0.1}, "H1": {Value: 0.1}, "H2": {Value: 0.8}}, "H2"},
		{"nothing above half", scenario.LikelihoodTable{"H0": {Value: 0.5}, "H1": {Value: 0.4}, "H2": {Value: 0.3}}, core.NoHypothesis},
		{"tie keeps first", scenario.LikelihoodTable{"H0": {Value: 0.2}, "H1": {Value: 0.7}, "H2": {Value: 0.7}}, "H1"},
		{"partial table", scenario.LikelihoodTable{"H1": {Value: 0.9}}, "H1"},
		{"no data", nil, core.NoHypothesis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := scenario.EvidenceCluster{ID: "C", Likelihoods: tt.likelihoods}
			assert.Equal(t, tt.want, ResolveCluster(cluster, "p", order3))
		})
	}
}

func TestResolveCluster_PrecomputedMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metrics scenario.MetricsTable
		want    core.HypothesisID
	}{
		{"largest woe", scenario.MetricsTable{"H0": {WoE: -3}, "H1": {WoE: 4}, "H2": {WoE: 2}}, "H1"},
		{"tie keeps first", scenario.MetricsTable{"H0": {WoE: -3}, "H1": {WoE: 5}, "H2": {WoE: 5}}, "H1"},
		{"below threshold", scenario.MetricsTable{"H0": {WoE: 0.5}, "H1": {WoE: 1.0}, "H2": {WoE: -2}}, core.NoHypothesis},
		{"all negative", scenario.MetricsTable{"H0": {WoE: -1}, "H1": {WoE: -2}}, core.NoHypothesis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := scenario.EvidenceCluster{
				ID: "C",
				// Likelihoods disagree; metrics must win
				Likelihoods: scenario.LikelihoodTable{"H0": {Value: 0.99}},
				Metrics:     map[core.ParadigmID]scenario.MetricsTable{"p": tt.metrics},
			}
			assert.Equal(t, tt.want, ResolveCluster(cluster, "p", order3))
		})
	}
}

func TestResolveCluster_PerParadigmLikelihoods(t *testing.T) {
	cluster := scenario.EvidenceCluster{
		ID:          "C",
		Likelihoods: scenario.LikelihoodTable{"H0": {Value: 0.9}},
		ParadigmLikelihoods: map[core.ParadigmID]scenario.LikelihoodTable{
			"contrarian": {"H2": {Value: 0.9}},
		},
	}
	assert.Equal(t, core.HypothesisID("H0"), ResolveCluster(cluster, "p", order3))
	assert.Equal(t, core.HypothesisID("H2"), ResolveCluster(cluster, "contrarian", order3))
}

func TestResolveAll(t *testing.T) {
	s := &scenario.Scenario{
		Hypotheses: []scenario.Hypothesis{{ID: "H0"}, {ID: "H1"}},
		Paradigms:  []scenario.Paradigm{{ID: "p"}},
		Clusters: []scenario.EvidenceCluster{
			{ID: "C1", Likelihoods: scenario.LikelihoodTable{"H0": {Value: 0.7}, "H1": {Value: 0.2}}},
			{ID: "C2"},
		},
	}
	outcomes := ResolveAll(s, "p")
	assert.Equal(t, core.HypothesisID("H0"), outcomes["C1"])
	assert.Equal(t, core.NoHypothesis, outcomes["C2"])
}

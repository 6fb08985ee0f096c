package scenario

import (
	"testing"

	"bayesbet/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeHypothesisScenario() *Scenario {
	return &Scenario{
		ID: "unit",
		Hypotheses: []Hypothesis{
			{ID: "H0", Name: "Null"},
			{ID: "H1", Name: "Alt one"},
			{ID: "H2", Name: "Alt two"},
		},
		Paradigms: []Paradigm{
			{ID: "freq", Name: "Frequentist", Priors: map[core.HypothesisID]float64{"H0": 0.5, "H1": 0.3, "H2": 0.2}},
			{ID: "skeptic", Name: "Skeptic", Priors: map[core.HypothesisID]float64{"H0": 0.8, "H1": 0.1, "H2": 0.1}},
		},
		Clusters: []EvidenceCluster{
			{
				ID: "C1",
				Likelihoods: LikelihoodTable{
					"H0": {Value: 0.1}, "H1": {Value: 0.1}, "H2": {Value: 0.8},
				},
				ParadigmLikelihoods: map[core.ParadigmID]LikelihoodTable{
					"skeptic": {"H0": {Value: 0.4}, "H1": {Value: 0.3}, "H2": {Value: 0.3}},
				},
			},
		},
	}
}

func TestValidate_CleanScenario(t *testing.T) {
	warnings, err := threeHypothesisScenario().Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_PriorSumIsWarningNotError(t *testing.T) {
	s := threeHypothesisScenario()
	s.Paradigms[0].Priors["H2"] = 0.4

	warnings, err := s.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.ParadigmID("freq"), warnings[0].Paradigm)
	assert.Contains(t, warnings[0].Message, "1.2000")
}

func TestValidate_OutOfRangeLikelihoodIsWarning(t *testing.T) {
	s := threeHypothesisScenario()
	s.Clusters[0].Likelihoods["H2"] = Likelihood{Value: 1}

	warnings, err := s.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.ClusterID("C1"), warnings[0].Cluster)
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"no hypotheses", func(s *Scenario) { s.Hypotheses = nil }},
		{"no paradigms", func(s *Scenario) { s.Paradigms = nil }},
		{"duplicate hypothesis", func(s *Scenario) { s.Hypotheses = append(s.Hypotheses, Hypothesis{ID: "H0"}) }},
		{"duplicate paradigm", func(s *Scenario) { s.Paradigms = append(s.Paradigms, s.Paradigms[0]) }},
		{"unknown prior hypothesis", func(s *Scenario) { s.Paradigms[0].Priors["H9"] = 0.1 }},
		{"unknown likelihood hypothesis", func(s *Scenario) { s.Clusters[0].Likelihoods["H9"] = Likelihood{Value: 0.5} }},
		{"unknown cluster paradigm", func(s *Scenario) {
			s.Clusters[0].ParadigmLikelihoods["ghost"] = LikelihoodTable{"H0": {Value: 0.5}}
		}},
		{"duplicate cluster", func(s *Scenario) { s.Clusters = append(s.Clusters, s.Clusters[0]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := threeHypothesisScenario()
			tt.mutate(s)
			_, err := s.Validate()
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestLikelihoodsFor_PrefersParadigmTable(t *testing.T) {
	c := threeHypothesisScenario().Clusters[0]

	assert.Equal(t, 0.4, c.LikelihoodsFor("skeptic")["H0"].Value)
	assert.Equal(t, 0.1, c.LikelihoodsFor("freq")["H0"].Value)
	assert.True(t, c.HasLikelihoodData("freq"))
	assert.Nil(t, c.MetricsFor("freq"))
}

func TestReferenceParadigm(t *testing.T) {
	s := threeHypothesisScenario()

	id, ok := s.ReferenceParadigm("skeptic")
	assert.True(t, ok)
	assert.Equal(t, core.ParadigmID("skeptic"), id)

	id, ok = s.ReferenceParadigm("unknown")
	assert.True(t, ok)
	assert.Equal(t, core.ParadigmID("freq"), id)

	s.Paradigms = nil
	_, ok = s.ReferenceParadigm("")
	assert.False(t, ok)
}

func TestHypothesisOrder(t *testing.T) {
	assert.Equal(t, []core.HypothesisID{"H0", "H1", "H2"}, threeHypothesisScenario().HypothesisOrder())
}

package testkit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioGenerator_Deterministic(t *testing.T) {
	a := NewScenarioGenerator(DefaultGeneratorConfig()).Generate("s1")
	b := NewScenarioGenerator(DefaultGeneratorConfig()).Generate("s1")
	assert.Equal(t, a, b)
}

func TestScenarioGenerator_ProducesValidScenarios(t *testing.T) {
	config := DefaultGeneratorConfig()
	gen := NewScenarioGenerator(config)

	for i := 0; i < 20; i++ {
		s := gen.Generate("s")
		require.Len(t, s.Hypotheses, config.HypothesisCount)
		require.Len(t, s.Paradigms, config.ParadigmCount)
		require.Len(t, s.Clusters, config.ClusterCount)

		warnings, err := s.Validate()
		require.NoError(t, err)
		assert.Empty(t, warnings)

		post := gen.Posteriors(s)
		sum := 0.0
		for _, p := range post {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestFixtures_Validate(t *testing.T) {
	warnings, err := ThreeHypothesisScenario().Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	warnings, err = TwoParadigmScenario().Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	sum := 0.0
	for _, p := range ReferencePosteriors() {
		sum += p
	}
	assert.False(t, math.IsNaN(sum))
	assert.InDelta(t, 1.0, sum, 1e-9)
}

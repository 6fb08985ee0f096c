package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
)

// GeneratorConfig configures synthetic scenario generation
type GeneratorConfig struct {
	HypothesisCount int     `json:"hypothesis_count"`
	ParadigmCount   int     `json:"paradigm_count"`
	ClusterCount    int     `json:"cluster_count"`
	PrecomputedRate float64 `json:"precomputed_rate"` // share of cluster/paradigm pairs with metrics
	Seed            int64   `json:"seed"`
}

// DefaultGeneratorConfig returns sensible defaults for synthetic scenarios
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		HypothesisCount: 4,
		ParadigmCount:   3,
		ClusterCount:    5,
		PrecomputedRate: 0.25,
		Seed:            42,
	}
}

// ScenarioGenerator produces deterministic random scenarios
type ScenarioGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewScenarioGenerator creates a generator seeded from the config
func NewScenarioGenerator(config GeneratorConfig) *ScenarioGenerator {
	return &ScenarioGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds one scenario. Priors are normalized; likelihoods lie
// strictly inside (0,1).
func (g *ScenarioGenerator) Generate(id string) *scenario.Scenario {
	s := &scenario.Scenario{ID: id, Title: fmt.Sprintf("Synthetic scenario %s", id)}

	for i := 0; i < g.config.HypothesisCount; i++ {
		s.Hypotheses = append(s.Hypotheses, scenario.Hypothesis{
			ID:   core.HypothesisID(fmt.Sprintf("H%d", i)),
			Name: fmt.Sprintf("Hypothesis %d", i),
		})
	}
	order := s.HypothesisOrder()

	for i := 0; i < g.config.ParadigmCount; i++ {
		s.Paradigms = append(s.Paradigms, scenario.Paradigm{
			ID:     core.ParadigmID(fmt.Sprintf("paradigm-%d", i)),
			Name:   fmt.Sprintf("Paradigm %d", i),
			Priors: g.distribution(order),
		})
	}

	for i := 0; i < g.config.ClusterCount; i++ {
		cluster := scenario.EvidenceCluster{
			ID:          core.ClusterID(fmt.Sprintf("cluster-%d", i)),
			Likelihoods: make(scenario.LikelihoodTable, len(order)),
		}
		for _, h := range order {
			cluster.Likelihoods[h] = scenario.Likelihood{Value: 0.02 + 0.96*g.rng.Float64()}
		}
		for _, p := range s.Paradigms {
			if g.rng.Float64() >= g.config.PrecomputedRate {
				continue
			}
			if cluster.Metrics == nil {
				cluster.Metrics = make(map[core.ParadigmID]scenario.MetricsTable)
			}
			metrics := make(scenario.MetricsTable, len(order))
			for _, h := range order {
				woe := g.rng.NormFloat64() * 5
				metrics[h] = scenario.PrecomputedMetrics{WoE: woe, LR: math.Pow(10, woe/10)}
			}
			cluster.Metrics[p.ID] = metrics
		}
		s.Clusters = append(s.Clusters, cluster)
	}
	return s
}

// Posteriors draws a posterior distribution over the scenario's hypotheses
func (g *ScenarioGenerator) Posteriors(s *scenario.Scenario) game.Distribution {
	return game.Distribution(g.distribution(s.HypothesisOrder()))
}

func (g *ScenarioGenerator) distribution(order []core.HypothesisID) map[core.HypothesisID]float64 {
	weights := make([]float64, len(order))
	sum := 0.0
	for i := range weights {
		weights[i] = 0.05 + g.rng.Float64()
		sum += weights[i]
	}
	out := make(map[core.HypothesisID]float64, len(order))
	for i, h := range order {
		out[h] = weights[i] / sum
	}
	return out
}

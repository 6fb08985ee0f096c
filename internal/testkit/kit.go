package testkit

import (
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
)

// Canonical fixture ids
const (
	H0 core.HypothesisID = "H0"
	H1 core.HypothesisID = "H1"
	H2 core.HypothesisID = "H2"

	ParadigmFrequentist core.ParadigmID = "frequentist"
	ParadigmSkeptic     core.ParadigmID = "skeptic"

	ClusterLab core.ClusterID = "lab-results"
)

// ThreeHypothesisScenario is the reference game: priors 0.5/0.3/0.2 under a
// single paradigm and one cluster with likelihoods 0.1/0.1/0.8.
func ThreeHypothesisScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:    "three-hypotheses",
		Title: "Which explanation fits the lab results?",
		Hypotheses: []scenario.Hypothesis{
			{ID: H0, Name: "Contamination"},
			{ID: H1, Name: "Instrument drift"},
			{ID: H2, Name: "Genuine effect"},
		},
		Paradigms: []scenario.Paradigm{
			{
				ID:     ParadigmFrequentist,
				Name:   "Frequentist",
				Priors: map[core.HypothesisID]float64{H0: 0.5, H1: 0.3, H2: 0.2},
			},
		},
		Clusters: []scenario.EvidenceCluster{
			{
				ID:           ClusterLab,
				Name:         "Replicated lab results",
				EvidenceRefs: []string{"ev-1", "ev-2"},
				Likelihoods: scenario.LikelihoodTable{
					H0: {Value: 0.1, Justification: "contamination rarely replicates"},
					H1: {Value: 0.1, Justification: "drift would not survive recalibration"},
					H2: {Value: 0.8, Justification: "a real effect replicates"},
				},
			},
		},
	}
}

// TwoParadigmScenario extends the reference game with a skeptic persona
// whose precomputed metrics disagree on the lab cluster, plus a second
// cluster with mixed evidence.
func TwoParadigmScenario() *scenario.Scenario {
	s := ThreeHypothesisScenario()
	s.ID = "two-paradigms"
	s.Paradigms = append(s.Paradigms, scenario.Paradigm{
		ID:     ParadigmSkeptic,
		Name:   "Skeptic",
		Priors: map[core.HypothesisID]float64{H0: 0.7, H1: 0.2, H2: 0.1},
	})
	s.Clusters[0].Metrics = map[core.ParadigmID]scenario.MetricsTable{
		ParadigmSkeptic: {
			H0: {LR: 2, WoE: 3.01, PEH: 0.4, PENotH: 0.2},
			H1: {LR: 0.5, WoE: -3.01, PEH: 0.1, PENotH: 0.2},
			H2: {LR: 1, WoE: 0, PEH: 0.3, PENotH: 0.3},
		},
	}
	s.Clusters = append(s.Clusters, scenario.EvidenceCluster{
		ID:   "field-notes",
		Name: "Field notes",
		Likelihoods: scenario.LikelihoodTable{
			H0: {Value: 0.4}, H1: {Value: 0.45}, H2: {Value: 0.3},
		},
	})
	return s
}

// ReferencePosteriors is outcome data in which H2 wins
func ReferencePosteriors() game.Distribution {
	return game.Distribution{H0: 0.1, H1: 0.1, H2: 0.8}
}

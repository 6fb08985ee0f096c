package scenario

import (
	"bayesbet/domain/core"
)

// ============================================================================
// HYPOTHESIS SPACE (read-only once a scenario is loaded)
// ============================================================================

// Hypothesis is one member of the scenario's MECE hypothesis set
type Hypothesis struct {
	ID   core.HypothesisID `json:"id"`
	Name string            `json:"name"`
}

// Paradigm is a worldview persona with its own prior distribution
// INVARIANTS:
// - Priors should sum to 1 (tolerance-checked by Validate, never enforced)
type Paradigm struct {
	ID     core.ParadigmID               `json:"id"`
	Name   string                        `json:"name"`
	Priors map[core.HypothesisID]float64 `json:"priors"`
}

// Likelihood is P(E|H) for one hypothesis, optionally justified
type Likelihood struct {
	Value         float64 `json:"value"`
	Justification string  `json:"justification,omitempty"`
}

// PrecomputedMetrics is produced by the evidence-generation stage and is
// authoritative over locally derived ratios when present.
type PrecomputedMetrics struct {
	LR     float64 `json:"lr"`
	WoE    float64 `json:"woe"`
	PEH    float64 `json:"p_e_h"`
	PENotH float64 `json:"p_e_not_h"`
}

// LikelihoodTable maps each hypothesis to its likelihood within a cluster
type LikelihoodTable map[core.HypothesisID]Likelihood

// MetricsTable maps each hypothesis to precomputed metrics within a cluster
type MetricsTable map[core.HypothesisID]PrecomputedMetrics

// EvidenceCluster is a batch of evidence revealed together
type EvidenceCluster struct {
	ID           core.ClusterID `json:"id"`
	Name         string         `json:"name,omitempty"`
	EvidenceRefs []string       `json:"evidence_refs,omitempty"`

	// Likelihoods applies to every paradigm without its own table
	Likelihoods LikelihoodTable `json:"likelihoods,omitempty"`

	// ParadigmLikelihoods overrides Likelihoods per paradigm
	ParadigmLikelihoods map[core.ParadigmID]LikelihoodTable `json:"paradigm_likelihoods,omitempty"`

	// Metrics holds precomputed per-paradigm metrics, if the evidence stage produced them
	Metrics map[core.ParadigmID]MetricsTable `json:"metrics,omitempty"`
}

// Scenario is the complete configuration for one game
type Scenario struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Hypotheses []Hypothesis      `json:"hypotheses"`
	Paradigms  []Paradigm        `json:"paradigms"`
	Clusters   []EvidenceCluster `json:"clusters"`
}

// ============================================================================
// ACCESSORS
// ============================================================================

// LikelihoodsFor returns the likelihood table a paradigm should use:
// its own table when present, the shared table otherwise.
func (c EvidenceCluster) LikelihoodsFor(paradigm core.ParadigmID) LikelihoodTable {
	if table, ok := c.ParadigmLikelihoods[paradigm]; ok && len(table) > 0 {
		return table
	}
	return c.Likelihoods
}

// MetricsFor returns the precomputed metrics for a paradigm, or nil
func (c EvidenceCluster) MetricsFor(paradigm core.ParadigmID) MetricsTable {
	table, ok := c.Metrics[paradigm]
	if !ok || len(table) == 0 {
		return nil
	}
	return table
}

// HasLikelihoodData reports whether any likelihood exists for the paradigm
func (c EvidenceCluster) HasLikelihoodData(paradigm core.ParadigmID) bool {
	return len(c.LikelihoodsFor(paradigm)) > 0
}

// HypothesisOrder returns hypothesis ids in scenario order. Every
// tie-break in the engine is resolved against this order.
func (s *Scenario) HypothesisOrder() []core.HypothesisID {
	order := make([]core.HypothesisID, len(s.Hypotheses))
	for i, h := range s.Hypotheses {
		order[i] = h.ID
	}
	return order
}

// Hypothesis looks up a hypothesis by id
func (s *Scenario) Hypothesis(id core.HypothesisID) (Hypothesis, bool) {
	for _, h := range s.Hypotheses {
		if h.ID == id {
			return h, true
		}
	}
	return Hypothesis{}, false
}

// Paradigm looks up a paradigm by id
func (s *Scenario) Paradigm(id core.ParadigmID) (Paradigm, bool) {
	for _, p := range s.Paradigms {
		if p.ID == id {
			return p, true
		}
	}
	return Paradigm{}, false
}

// Cluster looks up an evidence cluster by id
func (s *Scenario) Cluster(id core.ClusterID) (EvidenceCluster, bool) {
	for _, c := range s.Clusters {
		if c.ID == id {
			return c, true
		}
	}
	return EvidenceCluster{}, false
}

// ReferenceParadigm returns the paradigm used when a single viewpoint is
// needed: the preferred one if it exists, the first paradigm otherwise.
func (s *Scenario) ReferenceParadigm(preferred core.ParadigmID) (core.ParadigmID, bool) {
	if preferred != "" {
		if _, ok := s.Paradigm(preferred); ok {
			return preferred, true
		}
	}
	if len(s.Paradigms) == 0 {
		return "", false
	}
	return s.Paradigms[0].ID, true
}

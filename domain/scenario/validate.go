package scenario

import (
	"fmt"
	"math"

	"bayesbet/domain/core"

	"gonum.org/v1/gonum/floats"
)

// PriorSumTolerance is how far a paradigm's priors may drift from 1 before
// Validate reports a warning.
const PriorSumTolerance = 1e-3

// Warning is a non-fatal data-quality finding
type Warning struct {
	Paradigm core.ParadigmID `json:"paradigm,omitempty"`
	Cluster  core.ClusterID  `json:"cluster,omitempty"`
	Message  string          `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.Paradigm != "" && w.Cluster != "":
		return fmt.Sprintf("%s/%s: %s", w.Cluster, w.Paradigm, w.Message)
	case w.Paradigm != "":
		return fmt.Sprintf("%s: %s", w.Paradigm, w.Message)
	case w.Cluster != "":
		return fmt.Sprintf("%s: %s", w.Cluster, w.Message)
	}
	return w.Message
}

// Validate checks structural integrity. Broken structure (missing or
// duplicate ids, references to unknown hypotheses) is an error; priors that
// do not sum to 1 and out-of-range probabilities are returned as warnings,
// since the engine clamps them downstream.
func (s *Scenario) Validate() ([]Warning, error) {
	if len(s.Hypotheses) == 0 {
		return nil, core.NewScenarioError("at least one hypothesis is required")
	}
	if len(s.Paradigms) == 0 {
		return nil, core.NewScenarioError("at least one paradigm is required")
	}

	known := make(map[core.HypothesisID]bool, len(s.Hypotheses))
	for _, h := range s.Hypotheses {
		if h.ID.IsNone() {
			return nil, core.NewScenarioError("hypothesis with empty id")
		}
		if known[h.ID] {
			return nil, core.NewScenarioError(fmt.Sprintf("duplicate hypothesis %s", h.ID))
		}
		known[h.ID] = true
	}

	var warnings []Warning
	seenParadigms := make(map[core.ParadigmID]bool, len(s.Paradigms))
	for _, p := range s.Paradigms {
		if p.ID == "" {
			return nil, core.NewScenarioError("paradigm with empty id")
		}
		if seenParadigms[p.ID] {
			return nil, core.NewScenarioError(fmt.Sprintf("duplicate paradigm %s", p.ID))
		}
		seenParadigms[p.ID] = true

		values := make([]float64, 0, len(p.Priors))
		for id, prior := range p.Priors {
			if !known[id] {
				return nil, fmt.Errorf("paradigm %s priors: %w", p.ID, core.NewUnknownHypothesisError(id))
			}
			values = append(values, prior)
		}
		if len(p.Priors) < len(s.Hypotheses) {
			warnings = append(warnings, Warning{Paradigm: p.ID, Message: "priors missing for some hypotheses; equal weighting will be used"})
		}
		if sum := floats.Sum(values); len(values) > 0 && math.Abs(sum-1) > PriorSumTolerance {
			warnings = append(warnings, Warning{Paradigm: p.ID, Message: fmt.Sprintf("priors sum to %.4f, expected 1", sum)})
		}
	}

	seenClusters := make(map[core.ClusterID]bool, len(s.Clusters))
	for _, c := range s.Clusters {
		if c.ID == "" {
			return nil, core.NewScenarioError("evidence cluster with empty id")
		}
		if seenClusters[c.ID] {
			return nil, core.NewScenarioError(fmt.Sprintf("duplicate evidence cluster %s", c.ID))
		}
		seenClusters[c.ID] = true

		if err := checkTable(c.ID, "", c.Likelihoods, known, &warnings); err != nil {
			return nil, err
		}
		for paradigm, table := range c.ParadigmLikelihoods {
			if !seenParadigms[paradigm] {
				return nil, fmt.Errorf("cluster %s: %w", c.ID, core.NewUnknownParadigmError(paradigm))
			}
			if err := checkTable(c.ID, paradigm, table, known, &warnings); err != nil {
				return nil, err
			}
		}
		for paradigm, metrics := range c.Metrics {
			if !seenParadigms[paradigm] {
				return nil, fmt.Errorf("cluster %s metrics: %w", c.ID, core.NewUnknownParadigmError(paradigm))
			}
			for id := range metrics {
				if !known[id] {
					return nil, fmt.Errorf("cluster %s metrics: %w", c.ID, core.NewUnknownHypothesisError(id))
				}
			}
		}
	}

	return warnings, nil
}

func checkTable(cluster core.ClusterID, paradigm core.ParadigmID, table LikelihoodTable, known map[core.HypothesisID]bool, warnings *[]Warning) error {
	for id, l := range table {
		if !known[id] {
			return fmt.Errorf("cluster %s likelihoods: %w", cluster, core.NewUnknownHypothesisError(id))
		}
		if math.IsNaN(l.Value) || l.Value <= 0 || l.Value >= 1 {
			*warnings = append(*warnings, Warning{
				Paradigm: paradigm,
				Cluster:  cluster,
				Message:  fmt.Sprintf("likelihood for %s is %v, outside (0,1); it will be clamped", id, l.Value),
			})
		}
	}
	return nil
}

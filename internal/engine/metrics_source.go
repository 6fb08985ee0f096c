package engine

import (
	"bayesbet/domain/core"
	"bayesbet/domain/scenario"
)

// MetricsKind records where an EvidenceWeight came from
type MetricsKind string

const (
	MetricsPrecomputed MetricsKind = "precomputed"
	MetricsDerived     MetricsKind = "derived"
)

// MetricsSource is the closed choice between authoritative precomputed
// metrics and locally derived likelihood ratios. SourceFor is the single
// place that decides which one applies.
type MetricsSource interface {
	Kind() MetricsKind
	Weigh(h core.HypothesisID) EvidenceWeight
	metricsSource()
}

// Precomputed serves metrics produced by the evidence-generation stage
type Precomputed struct {
	Metrics scenario.MetricsTable
}

// Derived computes metrics from raw likelihoods and priors
type Derived struct {
	Order       []core.HypothesisID
	Likelihoods scenario.LikelihoodTable
	Priors      map[core.HypothesisID]float64
}

func (Precomputed) metricsSource() {}
func (Derived) metricsSource()     {}

func (Precomputed) Kind() MetricsKind { return MetricsPrecomputed }
func (Derived) Kind() MetricsKind     { return MetricsDerived }

// Weigh returns the stored metrics verbatim. A hypothesis missing from the
// table, or one whose LR/WoE are non-finite, is neutral.
func (p Precomputed) Weigh(h core.HypothesisID) EvidenceWeight {
	m, ok := p.Metrics[h]
	if !ok || !isFinite(m.LR) || !isFinite(m.WoE) {
		return NeutralWeight(MetricsPrecomputed)
	}
	return EvidenceWeight{
		LR:     m.LR,
		WoE:    m.WoE,
		PEH:    finiteOr(m.PEH, NEUTRAL_PROBABILITY),
		PENotH: finiteOr(m.PENotH, NEUTRAL_PROBABILITY),
		Source: MetricsPrecomputed,
	}
}

// Weigh runs ComputeLikelihoodRatio for h against every other hypothesis
// in Order. Missing likelihoods default to NEUTRAL_PROBABILITY and missing
// priors to equal weighting.
func (d Derived) Weigh(h core.HypothesisID) EvidenceWeight {
	alternatives := make([]Alternative, 0, len(d.Order))
	for _, other := range d.Order {
		if other == h {
			continue
		}
		alternatives = append(alternatives, Alternative{
			Likelihood: d.likelihood(other),
			Prior:      d.prior(other),
		})
	}
	return ComputeLikelihoodRatio(d.likelihood(h), d.prior(h), alternatives)
}

func (d Derived) likelihood(h core.HypothesisID) float64 {
	if l, ok := d.Likelihoods[h]; ok {
		return l.Value
	}
	return NEUTRAL_PROBABILITY
}

func (d Derived) prior(h core.HypothesisID) float64 {
	if p, ok := d.Priors[h]; ok {
		return p
	}
	return equalWeight(len(d.Order))
}

func equalWeight(n int) float64 {
	if n <= 0 {
		return NEUTRAL_PROBABILITY
	}
	return 1 / float64(n)
}

// SourceFor picks the metrics source for a cluster under a paradigm:
// precomputed metrics when the evidence stage supplied any, derived
// otherwise.
func SourceFor(cluster scenario.EvidenceCluster, paradigm scenario.Paradigm, order []core.HypothesisID) MetricsSource {
	if metrics := cluster.MetricsFor(paradigm.ID); metrics != nil {
		return Precomputed{Metrics: metrics}
	}
	return Derived{
		Order:       order,
		Likelihoods: cluster.LikelihoodsFor(paradigm.ID),
		Priors:      paradigm.Priors,
	}
}

// EvidenceRow is one cell of the evidence table
type EvidenceRow struct {
	Cluster    core.ClusterID    `json:"cluster"`
	Paradigm   core.ParadigmID   `json:"paradigm"`
	Hypothesis core.HypothesisID `json:"hypothesis"`
	EvidenceWeight
}

// EvidenceTable weighs every cluster × paradigm × hypothesis in scenario
// order.
func EvidenceTable(s *scenario.Scenario) []EvidenceRow {
	order := s.HypothesisOrder()
	rows := make([]EvidenceRow, 0, len(s.Clusters)*len(s.Paradigms)*len(order))
	for _, cluster := range s.Clusters {
		for _, paradigm := range s.Paradigms {
			source := SourceFor(cluster, paradigm, order)
			for _, h := range order {
				rows = append(rows, EvidenceRow{
					Cluster:        cluster.ID,
					Paradigm:       paradigm.ID,
					Hypothesis:     h,
					EvidenceWeight: source.Weigh(h),
				})
			}
		}
	}
	return rows
}

// CumulativeWoE sums WoE across all clusters for one paradigm. Decibans
// add across independent evidence.
func CumulativeWoE(s *scenario.Scenario, paradigmID core.ParadigmID) map[core.HypothesisID]float64 {
	paradigm, ok := s.Paradigm(paradigmID)
	if !ok {
		return nil
	}
	order := s.HypothesisOrder()
	totals := make(map[core.HypothesisID]float64, len(order))
	for _, h := range order {
		totals[h] = 0
	}
	for _, cluster := range s.Clusters {
		source := SourceFor(cluster, paradigm, order)
		for _, h := range order {
			totals[h] += source.Weigh(h).WoE
		}
	}
	return totals
}

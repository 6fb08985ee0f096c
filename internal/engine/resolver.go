package engine

import (
	"bayesbet/domain/core"
	"bayesbet/domain/scenario"
)

// ResolveCluster names the hypothesis a cluster supports under a paradigm,
// or core.NoHypothesis for mixed evidence.
//
// Precomputed metrics take priority: the strictly largest WoE wins if it
// exceeds SUPPORT_THRESHOLD_DECIBANS. Without metrics the raw likelihoods
// are used: the largest wins if it exceeds LIKELIHOOD_SUPPORT_THRESHOLD.
// Ties keep the earliest hypothesis in order.
func ResolveCluster(cluster scenario.EvidenceCluster, paradigm core.ParadigmID, order []core.HypothesisID) core.HypothesisID {
	if metrics := cluster.MetricsFor(paradigm); metrics != nil {
		return strongestAbove(order, SUPPORT_THRESHOLD_DECIBANS, func(h core.HypothesisID) (float64, bool) {
			m, ok := metrics[h]
			return m.WoE, ok && isFinite(m.WoE)
		})
	}

	likelihoods := cluster.LikelihoodsFor(paradigm)
	if len(likelihoods) == 0 {
		return core.NoHypothesis
	}
	return strongestAbove(order, LIKELIHOOD_SUPPORT_THRESHOLD, func(h core.HypothesisID) (float64, bool) {
		l, ok := likelihoods[h]
		return Clamp(l.Value), ok
	})
}

func strongestAbove(order []core.HypothesisID, threshold float64, value func(core.HypothesisID) (float64, bool)) core.HypothesisID {
	best := core.NoHypothesis
	bestValue := 0.0
	for _, h := range order {
		v, ok := value(h)
		if !ok {
			continue
		}
		if best.IsNone() || v > bestValue {
			best, bestValue = h, v
		}
	}
	if best.IsNone() || bestValue <= threshold {
		return core.NoHypothesis
	}
	return best
}

// ResolveAll resolves every cluster in the scenario under one paradigm
func ResolveAll(s *scenario.Scenario, paradigm core.ParadigmID) map[core.ClusterID]core.HypothesisID {
	order := s.HypothesisOrder()
	outcomes := make(map[core.ClusterID]core.HypothesisID, len(s.Clusters))
	for _, cluster := range s.Clusters {
		outcomes[cluster.ID] = ResolveCluster(cluster, paradigm, order)
	}
	return outcomes
}

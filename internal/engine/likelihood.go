package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Alternative is a rival hypothesis's likelihood and prior
type Alternative struct {
	Likelihood float64
	Prior      float64
}

// EvidenceWeight is the evidential support one cluster lends a hypothesis
type EvidenceWeight struct {
	LR     float64     `json:"lr"`
	WoE    float64     `json:"woe"`
	PEH    float64     `json:"p_e_h"`
	PENotH float64     `json:"p_e_not_h"`
	Source MetricsKind `json:"source"`
}

// NeutralWeight carries no evidential support either way
func NeutralWeight(source MetricsKind) EvidenceWeight {
	return EvidenceWeight{
		LR:     1,
		WoE:    0,
		PEH:    NEUTRAL_PROBABILITY,
		PENotH: NEUTRAL_PROBABILITY,
		Source: source,
	}
}

// ComputeLikelihoodRatio derives LR and WoE for a hypothesis against the
// prior-weighted average of its rivals:
//
//	P(E|¬H) = Σ_{j≠i} P(E|H_j)·P(H_j) / P(¬H)
//	LR      = P(E|H) / max(P(E|¬H), floor)
//	WoE     = 10·log10(LR)
//
// All inputs are clamped first. When P(¬H) is below
// COMPLEMENT_PRIOR_FLOOR, P(E|¬H) is taken as neutral.
func ComputeLikelihoodRatio(likelihood, prior float64, alternatives []Alternative) EvidenceWeight {
	pEH := Clamp(likelihood)
	pH := Clamp(prior)
	pNotH := 1 - pH

	pENotH := NEUTRAL_PROBABILITY
	if pNotH >= COMPLEMENT_PRIOR_FLOOR && len(alternatives) > 0 {
		likelihoods := make([]float64, len(alternatives))
		priors := make([]float64, len(alternatives))
		for i, alt := range alternatives {
			likelihoods[i] = Clamp(alt.Likelihood)
			priors[i] = Clamp(alt.Prior)
		}
		pENotH = finiteOr(floats.Dot(likelihoods, priors)/pNotH, NEUTRAL_PROBABILITY)
	}

	lr := pEH / math.Max(pENotH, LR_DENOMINATOR_FLOOR)
	return EvidenceWeight{
		LR:     finiteOr(lr, 1),
		WoE:    WeightOfEvidence(lr),
		PEH:    pEH,
		PENotH: pENotH,
		Source: MetricsDerived,
	}
}

// WeightOfEvidence converts a likelihood ratio to decibans. Non-finite or
// non-positive ratios are neutral (0).
func WeightOfEvidence(lr float64) float64 {
	if !isFinite(lr) || lr <= 0 {
		return 0
	}
	return finiteOr(DECIBANS_PER_BAN*math.Log10(lr), 0)
}

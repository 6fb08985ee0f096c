package game

import (
	"strings"

	"bayesbet/domain/core"
)

// Confidence is the closed three-level confidence scale for predictions
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence maps free text onto the scale. Empty or unrecognized
// values become medium, the scoring default.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceHigh:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

// Normalized returns the confidence with the medium default applied
func (c Confidence) Normalized() Confidence {
	return ParseConfidence(string(c))
}

// PayoffRule selects how a wager's return is computed
type PayoffRule string

const (
	RuleOddsAgainst           PayoffRule = "odds_against"
	RuleProportionalPosterior PayoffRule = "proportional_posterior"
	RuleLogScore              PayoffRule = "log_score"
	RuleQuadraticScore        PayoffRule = "quadratic_score"
)

// DefaultPayoffRule is the session default
const DefaultPayoffRule = RuleOddsAgainst

// KnownPayoffRules lists the closed rule set in display order
var KnownPayoffRules = []PayoffRule{
	RuleOddsAgainst,
	RuleProportionalPosterior,
	RuleLogScore,
	RuleQuadraticScore,
}

// IsKnown reports whether the rule is one of the named rules. Unknown rules
// are still accepted by the payoff engine and scored with its fallback.
func (r PayoffRule) IsKnown() bool {
	for _, known := range KnownPayoffRules {
		if r == known {
			return true
		}
	}
	return false
}

// Bets maps each hypothesis to the amount wagered on it
type Bets map[core.HypothesisID]float64

// Total sums every wager
func (b Bets) Total() float64 {
	total := 0.0
	for _, amount := range b {
		total += amount
	}
	return total
}

// Clone returns an independent copy
func (b Bets) Clone() Bets {
	if b == nil {
		return nil
	}
	out := make(Bets, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// CompetitorKind distinguishes the human player from simulated personas
type CompetitorKind string

const (
	KindPlayer  CompetitorKind = "player"
	KindPersona CompetitorKind = "persona"
)

// Competitor is one bettor on the leaderboard
type Competitor struct {
	ID       core.CompetitorID `json:"id"`
	Name     string            `json:"name"`
	Kind     CompetitorKind    `json:"kind"`
	Paradigm core.ParadigmID   `json:"paradigm,omitempty"`
	Bets     Bets              `json:"bets"`
	Payoff   float64           `json:"payoff"`
}

// Clone returns an independent copy
func (c Competitor) Clone() Competitor {
	c.Bets = c.Bets.Clone()
	return c
}

// PredictionRecord is the player's pre-evidence call on one cluster
type PredictionRecord struct {
	Cluster    core.ClusterID    `json:"cluster"`
	Predicted  core.HypothesisID `json:"predicted"`
	Confidence Confidence        `json:"confidence"`

	// Filled in on resolution
	Resolved bool              `json:"resolved"`
	Actual   core.HypothesisID `json:"actual"`
	Correct  bool              `json:"correct"`
	Points   int               `json:"points"`
}

// PredictionSummary aggregates scored predictions for a scenario
type PredictionSummary struct {
	Records  []PredictionRecord `json:"records"`
	Correct  int                `json:"correct"`
	RawTotal int                `json:"raw_total"`
	Total    int                `json:"total"` // RawTotal floored at zero
}

// LeaderboardEntry is a competitor with its 1-based rank
type LeaderboardEntry struct {
	Competitor
	Rank int `json:"rank"`
}

package game

import (
	"math"
	"time"

	"bayesbet/domain/core"
	"bayesbet/domain/scenario"
)

// Distribution maps hypotheses to probabilities
type Distribution map[core.HypothesisID]float64

// Clone returns an independent copy
func (d Distribution) Clone() Distribution {
	if d == nil {
		return nil
	}
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// State is the explicit, serializable game snapshot owned by the host.
// Every mutator returns a new State and leaves the receiver untouched.
type State struct {
	ID             core.GameID       `json:"id"`
	Scenario       scenario.Scenario `json:"scenario"`
	ScenarioHash   core.Hash         `json:"scenario_hash"`
	PlayerParadigm core.ParadigmID   `json:"player_paradigm,omitempty"`
	Rule           PayoffRule        `json:"rule"`
	PlayerBudget   float64           `json:"player_budget"`
	PersonaBudget  float64           `json:"persona_budget"`

	// Player input, frozen by Lock
	Bets        Bets               `json:"bets"`
	Predictions []PredictionRecord `json:"predictions"`
	Locked      bool               `json:"locked"`

	// Externally supplied posteriors per paradigm; may arrive after Lock
	Posteriors map[core.ParadigmID]Distribution `json:"posteriors,omitempty"`

	// Derived results, recomputed from scratch on every scoring pass
	Competitors       []Competitor       `json:"competitors,omitempty"`
	PredictionSummary *PredictionSummary `json:"prediction_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. The scenario is shared because it is
// read-only once loaded.
func (s State) Clone() State {
	s.Bets = s.Bets.Clone()
	if s.Predictions != nil {
		s.Predictions = append([]PredictionRecord(nil), s.Predictions...)
	}
	if s.Posteriors != nil {
		posteriors := make(map[core.ParadigmID]Distribution, len(s.Posteriors))
		for k, v := range s.Posteriors {
			posteriors[k] = v.Clone()
		}
		s.Posteriors = posteriors
	}
	if s.Competitors != nil {
		competitors := make([]Competitor, len(s.Competitors))
		for i, c := range s.Competitors {
			competitors[i] = c.Clone()
		}
		s.Competitors = competitors
	}
	if s.PredictionSummary != nil {
		summary := *s.PredictionSummary
		summary.Records = append([]PredictionRecord(nil), summary.Records...)
		s.PredictionSummary = &summary
	}
	return s
}

// WithBet sets the wager on one hypothesis. A zero amount removes the bet.
func (s State) WithBet(hypothesis core.HypothesisID, amount float64) (State, error) {
	if s.Locked {
		return s, core.ErrPredictionsLocked
	}
	if _, ok := s.Scenario.Hypothesis(hypothesis); !ok {
		return s, core.NewUnknownHypothesisError(hypothesis)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return s, core.ErrInvalidBet
	}

	next := s.Clone()
	if next.Bets == nil {
		next.Bets = make(Bets)
	}
	if amount == 0 {
		delete(next.Bets, hypothesis)
	} else {
		next.Bets[hypothesis] = amount
	}
	if total := next.Bets.Total(); total > s.PlayerBudget {
		return s, core.NewBudgetError(total, s.PlayerBudget)
	}
	return next, nil
}

// WithPrediction records or replaces the prediction for a cluster.
// predicted may be core.NoHypothesis for "none / mixed".
func (s State) WithPrediction(cluster core.ClusterID, predicted core.HypothesisID, confidence Confidence) (State, error) {
	if s.Locked {
		return s, core.ErrPredictionsLocked
	}
	if _, ok := s.Scenario.Cluster(cluster); !ok {
		return s, core.NewUnknownClusterError(cluster)
	}
	if !predicted.IsNone() {
		if _, ok := s.Scenario.Hypothesis(predicted); !ok {
			return s, core.NewUnknownHypothesisError(predicted)
		}
	}

	next := s.Clone()
	record := PredictionRecord{Cluster: cluster, Predicted: predicted, Confidence: confidence.Normalized()}
	for i, existing := range next.Predictions {
		if existing.Cluster == cluster {
			next.Predictions[i] = record
			return next, nil
		}
	}
	next.Predictions = append(next.Predictions, record)
	return next, nil
}

// Lock freezes bets and predictions ahead of scoring
func (s State) Lock() State {
	next := s.Clone()
	next.Locked = true
	return next
}

// WithPosteriors replaces the posterior distribution for one paradigm.
// Posteriors stream in from an external job, so this is allowed after Lock.
func (s State) WithPosteriors(paradigm core.ParadigmID, posteriors Distribution) State {
	next := s.Clone()
	if next.Posteriors == nil {
		next.Posteriors = make(map[core.ParadigmID]Distribution)
	}
	next.Posteriors[paradigm] = posteriors.Clone()
	return next
}

// WithResults attaches a fresh scoring pass, replacing any previous one
func (s State) WithResults(competitors []Competitor, summary PredictionSummary) State {
	next := s.Clone()
	next.Competitors = make([]Competitor, len(competitors))
	for i, c := range competitors {
		next.Competitors[i] = c.Clone()
	}
	summary.Records = append([]PredictionRecord(nil), summary.Records...)
	next.PredictionSummary = &summary
	return next
}

// HasPosteriors reports whether any outcome data has arrived
func (s State) HasPosteriors() bool {
	for _, d := range s.Posteriors {
		if len(d) > 0 {
			return true
		}
	}
	return false
}

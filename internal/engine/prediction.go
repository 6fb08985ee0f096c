package engine

import (
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
)

// ScorePrediction awards points for one cluster. A "none" prediction
// matching a "none" outcome is correct. Unset confidence scores as medium.
func ScorePrediction(predicted, actual core.HypothesisID, confidence game.Confidence) int {
	correct := predicted == actual
	switch confidence.Normalized() {
	case game.ConfidenceHigh:
		if correct {
			return POINTS_CORRECT_HIGH
		}
		return POINTS_WRONG_HIGH
	case game.ConfidenceLow:
		if correct {
			return POINTS_CORRECT_LOW
		}
		return POINTS_WRONG_LOW
	default:
		if correct {
			return POINTS_CORRECT_MEDIUM
		}
		return POINTS_WRONG_MEDIUM
	}
}

// ScorePredictions resolves each predicted cluster under the paradigm and
// totals the points. Records for clusters missing from the scenario are
// returned unresolved with zero points. The total is floored at zero; the
// per-record points are not.
func ScorePredictions(s *scenario.Scenario, paradigm core.ParadigmID, records []game.PredictionRecord) game.PredictionSummary {
	order := s.HypothesisOrder()
	summary := game.PredictionSummary{Records: make([]game.PredictionRecord, 0, len(records))}

	for _, record := range records {
		scored := record
		scored.Confidence = record.Confidence.Normalized()

		cluster, ok := s.Cluster(record.Cluster)
		if !ok {
			scored.Resolved, scored.Actual, scored.Correct, scored.Points = false, core.NoHypothesis, false, 0
			summary.Records = append(summary.Records, scored)
			continue
		}

		scored.Resolved = true
		scored.Actual = ResolveCluster(cluster, paradigm, order)
		scored.Correct = scored.Predicted == scored.Actual
		scored.Points = ScorePrediction(scored.Predicted, scored.Actual, scored.Confidence)

		if scored.Correct {
			summary.Correct++
		}
		summary.RawTotal += scored.Points
		summary.Records = append(summary.Records, scored)
	}

	summary.Total = summary.RawTotal
	if summary.Total < 0 {
		summary.Total = 0
	}
	return summary
}

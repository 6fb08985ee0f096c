package engine

import (
	"math"
	"sort"

	"bayesbet/domain/core"
	"bayesbet/domain/game"

	"github.com/montanaflynn/stats"
)

// Rank sorts competitors by payoff, highest first, and numbers them 1..n.
// The sort is stable and equal payoffs do NOT share a rank: ties keep
// their input order and take consecutive ranks.
func Rank(competitors []game.Competitor) []game.LeaderboardEntry {
	entries := make([]game.LeaderboardEntry, len(competitors))
	for i, c := range competitors {
		entries[i] = game.LeaderboardEntry{Competitor: c.Clone()}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return sortablePayoff(entries[i].Payoff) > sortablePayoff(entries[j].Payoff)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func sortablePayoff(p float64) float64 {
	if math.IsNaN(p) {
		return math.Inf(-1)
	}
	return p
}

// LeaderboardSummary describes a ranked field
type LeaderboardSummary struct {
	Leader       core.CompetitorID `json:"leader"`
	Count        int               `json:"count"`
	MeanPayoff   float64           `json:"mean_payoff"`
	MedianPayoff float64           `json:"median_payoff"`
	PlayerRank   int               `json:"player_rank,omitempty"`
}

// Summarize reports the leader, payoff mean/median and the player's rank
func Summarize(entries []game.LeaderboardEntry) LeaderboardSummary {
	summary := LeaderboardSummary{Count: len(entries)}
	if len(entries) == 0 {
		return summary
	}
	summary.Leader = entries[0].ID

	payoffs := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		payoffs[i] = e.Payoff
		if e.Kind == game.KindPlayer {
			summary.PlayerRank = e.Rank
		}
	}
	if mean, err := payoffs.Mean(); err == nil {
		summary.MeanPayoff = roundPayoff(mean)
	}
	if median, err := payoffs.Median(); err == nil {
		summary.MedianPayoff = roundPayoff(median)
	}
	return summary
}

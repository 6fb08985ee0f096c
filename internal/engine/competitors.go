package engine

import (
	"math"
	"sort"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// DeriveBets allocates a persona's whole budget across hypotheses in
// proportion to its priors, in whole credits: bet_i = round(prior_i·budget).
// Rounding overshoot is taken back from the allocations that rounded up the
// most, so the total never exceeds the budget and a higher prior never gets
// a smaller bet. Any leftover credit goes to the highest prior.
//
// Priors are normalized before allocation; missing or invalid priors get
// equal weighting. Budgets above MAX_BET_BUDGET are clamped to it.
func DeriveBets(priors map[core.HypothesisID]float64, order []core.HypothesisID, budget float64) game.Bets {
	order = orderOrKeys(order, priors)
	capacity := math.Floor(math.Min(budget, MAX_BET_BUDGET) / BET_UNIT)
	bets := make(game.Bets, len(order))
	if len(order) == 0 || !isFinite(capacity) || capacity <= 0 {
		return bets
	}

	weights := make([]float64, len(order))
	for i, h := range order {
		p, ok := priors[h]
		if !ok || !isFinite(p) || p < 0 {
			p = equalWeight(len(order))
		}
		weights[i] = p
	}
	sum := floats.Sum(weights)
	if sum <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		sum = float64(len(weights))
	}

	exact := make([]float64, len(order))
	rounded := make([]float64, len(order))
	for i, w := range weights {
		exact[i] = w / sum * capacity
		rounded[i] = math.Round(exact[i])
	}

	// Each allocation rounds up by at most half a credit, so the overshoot
	// is a small whole number and every index is taken from at most once.
	total := floats.Sum(rounded)
	if overshoot := int(total - capacity); overshoot > 0 {
		idx := make([]int, 0, len(order))
		for i := range rounded {
			if rounded[i] > 0 {
				idx = append(idx, i)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return rounded[idx[a]]-exact[idx[a]] > rounded[idx[b]]-exact[idx[b]]
		})
		for _, i := range idx[:min(overshoot, len(idx))] {
			rounded[i]--
			total--
		}
	}
	if leftover := capacity - total; leftover >= 1 {
		rounded[floats.MaxIdx(weights)] += leftover
	}

	for i, h := range order {
		if rounded[i] > 0 {
			bets[h] = rounded[i] * BET_UNIT
		}
	}
	return bets
}

// BuildCompetitors returns the player followed by one persona per paradigm
// in scenario order. The home paradigm, if set, is the player's own stance
// and gets no persona.
func BuildCompetitors(s *scenario.Scenario, playerBets game.Bets, personaBudget float64, home core.ParadigmID) []game.Competitor {
	order := s.HypothesisOrder()
	competitors := make([]game.Competitor, 0, len(s.Paradigms)+1)
	competitors = append(competitors, game.Competitor{
		ID:       core.PlayerID,
		Name:     "Player",
		Kind:     game.KindPlayer,
		Paradigm: home,
		Bets:     playerBets.Clone(),
	})

	for _, p := range s.Paradigms {
		if home != "" && p.ID == home {
			continue
		}
		name := p.Name
		if name == "" {
			name = p.ID.String()
		}
		competitors = append(competitors, game.Competitor{
			ID:       core.PersonaID(p.ID),
			Name:     name,
			Kind:     game.KindPersona,
			Paradigm: p.ID,
			Bets:     DeriveBets(p.Priors, order, personaBudget),
		})
	}
	return competitors
}

// WinningHypothesis picks the highest posterior, falling back to the prior
// for hypotheses without one. Ties go to the first in order. ok is false
// when no hypothesis has any probability at all.
func WinningHypothesis(order []core.HypothesisID, posteriors, priors map[core.HypothesisID]float64) (core.HypothesisID, bool) {
	order = orderOrKeys(order, posteriors, priors)
	values := make([]float64, len(order))
	found := false
	for i, h := range order {
		v, ok := posteriors[h]
		if !ok {
			v, ok = priors[h]
		}
		if !ok || math.IsNaN(v) {
			values[i] = math.Inf(-1)
			continue
		}
		values[i] = v
		found = true
	}
	if !found {
		return core.NoHypothesis, false
	}
	return order[floats.MaxIdx(values)], true
}

// ScoreAll scores every competitor with the odds-against rule
func ScoreAll(competitors []game.Competitor, order []core.HypothesisID, posteriors, priors map[core.HypothesisID]float64) []game.Competitor {
	return ScoreAllWithRule(competitors, order, posteriors, priors, game.RuleOddsAgainst)
}

// ScoreAllWithRule sums each competitor's per-hypothesis payoffs under the
// rule and rounds the total to cents. It returns new competitors and is
// idempotent: identical inputs always yield identical payoffs.
func ScoreAllWithRule(competitors []game.Competitor, order []core.HypothesisID, posteriors, priors map[core.HypothesisID]float64, rule game.PayoffRule) []game.Competitor {
	order = orderOrKeys(order, posteriors, priors)
	winner, decided := WinningHypothesis(order, posteriors, priors)

	scored := make([]game.Competitor, len(competitors))
	for i, c := range competitors {
		next := c.Clone()
		next.Payoff = 0
		if decided {
			total := 0.0
			for _, h := range betOrder(order, c.Bets) {
				posterior, ok := posteriors[h]
				if !ok {
					posterior = priors[h]
				}
				total += Payoff(c.Bets[h], priors[h], Outcome{Won: h == winner, Posterior: posterior}, rule)
			}
			next.Payoff = roundPayoff(total)
		}
		scored[i] = next
	}
	return scored
}

func roundPayoff(x float64) float64 {
	rounded, err := stats.Round(finiteOr(x, 0), PAYOFF_DECIMALS)
	if err != nil || rounded == 0 {
		return 0
	}
	return rounded
}

// betOrder lists bet hypotheses in scenario order, then any others sorted,
// so float summation order is fixed.
func betOrder(order []core.HypothesisID, bets game.Bets) []core.HypothesisID {
	seen := make(map[core.HypothesisID]bool, len(order))
	out := make([]core.HypothesisID, 0, len(bets))
	for _, h := range order {
		seen[h] = true
		if _, ok := bets[h]; ok {
			out = append(out, h)
		}
	}
	var extra []core.HypothesisID
	for h := range bets {
		if !seen[h] {
			extra = append(extra, h)
		}
	}
	sortHypotheses(extra)
	return append(out, extra...)
}

func orderOrKeys(order []core.HypothesisID, maps ...map[core.HypothesisID]float64) []core.HypothesisID {
	if len(order) > 0 {
		return order
	}
	seen := make(map[core.HypothesisID]bool)
	var keys []core.HypothesisID
	for _, m := range maps {
		for h := range m {
			if !seen[h] {
				seen[h] = true
				keys = append(keys, h)
			}
		}
	}
	sortHypotheses(keys)
	return keys
}

func sortHypotheses(ids []core.HypothesisID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// PriorsByParadigm collects each paradigm's priors
func PriorsByParadigm(s *scenario.Scenario) map[core.ParadigmID]game.Distribution {
	out := make(map[core.ParadigmID]game.Distribution, len(s.Paradigms))
	for _, p := range s.Paradigms {
		out[p.ID] = game.Distribution(p.Priors).Clone()
	}
	return out
}

// ReferenceDistribution returns the preferred paradigm's distribution when
// it has one, otherwise the per-hypothesis mean across paradigms that
// supplied a value.
func ReferenceDistribution(s *scenario.Scenario, preferred core.ParadigmID, dists map[core.ParadigmID]game.Distribution) game.Distribution {
	if d, ok := dists[preferred]; ok && len(d) > 0 {
		return d.Clone()
	}

	out := make(game.Distribution)
	for _, h := range s.HypothesisOrder() {
		var values []float64
		for _, p := range s.Paradigms {
			if v, ok := dists[p.ID][h]; ok && isFinite(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		if mean, err := stats.Mean(values); err == nil {
			out[h] = mean
		}
	}
	return out
}

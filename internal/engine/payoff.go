package engine

import (
	"math"

	"bayesbet/domain/game"
)

// Outcome is what is known about a hypothesis once evidence is in
type Outcome struct {
	Won       bool
	Posterior float64
}

// Payoff computes the signed return of one wager under a rule. A zero or
// non-finite bet always pays 0. Unknown rules score as bet·(posterior−0.5).
func Payoff(bet, prior float64, outcome Outcome, rule game.PayoffRule) float64 {
	if bet == 0 || !isFinite(bet) {
		return 0
	}

	posterior := ClampUnit(outcome.Posterior)
	var payoff float64
	switch rule {
	case game.RuleOddsAgainst:
		payoff = oddsAgainst(bet, prior, outcome.Won)
	case game.RuleProportionalPosterior, game.RuleQuadraticScore:
		payoff = bet * (2*posterior - 1)
	case game.RuleLogScore:
		payoff = bet * math.Log2(posterior+LOG_SCORE_OFFSET)
	default:
		payoff = bet * (posterior - 0.5)
	}
	return finiteOr(payoff, 0)
}

// oddsAgainst pays at 1/prior: long shots pay more when they come in.
// A missing or zero prior wins nothing.
func oddsAgainst(bet, prior float64, won bool) float64 {
	if !won {
		return -bet
	}
	if math.IsNaN(prior) || prior <= 0 {
		return 0
	}
	return bet/prior - bet
}

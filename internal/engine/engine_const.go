package engine

// engine_const.go
//
// Tunable numeric standards for evidence scoring and wagering. Every
// degenerate input is resolved against one of these values instead of
// propagating NaN or Infinity into a scoring pass.

// ============================================================================
// 1. PROBABILITY GUARD
// ============================================================================

const (
	// PROBABILITY_EPSILON: distance kept from 0 and 1 when clamping
	// likelihoods and priors for ratio and logarithm math.
	PROBABILITY_EPSILON = 1e-4

	// NEUTRAL_PROBABILITY: substituted for NaN inputs and for missing
	// likelihoods. Evidence at 0.5 everywhere carries no weight.
	NEUTRAL_PROBABILITY = 0.5
)

// ============================================================================
// 2. LIKELIHOOD RATIO / WEIGHT OF EVIDENCE
// ============================================================================

const (
	// COMPLEMENT_PRIOR_FLOOR: below this P(¬H) the rival average is
	// undefined in practice and P(E|¬H) falls back to NEUTRAL_PROBABILITY.
	COMPLEMENT_PRIOR_FLOOR = 0.001

	// LR_DENOMINATOR_FLOOR: minimum P(E|¬H) used as the LR denominator.
	LR_DENOMINATOR_FLOOR = 0.001

	// DECIBANS_PER_BAN: WoE = 10·log10(LR).
	DECIBANS_PER_BAN = 10.0
)

// ============================================================================
// 3. CLUSTER OUTCOME RESOLUTION
// ============================================================================

const (
	// SUPPORT_THRESHOLD_DECIBANS: a precomputed WoE must exceed this for a
	// cluster to count as supporting a hypothesis.
	SUPPORT_THRESHOLD_DECIBANS = 1.0

	// LIKELIHOOD_SUPPORT_THRESHOLD: raw-likelihood fallback threshold.
	LIKELIHOOD_SUPPORT_THRESHOLD = 0.5
)

// ============================================================================
// 4. PREDICTION POINTS
// ============================================================================

const (
	POINTS_CORRECT_HIGH   = 30
	POINTS_CORRECT_MEDIUM = 15
	POINTS_CORRECT_LOW    = 10
	POINTS_WRONG_HIGH     = -15
	POINTS_WRONG_MEDIUM   = -5
	POINTS_WRONG_LOW      = 0
)

// ============================================================================
// 5. PAYOFFS
// ============================================================================

const (
	// LOG_SCORE_OFFSET keeps log2(posterior) finite at posterior 0.
	LOG_SCORE_OFFSET = 0.01

	// PAYOFF_DECIMALS: competitor totals are rounded to cents.
	PAYOFF_DECIMALS = 2

	// BET_UNIT: persona allocations are whole credits.
	BET_UNIT = 1.0

	// MAX_BET_BUDGET: largest persona budget allocated in whole credits.
	// Kept well under 2^53 so credit sums stay exact in float64.
	MAX_BET_BUDGET = 1 << 50
)

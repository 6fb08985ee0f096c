package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrGameNotFound = fmt.Errorf("%w: game", ErrNotFound)

	// Validation errors
	ErrScenarioInvalid   = errors.New("invalid scenario")
	ErrUnknownHypothesis = errors.New("unknown hypothesis")
	ErrUnknownParadigm   = errors.New("unknown paradigm")
	ErrUnknownCluster    = errors.New("unknown evidence cluster")
	ErrInvalidBet        = errors.New("invalid bet")
	ErrBudgetExceeded    = errors.New("bets exceed budget")

	// Lifecycle errors
	ErrPredictionsLocked = errors.New("predictions and bets are locked")
)

// Error constructors with context
func NewGameNotFoundError(id GameID) error {
	return fmt.Errorf("%w with id %s", ErrGameNotFound, id)
}

func NewScenarioError(reason string) error {
	return fmt.Errorf("%w: %s", ErrScenarioInvalid, reason)
}

func NewUnknownHypothesisError(id HypothesisID) error {
	return fmt.Errorf("%w: %s", ErrUnknownHypothesis, id)
}

func NewUnknownParadigmError(id ParadigmID) error {
	return fmt.Errorf("%w: %s", ErrUnknownParadigm, id)
}

func NewUnknownClusterError(id ClusterID) error {
	return fmt.Errorf("%w: %s", ErrUnknownCluster, id)
}

func NewBudgetError(total, budget float64) error {
	return fmt.Errorf("%w: total %.2f > budget %.2f", ErrBudgetExceeded, total, budget)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrScenarioInvalid) ||
		errors.Is(err, ErrUnknownHypothesis) ||
		errors.Is(err, ErrUnknownParadigm) ||
		errors.Is(err, ErrUnknownCluster) ||
		errors.Is(err, ErrInvalidBet) ||
		errors.Is(err, ErrBudgetExceeded)
}

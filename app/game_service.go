package app

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
	"bayesbet/internal"
	"bayesbet/internal/config"
	"bayesbet/internal/engine"
	"bayesbet/internal/errors"
	"bayesbet/ports"
)

// GameService is the host-facing orchestration over the pure engine. It
// owns no game state of its own: every call loads a snapshot, derives a
// new one and persists it.
type GameService struct {
	repo        ports.GameStateRepository
	scenarios   ports.ScenarioReader
	posteriors  ports.PosteriorReader
	settings    config.GameConfig
	concurrency int
	logger      *internal.Logger
	now         func() time.Time

	// core.GameID → *sync.Mutex; serializes read-modify-write per game
	gameLocks sync.Map
}

// NewGameRequest starts a game. Empty fields take the configured defaults.
type NewGameRequest struct {
	Scenario       *scenario.Scenario
	Rule           game.PayoffRule
	PlayerParadigm core.ParadigmID
}

// Result is one full scoring pass over a game snapshot
type Result struct {
	GameID   core.GameID     `json:"game_id,omitempty"`
	Paradigm core.ParadigmID `json:"paradigm"`
	Rule     game.PayoffRule `json:"rule"`

	// Provisional is set until outcome data arrives; the winner is then
	// judged on priors alone.
	Provisional bool              `json:"provisional"`
	Winner      core.HypothesisID `json:"winner"`

	Resolutions   map[core.ClusterID]core.HypothesisID `json:"resolutions"`
	CumulativeWoE map[core.HypothesisID]float64        `json:"cumulative_woe"`
	Predictions   game.PredictionSummary               `json:"predictions"`
	Leaderboard   []game.LeaderboardEntry              `json:"leaderboard"`
	Summary       engine.LeaderboardSummary            `json:"summary"`
}

// NewGameService creates a game service. scenarios and posteriors may be
// nil when the host never loads from files.
func NewGameService(repo ports.GameStateRepository, scenarios ports.ScenarioReader, posteriors ports.PosteriorReader, cfg *config.Config, logger *internal.Logger) *GameService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	concurrency := cfg.Batch.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &GameService{
		repo:        repo,
		scenarios:   scenarios,
		posteriors:  posteriors,
		settings:    cfg.Game,
		concurrency: concurrency,
		logger:      logger.WithComponent("game"),
		now:         time.Now,
	}
}

// NewGame validates the scenario and persists a fresh, unlocked game
func (s *GameService) NewGame(ctx context.Context, req NewGameRequest) (game.State, []scenario.Warning, error) {
	if req.Scenario == nil {
		return game.State{}, nil, errors.InvalidInput("scenario is required")
	}

	state, warnings, err := s.newState(req)
	if err != nil {
		return game.State{}, nil, err
	}

	if err := s.repo.SaveGame(ctx, state); err != nil {
		return game.State{}, nil, errors.Wrap(err, "failed to save new game")
	}
	s.logger.Info("started game %s on scenario %s (rule %s, %d warnings)", state.ID, state.Scenario.ID, state.Rule, len(warnings))
	return state, warnings, nil
}

// NewGameFromFile reads the scenario with the configured reader, then
// behaves like NewGame
func (s *GameService) NewGameFromFile(ctx context.Context, path string, req NewGameRequest) (game.State, []scenario.Warning, error) {
	sc, err := s.readScenario(path)
	if err != nil {
		return game.State{}, nil, err
	}
	req.Scenario = sc
	return s.NewGame(ctx, req)
}

func (s *GameService) readScenario(path string) (*scenario.Scenario, error) {
	if s.scenarios == nil {
		return nil, errors.InternalError("no scenario reader configured")
	}
	sc, err := s.scenarios.ReadScenario(path)
	if err != nil {
		return nil, errors.ScenarioReadError(path, err)
	}
	return sc, nil
}

// newState builds an unsaved game. An explicit PlayerParadigm must exist in
// the scenario; a configured default that does not is dropped.
func (s *GameService) newState(req NewGameRequest) (game.State, []scenario.Warning, error) {
	warnings, err := req.Scenario.Validate()
	if err != nil {
		return game.State{}, nil, errors.ScenarioInvalid(err)
	}
	for _, w := range warnings {
		s.logger.Warn("scenario %s: %s", req.Scenario.ID, w)
	}

	rule := req.Rule
	if rule == "" {
		rule = s.settings.PayoffRule
	}
	if !rule.IsKnown() {
		s.logger.Warn("unknown payoff rule %q, scoring with the fallback rule", rule)
	}

	home := req.PlayerParadigm
	if home != "" {
		if _, ok := req.Scenario.Paradigm(home); !ok {
			return game.State{}, nil, errors.ValidationError(core.NewUnknownParadigmError(home))
		}
	} else if home = s.settings.PlayerParadigm; home != "" {
		if _, ok := req.Scenario.Paradigm(home); !ok {
			s.logger.Debug("default paradigm %s not in scenario %s, playing without a home stance", home, req.Scenario.ID)
			home = ""
		}
	}

	hash, err := core.HashJSON(req.Scenario)
	if err != nil {
		return game.State{}, nil, errors.Wrap(err, "failed to hash scenario")
	}

	now := s.now()
	return game.State{
		ID:             core.NewGameID(),
		Scenario:       *req.Scenario,
		ScenarioHash:   hash,
		PlayerParadigm: home,
		Rule:           rule,
		PlayerBudget:   s.settings.PlayerBudget,
		PersonaBudget:  s.settings.PersonaBudget,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, warnings, nil
}

// Get returns the stored snapshot
func (s *GameService) Get(ctx context.Context, id core.GameID) (game.State, error) {
	state, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return game.State{}, classify(id, err)
	}
	return state, nil
}

// PlaceBet sets the player's wager on one hypothesis; zero removes it
func (s *GameService) PlaceBet(ctx context.Context, id core.GameID, hypothesis core.HypothesisID, amount float64) (game.State, error) {
	state, err := s.update(ctx, id, func(st game.State) (game.State, error) {
		return st.WithBet(hypothesis, amount)
	})
	if err != nil {
		return game.State{}, err
	}
	s.logger.Debug("game %s: bet %.2f on %s (total %.2f of %.2f)", id, amount, hypothesis, state.Bets.Total(), state.PlayerBudget)
	return state, nil
}

// Predict records the player's call on a cluster
func (s *GameService) Predict(ctx context.Context, id core.GameID, cluster core.ClusterID, predicted core.HypothesisID, confidence game.Confidence) (game.State, error) {
	state, err := s.update(ctx, id, func(st game.State) (game.State, error) {
		return st.WithPrediction(cluster, predicted, confidence)
	})
	if err != nil {
		return game.State{}, err
	}
	return state, nil
}

// classify tags domain errors with an application code. Errors that already
// carry one pass through unchanged.
func classify(id core.GameID, err error) error {
	switch {
	case err == nil || errors.IsAppError(err):
		return err
	case stderrors.Is(err, core.ErrPredictionsLocked):
		return errors.GameLocked(id.String(), err)
	case core.IsNotFoundError(err):
		return errors.NotFound("game "+id.String(), err)
	case core.IsValidationError(err):
		return errors.ValidationError(err)
	}
	return err
}

// Lock freezes bets and predictions and runs a first, provisional scoring pass
func (s *GameService) Lock(ctx context.Context, id core.GameID) (Result, error) {
	return s.score(ctx, id, func(st game.State) (game.State, error) {
		return st.Lock(), nil
	})
}

// SubmitPosteriors stores outcome data for one paradigm and rescores.
// Posteriors may arrive one paradigm at a time; each arrival rescores
// from scratch.
func (s *GameService) SubmitPosteriors(ctx context.Context, id core.GameID, paradigm core.ParadigmID, posteriors game.Distribution) (Result, error) {
	return s.score(ctx, id, func(st game.State) (game.State, error) {
		if _, ok := st.Scenario.Paradigm(paradigm); !ok {
			return st, core.NewUnknownParadigmError(paradigm)
		}
		return st.WithPosteriors(paradigm, posteriors), nil
	})
}

// Recompute reruns the full pipeline on the stored snapshot
func (s *GameService) Recompute(ctx context.Context, id core.GameID) (Result, error) {
	return s.score(ctx, id, func(st game.State) (game.State, error) {
		return st, nil
	})
}

func (s *GameService) score(ctx context.Context, id core.GameID, fn func(game.State) (game.State, error)) (Result, error) {
	var result Result
	_, err := s.update(ctx, id, func(st game.State) (game.State, error) {
		next, err := fn(st)
		if err != nil {
			return st, err
		}
		result = Evaluate(next)
		return next.WithResults(competitorsOf(result.Leaderboard), result.Predictions), nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("game %s scored: leader %s, player rank %d/%d, predictions %d (provisional=%t)",
		id, result.Summary.Leader, result.Summary.PlayerRank, result.Summary.Count, result.Predictions.Total, result.Provisional)
	return result, nil
}

func (s *GameService) update(ctx context.Context, id core.GameID, fn func(game.State) (game.State, error)) (game.State, error) {
	defer s.lockGame(id)()

	state, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return game.State{}, classify(id, err)
	}
	next, err := fn(state)
	if err != nil {
		return game.State{}, classify(id, err)
	}
	next.UpdatedAt = s.now()
	if err := s.repo.SaveGame(ctx, next); err != nil {
		return game.State{}, errors.Wrapf(err, "failed to save game %s", id)
	}
	return next, nil
}

// lockGame holds the game's mutex until the returned func is called
func (s *GameService) lockGame(id core.GameID) func() {
	v, _ := s.gameLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Evaluate runs the whole scoring pipeline on a snapshot: resolve clusters,
// score predictions, derive persona bets, score every competitor, rank.
// It is pure and recomputes everything from the snapshot.
func Evaluate(state game.State) Result {
	sc := &state.Scenario
	order := sc.HypothesisOrder()
	ref, _ := sc.ReferenceParadigm(state.PlayerParadigm)

	rule := state.Rule
	if rule == "" {
		rule = game.DefaultPayoffRule
	}

	priors := engine.ReferenceDistribution(sc, state.PlayerParadigm, engine.PriorsByParadigm(sc))
	posteriors := engine.ReferenceDistribution(sc, state.PlayerParadigm, state.Posteriors)

	competitors := engine.BuildCompetitors(sc, state.Bets, state.PersonaBudget, state.PlayerParadigm)
	scored := engine.ScoreAllWithRule(competitors, order, posteriors, priors, rule)
	entries := engine.Rank(scored)
	winner, _ := engine.WinningHypothesis(order, posteriors, priors)

	return Result{
		GameID:        state.ID,
		Paradigm:      ref,
		Rule:          rule,
		Provisional:   !state.HasPosteriors(),
		Winner:        winner,
		Resolutions:   engine.ResolveAll(sc, ref),
		CumulativeWoE: engine.CumulativeWoE(sc, ref),
		Predictions:   engine.ScorePredictions(sc, ref, state.Predictions),
		Leaderboard:   entries,
		Summary:       engine.Summarize(entries),
	}
}

func competitorsOf(entries []game.LeaderboardEntry) []game.Competitor {
	out := make([]game.Competitor, len(entries))
	for i, e := range entries {
		out[i] = e.Competitor
	}
	return out
}

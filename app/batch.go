package app

import (
	"context"
	"time"

	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/internal/errors"

	"golang.org/x/sync/errgroup"
)

// BatchJob scores one scenario file, optionally against a posteriors file
type BatchJob struct {
	ScenarioPath   string
	PosteriorsPath string
}

// BatchResult is the outcome of one job. Err is set instead of Result when
// the job could not be scored.
type BatchResult struct {
	Job        BatchJob
	ScenarioID string
	Result     *Result
	Err        error
}

// ScoreBatch scores scenario files concurrently without persisting them.
// Only personas compete. A failing job does not stop the others; results
// come back in job order.
func (s *GameService) ScoreBatch(ctx context.Context, jobs []BatchJob) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scoreJob(job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("batch scored %d scenarios (%d failed) in %.2fms",
		len(jobs), failed, float64(time.Since(startTime).Nanoseconds())/1e6)
	return results, nil
}

func (s *GameService) scoreJob(job BatchJob) BatchResult {
	out := BatchResult{Job: job}

	sc, err := s.readScenario(job.ScenarioPath)
	if err != nil {
		out.Err = err
		return out
	}
	out.ScenarioID = sc.ID

	state, _, err := s.newState(NewGameRequest{Scenario: sc})
	if err != nil {
		out.Err = err
		return out
	}
	state = state.Lock()

	if job.PosteriorsPath != "" {
		posteriors, err := s.readPosteriors(job.PosteriorsPath)
		if err != nil {
			out.Err = err
			return out
		}
		for _, p := range sc.Paradigms {
			if d, ok := posteriors[p.ID]; ok {
				state = state.WithPosteriors(p.ID, d)
			}
		}
	}

	result := Evaluate(state)
	out.Result = &result
	return out
}

func (s *GameService) readPosteriors(path string) (map[core.ParadigmID]game.Distribution, error) {
	if s.posteriors == nil {
		return nil, errors.InternalError("no posterior reader configured")
	}
	posteriors, err := s.posteriors.ReadPosteriors(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read posteriors %s", path)
	}
	return posteriors, nil
}

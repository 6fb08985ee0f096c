package ports

import (
	"bayesbet/domain/core"
	"bayesbet/domain/game"
	"bayesbet/domain/scenario"
)

// ScenarioReader loads scenario definitions prepared by the host
type ScenarioReader interface {
	ReadScenario(path string) (*scenario.Scenario, error)
}

// PosteriorReader loads externally computed posteriors per paradigm
type PosteriorReader interface {
	ReadPosteriors(path string) (map[core.ParadigmID]game.Distribution, error)
}

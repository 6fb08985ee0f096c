package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	HypothesisID ID
	ParadigmID   ID
	ClusterID    ID
	CompetitorID ID
	GameID       ID
)

// NoHypothesis marks a "none / mixed evidence" outcome or prediction.
const NoHypothesis HypothesisID = ""

// PlayerID is the fixed competitor identity of the human player.
const PlayerID CompetitorID = "player"

// String conversions for domain IDs
func (id HypothesisID) String() string { return ID(id).String() }
func (id ParadigmID) String() string   { return ID(id).String() }
func (id ClusterID) String() string    { return ID(id).String() }
func (id CompetitorID) String() string { return ID(id).String() }
func (id GameID) String() string       { return ID(id).String() }

// IsNone reports whether the hypothesis id is the "none / mixed" marker.
func (id HypothesisID) IsNone() bool { return id == NoHypothesis }

// NewGameID creates a new time-ordered game identifier
func NewGameID() GameID {
	return GameID(NewID())
}

// PersonaID derives the competitor id of the persona simulating a paradigm.
func PersonaID(paradigm ParadigmID) CompetitorID {
	return CompetitorID("persona:" + string(paradigm))
}

// ParseHypothesisID parses a string into HypothesisID
func ParseHypothesisID(s string) (HypothesisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("hypothesis ID cannot be empty")
	}
	return HypothesisID(strings.TrimSpace(s)), nil
}

// ParseParadigmID parses a string into ParadigmID
func ParseParadigmID(s string) (ParadigmID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("paradigm ID cannot be empty")
	}
	return ParadigmID(strings.TrimSpace(s)), nil
}

// ParseClusterID parses a string into ClusterID
func ParseClusterID(s string) (ClusterID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("cluster ID cannot be empty")
	}
	return ClusterID(strings.TrimSpace(s)), nil
}

// ParseGameID parses a string into GameID, requiring UUID syntax
func ParseGameID(s string) (GameID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid game ID %q: %w", s, err)
	}
	return GameID(parsed.String()), nil
}

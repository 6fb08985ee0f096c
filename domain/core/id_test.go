package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseGameID(t *testing.T) {
	id := NewGameID()
	parsed, err := ParseGameID(id.String())
	if err != nil {
		t.Fatalf("Unexpected error parsing %s: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	if _, err := ParseGameID("not-a-uuid"); err == nil {
		t.Error("Expected error for malformed game ID")
	}
}

func TestParseHypothesisID(t *testing.T) {
	tests := []struct {
		input   string
		want    HypothesisID
		wantErr bool
	}{
		{"H0", "H0", false},
		{"  H1 ", "H1", false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := ParseHypothesisID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHypothesisID(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseHypothesisID(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestPersonaID(t *testing.T) {
	if got := PersonaID("bayesian"); got != "persona:bayesian" {
		t.Errorf("Expected persona:bayesian, got %s", got)
	}
	if PersonaID("bayesian") == PlayerID {
		t.Error("Persona ID must never collide with the player ID")
	}
}

func TestNoHypothesis(t *testing.T) {
	if !NoHypothesis.IsNone() {
		t.Error("NoHypothesis should report IsNone")
	}
	if HypothesisID("H0").IsNone() {
		t.Error("H0 should not report IsNone")
	}
}

func TestHashJSON_Deterministic(t *testing.T) {
	a := map[string]float64{"H0": 0.5, "H1": 0.3, "H2": 0.2}
	b := map[string]float64{"H2": 0.2, "H0": 0.5, "H1": 0.3}

	ha, err := HashJSON(a)
	if err != nil {
		t.Fatalf("HashJSON failed: %v", err)
	}
	hb, _ := HashJSON(b)
	if ha != hb {
		t.Errorf("Equal maps hashed differently: %s vs %s", ha, hb)
	}
	if len(ha.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", ha.Short())
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsNotFoundError(ErrGameNotFound) {
		t.Error("ErrGameNotFound should be a not-found error")
	}
	if !IsValidationError(NewBudgetError(120, 100)) {
		t.Error("budget error should be a validation error")
	}
	if !errors.Is(NewUnknownHypothesisError("H9"), ErrUnknownHypothesis) {
		t.Error("expected ErrUnknownHypothesis")
	}
	if IsValidationError(ErrPredictionsLocked) {
		t.Error("locked error is a lifecycle error, not validation")
	}
}

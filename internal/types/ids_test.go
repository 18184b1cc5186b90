package types

import (
	"testing"
	"time"
)

func TestNewGenerationID(t *testing.T) {
	id := NewGenerationID()

	parsed, err := ParseGenerationID(string(id))
	if err != nil {
		t.Fatalf("ParseGenerationID() error = %v, want nil", err)
	}
	if parsed != id {
		t.Errorf("ParseGenerationID() = %v, want %v", parsed, id)
	}

	ts := GenerationIDTime(id)
	if ts.IsZero() {
		t.Fatal("GenerationIDTime() is zero for a fresh ID")
	}
	if d := time.Since(ts); d < -time.Minute || d > time.Minute {
		t.Errorf("GenerationIDTime() = %v, want close to now", ts)
	}
}

func TestParseGenerationID_Invalid(t *testing.T) {
	if _, err := ParseGenerationID("not-a-uuid"); err == nil {
		t.Error("ParseGenerationID() error = nil, want error")
	}
	if ts := GenerationIDTime("not-a-uuid"); !ts.IsZero() {
		t.Errorf("GenerationIDTime() = %v, want zero", ts)
	}
}

func TestRulePosition_Valid(t *testing.T) {
	tests := []struct {
		position RulePosition
		want     bool
	}{
		{PositionFirst, true},
		{PositionLast, true},
		{"", false},
		{"first", false},
		{"Middle", false},
	}
	for _, tt := range tests {
		if got := tt.position.Valid(); got != tt.want {
			t.Errorf("RulePosition(%q).Valid() = %v, want %v", tt.position, got, tt.want)
		}
	}
}

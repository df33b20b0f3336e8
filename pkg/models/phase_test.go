package models

import "testing"

func TestPhase_Valid(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		want  bool
	}{
		{"initialization is valid", PhaseInitialization, true},
		{"spec is valid", PhaseSpec, true},
		{"docs_audit is valid", PhaseDocsAudit, true},
		{"planning is valid", PhasePlanning, true},
		{"test_ideation is valid", PhaseTestIdeation, true},
		{"implementation is valid", PhaseImplementation, true},
		{"test_implementation is valid", PhaseTestImplementation, true},
		{"coverage_validation is valid", PhaseCoverageValidation, true},
		{"verification is valid", PhaseVerification, true},
		{"finalization is valid", PhaseFinalization, true},
		{"completed is valid", PhaseCompleted, true},
		{"empty string is invalid", Phase(""), false},
		{"unknown phase is invalid", Phase("review"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.phase.Valid(); got != tt.want {
				t.Errorf("Phase(%q).Valid() = %v, want %v", tt.phase, got, tt.want)
			}
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusPaused, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Status(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

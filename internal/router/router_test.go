package router

import (
	"testing"

	"github.com/ShayCichocki/loom/pkg/models"
)

func TestDecide_ByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category models.FailureCategory
		want     Route
	}{
		{"frontend failure routes to frontend", models.FailureFrontend, RouteFrontend},
		{"backend failure routes to backend", models.FailureBackend, RouteBackend},
		{"infra failure routes to infra", models.FailureInfra, RouteInfra},
		{"assertion failure routes to test authoring", models.FailureAssertion, RouteTests},
		{"unknown failure routes to test authoring", models.FailureUnknown, RouteTests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide("AC1", tt.category, 2, 5)
			if decision.Route != tt.want {
				t.Errorf("Decide(%q) route = %q, want %q", tt.category, decision.Route, tt.want)
			}
			if decision.ItemID != "AC1" {
				t.Errorf("ItemID = %q, want AC1", decision.ItemID)
			}
		})
	}
}

func TestDecide_BudgetSpent(t *testing.T) {
	tests := []struct {
		name          string
		iteration     int
		maxIterations int
		want          Route
	}{
		{"under budget", 4, 5, RouteFrontend},
		{"at budget escalates", 5, 5, RouteUserEscalation},
		{"over budget escalates", 6, 5, RouteUserEscalation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide("AC1", models.FailureFrontend, tt.iteration, tt.maxIterations)
			if decision.Route != tt.want {
				t.Errorf("Decide(iter=%d, max=%d) route = %q, want %q",
					tt.iteration, tt.maxIterations, decision.Route, tt.want)
			}
		})
	}
}

func TestDecide_BudgetOutranksCategory(t *testing.T) {
	// Every category escalates once the budget is spent.
	categories := []models.FailureCategory{
		models.FailureFrontend,
		models.FailureBackend,
		models.FailureInfra,
		models.FailureAssertion,
		models.FailureUnknown,
	}
	for _, cat := range categories {
		if decision := Decide("AC1", cat, 5, 5); decision.Route != RouteUserEscalation {
			t.Errorf("Decide(%q) at budget = %q, want user_escalation", cat, decision.Route)
		}
	}
}

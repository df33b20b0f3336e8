// Package router selects which collaborator should receive remediation work
// after a failed verification pass. Routing is advisory output only; the
// router never invokes collaborators itself.
package router

import (
	"fmt"

	"github.com/ShayCichocki/loom/pkg/models"
)

// Route identifies the collaborator that should receive remediation work.
type Route string

const (
	// RouteFrontend sends work to the frontend implementer.
	RouteFrontend Route = "frontend"
	// RouteBackend sends work to the backend implementer.
	RouteBackend Route = "backend"
	// RouteInfra sends work to the infra implementer.
	RouteInfra Route = "infra"
	// RouteTests sends work to the test-authoring collaborator.
	RouteTests Route = "tests"
	// RouteUserEscalation hands the failure to the user; no further
	// automated retries.
	RouteUserEscalation Route = "user_escalation"
)

// Decision is the router's advisory output for one failing checklist item.
type Decision struct {
	// Route is the selected collaborator.
	Route Route `json:"route"`
	// ItemID is the failing checklist item.
	ItemID string `json:"item_id"`
	// Category is the dominant failure category the decision is based on.
	Category models.FailureCategory `json:"category"`
	// Reason explains the decision.
	Reason string `json:"reason"`
}

// Decide routes a failing checklist item. The iteration budget is checked
// first: once the budget is spent every failure escalates to the user
// regardless of category.
func Decide(itemID string, category models.FailureCategory, iteration, maxIterations int) Decision {
	if iteration >= maxIterations {
		return Decision{
			Route:    RouteUserEscalation,
			ItemID:   itemID,
			Category: category,
			Reason:   fmt.Sprintf("iteration budget spent (%d/%d)", iteration, maxIterations),
		}
	}

	var route Route
	switch category {
	case models.FailureFrontend:
		route = RouteFrontend
	case models.FailureBackend:
		route = RouteBackend
	case models.FailureInfra:
		route = RouteInfra
	default:
		// Assertion failures and unclassified errors go to the
		// test-authoring collaborator.
		route = RouteTests
	}

	return Decision{
		Route:    route,
		ItemID:   itemID,
		Category: category,
		Reason:   fmt.Sprintf("dominant failure category %s on iteration %d/%d", category, iteration, maxIterations),
	}
}

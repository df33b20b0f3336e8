package models

// TestRef identifies one test associated with a checklist item.
type TestRef struct {
	// Name is the test identifier as reported by the test suite.
	Name string `json:"name"`
	// Tags holds the feature tag plus any AC or kind tags (e.g. "e2e").
	Tags []string `json:"tags,omitempty"`
	// Status is the last known outcome status of the test, if any.
	Status OutcomeStatus `json:"status,omitempty"`
}

// HasTag reports whether the test carries the given tag.
func (t TestRef) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// ItemCoverage records the tests written for one checklist item.
type ItemCoverage struct {
	// Tests lists the tests associated with the item.
	Tests []TestRef `json:"tests"`
	// Status is the collaborator-reported coverage status for the item.
	Status string `json:"status,omitempty"`
}

// CoverageRecord is the test-coverage artifact consumed by the coverage gate.
type CoverageRecord struct {
	// PerItem maps checklist item IDs to their coverage.
	PerItem map[string]ItemCoverage `json:"per_item"`
	// TotalItems is the number of checklist items.
	TotalItems int `json:"total_items"`
	// ItemsWithTests is the collaborator-declared count of covered items.
	ItemsWithTests int `json:"items_with_tests"`
	// Blockers lists reasons coverage cannot be completed.
	Blockers []string `json:"blockers,omitempty"`
}

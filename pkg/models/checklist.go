package models

// Priority ranks how important a checklist item is.
type Priority string

const (
	// PriorityP0 items block release.
	PriorityP0 Priority = "P0"
	// PriorityP1 items are important but not blocking.
	PriorityP1 Priority = "P1"
	// PriorityP2 items are nice to have.
	PriorityP2 Priority = "P2"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	return p == PriorityP0 || p == PriorityP1 || p == PriorityP2
}

// VerificationKind describes how a checklist item should be verified.
type VerificationKind string

const (
	// VerifyE2E requires an end-to-end test.
	VerifyE2E VerificationKind = "e2e"
	// VerifyUnit requires a unit test.
	VerifyUnit VerificationKind = "unit"
	// VerifyIntegration requires an integration test.
	VerifyIntegration VerificationKind = "integration"
)

// ChecklistItem is one acceptance criterion to verify.
type ChecklistItem struct {
	// ID is the acceptance-criterion tag, unique within a feature (e.g. "AC1").
	ID string `json:"id"`
	// Text is the criterion description.
	Text string `json:"text"`
	// Priority ranks the item.
	Priority Priority `json:"priority"`
	// VerificationHints lists the kinds of tests expected for this item.
	VerificationHints []VerificationKind `json:"verification_hints,omitempty"`
	// Area is the implementation area responsible for the item (e.g. "backend").
	Area string `json:"implementation_area,omitempty"`
}

// RequiresE2E reports whether the item's hints include an end-to-end test.
func (c ChecklistItem) RequiresE2E() bool {
	for _, h := range c.VerificationHints {
		if h == VerifyE2E {
			return true
		}
	}
	return false
}

// Checklist is the ordered list of acceptance criteria for a feature.
type Checklist struct {
	// Items holds the acceptance criteria.
	Items []ChecklistItem `json:"items"`
}

// Item returns the checklist item with the given ID, or nil if absent.
func (c *Checklist) Item(id string) *ChecklistItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

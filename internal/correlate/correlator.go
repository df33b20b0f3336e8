// Package correlate maps raw test outcomes to per-checklist-item status.
// Like the coverage gate it only classifies: uncovered or failing items are
// data, not errors.
package correlate

import (
	"fmt"

	"github.com/ShayCichocki/loom/pkg/models"
)

// Failure is one failing outcome with its classified category.
type Failure struct {
	// TestID is the failing test's identifier.
	TestID string `json:"test_id"`
	// ItemID is the checklist item the test maps to.
	ItemID string `json:"item_id"`
	// Category is the classified failure category.
	Category models.FailureCategory `json:"category"`
	// ErrorText is the raw failure message.
	ErrorText string `json:"error_text,omitempty"`
}

// ItemResult is the aggregate status of one checklist item.
type ItemResult struct {
	// ID is the checklist item id.
	ID string `json:"id"`
	// Status is the aggregate test status.
	Status models.ItemStatus `json:"status"`
	// Passed, Failed and Skipped count the matching outcomes.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	// Failures lists the classified failing outcomes for the item.
	Failures []Failure `json:"failures,omitempty"`
}

// Report is the output of a correlation pass.
type Report struct {
	// Items holds one result per checklist item, in checklist order.
	Items []ItemResult `json:"items"`
	// Failures lists every classified failure across all items.
	Failures []Failure `json:"failures,omitempty"`
}

// FailedItems returns the results whose aggregate status is failed.
func (r *Report) FailedItems() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if item.Status == models.ItemFailed {
			failed = append(failed, item)
		}
	}
	return failed
}

// Item returns the result for a checklist item id, or nil if absent.
func (r *Report) Item(id string) *ItemResult {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

// DominantCategory returns the most frequent failure category among the
// item's failures. Ties resolve to the earliest-seen category.
func (ir *ItemResult) DominantCategory() models.FailureCategory {
	if len(ir.Failures) == 0 {
		return models.FailureUnknown
	}

	counts := map[models.FailureCategory]int{}
	var order []models.FailureCategory
	for _, f := range ir.Failures {
		if counts[f.Category] == 0 {
			order = append(order, f.Category)
		}
		counts[f.Category]++
	}

	best := order[0]
	for _, cat := range order[1:] {
		if counts[cat] > counts[best] {
			best = cat
		}
	}
	return best
}

// Correlator aggregates test outcomes against a checklist.
type Correlator struct {
	rules []Rule
}

// New creates a correlator with the default classification rules.
func New() *Correlator {
	return &Correlator{rules: DefaultRules()}
}

// NewWithRules creates a correlator with a custom ordered rule table.
func NewWithRules(rules []Rule) *Correlator {
	return &Correlator{rules: rules}
}

// Correlate matches outcomes to checklist items by AC tag and aggregates a
// status per item. Failure dominates partial passes; skipped outcomes are
// excluded from the dominance calculation, and an item whose only matches
// are skipped is reported not_tested.
func (c *Correlator) Correlate(checklist *models.Checklist, outcomes []models.TestOutcome) (*Report, error) {
	if checklist == nil {
		return nil, fmt.Errorf("correlate: nil checklist")
	}

	report := &Report{}
	for _, item := range checklist.Items {
		result := ItemResult{ID: item.ID}

		for _, outcome := range outcomes {
			if !outcome.HasTag(item.ID) {
				continue
			}

			switch outcome.Status {
			case models.OutcomePassed:
				result.Passed++
			case models.OutcomeSkipped:
				result.Skipped++
			case models.OutcomeFailed:
				result.Failed++
				failure := Failure{
					TestID:    outcome.ID,
					ItemID:    item.ID,
					Category:  Classify(outcome.ErrorText, c.rules),
					ErrorText: outcome.ErrorText,
				}
				result.Failures = append(result.Failures, failure)
				report.Failures = append(report.Failures, failure)
			default:
				return nil, fmt.Errorf("correlate: outcome %q has invalid status %q", outcome.ID, outcome.Status)
			}
		}

		switch {
		case result.Failed > 0:
			result.Status = models.ItemFailed
		case result.Passed > 0:
			result.Status = models.ItemPassed
		default:
			// No matches, or skipped-only matches.
			result.Status = models.ItemNotTested
		}

		report.Items = append(report.Items, result)
	}

	return report, nil
}

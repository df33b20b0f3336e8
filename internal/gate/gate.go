// Package gate implements the coverage gate guarding entry into the
// verification phase. Evaluate is a pure classification function: a failing
// gate is a normal control-flow outcome, not an error, and the gate never
// routes remediation work itself.
package gate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/loom/pkg/models"
)

// Status is the gate decision.
type Status string

const (
	// StatusPass allows verification to proceed.
	StatusPass Status = "pass"
	// StatusFail blocks verification.
	StatusFail Status = "fail"
)

// Result is the outcome of a gate evaluation.
type Result struct {
	// Status is pass or fail.
	Status Status `json:"status"`
	// Missing lists checklist ids with zero associated tests.
	Missing []string `json:"missing,omitempty"`
	// MissingE2E lists checklist ids that have tests but lack the required
	// end-to-end coverage.
	MissingE2E []string `json:"missing_e2e,omitempty"`
	// Reason is a human-readable summary of why the gate failed.
	Reason string `json:"reason,omitempty"`
}

// Evaluate decides whether verification may proceed. The gate passes iff the
// declared covered-item count equals the total, there are no blockers, and
// every E2E-hinted item has at least one E2E-tagged test. Tests whose only
// recorded status is skipped do not count as coverage.
func Evaluate(checklist *models.Checklist, record *models.CoverageRecord) (Result, error) {
	if checklist == nil {
		return Result{}, fmt.Errorf("evaluate coverage: nil checklist")
	}
	if record == nil {
		return Result{}, fmt.Errorf("evaluate coverage: nil coverage record")
	}

	var missing, missingE2E []string
	for _, item := range checklist.Items {
		cov := record.PerItem[item.ID]

		tested := 0
		hasE2E := false
		for _, ref := range cov.Tests {
			if ref.Status == models.OutcomeSkipped {
				continue
			}
			tested++
			if hasE2ETag(ref) {
				hasE2E = true
			}
		}

		if tested == 0 {
			missing = append(missing, item.ID)
			continue
		}
		if item.RequiresE2E() && !hasE2E {
			missingE2E = append(missingE2E, item.ID)
		}
	}
	sort.Strings(missing)
	sort.Strings(missingE2E)

	if len(missing) == 0 && len(missingE2E) == 0 &&
		len(record.Blockers) == 0 &&
		record.ItemsWithTests == record.TotalItems {
		return Result{Status: StatusPass}, nil
	}

	return Result{
		Status:     StatusFail,
		Missing:    missing,
		MissingE2E: missingE2E,
		Reason:     failReason(record, missing, missingE2E),
	}, nil
}

// hasE2ETag reports whether the test carries an end-to-end tag.
func hasE2ETag(ref models.TestRef) bool {
	for _, tag := range ref.Tags {
		if strings.EqualFold(tag, string(models.VerifyE2E)) {
			return true
		}
	}
	return false
}

// failReason builds the gate's failure summary.
func failReason(record *models.CoverageRecord, missing, missingE2E []string) string {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("%d item(s) without tests: %s", len(missing), strings.Join(missing, ", ")))
	}
	if len(missingE2E) > 0 {
		parts = append(parts, fmt.Sprintf("%d item(s) missing required E2E coverage: %s", len(missingE2E), strings.Join(missingE2E, ", ")))
	}
	if len(record.Blockers) > 0 {
		parts = append(parts, fmt.Sprintf("%d blocker(s): %s", len(record.Blockers), strings.Join(record.Blockers, "; ")))
	}
	if record.ItemsWithTests != record.TotalItems {
		parts = append(parts, fmt.Sprintf("declared coverage %d/%d items", record.ItemsWithTests, record.TotalItems))
	}
	return strings.Join(parts, "; ")
}

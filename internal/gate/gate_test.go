package gate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ShayCichocki/loom/pkg/models"
)

func checklistOf(ids ...string) *models.Checklist {
	cl := &models.Checklist{}
	for _, id := range ids {
		cl.Items = append(cl.Items, models.ChecklistItem{ID: id, Priority: models.PriorityP1})
	}
	return cl
}

func coveredItem(names ...string) models.ItemCoverage {
	cov := models.ItemCoverage{}
	for _, n := range names {
		cov.Tests = append(cov.Tests, models.TestRef{Name: n, Status: models.OutcomePassed})
	}
	return cov
}

func TestEvaluate_AllCovered(t *testing.T) {
	cl := checklistOf("AC1", "AC2")
	record := &models.CoverageRecord{
		PerItem: map[string]models.ItemCoverage{
			"AC1": coveredItem("t1"),
			"AC2": coveredItem("t2"),
		},
		TotalItems:     2,
		ItemsWithTests: 2,
	}

	result, err := Evaluate(cl, record)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != StatusPass {
		t.Errorf("Status = %q, want pass (reason: %s)", result.Status, result.Reason)
	}
}

func TestEvaluate_UncoveredItem(t *testing.T) {
	// AC1..AC4 tested, AC5 untested.
	cl := checklistOf("AC1", "AC2", "AC3", "AC4", "AC5")
	perItem := map[string]models.ItemCoverage{}
	for _, id := range []string{"AC1", "AC2", "AC3", "AC4"} {
		perItem[id] = coveredItem("t-" + id)
	}
	record := &models.CoverageRecord{PerItem: perItem, TotalItems: 5, ItemsWithTests: 4}

	result, err := Evaluate(cl, record)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != StatusFail {
		t.Fatalf("Status = %q, want fail", result.Status)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "AC5" {
		t.Errorf("Missing = %v, want [AC5]", result.Missing)
	}
}

func TestEvaluate_Blockers(t *testing.T) {
	cl := checklistOf("AC1")
	record := &models.CoverageRecord{
		PerItem:        map[string]models.ItemCoverage{"AC1": coveredItem("t1")},
		TotalItems:     1,
		ItemsWithTests: 1,
		Blockers:       []string{"staging environment unavailable"},
	}

	result, err := Evaluate(cl, record)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != StatusFail {
		t.Errorf("Status = %q, want fail with blockers present", result.Status)
	}
}

func TestEvaluate_E2ERequirement(t *testing.T) {
	cl := &models.Checklist{Items: []models.ChecklistItem{
		{ID: "AC1", VerificationHints: []models.VerificationKind{models.VerifyE2E}},
	}}

	tests := []struct {
		name string
		tags []string
		want Status
	}{
		{"unit test only", []string{"unit"}, StatusFail},
		{"e2e tagged", []string{"e2e"}, StatusPass},
		{"e2e tag case-insensitive", []string{"E2E"}, StatusPass},
		{"no tags", nil, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &models.CoverageRecord{
				PerItem: map[string]models.ItemCoverage{
					"AC1": {Tests: []models.TestRef{{Name: "t1", Tags: tt.tags, Status: models.OutcomePassed}}},
				},
				TotalItems:     1,
				ItemsWithTests: 1,
			}
			result, err := Evaluate(cl, record)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("Status = %q, want %q (reason: %s)", result.Status, tt.want, result.Reason)
			}
			if tt.want == StatusFail && len(result.MissingE2E) != 1 {
				t.Errorf("MissingE2E = %v, want [AC1]", result.MissingE2E)
			}
		})
	}
}

func TestEvaluate_SkippedOnlyDoesNotCount(t *testing.T) {
	cl := checklistOf("AC1")
	record := &models.CoverageRecord{
		PerItem: map[string]models.ItemCoverage{
			"AC1": {Tests: []models.TestRef{{Name: "t1", Status: models.OutcomeSkipped}}},
		},
		TotalItems:     1,
		ItemsWithTests: 1,
	}

	result, err := Evaluate(cl, record)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != StatusFail {
		t.Fatalf("Status = %q, want fail for skipped-only coverage", result.Status)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "AC1" {
		t.Errorf("Missing = %v, want [AC1]", result.Missing)
	}
}

func TestEvaluate_DeclaredCountMismatch(t *testing.T) {
	cl := checklistOf("AC1")
	record := &models.CoverageRecord{
		PerItem:        map[string]models.ItemCoverage{"AC1": coveredItem("t1")},
		TotalItems:     1,
		ItemsWithTests: 0, // collaborator under-reported
	}

	result, err := Evaluate(cl, record)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Status != StatusFail {
		t.Errorf("Status = %q, want fail on declared count mismatch", result.Status)
	}
}

func TestEvaluate_NilInputs(t *testing.T) {
	if _, err := Evaluate(nil, &models.CoverageRecord{}); err == nil {
		t.Error("Evaluate(nil checklist) succeeded, want error")
	}
	if _, err := Evaluate(&models.Checklist{}, nil); err == nil {
		t.Error("Evaluate(nil record) succeeded, want error")
	}
}

// TestEvaluate_Property checks the gate against an independent re-derivation
// of its rule over randomized checklists and coverage records.
func TestEvaluate_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(8)
		cl := &models.Checklist{}
		for i := 0; i < n; i++ {
			item := models.ChecklistItem{ID: fmt.Sprintf("AC%d", i+1)}
			if rng.Intn(3) == 0 {
				item.VerificationHints = []models.VerificationKind{models.VerifyE2E}
			}
			cl.Items = append(cl.Items, item)
		}

		perItem := map[string]models.ItemCoverage{}
		covered := 0
		for _, item := range cl.Items {
			var cov models.ItemCoverage
			for j := rng.Intn(3); j > 0; j-- {
				ref := models.TestRef{Name: fmt.Sprintf("%s-t%d", item.ID, j), Status: models.OutcomePassed}
				if rng.Intn(4) == 0 {
					ref.Status = models.OutcomeSkipped
				}
				if rng.Intn(2) == 0 {
					ref.Tags = []string{"e2e"}
				}
				cov.Tests = append(cov.Tests, ref)
			}
			perItem[item.ID] = cov
			for _, ref := range cov.Tests {
				if ref.Status != models.OutcomeSkipped {
					covered++
					break
				}
			}
		}

		record := &models.CoverageRecord{
			PerItem:        perItem,
			TotalItems:     n,
			ItemsWithTests: covered,
		}
		if rng.Intn(10) == 0 {
			record.Blockers = []string{"blocked"}
		}

		// Independent re-derivation of the pass condition.
		wantPass := record.ItemsWithTests == record.TotalItems && len(record.Blockers) == 0
		for _, item := range cl.Items {
			hasTest, hasE2E := false, false
			for _, ref := range perItem[item.ID].Tests {
				if ref.Status == models.OutcomeSkipped {
					continue
				}
				hasTest = true
				for _, tag := range ref.Tags {
					if tag == "e2e" {
						hasE2E = true
					}
				}
			}
			if !hasTest {
				wantPass = false
			}
			if item.RequiresE2E() && hasTest && !hasE2E {
				wantPass = false
			}
		}

		result, err := Evaluate(cl, record)
		if err != nil {
			t.Fatalf("trial %d: Evaluate() error = %v", trial, err)
		}
		gotPass := result.Status == StatusPass
		if gotPass != wantPass {
			t.Fatalf("trial %d: Evaluate() pass = %v, want %v (record: %+v)", trial, gotPass, wantPass, record)
		}
		if !gotPass && result.Reason == "" {
			t.Fatalf("trial %d: fail result carries no reason", trial)
		}
	}
}

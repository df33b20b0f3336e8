package models

import "time"

// OutcomeStatus is the result of a single test execution.
type OutcomeStatus string

const (
	// OutcomePassed indicates the test passed.
	OutcomePassed OutcomeStatus = "passed"
	// OutcomeFailed indicates the test failed.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped indicates the test did not run.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s OutcomeStatus) Valid() bool {
	return s == OutcomePassed || s == OutcomeFailed || s == OutcomeSkipped
}

// TestOutcome is one raw test result returned by the test executor.
type TestOutcome struct {
	// ID is the test identifier as reported by the test suite.
	ID string `json:"id"`
	// Status is the execution result.
	Status OutcomeStatus `json:"status"`
	// Tags holds the feature tag plus zero or more AC tags.
	Tags []string `json:"tags,omitempty"`
	// ErrorText is the failure message, if the test failed.
	ErrorText string `json:"error_text,omitempty"`
}

// HasTag reports whether the outcome carries the given tag.
func (o TestOutcome) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ItemStatus is the aggregate test status of one checklist item.
type ItemStatus string

const (
	// ItemNotTested indicates no non-skipped outcomes matched the item.
	ItemNotTested ItemStatus = "not_tested"
	// ItemPassed indicates every matching outcome passed.
	ItemPassed ItemStatus = "passed"
	// ItemFailed indicates at least one matching outcome failed.
	ItemFailed ItemStatus = "failed"
)

// FailureCategory classifies why a test failed.
type FailureCategory string

const (
	// FailureFrontend indicates a UI-level failure (timeouts, selectors).
	FailureFrontend FailureCategory = "frontend"
	// FailureBackend indicates an API or network failure.
	FailureBackend FailureCategory = "backend"
	// FailureAssertion indicates a failed expectation.
	FailureAssertion FailureCategory = "assertion"
	// FailureInfra indicates an environment or infrastructure failure.
	FailureInfra FailureCategory = "infra"
	// FailureUnknown is the fallback category.
	FailureUnknown FailureCategory = "unknown"
)

// TestRun is one recorded execution of a feature's test suite.
type TestRun struct {
	// ID is the unique run identifier.
	ID string `json:"id"`
	// FeatureID is the feature the run belongs to.
	FeatureID string `json:"feature_id"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run ended, if it has.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	// Passed is the number of passing outcomes.
	Passed int `json:"passed"`
	// Failed is the number of failing outcomes.
	Failed int `json:"failed"`
	// Skipped is the number of skipped outcomes.
	Skipped int `json:"skipped"`
	// Outcomes holds the raw test outcomes.
	Outcomes []TestOutcome `json:"outcomes,omitempty"`
}

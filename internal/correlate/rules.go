package correlate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/loom/pkg/models"
)

// Rule maps error-text patterns to a failure category. Rules are evaluated
// in order; within a rule, any pattern match wins.
type Rule struct {
	// Category is the failure category assigned on match.
	Category models.FailureCategory `yaml:"category" json:"category"`
	// Patterns are case-insensitive substrings matched against error text.
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// DefaultRules returns the built-in classification table. Order matters:
// the first matching rule wins, and anything unmatched falls back to unknown.
func DefaultRules() []Rule {
	return []Rule{
		{Category: models.FailureFrontend, Patterns: []string{"timeout", "selector"}},
		{Category: models.FailureBackend, Patterns: []string{"api", "fetch", "network"}},
		{Category: models.FailureAssertion, Patterns: []string{"expect"}},
		{Category: models.FailureInfra, Patterns: []string{"docker", "container", "connection refused"}},
	}
}

// ruleFile is the on-disk shape of a custom rule table.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an ordered rule table from a YAML file. The file replaces
// the default table entirely; the unknown fallback always remains.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}

	for i, r := range rf.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d has no category", i)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("rule %d (%s) has no patterns", i, r.Category)
		}
	}

	return rf.Rules, nil
}

// Classify assigns a failure category to an error text using the rule table.
// The first matching rule wins; unmatched text is unknown.
func Classify(errorText string, rules []Rule) models.FailureCategory {
	lower := strings.ToLower(errorText)
	for _, rule := range rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return rule.Category
			}
		}
	}
	return models.FailureUnknown
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a program, the patterns
// to scan it with, and what the scan must report.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to the CUE files holding the program and patterns.
	// Relative paths are resolved by LoadScenarioWithBasePath.
	Specs []string `yaml:"specs"`

	// RunID is the fixed run ID the scan is recorded under.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Patterns restricts the scan to the named patterns, in this order.
	// If empty, every pattern in the specs is used in declaration order.
	Patterns []string `yaml:"patterns,omitempty"`

	// Assertions validate the matches of the scan.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the matches of a scan.
type Assertion struct {
	// Type is one of match_count, match_at, no_match or stored_count.
	Type string `yaml:"type"`

	// Pattern names the pattern the assertion is about.
	Pattern string `yaml:"pattern"`

	// Method is a full method name, e.g. "Lcom/Foo;.run:()V"
	// (required by match_at, optional for no_match).
	Method string `yaml:"method,omitempty"`

	// Start is the window start index (used by match_at).
	Start int `yaml:"start,omitempty"`

	// Count is the expected number of matches (match_count, stored_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMatchCount  = "match_count"
	AssertMatchAt     = "match_at"
	AssertNoMatch     = "no_match"
	AssertStoredCount = "stored_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative spec paths against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve before validation so existence checks see the real paths.
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	seen := make(map[string]bool, len(s.Patterns))
	for i, name := range s.Patterns {
		if name == "" {
			return fmt.Errorf("patterns[%d]: name is empty", i)
		}
		if seen[name] {
			return fmt.Errorf("patterns[%d]: duplicate pattern %q", i, name)
		}
		seen[name] = true
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Pattern == "" {
		return fmt.Errorf("assertions[%d]: pattern is required", index)
	}

	switch a.Type {
	case AssertMatchCount, AssertStoredCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertMatchAt:
		if a.Method == "" {
			return fmt.Errorf("assertions[%d]: method is required for match_at", index)
		}
		if a.Start < 0 {
			return fmt.Errorf("assertions[%d]: start must be non-negative for match_at", index)
		}
	case AssertNoMatch:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

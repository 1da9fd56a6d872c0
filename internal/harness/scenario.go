package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dimcheck/internal/shape"
)

// Scenario is a named list of shape cases.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`
}

// Case is one resolver call and its expected outcome.
type Case struct {
	Name   string   `yaml:"name"`
	Op     shape.Op `yaml:"op"`
	Shapes []string `yaml:"shapes"`
	Expect Expect   `yaml:"expect"`
}

// Expect states the expected outcome. Exactly one of Shape, Error and Fails
// must be set. Reason may accompany Error or Fails.
type Expect struct {
	// Shape is the expected result in tuple text.
	Shape *string `yaml:"shape,omitempty"`

	// Error is the exact expected message.
	Error string `yaml:"error,omitempty"`

	// Fails expects an incompatibility with any message.
	Fails bool `yaml:"fails,omitempty"`

	// Reason optionally pins the incompatibility reason.
	Reason shape.Reason `yaml:"reason,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, c := range s.Cases {
		if err := validateCase(&c); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true
	}

	return nil
}

func validateCase(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if !shape.ValidOps[c.Op] {
		return fmt.Errorf("op %q must be \"add\" or \"matmul\"", c.Op)
	}

	if len(c.Shapes) == 0 {
		return fmt.Errorf("shapes list is required and must be non-empty")
	}
	if c.Op == shape.OpMatMul && len(c.Shapes) != 2 {
		return fmt.Errorf("matmul takes exactly 2 shapes, got %d", len(c.Shapes))
	}
	for j, text := range c.Shapes {
		if _, err := shape.Parse(text); err != nil {
			return fmt.Errorf("shapes[%d]: %w", j, err)
		}
	}

	set := 0
	if c.Expect.Shape != nil {
		set++
		if _, err := shape.Parse(*c.Expect.Shape); err != nil {
			return fmt.Errorf("expect.shape: %w", err)
		}
	}
	if c.Expect.Error != "" {
		set++
	}
	if c.Expect.Fails {
		set++
	}
	if set != 1 {
		return fmt.Errorf("expect needs exactly one of shape, error, fails")
	}
	if c.Expect.Reason != "" && c.Expect.Shape != nil {
		return fmt.Errorf("expect.reason only applies to failing cases")
	}

	return nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a constraint-solving test scenario.
// Scenarios validate settled geometry by building a shape collection,
// applying a constraint script in order, and asserting on the result.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name for RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Shapes is the initial shape collection.
	Shapes []ShapeDef `yaml:"shapes"`

	// Constraints is the ordered constraint script. Later constraints
	// win on shared shapes, same as the engine's apply pass.
	Constraints []ConstraintStep `yaml:"constraints,omitempty"`

	// Fixed optionally pins one shape during the apply pass.
	Fixed string `yaml:"fixed,omitempty"`

	// Expect lists assertions over the settled result.
	Expect []Expectation `yaml:"expect"`
}

// ShapeDef describes one shape in the scenario's collection.
type ShapeDef struct {
	Name     string             `yaml:"name"`
	Type     string             `yaml:"type"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Position [2]float64         `yaml:"position"`
	Rotation float64            `yaml:"rotation,omitempty"`
	Scale    *[2]float64        `yaml:"scale,omitempty"`
}

// ConstraintStep is one entry of the constraint script. A and B are
// "shape.anchorKey" references.
type ConstraintStep struct {
	Type string  `yaml:"type"`
	A    string  `yaml:"a"`
	B    string  `yaml:"b"`
	Dist float64 `yaml:"dist,omitempty"`
}

// Expectation asserts on the settled result. Exactly one of Anchor or
// Constraint must be set:
//
//   - Anchor expectations check a world position within Tolerance
//     (default 1e-3).
//   - Constraint expectations check whether the script entry at that
//     index settled fully satisfied.
type Expectation struct {
	// Anchor is a "shape.anchorKey" reference.
	Anchor string `yaml:"anchor,omitempty"`

	// World is the expected world position of Anchor.
	World [2]float64 `yaml:"world,omitempty"`

	// Tolerance is the per-coordinate tolerance for World.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Constraint is a zero-based index into the scenario's script.
	Constraint *int `yaml:"constraint,omitempty"`

	// Satisfied is the expected satisfaction of Constraint.
	Satisfied bool `yaml:"satisfied,omitempty"`
}

// DefaultTolerance is the anchor position tolerance when an
// expectation leaves Tolerance unset.
const DefaultTolerance = 1e-3

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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
	if len(s.Shapes) == 0 {
		return fmt.Errorf("shapes list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Shapes))
	for i, def := range s.Shapes {
		if def.Name == "" {
			return fmt.Errorf("shapes[%d]: name is required", i)
		}
		if names[def.Name] {
			return fmt.Errorf("shapes[%d]: duplicate name %q", i, def.Name)
		}
		names[def.Name] = true
		if def.Type == "" {
			return fmt.Errorf("shapes[%d]: type is required", i)
		}
	}

	for i, step := range s.Constraints {
		if step.Type == "" {
			return fmt.Errorf("constraints[%d]: type is required", i)
		}
		for _, ref := range []string{step.A, step.B} {
			if !strings.Contains(ref, ".") {
				return fmt.Errorf("constraints[%d]: anchor reference %q is not shape.key", i, ref)
			}
		}
	}

	if s.Fixed != "" && !names[s.Fixed] {
		return fmt.Errorf("fixed shape %q is not in the scenario", s.Fixed)
	}

	for i, e := range s.Expect {
		hasAnchor := e.Anchor != ""
		hasConstraint := e.Constraint != nil
		if hasAnchor == hasConstraint {
			return fmt.Errorf("expect[%d]: exactly one of anchor or constraint is required", i)
		}
		if hasConstraint && (*e.Constraint < 0 || *e.Constraint >= len(s.Constraints)) {
			return fmt.Errorf("expect[%d]: constraint index %d out of range", i, *e.Constraint)
		}
		if e.Tolerance < 0 {
			return fmt.Errorf("expect[%d]: tolerance must be non-negative", i)
		}
	}

	return nil
}

package harness

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/roach88/easel/internal/engine"
	"github.com/roach88/easel/internal/geom"
	"github.com/roach88/easel/internal/shape"
)

// ShapeState is the settled transform of one shape.
type ShapeState struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Position geom.Point `json:"position"`
	Rotation float64    `json:"rotation"`
}

// ConstraintOutcome is the settled state of one script entry.
type ConstraintOutcome struct {
	Label     string `json:"label"`
	Satisfied bool   `json:"satisfied"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// Shapes holds the settled transforms in collection order.
	Shapes []ShapeState `json:"shapes"`

	// Constraints holds per-script-entry outcomes in order.
	Constraints []ConstraintOutcome `json:"constraints"`

	// Errors contains expectation failure messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// AddError records an expectation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh shape collection and a fresh
// engine with deterministic constraint ids, so repeated runs produce
// identical results.
func Run(scenario *Scenario) (*Result, error) {
	list := buildShapes(scenario)

	ids := make([]string, len(scenario.Constraints))
	for i := range ids {
		ids[i] = fmt.Sprintf("c-%d", i)
	}
	eng := engine.New(list,
		engine.WithIDGenerator(engine.NewFixedGenerator(ids...)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	for i, step := range scenario.Constraints {
		if _, err := addStep(eng, step); err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
	}

	// Adding a constraint solves it immediately with nothing pinned and
	// drags shapes around. The settled result the scenario asserts on is
	// one apply pass over the full script from the declared positions,
	// with the fixed shape honored.
	resetPositions(list, scenario)
	outcomes := eng.ApplyAllConstraints(scenario.Fixed)

	result := &Result{Pass: true}
	for _, s := range list.Shapes() {
		result.Shapes = append(result.Shapes, ShapeState{
			Name:     s.Name,
			Type:     s.Type,
			Position: s.Transform.Position,
			Rotation: s.Transform.Rotation,
		})
	}
	for _, o := range outcomes {
		result.Constraints = append(result.Constraints, ConstraintOutcome{
			Label:     o.Ref.Label,
			Satisfied: allTrue(o.Satisfied),
		})
	}

	evaluateExpectations(scenario, eng, result)
	return result, nil
}

// evaluateExpectations checks every expectation against the settled
// engine state, collecting failures instead of stopping at the first.
func evaluateExpectations(scenario *Scenario, eng *engine.Engine, result *Result) {
	for i, e := range scenario.Expect {
		if e.Anchor != "" {
			shapeName, key, ok := splitRef(e.Anchor)
			if !ok {
				result.AddError(fmt.Sprintf("expect[%d]: anchor reference %q is not shape.key", i, e.Anchor))
				continue
			}
			w, ok := eng.AnchorWorld(shapeName, key)
			if !ok {
				result.AddError(fmt.Sprintf("expect[%d]: anchor %q does not resolve", i, e.Anchor))
				continue
			}
			tol := e.Tolerance
			if tol == 0 {
				tol = DefaultTolerance
			}
			if math.Abs(w.X-e.World[0]) > tol || math.Abs(w.Y-e.World[1]) > tol {
				result.AddError(fmt.Sprintf("expect[%d]: anchor %s at (%g, %g), want (%g, %g) ±%g",
					i, e.Anchor, w.X, w.Y, e.World[0], e.World[1], tol))
			}
			continue
		}

		idx := *e.Constraint
		if got := result.Constraints[idx].Satisfied; got != e.Satisfied {
			result.AddError(fmt.Sprintf("expect[%d]: constraint %d satisfied=%v, want %v",
				i, idx, got, e.Satisfied))
		}
	}
}

func resetPositions(list *shape.List, scenario *Scenario) {
	for _, def := range scenario.Shapes {
		if s, ok := list.Lookup(def.Name); ok {
			s.Transform.Position = geom.Pt(def.Position[0], def.Position[1])
			s.Transform.Rotation = def.Rotation
		}
	}
}

func buildShapes(scenario *Scenario) *shape.List {
	list := shape.NewList()
	for _, def := range scenario.Shapes {
		scale := [2]float64{1, 1}
		if def.Scale != nil {
			scale = *def.Scale
		}
		list.Add(&shape.Shape{
			Name:   def.Name,
			Type:   def.Type,
			Params: def.Params,
			Transform: shape.Transform{
				Position: geom.Pt(def.Position[0], def.Position[1]),
				Rotation: def.Rotation,
				Scale:    scale,
			},
		})
	}
	return list
}

func addStep(eng *engine.Engine, step ConstraintStep) (engine.Ref, error) {
	a, err := refOf(step.A)
	if err != nil {
		return engine.Ref{}, err
	}
	b, err := refOf(step.B)
	if err != nil {
		return engine.Ref{}, err
	}
	switch step.Type {
	case string(engine.KindCoincident):
		return eng.AddCoincident(a, b)
	case string(engine.KindDistance):
		return eng.AddDistance(a, b, step.Dist)
	case string(engine.KindHorizontal):
		return eng.AddHorizontal(a, b)
	case string(engine.KindVertical):
		return eng.AddVertical(a, b)
	default:
		return engine.Ref{}, fmt.Errorf("unknown constraint type %q", step.Type)
	}
}

func refOf(ref string) (engine.AnchorRef, error) {
	shapeName, key, ok := splitRef(ref)
	if !ok {
		return engine.AnchorRef{}, fmt.Errorf("anchor reference %q is not shape.key", ref)
	}
	return engine.AnchorRef{Shape: shapeName, Key: key}, nil
}

// splitRef parses "shape.anchorKey" at the last dot, so shape names may
// carry dots but anchor keys never do.
func splitRef(ref string) (shapeName, key string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func allTrue(flags []bool) bool {
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return true
}

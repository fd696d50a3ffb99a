package harness

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/easel/internal/geom"
)

// Snapshot captures the settled geometry of a scenario execution for
// golden file comparison.
type Snapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Shapes       []ShapeState        `json:"shapes"`
	Constraints  []ConstraintOutcome `json:"constraints"`
}

// snapshotOf rounds the result to 2 decimal places. Solver convergence
// stops at residuals around 1e-5, so raw coordinates carry noise far
// below that; rounding keeps golden files byte-stable across runs and
// platforms.
func snapshotOf(name string, result *Result) Snapshot {
	snap := Snapshot{
		ScenarioName: name,
		Shapes:       make([]ShapeState, len(result.Shapes)),
		Constraints:  result.Constraints,
	}
	for i, s := range result.Shapes {
		snap.Shapes[i] = ShapeState{
			Name:     s.Name,
			Type:     s.Type,
			Position: geom.Pt(round2(s.Position.X), round2(s.Position.Y)),
			Rotation: round2(s.Rotation),
		}
	}
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RunWithGolden executes a scenario and compares the settled snapshot
// against a golden file under testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; snapshot mismatches
// fail the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snap := snapshotOf(scenario.Name, result)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}

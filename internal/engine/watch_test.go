package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/easel/internal/geom"
)

func TestShapesMutated_NoOpWhenLiveEnforceOff(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	b := circleAt("b", 10, 0, 5)
	e, _ := newTestEngine(a, b)

	_, err := e.AddCoincident(AnchorRef{"a", "center"}, AnchorRef{"b", "center"})
	require.NoError(t, err)

	b.Transform.Position = geom.Pt(300, 300)
	e.ShapesMutated()

	// Enforcement is off: a must not have chased b.
	wa, _ := e.AnchorWorld("a", "center")
	assert.Greater(t, math.Abs(wa.X-300), 1.0)
}

func TestShapesMutated_PinsTheEditedShape(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	b := circleAt("b", 10, 0, 5)
	e, _ := newTestEngine(a, b)

	_, err := e.AddCoincident(AnchorRef{"a", "center"}, AnchorRef{"b", "center"})
	require.NoError(t, err)
	e.SetLiveEnforce(true)

	// The user drags b; the engine must treat b as fixed and move a.
	b.Transform.Position = geom.Pt(300, 300)
	e.ShapesMutated()

	assert.Equal(t, geom.Pt(300, 300), b.Transform.Position, "edited shape must not move")
	wa, _ := e.AnchorWorld("a", "center")
	assert.InDelta(t, 300, wa.X, 1e-3)
	assert.InDelta(t, 300, wa.Y, 1e-3)
}

func TestShapesMutated_BelowThresholdAppliesUnpinned(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	b := circleAt("b", 10, 0, 5)
	e, _ := newTestEngine(a, b)

	_, err := e.AddCoincident(AnchorRef{"a", "center"}, AnchorRef{"b", "center"})
	require.NoError(t, err)
	e.SetLiveEnforce(true)

	// Nothing moved beyond noise: a plain re-apply with no pinning.
	e.ShapesMutated()
	wa, _ := e.AnchorWorld("a", "center")
	wb, _ := e.AnchorWorld("b", "center")
	assert.InDelta(t, wb.X, wa.X, 1e-3)
	assert.InDelta(t, wb.Y, wa.Y, 1e-3)
}

func TestShapesMutated_ReentrantCallIsNoOp(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	b := circleAt("b", 10, 0, 5)
	e, _ := newTestEngine(a, b)

	_, err := e.AddCoincident(AnchorRef{"a", "center"}, AnchorRef{"b", "center"})
	require.NoError(t, err)
	e.SetLiveEnforce(true)

	// Simulate the collaborator reporting the engine's own write-backs:
	// a recorder hook calling ShapesMutated mid-apply must not recurse.
	reentered := 0
	e.recorder = recorderFunc(func(SolveRecord) error {
		reentered++
		if reentered > 10 {
			t.Fatal("runaway recursion through ShapesMutated")
		}
		e.ShapesMutated()
		return nil
	})

	b.Transform.Position = geom.Pt(50, 50)
	e.ShapesMutated()
	assert.Equal(t, 1, reentered, "one solve, no recursive re-enforcement")
}

type recorderFunc func(SolveRecord) error

func (f recorderFunc) Record(rec SolveRecord) error { return f(rec) }

func TestChangeScore_Weights(t *testing.T) {
	base := snapshot{pos: [2]float64{0, 0}, rot: 0, scale: [2]float64{1, 1}}

	moved := base
	moved.pos = [2]float64{3, 4}
	assert.InDelta(t, 5, changeScore(base, moved), 1e-12)

	rotated := base
	rotated.rot = 90
	assert.InDelta(t, 0.9, changeScore(base, rotated), 1e-12)

	scaled := base
	scaled.scale = [2]float64{1.1, 1}
	assert.InDelta(t, 1.0, changeScore(base, scaled), 1e-9)
}

func TestDetectEditedShape_PicksHighestScorer(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	b := circleAt("b", 10, 0, 5)
	e, _ := newTestEngine(a, b)
	e.takeSnapshots()

	a.Transform.Position = geom.Pt(1, 0)
	b.Transform.Position = geom.Pt(10, 40)
	assert.Equal(t, "b", e.detectEditedShape())
}

func TestDetectEditedShape_NothingAboveThreshold(t *testing.T) {
	a := circleAt("a", 0, 0, 5)
	e, _ := newTestEngine(a)
	e.takeSnapshots()

	a.Transform.Position = geom.Pt(1e-5, 0)
	assert.Equal(t, "", e.detectEditedShape())
}

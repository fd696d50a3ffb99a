package engine

import (
	"math"

	"github.com/roach88/easel/internal/shape"
)

// editThreshold is the minimum change score before a shape counts as
// actively edited. Below it, a mutation notification re-applies
// constraints with no fixed shape.
const editThreshold = 1e-3

// Change-score weights: rotation is in degrees so it is damped, scale
// deltas are tiny fractions so they are amplified.
const (
	rotationWeight = 0.01
	scaleWeight    = 10
)

// snapshot is the per-shape transform state at the last settled solve.
type snapshot struct {
	pos   [2]float64
	rot   float64
	scale [2]float64
}

func snapshotOf(s *shape.Shape) snapshot {
	return snapshot{
		pos:   [2]float64{s.Transform.Position.X, s.Transform.Position.Y},
		rot:   s.Transform.Rotation,
		scale: s.Transform.Scale,
	}
}

// takeSnapshots records the current transform of every shape as the
// settled baseline for the next round of change detection.
func (e *Engine) takeSnapshots() {
	e.snapshots = make(map[string]snapshot, e.shapes.Len())
	for _, s := range e.shapes.Shapes() {
		e.snapshots[s.Name] = snapshotOf(s)
	}
}

// changeScore weighs how far a shape moved from its snapshot.
func changeScore(prev, cur snapshot) float64 {
	dp := math.Hypot(cur.pos[0]-prev.pos[0], cur.pos[1]-prev.pos[1])
	dr := math.Abs(cur.rot - prev.rot)
	ds := math.Hypot(cur.scale[0]-prev.scale[0], cur.scale[1]-prev.scale[1])
	return dp + rotationWeight*dr + scaleWeight*ds
}

// detectEditedShape returns the shape that moved the most since the
// last settled state, if its score clears the threshold. That shape is
// treated as the one under the user's cursor: it gets pinned so the
// other constraint endpoints move instead of fighting the edit.
func (e *Engine) detectEditedShape() string {
	best := ""
	bestScore := editThreshold
	for _, s := range e.shapes.Shapes() {
		prev, ok := e.snapshots[s.Name]
		if !ok {
			// New shape since the last settled state; nothing to compare.
			continue
		}
		if score := changeScore(prev, snapshotOf(s)); score > bestScore {
			best = s.Name
			bestScore = score
		}
	}
	return best
}

// SetLiveEnforce toggles reactive constraint enforcement.
func (e *Engine) SetLiveEnforce(on bool) {
	e.liveEnforce = on
	if on {
		e.takeSnapshots()
	}
}

// LiveEnforce reports whether reactive enforcement is on.
func (e *Engine) LiveEnforce() bool {
	return e.liveEnforce
}

// ShapesMutated is the subscription hook for the editing collaborator:
// call it after any shape transform changes. With live enforcement on,
// the engine detects which shape is being edited, pins it, and
// re-applies every constraint. The call is a no-op while the engine is
// itself applying a solution, which stops the write-back from
// re-triggering enforcement forever.
func (e *Engine) ShapesMutated() {
	if !e.liveEnforce || e.applying {
		return
	}
	fixed := e.detectEditedShape()
	e.ApplyAllConstraints(fixed)
}

package engine

import (
	"log/slog"

	"github.com/roach88/easel/internal/geom"
	"github.com/roach88/easel/internal/shape"
	"github.com/roach88/easel/internal/system"
)

// Recorder receives a diagnostic record after every constraint solve.
// Implemented by the trace store; nil disables recording.
type Recorder interface {
	Record(rec SolveRecord) error
}

// SolveRecord describes one constraint resolution for diagnostics.
type SolveRecord struct {
	ConstraintID string
	Label        string
	Equations    int
	Dropped      int
	Satisfied    bool
	FixedShape   string
}

// Ref identifies a stored constraint to callers: the id for removal,
// the label for display.
type Ref struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Geometry is the overlay-drawing view of a constraint: its two
// endpoint world positions and their midpoint.
type Geometry struct {
	A   geom.Point `json:"a"`
	B   geom.Point `json:"b"`
	Mid geom.Point `json:"mid"`
}

// Engine resolves constraints over an externally owned shape list.
//
// All operations are synchronous and run to completion; the engine is
// not safe for concurrent use, matching the single-threaded editor it
// serves.
type Engine struct {
	shapes      *shape.List
	constraints []*Constraint
	idGen       IDGenerator
	recorder    Recorder
	logger      *slog.Logger

	listeners []func()

	// Live-enforcement state (watch.go).
	liveEnforce bool
	applying    bool
	snapshots   map[string]snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the constraint id generator. Tests use
// NewFixedGenerator for deterministic ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.idGen = gen }
}

// WithRecorder installs a diagnostic solve recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger overrides the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine over the collaborator-owned shape list.
func New(shapes *shape.List, opts ...Option) *Engine {
	e := &Engine{
		shapes:    shapes,
		idGen:     UUIDv7Generator{},
		logger:    slog.Default(),
		snapshots: make(map[string]snapshot),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.takeSnapshots()
	return e
}

// AddCoincident constrains two anchors to the same world position.
func (e *Engine) AddCoincident(a, b AnchorRef) (Ref, error) {
	return e.add(&Constraint{Kind: KindCoincident, A: a, B: b})
}

// AddDistance constrains two anchors to a fixed separation.
func (e *Engine) AddDistance(a, b AnchorRef, dist float64) (Ref, error) {
	return e.add(&Constraint{Kind: KindDistance, A: a, B: b, Dist: dist})
}

// AddHorizontal constrains two anchors to equal world y.
func (e *Engine) AddHorizontal(a, b AnchorRef) (Ref, error) {
	return e.add(&Constraint{Kind: KindHorizontal, A: a, B: b})
}

// AddVertical constrains two anchors to equal world x.
func (e *Engine) AddVertical(a, b AnchorRef) (Ref, error) {
	return e.add(&Constraint{Kind: KindVertical, A: a, B: b})
}

// add validates, solves immediately, stores, and notifies.
func (e *Engine) add(c *Constraint) (Ref, error) {
	for _, ref := range []AnchorRef{c.A, c.B} {
		if _, err := e.resolveAnchor(ref); err != nil {
			return Ref{}, err
		}
	}

	c.ID = e.idGen.Generate()
	c.compile()

	e.applying = true
	e.solveConstraint(c, "")
	e.applying = false
	e.takeSnapshots()

	e.constraints = append(e.constraints, c)
	e.notifyListChanged()
	return Ref{ID: c.ID, Label: c.Label()}, nil
}

// RemoveConstraint deletes the constraint with the given id.
func (e *Engine) RemoveConstraint(id string) error {
	for i, c := range e.constraints {
		if c.ID == id {
			e.constraints = append(e.constraints[:i], e.constraints[i+1:]...)
			e.notifyListChanged()
			return nil
		}
	}
	return ErrConstraintNotFound
}

// ClearAllConstraints empties the stored list.
func (e *Engine) ClearAllConstraints() {
	if len(e.constraints) == 0 {
		return
	}
	e.constraints = nil
	e.notifyListChanged()
}

// ConstraintList returns refs for every stored constraint, in order.
func (e *Engine) ConstraintList() []Ref {
	refs := make([]Ref, len(e.constraints))
	for i, c := range e.constraints {
		refs[i] = Ref{ID: c.ID, Label: c.Label()}
	}
	return refs
}

// PruneShape drops every constraint referencing the named shape. The
// collaborator calls this when it deletes a shape.
func (e *Engine) PruneShape(name string) int {
	kept := e.constraints[:0]
	removed := 0
	for _, c := range e.constraints {
		if c.A.Shape == name || c.B.Shape == name {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	e.constraints = kept
	if removed > 0 {
		e.notifyListChanged()
	}
	return removed
}

// OnListChanged registers a callback fired whenever the stored
// constraint list changes.
func (e *Engine) OnListChanged(fn func()) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) notifyListChanged() {
	for _, fn := range e.listeners {
		fn()
	}
}

// AnchorsForShape returns the current anchor catalog of a shape, or nil
// when the shape does not exist.
func (e *Engine) AnchorsForShape(name string) []shape.Anchor {
	s, ok := e.shapes.Lookup(name)
	if !ok {
		return nil
	}
	return shape.Anchors(s)
}

// AnchorWorld resolves a named anchor to world space. A missing shape
// or key yields the zero point and ok=false rather than an error — the
// overlay renderer treats it as "nothing to draw".
func (e *Engine) AnchorWorld(shapeName, key string) (geom.Point, bool) {
	s, ok := e.shapes.Lookup(shapeName)
	if !ok {
		return geom.Point{}, false
	}
	a, ok := s.Anchor(key)
	if !ok {
		return geom.Point{}, false
	}
	return s.World(a), true
}

// ConstraintGeometry returns the overlay endpoints and midpoint for a
// stored constraint.
func (e *Engine) ConstraintGeometry(id string) (Geometry, bool) {
	for _, c := range e.constraints {
		if c.ID != id {
			continue
		}
		a, okA := e.AnchorWorld(c.A.Shape, c.A.Key)
		b, okB := e.AnchorWorld(c.B.Shape, c.B.Key)
		if !okA || !okB {
			return Geometry{}, false
		}
		return Geometry{A: a, B: b, Mid: geom.Mid(a, b)}, true
	}
	return Geometry{}, false
}

// Outcome reports how one constraint fared during an apply pass.
type Outcome struct {
	Ref       Ref    `json:"ref"`
	Satisfied []bool `json:"satisfied"`
}

// ApplyAllConstraints re-solves every stored constraint in list order.
//
// fixedShape optionally names the shape being edited: its anchors are
// pinned, so the other endpoints move to satisfy each constraint. Each
// constraint is resolved independently and sequentially — later
// constraints win on shared shapes.
func (e *Engine) ApplyAllConstraints(fixedShape string) []Outcome {
	e.applying = true
	defer func() {
		e.applying = false
		e.takeSnapshots()
	}()

	outcomes := make([]Outcome, 0, len(e.constraints))
	for _, c := range e.constraints {
		flags := e.solveConstraint(c, fixedShape)
		outcomes = append(outcomes, Outcome{
			Ref:       Ref{ID: c.ID, Label: c.Label()},
			Satisfied: flags,
		})
	}
	return outcomes
}

// resolveAnchor looks an endpoint up in the live catalog.
func (e *Engine) resolveAnchor(ref AnchorRef) (shape.Anchor, error) {
	s, ok := e.shapes.Lookup(ref.Shape)
	if !ok {
		return shape.Anchor{}, &UnknownAnchorError{Shape: ref.Shape, Key: ref.Key}
	}
	a, ok := s.Anchor(ref.Key)
	if !ok {
		return shape.Anchor{}, &UnknownAnchorError{Shape: ref.Shape, Key: ref.Key}
	}
	return a, nil
}

// solveConstraint formulates and solves one constraint, then writes the
// solution back onto shape positions. Returns per-equation satisfied
// flags; a constraint whose anchors no longer resolve is skipped with
// every flag false.
func (e *Engine) solveConstraint(c *Constraint, fixedShape string) []bool {
	anchorA, errA := e.resolveAnchor(c.A)
	anchorB, errB := e.resolveAnchor(c.B)
	eqs := c.equations()
	if errA != nil || errB != nil {
		e.logger.Warn("skipping constraint with dangling anchor",
			"constraint", c.Label(), "a_err", errA, "b_err", errB)
		return make([]bool, len(eqs))
	}

	shapeA, _ := e.shapes.Lookup(c.A.Shape)
	shapeB, _ := e.shapes.Lookup(c.B.Shape)
	worldA := shapeA.World(anchorA)
	worldB := shapeB.World(anchorB)

	ida, idb := c.varNames()
	vars := make(map[string]float64, 4)
	pinned := make(map[string]float64, 4)

	bindSide := func(id string, w geom.Point, shapeName string) {
		target := vars
		if fixedShape != "" && shapeName == fixedShape {
			target = pinned
		}
		target["x"+id] = w.X
		target["y"+id] = w.Y
	}
	bindSide(ida, worldA, c.A.Shape)
	bindSide(idb, worldB, c.B.Shape)

	res := system.Solve(eqs, vars, pinned)

	// Write back each free side: translate the shape by the anchor's
	// world delta. The current world is re-read per side so two free
	// anchors on one shape compose instead of double-counting.
	applySide := func(id string, ref AnchorRef, a shape.Anchor) {
		if fixedShape != "" && ref.Shape == fixedShape {
			return
		}
		s, ok := e.shapes.Lookup(ref.Shape)
		if !ok {
			return
		}
		solved := geom.Pt(res.Vars["x"+id], res.Vars["y"+id])
		delta := solved.Sub(s.World(a))
		s.Transform.Position = s.Transform.Position.Add(delta)
	}
	applySide(ida, c.A, anchorA)
	applySide(idb, c.B, anchorB)

	e.record(c, fixedShape, res.Satisfied)
	return res.Satisfied
}

func (e *Engine) record(c *Constraint, fixedShape string, flags []bool) {
	if e.recorder == nil {
		return
	}
	dropped := 0
	for _, ok := range flags {
		if !ok {
			dropped++
		}
	}
	rec := SolveRecord{
		ConstraintID: c.ID,
		Label:        c.Label(),
		Equations:    len(flags),
		Dropped:      dropped,
		Satisfied:    dropped == 0,
		FixedShape:   fixedShape,
	}
	if err := e.recorder.Record(rec); err != nil {
		e.logger.Warn("solve trace record failed", "error", err)
	}
}

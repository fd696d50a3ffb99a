// Package shape models the shapes the constraint engine attaches to:
// a type tag, numeric parameters, and a mutable transform. It also
// computes the per-type anchor catalog — the named local attachment
// points constraints reference.
//
// Shapes are owned by the editing collaborator, not by the engine. The
// engine reads parameters, reads and translates positions, and never
// touches rotation or scale.
package shape

import "github.com/roach88/easel/internal/geom"

// Shape type tags understood by the anchor catalog.
const (
	TypeRect     = "rect"
	TypeSquare   = "square"
	TypeCircle   = "circle"
	TypeRing     = "ring"
	TypeEllipse  = "ellipse"
	TypePolygon  = "polygon"
	TypeTriangle = "triangle"
	TypeArc      = "arc"
	TypeArrow    = "arrow"
)

// Transform places a shape in world space.
type Transform struct {
	// Position is the world location of the shape's own origin.
	Position geom.Point `json:"position"`

	// Rotation is in degrees, counterclockwise.
	Rotation float64 `json:"rotation"`

	// Scale is per-axis. The engine reads it only for change detection.
	Scale [2]float64 `json:"scale"`
}

// Shape is one shape in the editor's live collection.
type Shape struct {
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Params    map[string]float64 `json:"params"`
	Transform Transform          `json:"transform"`
}

// Param returns the named parameter or 0 when absent. Missing
// parameters degrade an anchor to the origin instead of failing the
// whole catalog.
func (s *Shape) Param(name string) float64 {
	return s.Params[name]
}

// List is an ordered, name-addressable shape collection. The editing
// collaborator owns it; the engine holds a reference and resolves
// anchors against whatever it currently contains.
type List struct {
	shapes []*Shape
	byName map[string]*Shape
}

// NewList builds a collection from shapes in order. Later duplicates of
// a name shadow earlier ones for lookup.
func NewList(shapes ...*Shape) *List {
	l := &List{byName: make(map[string]*Shape, len(shapes))}
	for _, s := range shapes {
		l.Add(s)
	}
	return l
}

// Add appends a shape to the collection.
func (l *List) Add(s *Shape) {
	l.shapes = append(l.shapes, s)
	l.byName[s.Name] = s
}

// Remove deletes the named shape. Constraints referencing it are the
// engine's problem; the list only manages membership.
func (l *List) Remove(name string) {
	if _, ok := l.byName[name]; !ok {
		return
	}
	delete(l.byName, name)
	for i, s := range l.shapes {
		if s.Name == name {
			l.shapes = append(l.shapes[:i], l.shapes[i+1:]...)
			break
		}
	}
}

// Lookup finds a shape by name.
func (l *List) Lookup(name string) (*Shape, bool) {
	s, ok := l.byName[name]
	return s, ok
}

// Shapes returns the shapes in insertion order.
func (l *List) Shapes() []*Shape {
	return l.shapes
}

// Len returns the number of shapes.
func (l *List) Len() int {
	return len(l.shapes)
}

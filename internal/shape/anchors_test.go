package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/easel/internal/geom"
)

func anchorKeys(s *Shape) []string {
	anchors := Anchors(s)
	keys := make([]string, len(anchors))
	for i, a := range anchors {
		keys[i] = a.Key
	}
	return keys
}

func TestAnchors_EveryShapeHasCenter(t *testing.T) {
	types := []string{
		TypeRect, TypeSquare, TypeCircle, TypeRing, TypeEllipse,
		TypePolygon, TypeTriangle, TypeArc, TypeArrow, "unknown",
	}
	for _, typ := range types {
		s := &Shape{Name: "s", Type: typ, Params: map[string]float64{}}
		a, ok := s.Anchor("center")
		require.True(t, ok, "type %s missing center", typ)
		assert.Equal(t, geom.Pt(0, 0), a.Offset)
	}
}

func TestAnchors_Rect(t *testing.T) {
	s := &Shape{Name: "r", Type: TypeRect, Params: map[string]float64{"width": 40, "height": 20}}

	assert.ElementsMatch(t, []string{
		"center", "topLeft", "topRight", "bottomLeft", "bottomRight",
		"top", "bottom", "left", "right",
	}, anchorKeys(s))

	tl, ok := s.Anchor("topLeft")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(-20, 10), tl.Offset)

	right, ok := s.Anchor("right")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(20, 0), right.Offset)
}

func TestAnchors_SquareUsesSize(t *testing.T) {
	s := &Shape{Name: "q", Type: TypeSquare, Params: map[string]float64{"size": 10}}

	br, ok := s.Anchor("bottomRight")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(5, -5), br.Offset)
}

func TestAnchors_Circle(t *testing.T) {
	s := &Shape{Name: "c", Type: TypeCircle, Params: map[string]float64{"radius": 7}}

	assert.ElementsMatch(t, []string{"center", "top", "bottom", "left", "right"}, anchorKeys(s))
	top, _ := s.Anchor("top")
	assert.Equal(t, geom.Pt(0, 7), top.Offset)
}

func TestAnchors_RingInnerCardinals(t *testing.T) {
	s := &Shape{Name: "g", Type: TypeRing, Params: map[string]float64{"radius": 10, "innerRadius": 4}}

	inner, ok := s.Anchor("innerLeft")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(-4, 0), inner.Offset)
}

func TestAnchors_RingWithoutInnerRadius(t *testing.T) {
	s := &Shape{Name: "g", Type: TypeRing, Params: map[string]float64{"radius": 10}}

	_, ok := s.Anchor("innerTop")
	assert.False(t, ok, "zero inner radius must not produce inner anchors")
}

func TestAnchors_Ellipse(t *testing.T) {
	s := &Shape{Name: "e", Type: TypeEllipse, Params: map[string]float64{"radiusX": 6, "radiusY": 3}}

	left, _ := s.Anchor("left")
	top, _ := s.Anchor("top")
	assert.Equal(t, geom.Pt(-6, 0), left.Offset)
	assert.Equal(t, geom.Pt(0, 3), top.Offset)
}

func TestAnchors_PolygonVertices(t *testing.T) {
	s := &Shape{Name: "p", Type: TypePolygon, Params: map[string]float64{"sides": 4, "radius": 5}}

	keys := anchorKeys(s)
	assert.ElementsMatch(t, []string{"center", "vertex0", "vertex1", "vertex2", "vertex3"}, keys)

	v0, _ := s.Anchor("vertex0")
	assert.InDelta(t, 5, v0.Offset.X, 1e-12)
	assert.InDelta(t, 0, v0.Offset.Y, 1e-12)

	v1, _ := s.Anchor("vertex1")
	assert.InDelta(t, 0, v1.Offset.X, 1e-12)
	assert.InDelta(t, 5, v1.Offset.Y, 1e-12)
}

func TestAnchors_Triangle(t *testing.T) {
	s := &Shape{Name: "t", Type: TypeTriangle, Params: map[string]float64{"width": 8, "height": 6}}

	apex, _ := s.Anchor("apex")
	baseMid, _ := s.Anchor("baseMid")
	assert.Equal(t, geom.Pt(0, 3), apex.Offset)
	assert.Equal(t, geom.Pt(0, -3), baseMid.Offset)
}

func TestAnchors_Arc(t *testing.T) {
	s := &Shape{Name: "a", Type: TypeArc, Params: map[string]float64{
		"radius": 10, "startAngle": 0, "endAngle": 180,
	}}

	start, _ := s.Anchor("start")
	mid, _ := s.Anchor("mid")
	end, _ := s.Anchor("end")
	assert.InDelta(t, 10, start.Offset.X, 1e-12)
	assert.InDelta(t, 0, mid.Offset.X, 1e-9)
	assert.InDelta(t, 10, mid.Offset.Y, 1e-9)
	assert.InDelta(t, -10, end.Offset.X, 1e-9)
}

func TestAnchors_Arrow(t *testing.T) {
	s := &Shape{Name: "w", Type: TypeArrow, Params: map[string]float64{"length": 30}}

	tip, _ := s.Anchor("tip")
	tail, _ := s.Anchor("tail")
	assert.Equal(t, geom.Pt(15, 0), tip.Offset)
	assert.Equal(t, geom.Pt(-15, 0), tail.Offset)
}

func TestWorld_AppliesRotationToOffset(t *testing.T) {
	s := &Shape{
		Name:   "r",
		Type:   TypeRect,
		Params: map[string]float64{"width": 20, "height": 10},
		Transform: Transform{
			Position: geom.Pt(100, 50),
			Rotation: 90,
			Scale:    [2]float64{1, 1},
		},
	}

	right, ok := s.Anchor("right")
	require.True(t, ok)
	w := s.World(right)
	// (10, 0) rotated 90° is (0, 10).
	assert.InDelta(t, 100, w.X, 1e-9)
	assert.InDelta(t, 60, w.Y, 1e-9)
}

func TestWorld_RotationDoesNotAffectCatalogOffsets(t *testing.T) {
	s := &Shape{
		Name:      "r",
		Type:      TypeRect,
		Params:    map[string]float64{"width": 20, "height": 10},
		Transform: Transform{Rotation: 45},
	}

	right, _ := s.Anchor("right")
	assert.Equal(t, geom.Pt(10, 0), right.Offset, "catalog offsets are unrotated")
}

func TestAnchors_PolygonVertexAngles(t *testing.T) {
	s := &Shape{Name: "p", Type: TypePolygon, Params: map[string]float64{"sides": 6, "radius": 1}}

	anchors := Anchors(s)
	require.Len(t, anchors, 7)
	for i := 0; i < 6; i++ {
		a, ok := s.Anchor(vertexKey(i))
		require.True(t, ok)
		theta := 2 * math.Pi * float64(i) / 6
		assert.InDelta(t, math.Cos(theta), a.Offset.X, 1e-12)
		assert.InDelta(t, math.Sin(theta), a.Offset.Y, 1e-12)
	}
}

func TestAnchorID_Sanitization(t *testing.T) {
	assert.Equal(t, "topLeft_box1", AnchorID("box1", "topLeft"))
	assert.Equal(t, "center_my_shape", AnchorID("my shape", "center"))
	assert.Equal(t, "center_a_b", AnchorID("a-b", "center"))
}

func TestList_AddLookupRemove(t *testing.T) {
	a := &Shape{Name: "a", Type: TypeCircle, Params: map[string]float64{"radius": 1}}
	b := &Shape{Name: "b", Type: TypeCircle, Params: map[string]float64{"radius": 2}}
	l := NewList(a, b)

	got, ok := l.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, l.Len())

	l.Remove("a")
	_, ok = l.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, []*Shape{b}, l.Shapes())
}

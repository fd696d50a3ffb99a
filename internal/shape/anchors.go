package shape

import (
	"math"
	"strconv"

	"github.com/roach88/easel/internal/geom"
)

// Anchor is a named local attachment point on a shape. Offsets are in
// the shape's own unrotated coordinate frame; rotation applies only
// when resolving to world space.
type Anchor struct {
	Shape  string     `json:"shape"`
	Key    string     `json:"key"`
	Offset geom.Point `json:"offset"`
}

// Anchors computes the anchor catalog for a shape from its parameters.
//
// Every shape carries a center anchor at the origin. The rest depend on
// the shape type; an unknown type yields just the center. Anchors are
// cheap to compute and are rebuilt fresh before every solve — they are
// derived state and are never persisted.
func Anchors(s *Shape) []Anchor {
	out := []Anchor{{Shape: s.Name, Key: "center"}}
	add := func(key string, x, y float64) {
		out = append(out, Anchor{Shape: s.Name, Key: key, Offset: geom.Pt(x, y)})
	}

	switch s.Type {
	case TypeRect, TypeSquare:
		w, h := s.Param("width"), s.Param("height")
		if s.Type == TypeSquare {
			w = s.Param("size")
			h = w
		}
		hw, hh := w/2, h/2
		add("topLeft", -hw, hh)
		add("topRight", hw, hh)
		add("bottomLeft", -hw, -hh)
		add("bottomRight", hw, -hh)
		add("top", 0, hh)
		add("bottom", 0, -hh)
		add("left", -hw, 0)
		add("right", hw, 0)

	case TypeCircle:
		r := s.Param("radius")
		addCardinals(add, "", r)

	case TypeRing:
		addCardinals(add, "", s.Param("radius"))
		if inner := s.Param("innerRadius"); inner > 0 {
			addCardinals(add, "inner", inner)
		}

	case TypeEllipse:
		rx, ry := s.Param("radiusX"), s.Param("radiusY")
		add("top", 0, ry)
		add("bottom", 0, -ry)
		add("left", -rx, 0)
		add("right", rx, 0)

	case TypePolygon:
		n := int(s.Param("sides"))
		r := s.Param("radius")
		for i := 0; i < n; i++ {
			theta := 2 * math.Pi * float64(i) / float64(n)
			add(vertexKey(i), r*math.Cos(theta), r*math.Sin(theta))
		}

	case TypeTriangle:
		hw, hh := s.Param("width")/2, s.Param("height")/2
		add("apex", 0, hh)
		add("baseLeft", -hw, -hh)
		add("baseRight", hw, -hh)
		add("baseMid", 0, -hh)

	case TypeArc:
		r := s.Param("radius")
		start := s.Param("startAngle")
		end := s.Param("endAngle")
		sx, sy := arcPoint(r, start)
		add("start", sx, sy)
		mx, my := arcPoint(r, (start+end)/2)
		add("mid", mx, my)
		ex, ey := arcPoint(r, end)
		add("end", ex, ey)

	case TypeArrow:
		half := s.Param("length") / 2
		add("tip", half, 0)
		add("tail", -half, 0)
	}

	return out
}

// Anchor finds one anchor by key. ok is false when the key does not
// exist on this shape type.
func (s *Shape) Anchor(key string) (Anchor, bool) {
	for _, a := range Anchors(s) {
		if a.Key == key {
			return a, true
		}
	}
	return Anchor{}, false
}

// World resolves an anchor offset to world space:
// position + rotate(offset, rotation).
func (s *Shape) World(a Anchor) geom.Point {
	return s.Transform.Position.Add(geom.Rotate(a.Offset, s.Transform.Rotation))
}

// addCardinals emits the four cardinal anchors at radius r, with keys
// prefixed for inner rings ("innerTop" etc).
func addCardinals(add func(string, float64, float64), prefix string, r float64) {
	keys := [4]string{"top", "bottom", "left", "right"}
	offs := [4]geom.Point{{X: 0, Y: r}, {X: 0, Y: -r}, {X: -r, Y: 0}, {X: r, Y: 0}}
	for i, key := range keys {
		if prefix != "" {
			key = prefix + upperFirst(key)
		}
		add(key, offs[i].X, offs[i].Y)
	}
}

func arcPoint(r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return r * math.Cos(rad), r * math.Sin(rad)
}

func vertexKey(i int) string {
	return "vertex" + strconv.Itoa(i)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Package testutil provides canned shape fixtures for tests.
//
// Fixtures return fresh values on every call so tests can mutate them
// freely without cross-test interference.
package testutil

import (
	"github.com/roach88/easel/internal/geom"
	"github.com/roach88/easel/internal/shape"
)

// CircleAt returns a circle shape at the given position.
func CircleAt(name string, x, y, radius float64) *shape.Shape {
	return &shape.Shape{
		Name:   name,
		Type:   shape.TypeCircle,
		Params: map[string]float64{"radius": radius},
		Transform: shape.Transform{
			Position: geom.Pt(x, y),
			Scale:    [2]float64{1, 1},
		},
	}
}

// RectAt returns a rectangle shape at the given position.
func RectAt(name string, x, y, width, height float64) *shape.Shape {
	return &shape.Shape{
		Name:   name,
		Type:   shape.TypeRect,
		Params: map[string]float64{"width": width, "height": height},
		Transform: shape.Transform{
			Position: geom.Pt(x, y),
			Scale:    [2]float64{1, 1},
		},
	}
}

// TriangleAt returns a triangle shape at the given position.
func TriangleAt(name string, x, y, width, height float64) *shape.Shape {
	return &shape.Shape{
		Name:   name,
		Type:   shape.TypeTriangle,
		Params: map[string]float64{"width": width, "height": height},
		Transform: shape.Transform{
			Position: geom.Pt(x, y),
			Scale:    [2]float64{1, 1},
		},
	}
}

// SceneList returns a small mixed collection: a rectangle at the
// origin, a circle to its right, and a triangle above.
func SceneList() *shape.List {
	return shape.NewList(
		RectAt("frame", 0, 0, 40, 20),
		CircleAt("dot", 100, 0, 5),
		TriangleAt("roof", 0, 60, 30, 20),
	)
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/easel/internal/engine"
	"github.com/roach88/easel/internal/geom"
	"github.com/roach88/easel/internal/shape"
)

// Error codes for scene loading.
const (
	ErrCodeNotFound   = "SCENE_NOT_FOUND"
	ErrCodeInvalidCUE = "SCENE_INVALID_CUE"
	ErrCodeBadShape   = "SCENE_BAD_SHAPE"
	ErrCodeBadRef     = "SCENE_BAD_ANCHOR_REF"
	ErrCodeBadKind    = "SCENE_BAD_CONSTRAINT"
)

// LoadError represents an error that occurred during scene loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SceneShape is the CUE-facing shape description.
type SceneShape struct {
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Params   map[string]float64 `json:"params"`
	Position [2]float64         `json:"position"`
	Rotation float64            `json:"rotation,omitempty"`
	Scale    *[2]float64        `json:"scale,omitempty"`
}

// SceneConstraint is the CUE-facing constraint description. A and B are
// "shape.anchorKey" references.
type SceneConstraint struct {
	Type string  `json:"type"`
	A    string  `json:"a"`
	B    string  `json:"b"`
	Dist float64 `json:"dist,omitempty"`
}

// Scene is a complete scene document: shapes, an ordered constraint
// script, and an optional fixed shape pinned during the apply pass.
type Scene struct {
	Shapes      []SceneShape      `json:"shapes"`
	Constraints []SceneConstraint `json:"constraints,omitempty"`
	Fixed       string            `json:"fixed,omitempty"`
}

// knownConstraintKinds gates scene constraint types before they reach
// the engine.
var knownConstraintKinds = map[string]engine.Kind{
	string(engine.KindCoincident): engine.KindCoincident,
	string(engine.KindDistance):   engine.KindDistance,
	string(engine.KindHorizontal): engine.KindHorizontal,
	string(engine.KindVertical):   engine.KindVertical,
}

// LoadScene reads and validates a CUE scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scene file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidCUE, Message: err.Error()}
	}

	var scene Scene
	if err := v.Decode(&scene); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidCUE, Message: err.Error()}
	}
	if err := validateScene(&scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func validateScene(scene *Scene) error {
	if len(scene.Shapes) == 0 {
		return &LoadError{Code: ErrCodeBadShape, Message: "scene has no shapes"}
	}
	names := make(map[string]bool, len(scene.Shapes))
	for i, s := range scene.Shapes {
		if s.Name == "" {
			return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("shape %d has no name", i)}
		}
		if names[s.Name] {
			return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("duplicate shape name %q", s.Name)}
		}
		names[s.Name] = true
		if s.Type == "" {
			return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("shape %q has no type", s.Name)}
		}
	}
	for i, c := range scene.Constraints {
		if _, ok := knownConstraintKinds[c.Type]; !ok {
			return &LoadError{Code: ErrCodeBadKind, Message: fmt.Sprintf("constraint %d has unknown type %q", i, c.Type)}
		}
		for _, ref := range []string{c.A, c.B} {
			if _, _, err := splitAnchorRef(ref); err != nil {
				return err
			}
		}
	}
	if scene.Fixed != "" && !names[scene.Fixed] {
		return &LoadError{Code: ErrCodeBadShape, Message: fmt.Sprintf("fixed shape %q is not in the scene", scene.Fixed)}
	}
	return nil
}

// splitAnchorRef parses "shape.anchorKey". Anchor keys never contain
// dots, so the split is at the last dot — shape names may carry them.
func splitAnchorRef(ref string) (shapeName, key string, err error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", &LoadError{Code: ErrCodeBadRef, Message: fmt.Sprintf("anchor reference %q is not shape.key", ref)}
	}
	return ref[:i], ref[i+1:], nil
}

// BuildShapes converts the scene document into the live shape list the
// engine operates on.
func BuildShapes(scene *Scene) *shape.List {
	list := shape.NewList()
	for _, s := range scene.Shapes {
		scale := [2]float64{1, 1}
		if s.Scale != nil {
			scale = *s.Scale
		}
		list.Add(&shape.Shape{
			Name:   s.Name,
			Type:   s.Type,
			Params: s.Params,
			Transform: shape.Transform{
				Position: geom.Pt(s.Position[0], s.Position[1]),
				Rotation: s.Rotation,
				Scale:    scale,
			},
		})
	}
	return list
}

// resetScenePositions restores every shape's declared transform. Used
// between the add phase (which solves with nothing pinned) and the
// reported apply pass.
func resetScenePositions(list *shape.List, scene *Scene) {
	for _, def := range scene.Shapes {
		if s, ok := list.Lookup(def.Name); ok {
			s.Transform.Position = geom.Pt(def.Position[0], def.Position[1])
			s.Transform.Rotation = def.Rotation
		}
	}
}

// anchorRef converts a validated scene reference into an engine ref.
func anchorRef(ref string) engine.AnchorRef {
	shapeName, key, _ := splitAnchorRef(ref)
	return engine.AnchorRef{Shape: shapeName, Key: key}
}

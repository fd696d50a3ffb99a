package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScene_Testdata(t *testing.T) {
	scene, err := LoadScene(filepath.Join("testdata", "scene.cue"))
	require.NoError(t, err)

	require.Len(t, scene.Shapes, 2)
	assert.Equal(t, "frame", scene.Shapes[0].Name)
	assert.Equal(t, "rect", scene.Shapes[0].Type)
	assert.Equal(t, 40.0, scene.Shapes[0].Params["width"])
	assert.Equal(t, [2]float64{100, 0}, scene.Shapes[1].Position)

	require.Len(t, scene.Constraints, 1)
	assert.Equal(t, "coincident", scene.Constraints[0].Type)
	assert.Equal(t, "dot.center", scene.Constraints[0].A)

	assert.Equal(t, "frame", scene.Fixed)
}

func TestLoadScene_MissingFile(t *testing.T) {
	_, err := LoadScene("/nonexistent/scene.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadScene_MalformedCUE(t *testing.T) {
	path := writeScene(t, `shapes: [{name: "a", type:`)

	_, err := LoadScene(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeInvalidCUE, loadErr.Code)
}

func TestLoadScene_DuplicateShapeNames(t *testing.T) {
	path := writeScene(t, `shapes: [
	{name: "a", type: "circle", position: [0, 0]},
	{name: "a", type: "circle", position: [1, 1]},
]`)

	_, err := LoadScene(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadScene_UnknownConstraintType(t *testing.T) {
	path := writeScene(t, `shapes: [{name: "a", type: "circle", position: [0, 0]}]
constraints: [{type: "tangent", a: "a.center", b: "a.center"}]`)

	_, err := LoadScene(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadKind, loadErr.Code)
}

func TestLoadScene_BadAnchorRef(t *testing.T) {
	path := writeScene(t, `shapes: [{name: "a", type: "circle", position: [0, 0]}]
constraints: [{type: "horizontal", a: "nodot", b: "a.center"}]`)

	_, err := LoadScene(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadRef, loadErr.Code)
}

func TestLoadScene_UnknownFixedShape(t *testing.T) {
	path := writeScene(t, `shapes: [{name: "a", type: "circle", position: [0, 0]}]
fixed: "ghost"`)

	_, err := LoadScene(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestSplitAnchorRef(t *testing.T) {
	shapeName, key, err := splitAnchorRef("frame.topRight")
	require.NoError(t, err)
	assert.Equal(t, "frame", shapeName)
	assert.Equal(t, "topRight", key)

	// Shape names may carry dots; the anchor key never does.
	shapeName, key, err = splitAnchorRef("group.frame.center")
	require.NoError(t, err)
	assert.Equal(t, "group.frame", shapeName)
	assert.Equal(t, "center", key)

	for _, bad := range []string{"nodot", ".center", "frame.", ""} {
		_, _, err := splitAnchorRef(bad)
		assert.Error(t, err, "ref %q", bad)
	}
}

func TestBuildShapes_DefaultsScale(t *testing.T) {
	scene := &Scene{
		Shapes: []SceneShape{
			{Name: "a", Type: "circle", Params: map[string]float64{"radius": 5}, Position: [2]float64{10, 20}},
			{Name: "b", Type: "rect", Position: [2]float64{0, 0}, Scale: &[2]float64{2, 3}},
		},
	}

	list := BuildShapes(scene)
	require.Equal(t, 2, list.Len())

	a, ok := list.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, [2]float64{1, 1}, a.Transform.Scale)
	assert.Equal(t, 10.0, a.Transform.Position.X)

	b, ok := list.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, [2]float64{2, 3}, b.Transform.Scale)
}

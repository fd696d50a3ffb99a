package expr

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalValue(t *testing.T, text string, bindings map[string]float64) float64 {
	t.Helper()
	r, err := Evaluate(text, bindings)
	require.NoError(t, err)
	return r.Val
}

func TestEvaluate_Arithmetic(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"10 / 4", 2.5},
		{"2 ^ 3", 8},
		{"2 ** 3", 8},
		{"-3 + 5", 2},
		{"(1 + 2) * 4", 12},
		{"2 ^ 3 ^ 2", 512}, // right-associative: 2^(3^2)
		{"1 - 2 - 3", -4},  // left-associative
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.InDelta(t, tc.want, evalValue(t, tc.text, nil), 1e-12)
		})
	}
}

func TestEvaluate_Functions(t *testing.T) {
	assert.InDelta(t, 0, evalValue(t, "sin(0)", nil), 1e-12)
	assert.InDelta(t, 1, evalValue(t, "cos(0)", nil), 1e-12)
	assert.InDelta(t, 3, evalValue(t, "sqrt(9)", nil), 1e-12)
	assert.InDelta(t, math.E, evalValue(t, "exp(1)", nil), 1e-12)
	assert.InDelta(t, 0, evalValue(t, "log(1)", nil), 1e-12)
	assert.InDelta(t, -4, evalValue(t, "neg(4)", nil), 1e-12)
	assert.InDelta(t, math.Pi/4, evalValue(t, "atan(1)", nil), 1e-12)
}

func TestEvaluate_Symbols(t *testing.T) {
	v := evalValue(t, "x * y + 1", map[string]float64{"x": 3, "y": 4})
	assert.InDelta(t, 13, v, 1e-12)
}

func TestEvaluate_GradientOrdering(t *testing.T) {
	// Sorted key order: a before b.
	r, err := Evaluate("a * b", map[string]float64{"b": 5, "a": 2})
	require.NoError(t, err)
	require.Len(t, r.Grad, 2)
	assert.InDelta(t, 5, r.Grad[0], 1e-12) // d/da
	assert.InDelta(t, 2, r.Grad[1], 1e-12) // d/db
}

func TestEvaluate_GradientMatchesCentralDifference(t *testing.T) {
	cases := []struct {
		text string
		ref  func(x, y float64) float64
	}{
		{"sin(x)", func(x, _ float64) float64 { return math.Sin(x) }},
		{"x * y", func(x, y float64) float64 { return x * y }},
		{"x / y", func(x, y float64) float64 { return x / y }},
		{"sqrt(x)", func(x, _ float64) float64 { return math.Sqrt(x) }},
		{"x ** 3", func(x, _ float64) float64 { return x * x * x }},
	}
	const xv, yv, h = 1.7, 2.3, 1e-6
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r, err := Evaluate(tc.text, map[string]float64{"x": xv, "y": yv})
			require.NoError(t, err)
			numeric := (tc.ref(xv+h, yv) - tc.ref(xv-h, yv)) / (2 * h)
			assert.InDelta(t, numeric, r.Grad[0], 1e-4)
		})
	}
}

func TestEvalDual_PinnedSymbolIsConstant(t *testing.T) {
	e, err := Compile("x - k")
	require.NoError(t, err)

	r, err := e.EvalDual(map[string]float64{"x": 7, "k": 5}, []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 2, r.Val, 1e-12)
	require.Len(t, r.Grad, 1)
	assert.InDelta(t, 1, r.Grad[0], 1e-12)
}

func TestEvaluate_UnknownVariable(t *testing.T) {
	_, err := Evaluate("x + missing", map[string]float64{"x": 1})
	require.Error(t, err)
	assert.True(t, IsUnknownVariable(err))

	var uv *UnknownVariableError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "missing", uv.Name)
}

func TestCompile_ParseErrors(t *testing.T) {
	cases := []string{
		"1 +",
		"(1 + 2",
		"sin(1",
		"frob(1)",
		"1 2",
		"",
		"1..2",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			_, err := Compile(text)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "expected ParseError, got %v", err)
		})
	}
}

func TestExpr_Vars(t *testing.T) {
	e, err := Compile("sqrt((xa - xb)^2 + (ya - yb)^2) - 10")
	require.NoError(t, err)
	assert.Equal(t, []string{"xa", "xb", "ya", "yb"}, e.Vars())
}

func TestFormatLiteral_Positive(t *testing.T) {
	assert.Equal(t, "12.50000000", FormatLiteral(12.5))
	assert.Equal(t, "0.00000000", FormatLiteral(0))
}

func TestFormatLiteral_NegativeIsParenthesized(t *testing.T) {
	got := FormatLiteral(-3.25)
	assert.Equal(t, "(0-3.25000000)", got)
	assert.False(t, strings.HasPrefix(got, "-"), "literal must not begin with a bare minus")
}

func TestFormatLiteral_EmbedsCleanly(t *testing.T) {
	// A substituted negative literal next to an operator must still parse.
	text := "x - " + FormatLiteral(-4.0)
	v := evalValue(t, text, map[string]float64{"x": 1})
	assert.InDelta(t, 5, v, 1e-12)
}

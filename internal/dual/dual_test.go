package dual

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConst_ZeroGradient(t *testing.T) {
	c := Const(3.5, 4)
	assert.Equal(t, 3.5, c.Val)
	require.Len(t, c.Grad, 4)
	for i, d := range c.Grad {
		assert.Zero(t, d, "component %d", i)
	}
}

func TestVar_OneHotGradient(t *testing.T) {
	v := Var(2.0, 1, 3)
	assert.Equal(t, 2.0, v.Val)
	assert.Equal(t, []float64{0, 1, 0}, v.Grad)
}

func TestAdd_SumsValuesAndGradients(t *testing.T) {
	x := Var(3, 0, 2)
	y := Var(4, 1, 2)

	s := x.Add(y)
	assert.Equal(t, 7.0, s.Val)
	assert.Equal(t, []float64{1, 1}, s.Grad)
}

func TestMul_ProductRule(t *testing.T) {
	x := Var(3, 0, 2)
	y := Var(4, 1, 2)

	p := x.Mul(y)
	assert.Equal(t, 12.0, p.Val)
	// d(xy)/dx = y, d(xy)/dy = x
	assert.Equal(t, []float64{4, 3}, p.Grad)
}

func TestDiv_QuotientRule(t *testing.T) {
	x := Var(3, 0, 2)
	y := Var(4, 1, 2)

	q := x.Div(y)
	assert.InDelta(t, 0.75, q.Val, 1e-12)
	// d(x/y)/dx = 1/y, d(x/y)/dy = -x/y²
	assert.InDelta(t, 0.25, q.Grad[0], 1e-12)
	assert.InDelta(t, -3.0/16.0, q.Grad[1], 1e-12)
}

func TestMixedConstAndVar(t *testing.T) {
	x := Var(5, 0, 1)
	two := Const(2, 1)

	r := two.Mul(x).Sub(Const(3, 1))
	assert.Equal(t, 7.0, r.Val)
	assert.Equal(t, []float64{2}, r.Grad)
}

func TestPow_IntegerExponent(t *testing.T) {
	x := Var(2, 0, 1)

	r := Pow(x, Const(3, 1))
	assert.Equal(t, 8.0, r.Val)
	assert.InDelta(t, 12.0, r.Grad[0], 1e-12) // 3·x²
}

func TestPow_NonIntegerExponent_NaNDerivative(t *testing.T) {
	x := Var(2, 0, 1)

	r := Pow(x, Const(0.5, 1))
	assert.InDelta(t, math.Sqrt2, r.Val, 1e-12)
	assert.True(t, math.IsNaN(r.Grad[0]), "non-integer exponent must yield NaN derivative")
}

func TestPow_VariableExponent_NaNDerivative(t *testing.T) {
	x := Var(2, 0, 2)
	y := Var(3, 1, 2)

	r := Pow(x, y)
	assert.Equal(t, 8.0, r.Val)
	assert.True(t, math.IsNaN(r.Grad[0]))
	assert.True(t, math.IsNaN(r.Grad[1]))
}

// centralDiff numerically differentiates f at x with a symmetric step.
func centralDiff(f func(float64) float64, x float64) float64 {
	const h = 1e-6
	return (f(x+h) - f(x-h)) / (2 * h)
}

func TestUnaryFunctions_MatchCentralDifference(t *testing.T) {
	cases := []struct {
		name string
		fn   func(Num) Num
		ref  func(float64) float64
		at   float64
	}{
		{"sin", Sin, math.Sin, 0.7},
		{"cos", Cos, math.Cos, 0.7},
		{"tan", Tan, math.Tan, 0.4},
		{"asin", Asin, math.Asin, 0.3},
		{"acos", Acos, math.Acos, 0.3},
		{"atan", Atan, math.Atan, 1.2},
		{"exp", Exp, math.Exp, 0.9},
		{"sqrt", Sqrt, math.Sqrt, 2.5},
		{"log", Log, math.Log, 3.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.fn(Var(tc.at, 0, 1))
			assert.InDelta(t, tc.ref(tc.at), got.Val, 1e-10)
			assert.InDelta(t, centralDiff(tc.ref, tc.at), got.Grad[0], 1e-4)
		})
	}
}

func TestCompositeGradient_MatchCentralDifference(t *testing.T) {
	// f(x, y) = sin(x)·y + sqrt(y)/x at (1.3, 4.0)
	f := func(x, y float64) float64 { return math.Sin(x)*y + math.Sqrt(y)/x }

	const xv, yv = 1.3, 4.0
	x := Var(xv, 0, 2)
	y := Var(yv, 1, 2)
	r := Sin(x).Mul(y).Add(Sqrt(y).Div(x))

	assert.InDelta(t, f(xv, yv), r.Val, 1e-10)
	assert.InDelta(t, centralDiff(func(v float64) float64 { return f(v, yv) }, xv), r.Grad[0], 1e-4)
	assert.InDelta(t, centralDiff(func(v float64) float64 { return f(xv, v) }, yv), r.Grad[1], 1e-4)
}

// Package dual implements forward-mode automatic differentiation over
// dual numbers: a value paired with its partial derivatives with respect
// to a fixed, positionally ordered set of independent variables.
//
// Every equation the solver evaluates flows through this package. The
// gradient length is fixed per evaluation call (one slot per active
// unknown); constants carry a zero gradient of the same length, so mixed
// constant/variable arithmetic needs no special casing at call sites.
//
// All operations are pure value constructors with no shared state.
package dual

import "math"

// Num is a dual number: a value plus its gradient with respect to the
// current evaluation's unknowns, positionally aligned to the caller's
// variable ordering.
type Num struct {
	Val  float64
	Grad []float64
}

// Const promotes a plain value to a dual number with a zero gradient of
// length n.
func Const(v float64, n int) Num {
	return Num{Val: v, Grad: make([]float64, n)}
}

// Var creates the i-th independent variable of an n-variable evaluation:
// value v, gradient one-hot at index i.
func Var(v float64, i, n int) Num {
	g := make([]float64, n)
	g[i] = 1
	return Num{Val: v, Grad: g}
}

// Add returns a + b.
func (a Num) Add(b Num) Num {
	g := make([]float64, len(a.Grad))
	for i := range g {
		g[i] = a.Grad[i] + b.Grad[i]
	}
	return Num{Val: a.Val + b.Val, Grad: g}
}

// Sub returns a - b.
func (a Num) Sub(b Num) Num {
	g := make([]float64, len(a.Grad))
	for i := range g {
		g[i] = a.Grad[i] - b.Grad[i]
	}
	return Num{Val: a.Val - b.Val, Grad: g}
}

// Mul returns a * b using the product rule.
func (a Num) Mul(b Num) Num {
	g := make([]float64, len(a.Grad))
	for i := range g {
		g[i] = a.Grad[i]*b.Val + a.Val*b.Grad[i]
	}
	return Num{Val: a.Val * b.Val, Grad: g}
}

// Div returns a / b using the quotient rule.
func (a Num) Div(b Num) Num {
	g := make([]float64, len(a.Grad))
	bb := b.Val * b.Val
	for i := range g {
		g[i] = (a.Grad[i]*b.Val - a.Val*b.Grad[i]) / bb
	}
	return Num{Val: a.Val / b.Val, Grad: g}
}

// Neg returns -a.
func (a Num) Neg() Num {
	g := make([]float64, len(a.Grad))
	for i := range g {
		g[i] = -a.Grad[i]
	}
	return Num{Val: -a.Val, Grad: g}
}

// chain applies the chain rule: result value v, each gradient component
// scaled by dv (the derivative of the outer function at a.Val).
func chain(a Num, v, dv float64) Num {
	g := make([]float64, len(a.Grad))
	for i := range g {
		g[i] = dv * a.Grad[i]
	}
	return Num{Val: v, Grad: g}
}

// Sin returns sin(a).
func Sin(a Num) Num { return chain(a, math.Sin(a.Val), math.Cos(a.Val)) }

// Cos returns cos(a).
func Cos(a Num) Num { return chain(a, math.Cos(a.Val), -math.Sin(a.Val)) }

// Tan returns tan(a); derivative 1/cos².
func Tan(a Num) Num {
	c := math.Cos(a.Val)
	return chain(a, math.Tan(a.Val), 1/(c*c))
}

// Asin returns asin(a); derivative 1/sqrt(1-a²).
func Asin(a Num) Num {
	return chain(a, math.Asin(a.Val), 1/math.Sqrt(1-a.Val*a.Val))
}

// Acos returns acos(a); derivative -1/sqrt(1-a²).
func Acos(a Num) Num {
	return chain(a, math.Acos(a.Val), -1/math.Sqrt(1-a.Val*a.Val))
}

// Atan returns atan(a); derivative 1/(1+a²).
func Atan(a Num) Num {
	return chain(a, math.Atan(a.Val), 1/(1+a.Val*a.Val))
}

// Exp returns e^a.
func Exp(a Num) Num {
	v := math.Exp(a.Val)
	return chain(a, v, v)
}

// Sqrt returns sqrt(a); derivative 1/(2·sqrt(a)).
func Sqrt(a Num) Num {
	v := math.Sqrt(a.Val)
	return chain(a, v, 1/(2*v))
}

// Log returns the natural logarithm of a; derivative 1/a.
func Log(a Num) Num {
	return chain(a, math.Log(a.Val), 1/a.Val)
}

// Pow returns a^b.
//
// Differentiation is supported only when b is a constant integer
// exponent (zero gradient, integral value): the gradient is then
// b·a^(b-1)·a'. For any other exponent the value is still computed but
// every gradient component is NaN. Constraint equations only ever raise
// to small integer powers, so the restriction never bites in practice.
func Pow(a, b Num) Num {
	v := math.Pow(a.Val, b.Val)
	if !constInteger(b) {
		g := make([]float64, len(a.Grad))
		for i := range g {
			g[i] = math.NaN()
		}
		return Num{Val: v, Grad: g}
	}
	dv := b.Val * math.Pow(a.Val, b.Val-1)
	return chain(a, v, dv)
}

func constInteger(b Num) bool {
	if b.Val != math.Trunc(b.Val) {
		return false
	}
	for _, d := range b.Grad {
		if d != 0 {
			return false
		}
	}
	return true
}

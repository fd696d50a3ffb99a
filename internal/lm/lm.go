// Package lm implements damped nonlinear least-squares minimization
// (Levenberg-Marquardt) over compiled residual equations.
//
// Each iteration evaluates the residual vector and Jacobian via
// forward-mode automatic differentiation, forms the normal equations
// H = JᵀJ, g = Jᵀr, and solves the damped step (H + λI)Δ = g with a
// dense LU factorization. Accepted steps shrink the damping factor and
// mark the Jacobian stale; rejected steps keep the current point and
// Jacobian and grow the damping factor.
//
// The iteration count is hard-capped. A minimization that neither
// converges nor stalls out numerically returns StatusStalled with its
// best iterate rather than looping forever.
package lm

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/easel/internal/expr"
)

// Status reports how a minimization terminated.
type Status int

const (
	// StatusConverged means the residual scale dropped below epsilon
	// (cost below epsilon squared).
	StatusConverged Status = iota

	// StatusSmallGradient means every Jacobian component fell below
	// epsilon: the residuals are flat and no step can improve them.
	StatusSmallGradient

	// StatusSmallCostChange means an accepted step improved the cost by
	// less than epsilon: progress has effectively stopped.
	StatusSmallCostChange

	// StatusStalled means the iteration cap was reached. The result
	// still carries the best iterate found.
	StatusStalled
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusSmallGradient:
		return "small-gradient"
	case StatusSmallCostChange:
		return "small-cost-change"
	case StatusStalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// Default tuning constants.
const (
	DefaultInitialLambda = 10.0
	DefaultLambdaUp      = 10.0
	DefaultLambdaDown    = 10.0
	DefaultEpsilon       = 1e-5
	DefaultMaxIterations = 200
)

type options struct {
	initialLambda float64
	lambdaUp      float64
	lambdaDown    float64
	epsilon       float64
	maxIterations int
}

// Option configures a minimization.
type Option func(*options)

// WithEpsilon overrides the convergence threshold.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithInitialLambda overrides the starting damping factor.
func WithInitialLambda(lambda float64) Option {
	return func(o *options) { o.initialLambda = lambda }
}

// WithLambdaFactors overrides the damping growth and shrink factors.
func WithLambdaFactors(up, down float64) Option {
	return func(o *options) {
		o.lambdaUp = up
		o.lambdaDown = down
	}
}

// WithMaxIterations overrides the iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// Result is the outcome of a minimization.
type Result struct {
	// Vars holds the final values of the unknowns.
	Vars map[string]float64

	// Cost is 0.5 times the sum of squared residuals at Vars.
	Cost float64

	// Iterations is the number of damped steps attempted.
	Iterations int

	// Status reports the termination condition.
	Status Status
}

// Minimize drives the unknowns toward a minimum of the summed squared
// residuals of eqs.
//
// Unknowns supplies initial values; pinned supplies fixed values that
// the equations may reference but the solver must not move. Evaluation
// errors (an equation referencing a variable in neither map) abort the
// minimization.
func Minimize(eqs []*expr.Expr, unknowns, pinned map[string]float64, opts ...Option) (Result, error) {
	o := options{
		initialLambda: DefaultInitialLambda,
		lambdaUp:      DefaultLambdaUp,
		lambdaDown:    DefaultLambdaDown,
		epsilon:       DefaultEpsilon,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&o)
	}

	order := sortedKeys(unknowns)
	n := len(order)
	m := len(eqs)

	x := make(map[string]float64, n)
	for k, v := range unknowns {
		x[k] = v
	}
	if m == 0 || n == 0 {
		cost, err := evalCost(eqs, x, pinned)
		if err != nil {
			return Result{}, err
		}
		return Result{Vars: x, Cost: cost, Status: StatusConverged}, nil
	}

	residuals := make([]float64, m)
	jac := mat.NewDense(m, n, nil)
	cost, err := evalSystem(eqs, x, pinned, order, residuals, jac)
	if err != nil {
		return Result{}, err
	}

	lambda := o.initialLambda
	stale := false // Jacobian freshness; residuals and jac match x while fresh
	status := StatusStalled

	iter := 0
	for ; iter < o.maxIterations; iter++ {
		if stale {
			cost, err = evalSystem(eqs, x, pinned, order, residuals, jac)
			if err != nil {
				return Result{}, err
			}
			stale = false
		}

		if maxAbs(jac) < o.epsilon {
			status = StatusSmallGradient
			break
		}

		delta, ok := dampedStep(jac, residuals, lambda)
		if !ok {
			// Singular normal equations; grow damping and retry.
			lambda *= o.lambdaUp
			continue
		}

		trial := make(map[string]float64, n)
		for i, name := range order {
			trial[name] = x[name] - delta.AtVec(i)
		}
		trialCost, err := evalCost(eqs, trial, pinned)
		if err != nil {
			return Result{}, err
		}

		if trialCost < cost {
			improvement := cost - trialCost
			x = trial
			lambda /= o.lambdaDown
			stale = true
			// Epsilon is a residual-scale threshold; cost is quadratic
			// in the residuals, so compare against epsilon squared.
			if trialCost < o.epsilon*o.epsilon {
				cost = trialCost
				status = StatusConverged
				iter++
				break
			}
			if improvement < o.epsilon {
				cost = trialCost
				status = StatusSmallCostChange
				iter++
				break
			}
			cost = trialCost
		} else {
			lambda *= o.lambdaUp
		}
	}

	return Result{Vars: x, Cost: cost, Iterations: iter, Status: status}, nil
}

// evalSystem fills residuals and the Jacobian at x and returns the cost.
func evalSystem(eqs []*expr.Expr, x, pinned map[string]float64, order []string, residuals []float64, jac *mat.Dense) (float64, error) {
	bindings := merged(x, pinned)
	cost := 0.0
	for i, eq := range eqs {
		r, err := eq.EvalDual(bindings, order)
		if err != nil {
			return 0, err
		}
		residuals[i] = r.Val
		for j, d := range r.Grad {
			jac.Set(i, j, d)
		}
		cost += 0.5 * r.Val * r.Val
	}
	return cost, nil
}

// evalCost computes the cost at x without touching the Jacobian.
func evalCost(eqs []*expr.Expr, x, pinned map[string]float64) (float64, error) {
	bindings := merged(x, pinned)
	cost := 0.0
	for _, eq := range eqs {
		r, err := eq.EvalDual(bindings, nil)
		if err != nil {
			return 0, err
		}
		cost += 0.5 * r.Val * r.Val
	}
	return cost, nil
}

// dampedStep solves (JᵀJ + λI)Δ = Jᵀr. Returns ok=false if the damped
// normal matrix is singular.
func dampedStep(jac *mat.Dense, residuals []float64, lambda float64) (*mat.VecDense, bool) {
	_, n := jac.Dims()

	var h mat.Dense
	h.Mul(jac.T(), jac)
	for i := 0; i < n; i++ {
		h.Set(i, i, h.At(i, i)+lambda)
	}

	r := mat.NewVecDense(len(residuals), residuals)
	g := mat.NewVecDense(n, nil)
	g.MulVec(jac.T(), r)

	var lu mat.LU
	lu.Factorize(&h)
	delta := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(delta, false, g); err != nil {
		return nil, false
	}
	return delta, true
}

func maxAbs(m *mat.Dense) float64 {
	rows, cols := m.Dims()
	max := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v > max {
				max = v
			} else if -v > max {
				max = -v
			}
		}
	}
	return max
}

func merged(x, pinned map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(x)+len(pinned))
	for k, v := range pinned {
		out[k] = v
	}
	for k, v := range x {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

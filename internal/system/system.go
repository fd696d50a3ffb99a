// Package system solves a set of residual equations as a best-effort
// constraint system.
//
// It wraps the Levenberg-Marquardt minimizer with two behaviors the raw
// minimizer does not have:
//
//   - Pinned variables: values that equations reference but that must
//     not move. They pass structurally into the evaluator's binding map
//     and never enter the unknown set, so no equation text is rewritten.
//   - Graceful degradation: after solving, every equation is scored at
//     the solution. If any equation remains unsatisfied, the first such
//     equation is dropped and the reduced system is re-solved
//     recursively. The caller always gets back a usable variable set
//     plus a per-equation satisfied flag, never an error.
//
// A minimizer failure (for example a hand-authored equation referencing
// a variable that exists nowhere) is logged and absorbed: the input
// variables come back unmodified.
package system

import (
	"log/slog"
	"math"

	"github.com/roach88/easel/internal/expr"
	"github.com/roach88/easel/internal/lm"
)

// SatisfiedThreshold is the squared-residual score below which an
// equation counts as satisfied: the square root of the minimizer's
// default convergence epsilon.
var SatisfiedThreshold = math.Sqrt(lm.DefaultEpsilon)

// Result is the outcome of a constraint-system solve.
type Result struct {
	// Satisfied has one flag per input equation, in input order.
	Satisfied []bool

	// Vars holds the solved unknowns plus the re-attached pinned
	// values, so downstream consumers see every variable they passed in.
	Vars map[string]float64
}

// Solve minimizes eqs over vars, holding pinned fixed.
//
// With no equations the input variables come back unchanged with an
// empty satisfied list. Unsatisfiable equations are dropped one at a
// time, first unsatisfied first, and marked false in the result.
func Solve(eqs []*expr.Expr, vars, pinned map[string]float64) Result {
	if len(eqs) == 0 {
		return Result{Satisfied: []bool{}, Vars: attach(copyVars(vars), pinned)}
	}

	solved := minimizeOrFallback(eqs, vars, pinned)

	satisfied := make([]bool, len(eqs))
	firstBad := -1
	for i, eq := range eqs {
		satisfied[i] = score(eq, solved) < SatisfiedThreshold
		if !satisfied[i] && firstBad < 0 {
			firstBad = i
		}
	}
	if firstBad < 0 {
		return Result{Satisfied: satisfied, Vars: solved}
	}

	// Drop the first unsatisfied equation and re-solve the remainder,
	// then splice its false flag back into position.
	reduced := make([]*expr.Expr, 0, len(eqs)-1)
	reduced = append(reduced, eqs[:firstBad]...)
	reduced = append(reduced, eqs[firstBad+1:]...)

	sub := Solve(reduced, vars, pinned)
	flags := make([]bool, 0, len(eqs))
	flags = append(flags, sub.Satisfied[:firstBad]...)
	flags = append(flags, false)
	flags = append(flags, sub.Satisfied[firstBad:]...)
	return Result{Satisfied: flags, Vars: sub.Vars}
}

// minimizeOrFallback runs the minimizer and falls back to the input
// variables on failure. The output always contains the pinned values.
func minimizeOrFallback(eqs []*expr.Expr, vars, pinned map[string]float64) map[string]float64 {
	res, err := lm.Minimize(eqs, vars, pinned)
	if err != nil {
		slog.Warn("constraint solve failed, keeping input variables", "error", err)
		return attach(copyVars(vars), pinned)
	}
	return attach(res.Vars, pinned)
}

// score evaluates the squared residual of eq at vars. An equation that
// cannot be evaluated scores as infinitely unsatisfied.
func score(eq *expr.Expr, vars map[string]float64) float64 {
	r, err := eq.EvalDual(vars, nil)
	if err != nil {
		return math.Inf(1)
	}
	return r.Val * r.Val
}

func copyVars(vars map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// attach re-attaches pinned values into out so consumers that supplied
// them still find them after the solve.
func attach(out, pinned map[string]float64) map[string]float64 {
	for k, v := range pinned {
		out[k] = v
	}
	return out
}

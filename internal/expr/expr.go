package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/easel/internal/dual"
)

// Expr is a compiled equation. Compile once when the constraint is
// created; reuse across solver iterations.
type Expr struct {
	text string
	root node
}

// Compile parses equation text into a reusable expression.
func Compile(text string) (*Expr, error) {
	root, err := parse(text)
	if err != nil {
		return nil, err
	}
	return &Expr{text: text, root: root}, nil
}

// MustCompile compiles text and panics on error. For engine-generated
// equations, which are malformed only on a programming error.
func MustCompile(text string) *Expr {
	e, err := Compile(text)
	if err != nil {
		panic(fmt.Sprintf("expr: MustCompile(%q): %v", text, err))
	}
	return e
}

// Text returns the source text of the expression.
func (e *Expr) Text() string { return e.text }

// Vars returns the symbols referenced by the expression, sorted.
func (e *Expr) Vars() []string {
	seen := make(map[string]bool)
	collectSymbols(e.root, seen)
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// EvalDual evaluates the expression against bindings, differentiating
// with respect to unknowns (in order: unknowns[i] owns gradient slot i).
//
// Every symbol in the expression must be present in bindings; symbols
// bound but not listed in unknowns evaluate as constants. A missing
// symbol yields an UnknownVariableError.
func (e *Expr) EvalDual(bindings map[string]float64, unknowns []string) (dual.Num, error) {
	index := make(map[string]int, len(unknowns))
	for i, name := range unknowns {
		index[name] = i
	}
	env := &evalEnv{
		bindings: bindings,
		index:    index,
		width:    len(unknowns),
	}
	return e.root.eval(env)
}

// Evaluate is the one-shot convenience: compile text, differentiate with
// respect to every binding key in sorted order, return value + gradient.
func Evaluate(text string, bindings map[string]float64) (dual.Num, error) {
	e, err := Compile(text)
	if err != nil {
		return dual.Num{}, err
	}
	unknowns := make([]string, 0, len(bindings))
	for name := range bindings {
		unknowns = append(unknowns, name)
	}
	sort.Strings(unknowns)
	return e.EvalDual(bindings, unknowns)
}

// FormatLiteral renders a numeric constant for embedding into equation
// text: 8 decimal places, with negative values written as (0-|v|) so a
// substituted literal never places a bare minus next to an operator.
func FormatLiteral(v float64) string {
	if v < 0 {
		return fmt.Sprintf("(0-%.8f)", math.Abs(v))
	}
	return fmt.Sprintf("%.8f", v)
}

package expr

import (
	"github.com/roach88/easel/internal/dual"
)

// node is the sealed AST interface. Only the node types below implement it.
type node interface {
	eval(env *evalEnv) (dual.Num, error)
}

// evalEnv carries the per-evaluation state: the binding map, the unknown
// ordering, and the gradient width.
type evalEnv struct {
	bindings map[string]float64
	index    map[string]int // unknown name -> gradient slot
	width    int
}

// numberNode is a numeric literal.
type numberNode struct {
	val float64
}

func (n *numberNode) eval(env *evalEnv) (dual.Num, error) {
	return dual.Const(n.val, env.width), nil
}

// symbolNode is a variable reference, resolved against the binding map
// at evaluation time.
type symbolNode struct {
	name string
}

func (n *symbolNode) eval(env *evalEnv) (dual.Num, error) {
	v, ok := env.bindings[n.name]
	if !ok {
		return dual.Num{}, &UnknownVariableError{Name: n.name}
	}
	if i, unknown := env.index[n.name]; unknown {
		return dual.Var(v, i, env.width), nil
	}
	// Bound but not an unknown: a pinned value, evaluated as a constant.
	return dual.Const(v, env.width), nil
}

// binaryNode is one of + - * / ^ **. The ** spelling is normalized to
// "^" by the parser.
type binaryNode struct {
	op   byte // '+', '-', '*', '/', '^'
	l, r node
}

func (n *binaryNode) eval(env *evalEnv) (dual.Num, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return dual.Num{}, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return dual.Num{}, err
	}
	switch n.op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		return l.Div(r), nil
	default: // '^'
		return dual.Pow(l, r), nil
	}
}

// negNode is unary minus.
type negNode struct {
	arg node
}

func (n *negNode) eval(env *evalEnv) (dual.Num, error) {
	a, err := n.arg.eval(env)
	if err != nil {
		return dual.Num{}, err
	}
	return a.Neg(), nil
}

// callNode is a one-argument function call. The function set is
// validated at parse time, so eval never sees an unknown name.
type callNode struct {
	fn  string
	arg node
}

// functions maps callable names to their dual-number implementations.
var functions = map[string]func(dual.Num) dual.Num{
	"sin":  dual.Sin,
	"cos":  dual.Cos,
	"tan":  dual.Tan,
	"asin": dual.Asin,
	"acos": dual.Acos,
	"atan": dual.Atan,
	"exp":  dual.Exp,
	"sqrt": dual.Sqrt,
	"log":  dual.Log,
	"neg":  dual.Num.Neg,
}

func (n *callNode) eval(env *evalEnv) (dual.Num, error) {
	a, err := n.arg.eval(env)
	if err != nil {
		return dual.Num{}, err
	}
	return functions[n.fn](a), nil
}

// collectSymbols appends every symbol name under n into seen.
func collectSymbols(n node, seen map[string]bool) {
	switch t := n.(type) {
	case *symbolNode:
		seen[t.name] = true
	case *binaryNode:
		collectSymbols(t.l, seen)
		collectSymbols(t.r, seen)
	case *negNode:
		collectSymbols(t.arg, seen)
	case *callNode:
		collectSymbols(t.arg, seen)
	}
}

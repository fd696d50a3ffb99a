// Package expr compiles and evaluates the equation mini-language the
// constraint engine emits.
//
// The language is deliberately tiny: decimal literals, bare symbols,
// binary + - * / ^ ** (power is right-associative), unary minus, and
// one-argument calls to sin, cos, tan, asin, acos, atan, exp, sqrt, log,
// and neg, with parenthesized sub-expressions.
//
// An equation is compiled once, when its constraint is created, and the
// resulting Expr is reused for every solver iteration. Evaluation binds
// each unknown to a one-hot dual number so a single pass produces both
// the residual value and its full gradient.
//
// Two failure categories are recoverable by design:
//   - ParseError: malformed equation text. Engine-generated equations
//     never trip this; hand-authored ones can.
//   - UnknownVariableError: a symbol missing from the binding map.
//
// Known values that should not be solved for (pinned variables) are
// simply passed in the binding map without appearing in the unknown
// ordering; they evaluate as constants with a zero gradient. This keeps
// substitution structural — equation text is never rewritten.
package expr

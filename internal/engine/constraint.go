package engine

import (
	"fmt"

	"github.com/roach88/easel/internal/expr"
	"github.com/roach88/easel/internal/shape"
)

// Kind tags a constraint variant.
type Kind string

const (
	KindCoincident Kind = "coincident"
	KindDistance   Kind = "distance"
	KindHorizontal Kind = "horizontal"
	KindVertical   Kind = "vertical"
)

// AnchorRef names one constraint endpoint: a shape and an anchor key on
// it. References resolve against the live anchor catalog at solve time.
type AnchorRef struct {
	Shape string `json:"shape"`
	Key   string `json:"key"`
}

func (r AnchorRef) String() string {
	return r.Shape + "." + r.Key
}

// Constraint relates exactly two anchors (possibly on the same shape).
// It lives in the engine's ordered list until removed.
type Constraint struct {
	ID   string    `json:"id"`
	Kind Kind      `json:"kind"`
	A    AnchorRef `json:"a"`
	B    AnchorRef `json:"b"`

	// Dist is the requested separation; meaningful for KindDistance only.
	Dist float64 `json:"dist,omitempty"`

	// eqs is the compiled equation cache, built once at creation.
	eqs []*expr.Expr
}

// Label renders the constraint for constraint-list UIs.
func (c *Constraint) Label() string {
	if c.Kind == KindDistance {
		return fmt.Sprintf("%s(%s, %s, %.2f)", c.Kind, c.A, c.B, c.Dist)
	}
	return fmt.Sprintf("%s(%s, %s)", c.Kind, c.A, c.B)
}

// varNames returns the symbolic ids for the two anchors. Ids derive
// from sanitized shape names, so two distinct anchors can collide after
// sanitization; the B side gets a suffix in that case to keep ids
// unique within the solve.
func (c *Constraint) varNames() (ida, idb string) {
	ida = shape.AnchorID(c.A.Shape, c.A.Key)
	idb = shape.AnchorID(c.B.Shape, c.B.Key)
	if ida == idb && c.A != c.B {
		idb += "_2"
	}
	return ida, idb
}

// equationTexts formulates the residual equations over the anchor
// coordinate variables. Numeric constants embed via FormatLiteral so a
// negative distance never produces a bare minus inside the text.
func (c *Constraint) equationTexts() []string {
	ida, idb := c.varNames()
	xa, ya := "x"+ida, "y"+ida
	xb, yb := "x"+idb, "y"+idb

	switch c.Kind {
	case KindCoincident:
		return []string{
			fmt.Sprintf("%s - %s", xa, xb),
			fmt.Sprintf("%s - %s", ya, yb),
		}
	case KindDistance:
		return []string{
			fmt.Sprintf("sqrt((%s - %s)^2 + (%s - %s)^2) - %s",
				xa, xb, ya, yb, expr.FormatLiteral(c.Dist)),
		}
	case KindHorizontal:
		return []string{fmt.Sprintf("%s - %s", ya, yb)}
	case KindVertical:
		return []string{fmt.Sprintf("%s - %s", xa, xb)}
	default:
		return nil
	}
}

// compile builds the cached equation set. Engine-generated texts always
// parse; a failure here is a programming error.
func (c *Constraint) compile() {
	texts := c.equationTexts()
	c.eqs = make([]*expr.Expr, len(texts))
	for i, text := range texts {
		c.eqs[i] = expr.MustCompile(text)
	}
}

// equations returns the compiled equation set, building it on first use.
func (c *Constraint) equations() []*expr.Expr {
	if c.eqs == nil {
		c.compile()
	}
	return c.eqs
}

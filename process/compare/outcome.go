package compare

import (
	"fmt"

	"mindbot/pkg/draw"
)

// Outcome is the relation between the left and right operand.
type Outcome int

const (
	Equal Outcome = iota
	GreaterThan
	LessThan
)

// Compare relates a to b.
func Compare(a, b int) Outcome {
	switch {
	case a > b:
		return GreaterThan
	case a < b:
		return LessThan
	default:
		return Equal
	}
}

// Symbol maps the outcome to the sign to draw. Equal has none.
func (o Outcome) Symbol() draw.Symbol {
	switch o {
	case GreaterThan:
		return draw.GreaterThan
	case LessThan:
		return draw.LessThan
	default:
		return draw.None
	}
}

func (o Outcome) String() string {
	switch o {
	case GreaterThan:
		return "greater"
	case LessThan:
		return "less"
	default:
		return "equal"
	}
}

// Pair is an ordered (left, right) operand pair; (3,5) and (5,3) differ.
type Pair struct {
	A, B int
}

func (p Pair) String() string { return fmt.Sprintf("(%d,%d)", p.A, p.B) }

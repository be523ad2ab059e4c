package stelace

import "fmt"

// Operator defines a comparison operator for filtering by column.
// Used both in caller-supplied predicates and in the keyset predicates
// the cursor paginator builds from a decoded anchor.
type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorGTE Operator = ">="
	OperatorLT  Operator = "<"
	OperatorLTE Operator = "<="
	OperatorEQ  Operator = "="
	OperatorIN  Operator = "IN"
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorGTE, OperatorLT, OperatorLTE, OperatorEQ, OperatorIN:
		return true
	default:
		return false
	}
}

// Reverse maps a comparison operator to its mirror: > <-> <, >= <-> <=.
// Reversal changes the direction of traversal, never logical negation,
// so strictness is preserved.
func (o Operator) Reverse() Operator {
	switch o {
	case OperatorGT:
		return OperatorLT
	case OperatorGTE:
		return OperatorLTE
	case OperatorLT:
		return OperatorGT
	case OperatorLTE:
		return OperatorGTE
	default:
		panic(fmt.Errorf("cannot reverse operator '%s'", o))
	}
}

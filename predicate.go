package stelace

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// Predicate is a single column comparison of the form Operator(Column, Value).
type Predicate struct {
	Column   string
	Operator Operator
	Value    any
}

// toExpression renders the predicate as a gorm clause with a "?"
// placeholder, e.g. {id, >, 5} -> "id > ?" bound to 5.
func (p Predicate) toExpression() clause.Expression {
	sqlClause, arg := p.toSQL()

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

func (p Predicate) toSQL() (string, driver.Value) {
	return fmt.Sprintf("%s %s ?", p.Column, p.Operator), p.Value
}

type (
	// predicateGroup is a list of predicates joined by AND.
	predicateGroup []Predicate

	// orPredicates is a list of groups joined by OR:
	//
	//	(A11 AND A12) OR (A21 AND A22 AND A23)
	//
	// This is the disjunctive normal form a keyset predicate expands to.
	orPredicates []predicateGroup
)

func (g predicateGroup) toExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(g))
	for _, p := range g {
		andExpressions = append(andExpressions, p.toExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

func (g predicateGroup) toSQLClause() (string, []driver.Value) {
	andClauses := make([]string, 0, len(g))
	andValues := make([]driver.Value, 0, len(g))

	for _, p := range g {
		andClause, andValue := p.toSQL()
		andClauses = append(andClauses, andClause)
		andValues = append(andValues, andValue)
	}

	if len(andClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
	}

	return "", nil
}

func (o orPredicates) toExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(o))

	for _, group := range o {
		groupExpression := group.toExpression()
		if groupExpression == nil {
			continue
		}

		orExpressions = append(orExpressions, groupExpression)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}

func (o orPredicates) toSQLClause() (string, []driver.Value) {
	orClauses := make([]string, 0, len(o))
	values := make([]driver.Value, 0, len(o))

	for _, group := range o {
		orClause, orValues := group.toSQLClause()
		if orClause == "" {
			continue
		}

		orClauses = append(orClauses, orClause)
		values = append(values, orValues...)
	}

	if len(orClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(orClauses, " OR ")), values
	}

	return "TRUE", nil
}

// anchorPredicate expands an anchor into the WHERE clause selecting
// rows strictly past it in the requested traversal order. For a
// two-key spec in ascending order:
//
//	(k1 > a1) OR (k1 = a1 AND k2 >= a2)
//
// The primary key comparison is strict; the last key is inclusive so a
// record equal to the anchor on the primary key but at or past it on
// the secondary key stays reachable. The inclusive comparison also lets
// the anchor row itself resurface transiently, which is how the pager
// detects a neighboring page without an extra lookup. A single-key spec
// uses the inclusive operator directly for the same reason.
//
// When reversed, every operator is swapped with its mirror: traversal
// direction changes, logical meaning does not.
func anchorPredicate(spec SortKeySpec, a anchor, direction Direction, reversed bool) orPredicates {
	last := len(spec) - 1
	ret := make(orPredicates, 0, len(spec))

	for i := range spec {
		op := direction.StrictOperator()
		if i == last {
			op = direction.InclusiveOperator()
		}
		if reversed {
			op = op.Reverse()
		}

		group := make(predicateGroup, 0, i+1)
		for j := 0; j < i; j++ {
			group = append(group, Predicate{Column: spec[j].Column, Operator: OperatorEQ, Value: a[j]})
		}
		group = append(group, Predicate{Column: spec[i].Column, Operator: op, Value: a[i]})

		ret = append(ret, group)
	}

	return ret
}

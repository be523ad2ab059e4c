package stelace

import (
	"context"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is an immutable description of a relational read: a base GORM
// handle (model/table and caller filters already applied) plus explicit
// predicates, ordering and bounds. Deriving methods return a copy, so a
// count query and a page query built from the same Query never share
// builder state. Execution opens a fresh GORM session per call, which
// keeps concurrent reads off shared statement state.
type Query struct {
	db     *gorm.DB
	conds  []clause.Expression
	order  Orderings
	limit  int
	offset int
}

// NewQuery wraps a prepared GORM handle. The handle should carry the
// model or table plus any business filters; pagination adds ordering
// and bounds on top.
func NewQuery(db *gorm.DB) Query {
	return Query{db: db}
}

// Clone returns a structural copy sharing nothing mutable with q.
func (q Query) Clone() Query {
	q.conds = slices.Clone(q.conds)
	q.order = slices.Clone(q.order)

	return q
}

// Where appends predicates joined by AND.
func (q Query) Where(preds ...Predicate) Query {
	exprs := make([]clause.Expression, 0, len(preds))
	for _, p := range preds {
		exprs = append(exprs, p.toExpression())
	}

	return q.withExpressions(exprs...)
}

// WhereAny appends an OR-grouped predicate: each group is joined by
// AND, groups are joined by OR.
func (q Query) WhereAny(groups ...[]Predicate) Query {
	or := make(orPredicates, 0, len(groups))
	for _, g := range groups {
		or = append(or, predicateGroup(g))
	}

	expr := or.toExpression()
	if expr == nil {
		return q
	}

	return q.withExpressions(expr)
}

func (q Query) withExpressions(exprs ...clause.Expression) Query {
	q.conds = append(slices.Clone(q.conds), exprs...)
	return q
}

// OrderedBy replaces the ordering.
func (q Query) OrderedBy(order ...OrderBy) Query {
	q.order = slices.Clone(order)
	return q
}

// WithLimit bounds the result set. Zero or negative means unbounded.
func (q Query) WithLimit(limit int) Query {
	q.limit = limit
	return q
}

// WithOffset skips the first offset rows. Zero or negative means none.
func (q Query) WithOffset(offset int) Query {
	q.offset = offset
	return q
}

// session compiles the description into a fresh GORM session.
func (q Query) session(ctx context.Context) *gorm.DB {
	db := q.db.WithContext(ctx).Session(&gorm.Session{})

	if len(q.conds) > 0 {
		db = db.Clauses(q.conds...)
	}
	if len(q.order) > 0 {
		db = q.order.Apply(db)
	}
	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	if q.offset > 0 {
		db = db.Offset(q.offset)
	}

	return db
}

// Find executes the described read into dest. Underlying storage errors
// propagate unchanged; retries, if any, belong to the data-access layer.
func (q Query) Find(ctx context.Context, dest any) error {
	return q.session(ctx).Find(dest).Error
}

// Count executes the aggregate count for the filtered set. Ordering and
// bounds are stripped: the count describes the pre-pagination row set.
func (q Query) Count(ctx context.Context) (int64, error) {
	stripped := q
	stripped.order = nil
	stripped.limit = 0
	stripped.offset = 0

	var total int64
	err := stripped.session(ctx).Count(&total).Error

	return total, err
}

package stelace

import (
	"context"
	"fmt"
)

// RawCursorRequest is intended for API payloads. For proper code
// generation, inline it:
//
//	type ListAssetsRequest struct {
//	    Paging RawCursorRequest `json:",inline"`
//	}
//
// StartingAfter and EndingBefore are pointers so "present but empty"
// stays distinguishable from "absent": an empty endingBefore requests
// the last page of the dataset with no anchor.
type RawCursorRequest struct {
	// StartingAfter - cursor obtained from a previous page's EndCursor.
	StartingAfter *Cursor `json:"startingAfter,omitempty"`
	// EndingBefore - cursor obtained from a previous page's StartCursor.
	EndingBefore *Cursor `json:"endingBefore,omitempty"`
	// NbResultsPerPage - maximum number of records returned per page.
	NbResultsPerPage int `json:"nbResultsPerPage"`
	// Order - requested logical order, "asc" or "desc".
	Order string `json:"order"`
}

// Decode converts RawCursorRequest into *CursorPager, applying the
// validation-layer normalization the pager itself refuses to do:
// limit clamping and order parsing.
func (r RawCursorRequest) Decode(spec SortKeySpec) (*CursorPager, error) {
	direction := DirectionASC
	if r.Order != "" {
		var err error
		direction, err = ParseDirection(r.Order)
		if err != nil {
			return nil, err
		}
	}

	p := NewCursorPager(spec).
		WithLimit(NormalizeLimit(r.NbResultsPerPage)).
		WithDirection(direction)
	if r.StartingAfter != nil {
		p = p.StartingAfter(*r.StartingAfter)
	}
	if r.EndingBefore != nil {
		p = p.EndingBefore(*r.EndingBefore)
	}

	return p, nil
}

// CursorPager describes one keyset-paginated read: the sort key spec,
// the requested logical order, the page size and at most one anchor
// cursor. It is stateless across calls; the cursor token is the only
// state carried between pages and the client owns it.
type CursorPager struct {
	startingAfter *Cursor
	endingBefore  *Cursor
	limit         int
	direction     Direction
	spec          SortKeySpec
}

func NewCursorPager(spec SortKeySpec) *CursorPager {
	return &CursorPager{
		limit:     DefaultLimit,
		direction: DirectionASC,
		spec:      spec,
	}
}

// WithLimit sets the maximum number of returned records. The value is
// stored as-is; Paginate fails fast on a limit outside [1, MaxLimit]
// instead of coercing it.
func (c *CursorPager) WithLimit(limit int) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.limit = limit

	return c
}

// WithDirection sets the requested logical order of the results.
func (c *CursorPager) WithDirection(direction Direction) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.direction = direction

	return c
}

// StartingAfter anchors the page right after cursor in the requested
// order. Mutually exclusive with EndingBefore.
func (c *CursorPager) StartingAfter(cursor Cursor) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.startingAfter = &cursor

	return c
}

// EndingBefore anchors the page right before cursor in the requested
// order. An empty cursor requests the dataset's last page. Mutually
// exclusive with StartingAfter.
func (c *CursorPager) EndingBefore(cursor Cursor) *CursorPager {
	if c == nil {
		c = new(CursorPager)
	}

	c.endingBefore = &cursor

	return c
}

func (c *CursorPager) validate() error {
	if c == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	if c.startingAfter != nil && c.endingBefore != nil {
		return fmt.Errorf("%w: startingAfter and endingBefore are mutually exclusive", ErrContractViolation)
	}

	if !validLimit(c.limit) {
		return fmt.Errorf("%w: nbResultsPerPage %d outside [1, %d]", ErrContractViolation, c.limit, MaxLimit)
	}

	if !c.direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", c.direction)
	}

	return c.spec.validate()
}

func checkGetters[T any](spec SortKeySpec, getters Getters[T]) error {
	for _, key := range spec {
		if _, ok := getters[key.Column]; !ok {
			return fmt.Errorf("%w: no getter for sort column '%s'", ErrContractViolation, key.Column)
		}
	}

	return nil
}

// PaginateCursor executes keyset pagination over the query and returns
// the page in the requested logical order plus boundary metadata.
//
// The query arrives with business filters applied but no ordering or
// bounds; the pager adds the anchor predicate, the ORDER BY derived
// from the sort key spec and an over-fetched limit, then resolves the
// fetched rows into the page via resolveWindow. A single query is
// issued per call.
func PaginateCursor[T any](ctx context.Context, q Query, p *CursorPager, getters Getters[T]) (*CursorPage[T], error) {
	err := p.validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	err = checkGetters(p.spec, getters)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	reversed := p.endingBefore != nil

	token := p.startingAfter
	if token == nil {
		token = p.endingBefore
	}

	var a anchor
	if token != nil && !token.IsEmpty() {
		a, err = DecodeCursor(*token, p.spec)
		if err != nil {
			return nil, err
		}
	}

	queryDirection := p.direction
	if reversed {
		queryDirection = p.direction.Reverse()
	}

	if a != nil {
		predicate := anchorPredicate(p.spec, a, p.direction, reversed)
		q = q.withExpressions(predicate.toExpression())
	}
	q = q.OrderedBy(p.spec.Orderings(queryDirection)...).
		WithLimit(p.limit + overFetchCount)

	var rows []T
	if err = q.Find(ctx, &rows); err != nil {
		return nil, err
	}

	w := resolveWindow(rows, a, p.spec, getters, p.limit, reversed)

	page := &CursorPage[T]{
		Results:          w.items,
		HasPreviousPage:  w.hasPrev,
		HasNextPage:      w.hasNext,
		NbResultsPerPage: p.limit,
	}
	if page.Results == nil {
		page.Results = []T{}
	}

	if len(w.items) > 0 {
		start, err := EncodeRecord(w.items[0], p.spec, getters)
		if err != nil {
			return nil, err
		}
		end, err := EncodeRecord(w.items[len(w.items)-1], p.spec, getters)
		if err != nil {
			return nil, err
		}

		page.StartCursor = &start
		page.EndCursor = &end
	}

	return page, nil
}

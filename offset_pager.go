package stelace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RawOffsetRequest is intended for API payloads, inline it the same way
// as RawCursorRequest. OrderBy holds an external column alias resolved
// through a ColumnMapping at decode time.
type RawOffsetRequest struct {
	Page             int    `json:"page"`
	NbResultsPerPage int    `json:"nbResultsPerPage"`
	OrderBy          string `json:"orderBy"`
	Order            string `json:"order"`
}

// Decode converts RawOffsetRequest into *OffsetPager, normalizing page
// and limit and resolving the orderBy alias via columnMapping. An
// unknown alias is rejected with the closest known one suggested.
func (r RawOffsetRequest) Decode(columnMapping ColumnMapping) (*OffsetPager, error) {
	order := r.Order
	if order == "" {
		order = string(DirectionASC)
	}

	orderings, err := ParseSort([]string{r.OrderBy + " " + order}, columnMapping)
	if err != nil {
		return nil, err
	}

	page := r.Page
	if page < 1 {
		page = 1
	}

	return NewOffsetPager().
		WithPage(page).
		WithLimit(NormalizeLimit(r.NbResultsPerPage)).
		OrderedBy(orderings[0].Column, orderings[0].Direction), nil
}

// OffsetPager describes one page/count-paginated read.
type OffsetPager struct {
	page      int
	limit     int
	orderBy   string
	direction Direction
	skipOrder bool
}

func NewOffsetPager() *OffsetPager {
	return &OffsetPager{
		page:      1,
		limit:     DefaultLimit,
		direction: DirectionASC,
	}
}

// WithPage sets the 1-based page number.
func (p *OffsetPager) WithPage(page int) *OffsetPager {
	if p == nil {
		p = NewOffsetPager()
	}

	p.page = page

	return p
}

// WithLimit sets the page size. Range checking is owned by the request
// validation layer and is not repeated here.
func (p *OffsetPager) WithLimit(limit int) *OffsetPager {
	if p == nil {
		p = NewOffsetPager()
	}

	p.limit = limit

	return p
}

// OrderedBy sets the ordering applied to the bounded query.
func (p *OffsetPager) OrderedBy(column string, direction Direction) *OffsetPager {
	if p == nil {
		p = NewOffsetPager()
	}

	p.orderBy = column
	p.direction = direction
	p.skipOrder = false

	return p
}

// WithoutOrder leaves the query's own ordering untouched. Use it when
// the caller already ordered the query.
func (p *OffsetPager) WithoutOrder() *OffsetPager {
	if p == nil {
		p = NewOffsetPager()
	}

	p.skipOrder = true

	return p
}

func (p *OffsetPager) validate() error {
	if p == nil {
		return fmt.Errorf("offset pager is nil")
	}

	if p.page < 1 {
		return fmt.Errorf("%w: page %d below 1", ErrContractViolation, p.page)
	}

	if !p.skipOrder {
		if p.orderBy == "" {
			return fmt.Errorf("%w: ordering column required unless WithoutOrder is set", ErrContractViolation)
		}

		return (OrderBy{Column: p.orderBy, Direction: p.direction}).validate()
	}

	return nil
}

// PaginateOffset executes page/count pagination over the query.
//
// The incoming query is cloned before any mutation: the clone runs the
// aggregate count over the original filters while the primary copy gets
// ordering and bounds. The two reads are independent and are issued
// concurrently, joined before the envelope is produced.
func PaginateOffset[T any](ctx context.Context, q Query, p *OffsetPager) (*OffsetPage[T], error) {
	err := p.validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	countQuery := q.Clone()

	dataQuery := q
	if !p.skipOrder {
		dataQuery = dataQuery.OrderedBy(OrderBy{Column: p.orderBy, Direction: p.direction})
	}
	dataQuery = dataQuery.
		WithOffset((p.page - 1) * p.limit).
		WithLimit(p.limit)

	var (
		results []T
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var countErr error
		total, countErr = countQuery.Count(gctx)
		return countErr
	})
	g.Go(func() error {
		return dataQuery.Find(gctx, &results)
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	if results == nil {
		results = []T{}
	}

	return &OffsetPage[T]{
		Results:          results,
		NbResults:        total,
		NbPages:          pageCount(total, p.limit),
		Page:             p.page,
		NbResultsPerPage: p.limit,
	}, nil
}

// pageCount computes ceil(total/limit) in integer arithmetic: floor
// division plus a carry on remainder. Very large counts never go
// through a float or a platform-sized int. An empty dataset yields
// zero pages.
func pageCount(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	return pages
}

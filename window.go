package stelace

import (
	"slices"

	"github.com/samber/lo"
)

// overFetchCount is the number of rows requested beyond the page size:
// one slot to detect a page past this one, one for the anchor row
// resurfacing through the inclusive tie-break of anchorPredicate.
const overFetchCount = 2

// pageWindow is the outcome of resolving an over-fetched row set into a
// client-facing page.
type pageWindow[T any] struct {
	items   []T
	hasPrev bool
	hasNext bool
}

// resolveWindow turns the raw fetched rows into the page the client
// sees. On the untrimmed set it partitions rows into the anchor itself
// and the rest, derives the page-existence flags, then removes the
// anchor, truncates to limit and, when the query ran in mirrored order,
// flips the remainder back into the requested logical order.
//
// Flag semantics on the fetched set:
//   - anchored, forward: hasPrev = anchor resurfaced, hasNext = more
//     rows than fit the page;
//   - anchored, backward: mirrored;
//   - no anchor: only the far side can be detected by over-fetch, the
//     near side is the dataset edge.
func resolveWindow[T any](rows []T, a anchor, spec SortKeySpec, getters Getters[T], limit int, reversed bool) pageWindow[T] {
	others := rows
	anchorSeen := false

	if a != nil {
		others = make([]T, 0, len(rows))
		for _, row := range rows {
			if a.matches(recordValues(row, spec, getters), spec) {
				anchorSeen = true
				continue
			}
			others = append(others, row)
		}
	}

	overflow := len(others) > limit

	var w pageWindow[T]
	if a != nil {
		w.hasPrev = lo.Ternary(reversed, overflow, anchorSeen)
		w.hasNext = lo.Ternary(reversed, anchorSeen, overflow)
	} else {
		w.hasPrev = reversed && overflow
		w.hasNext = !reversed && overflow
	}

	if overflow {
		others = others[:limit]
	}
	if reversed {
		slices.Reverse(others)
	}
	w.items = others

	return w
}

package stelace

// Package stelace implements the pagination engine of the Stelace API:
// bounded, ordered result sets plus metadata describing available pages,
// on top of GORM queries.
//
// Overview
//
// Two independent strategies share the Query abstraction and the page
// envelope shapes:
//   - Offset pagination: classic page/count. PaginateOffset runs the
//     total-count query and the bounded query concurrently and returns
//     an OffsetPage with nbResults/nbPages metadata.
//   - Cursor pagination: keyset seeking from an opaque anchor token.
//     PaginateCursor builds a comparison predicate from the decoded
//     cursor, over-fetches to detect neighboring pages without a count
//     query, and returns a CursorPage with hasPreviousPage/hasNextPage
//     and fresh start/end cursors.
//
// Key concepts
//   - Query: an immutable description of a relational read (predicates,
//     ordering, bounds) cloned by value, so the count and data queries
//     never share builder state.
//   - SortKeySpec: the one- or two-column typed ordering that both the
//     ORDER BY and the cursor token are interpreted against.
//   - Getters: maps sort columns to record values when emitting cursors.
//
// The engine assumes an already-validated pagination request: schema
// validation, transport concerns and response shaping are owned by the
// surrounding API layers.

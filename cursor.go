package stelace

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

var _encoder = base64.RawURLEncoding

// Cursor is an opaque, URL-safe pagination token. It encodes a snapshot
// of the sort-key values taken from one result record (the anchor) and
// is the only state carried between cursor-paginated calls; the client
// holds it, the server never persists it.
//
// Two cursors encoding equal tuples need not be byte-identical. The only
// contract is that DecodeCursor round-trips the typed tuple.
type Cursor string

func (c Cursor) IsEmpty() bool {
	return len(c) == 0
}

// Getters maps sort columns to value accessors for a record type.
// Declare the columns pagination is based on. Example:
//
//	stelace.Getters[Asset]{
//		"created_date": func(a Asset) any { return a.CreatedDate },
//		"id":           func(a Asset) any { return a.ID },
//	}
type Getters[T any] map[string]func(T) any

// anchor is the decoded form of a cursor: one typed value per sort key,
// in spec order.
type anchor []any

// matches reports whether row sits exactly at the anchor on every key.
func (a anchor) matches(values []any, spec SortKeySpec) bool {
	if len(a) != len(spec) || len(values) != len(spec) {
		return false
	}

	for i, key := range spec {
		if !equalValue(key.Type, a[i], values[i]) {
			return false
		}
	}

	return true
}

// EncodeRecord builds the cursor anchored at rec. The token body is
// compact JSON keyed by column, base64-encoded with a URL-safe alphabet.
func EncodeRecord[T any](rec T, spec SortKeySpec, getters Getters[T]) (Cursor, error) {
	payload := make(map[string]any, len(spec))
	for _, key := range spec {
		getter, ok := getters[key.Column]
		if !ok {
			return "", fmt.Errorf("cannot find getter for column '%s'", key.Column)
		}

		value, err := canonicalValue(key.Type, getter(rec))
		if err != nil {
			return "", fmt.Errorf("cannot encode cursor value for column '%s': %w", key.Column, err)
		}
		payload[key.Column] = value
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cannot marshal cursor payload: %w", err)
	}

	return Cursor(_encoder.EncodeToString(jsonData)), nil
}

// DecodeCursor parses a token against the sort key spec it was issued
// for. Every failure mode wraps ErrInvalidCursor: malformed base64 or
// JSON, a key count mismatch, a key missing from the payload, or a
// value that does not parse as its declared type.
func DecodeCursor(c Cursor, spec SortKeySpec) (anchor, error) {
	jsonData, err := _encoder.DecodeString(string(c))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %v", ErrInvalidCursor, err)
	}

	var payload map[string]json.RawMessage
	if err = json.Unmarshal(jsonData, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor: %v", ErrInvalidCursor, err)
	}

	if len(payload) != len(spec) {
		return nil, fmt.Errorf("%w: cursor column number mismatch", ErrInvalidCursor)
	}

	ret := make(anchor, 0, len(spec))
	for _, key := range spec {
		raw, ok := payload[key.Column]
		if !ok {
			return nil, fmt.Errorf("%w: cursor misses value for column '%s'", ErrInvalidCursor, key.Column)
		}

		value, err := parseValue(key.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: cursor value for column '%s': %v", ErrInvalidCursor, key.Column, err)
		}
		ret = append(ret, value)
	}

	return ret, nil
}

// recordValues extracts the sort-key values of rec in spec order.
// Getter presence is validated by the paginator before any query runs.
func recordValues[T any](rec T, spec SortKeySpec, getters Getters[T]) []any {
	values := make([]any, 0, len(spec))
	for _, key := range spec {
		values = append(values, getters[key.Column](rec))
	}

	return values
}

package stelace

import "fmt"

// SortKeyType declares how a cursor value for a column is encoded,
// decoded and compared.
type SortKeyType string

const (
	SortKeyNumber  SortKeyType = "number"
	SortKeyBoolean SortKeyType = "boolean"
	SortKeyDate    SortKeyType = "date"
	SortKeyString  SortKeyType = "string"
)

func (t SortKeyType) Valid() bool {
	switch t {
	case SortKeyNumber, SortKeyBoolean, SortKeyDate, SortKeyString:
		return true
	default:
		return false
	}
}

// SortKey is one column of the total order a cursor is interpreted
// against.
type SortKey struct {
	Column string      `json:"property"`
	Type   SortKeyType `json:"type"`
}

// SortKeySpec is the one- or two-column ordering definition shared by
// the ORDER BY clause and the cursor codec. It must match an ordering
// the underlying store can evaluate efficiently and is immutable for
// the duration of a request.
//
// A single-key spec over a column with duplicate values is ambiguous at
// page boundaries: rows sharing the anchor value may be skipped or
// repeated. Add a unique secondary key (typically id) when the primary
// column is not unique; this is a known limitation of 1-key cursors,
// not something the engine corrects.
type SortKeySpec []SortKey

func (s SortKeySpec) validate() error {
	if len(s) < 1 || len(s) > 2 {
		return fmt.Errorf("sort key spec must contain one or two keys, got %d", len(s))
	}

	for _, key := range s {
		if key.Column == "" {
			return fmt.Errorf("sort key column must not be empty")
		}

		if !key.Type.Valid() {
			return fmt.Errorf("invalid sort key type '%s' for column '%s'", key.Type, key.Column)
		}

		err := (OrderBy{Column: key.Column, Direction: DirectionASC}).validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// Orderings derives the ORDER BY list for the spec in the given
// direction. Every key follows the same direction: the requested one,
// or its mirror while traversing backward.
func (s SortKeySpec) Orderings(direction Direction) Orderings {
	ret := make(Orderings, 0, len(s))
	for _, key := range s {
		ret = append(ret, OrderBy{Column: key.Column, Direction: direction})
	}

	return ret
}

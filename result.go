package stelace

// OffsetPage is the result envelope for page/count pagination. Results
// stays separable from the metadata: response shaping for older API
// versions may strip the envelope and return Results alone.
type OffsetPage[T any] struct {
	Results          []T   `json:"results"`
	NbResults        int64 `json:"nbResults"`
	NbPages          int64 `json:"nbPages"`
	Page             int   `json:"page"`
	NbResultsPerPage int   `json:"nbResultsPerPage"`
}

// CursorPage is the result envelope for keyset pagination. StartCursor
// and EndCursor are nil (JSON null) when the page is empty.
type CursorPage[T any] struct {
	Results          []T     `json:"results"`
	HasPreviousPage  bool    `json:"hasPreviousPage"`
	HasNextPage      bool    `json:"hasNextPage"`
	StartCursor      *Cursor `json:"startCursor"`
	EndCursor        *Cursor `json:"endCursor"`
	NbResultsPerPage int     `json:"nbResultsPerPage"`
}

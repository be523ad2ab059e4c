package stelace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tListingSpec = SortKeySpec{
	{Column: "created_date", Type: SortKeyDate},
	{Column: "id", Type: SortKeyNumber},
}

func tListingDate(id int64) time.Time {
	return time.Date(2023, 6, 2, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute)
}

func tListingRows(ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "created_date"})
	for _, id := range ids {
		rows.AddRow(id, tListingDate(id))
	}

	return rows
}

func tListingIDs(items []tAsset) []int64 {
	ret := make([]int64, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.ID)
	}

	return ret
}

func Test_CursorPager_validate(t *testing.T) {
	spec := tListingSpec

	tests := []struct {
		name     string
		pager    *CursorPager
		wantErr  bool
		contract bool
	}{
		{
			name:  "standard case, ok",
			pager: NewCursorPager(spec).WithLimit(20).WithDirection(DirectionDESC),
		},
		{
			name:  "anchored case, ok",
			pager: NewCursorPager(spec).WithLimit(20).StartingAfter(Cursor("token")),
		},
		{
			name:     "both cursors are mutually exclusive",
			pager:    NewCursorPager(spec).StartingAfter(Cursor("a")).EndingBefore(Cursor("b")),
			wantErr:  true,
			contract: true,
		},
		{
			name:     "limit below one",
			pager:    NewCursorPager(spec).WithLimit(0),
			wantErr:  true,
			contract: true,
		},
		{
			name:     "limit above maximum",
			pager:    NewCursorPager(spec).WithLimit(MaxLimit + 1),
			wantErr:  true,
			contract: true,
		},
		{
			name:    "invalid direction",
			pager:   NewCursorPager(spec).WithDirection("sideways"),
			wantErr: true,
		},
		{
			name:    "spec missing",
			pager:   NewCursorPager(nil),
			wantErr: true,
		},
		{
			name:    "nil pager is invalid",
			pager:   (*CursorPager)(nil),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr := tt.pager.validate()
			if (gotErr != nil) != tt.wantErr {
				t.Fatalf("%s: got error = %v, want error = %v", tt.name, gotErr, tt.wantErr)
			}
			if tt.contract && !errors.Is(gotErr, ErrContractViolation) {
				t.Errorf("%s: want ErrContractViolation, got %v", tt.name, gotErr)
			}
		})
	}
}

// 25 records ordered by created_date desc, 20 per page: the first page
// reports a next page, its end cursor fetches the remaining 5.
func Test_PaginateCursor_ForwardScenario(t *testing.T) {
	for _, mockFn := range _gormMocks {
		dialect, db, mock, err := mockFn()
		t.Run(fmt.Sprintf("%s forward scenario", dialect), func(t *testing.T) {
			require.NoError(t, err)

			// Page 1: no anchor, over-fetch 20+2, dataset has 25 rows.
			firstPage := tListingRows()
			for id := int64(25); id >= 4; id-- {
				firstPage.AddRow(id, tListingDate(id))
			}
			mock.ExpectQuery(
				"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' " +
					"ORDER BY created_date DESC, id DESC LIMIT 22$",
			).WillReturnRows(firstPage)

			// Page 2: anchored right after record 6, inclusive on id so the
			// anchor row resurfaces.
			mock.ExpectQuery(
				"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' AND " +
					"\\(created_date < (?:\\$\\d+|\\?) OR \\(created_date = (?:\\$\\d+|\\?) AND id <= (?:\\$\\d+|\\?)\\)\\) " +
					"ORDER BY created_date DESC, id DESC LIMIT 22$",
			).WillReturnRows(tListingRows(6, 5, 4, 3, 2, 1))

			q := NewQuery(db.Select("*").Table("listings").Where("status = 'active'"))

			pagerOne := NewCursorPager(tListingSpec).WithLimit(20).WithDirection(DirectionDESC)
			pageOne, err := PaginateCursor(context.Background(), q, pagerOne, tAssetGetters)
			require.NoError(t, err)

			require.Len(t, pageOne.Results, 20)
			require.EqualValues(t, 25, pageOne.Results[0].ID)
			require.EqualValues(t, 6, pageOne.Results[19].ID)
			require.True(t, pageOne.HasNextPage)
			require.False(t, pageOne.HasPreviousPage)
			require.NotNil(t, pageOne.StartCursor)
			require.NotNil(t, pageOne.EndCursor)

			pagerTwo := NewCursorPager(tListingSpec).
				WithLimit(20).
				WithDirection(DirectionDESC).
				StartingAfter(*pageOne.EndCursor)
			pageTwo, err := PaginateCursor(context.Background(), q, pagerTwo, tAssetGetters)
			require.NoError(t, err)

			require.Equal(t, []int64{5, 4, 3, 2, 1}, tListingIDs(pageTwo.Results))
			require.False(t, pageTwo.HasNextPage)
			require.True(t, pageTwo.HasPreviousPage)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Paginating backward from the second page reconstructs the first page
// in the requested logical order.
func Test_PaginateCursor_BackwardSymmetry(t *testing.T) {
	for _, mockFn := range _gormMocks {
		dialect, db, mock, err := mockFn()
		t.Run(fmt.Sprintf("%s backward symmetry", dialect), func(t *testing.T) {
			require.NoError(t, err)

			// Requested order is desc, traversal is backward, so the query
			// runs mirrored: ascending with mirrored operators.
			ascRows := tListingRows()
			for id := int64(5); id <= 25; id++ {
				ascRows.AddRow(id, tListingDate(id))
			}
			mock.ExpectQuery(
				"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' AND " +
					"\\(created_date > (?:\\$\\d+|\\?) OR \\(created_date = (?:\\$\\d+|\\?) AND id >= (?:\\$\\d+|\\?)\\)\\) " +
					"ORDER BY created_date ASC, id ASC LIMIT 22$",
			).WillReturnRows(ascRows)

			anchorCursor, err := EncodeRecord(tAsset{ID: 5, CreatedDate: tListingDate(5)}, tListingSpec, tAssetGetters)
			require.NoError(t, err)

			q := NewQuery(db.Select("*").Table("listings").Where("status = 'active'"))
			pager := NewCursorPager(tListingSpec).
				WithLimit(20).
				WithDirection(DirectionDESC).
				EndingBefore(anchorCursor)

			page, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
			require.NoError(t, err)

			// Identical to forward page 1: ids 25..6 in desc order.
			require.Len(t, page.Results, 20)
			require.EqualValues(t, 25, page.Results[0].ID)
			require.EqualValues(t, 6, page.Results[19].ID)
			require.True(t, page.HasNextPage)
			require.False(t, page.HasPreviousPage)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// An empty endingBefore requests the dataset's last page: mirrored
// fetch, no anchor predicate.
func Test_PaginateCursor_LastPageWithoutAnchor(t *testing.T) {
	for _, mockFn := range _gormMocks {
		dialect, db, mock, err := mockFn()
		t.Run(fmt.Sprintf("%s last page", dialect), func(t *testing.T) {
			require.NoError(t, err)

			ascRows := tListingRows()
			for id := int64(1); id <= 22; id++ {
				ascRows.AddRow(id, tListingDate(id))
			}
			mock.ExpectQuery(
				"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' " +
					"ORDER BY created_date ASC, id ASC LIMIT 22$",
			).WillReturnRows(ascRows)

			q := NewQuery(db.Select("*").Table("listings").Where("status = 'active'"))
			pager := NewCursorPager(tListingSpec).
				WithLimit(20).
				WithDirection(DirectionDESC).
				EndingBefore(Cursor(""))

			page, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
			require.NoError(t, err)

			require.Len(t, page.Results, 20)
			require.EqualValues(t, 20, page.Results[0].ID)
			require.EqualValues(t, 1, page.Results[19].ID)
			require.True(t, page.HasPreviousPage)
			require.False(t, page.HasNextPage)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func Test_PaginateCursor_EmptyDataset(t *testing.T) {
	_, db, mock, err := newGORMPostgresMock()
	require.NoError(t, err)

	mock.ExpectQuery(
		"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' " +
			"ORDER BY created_date ASC, id ASC LIMIT 22$",
	).WillReturnRows(tListingRows())

	q := NewQuery(db.Select("*").Table("listings").Where("status = 'active'"))
	pager := NewCursorPager(tListingSpec).WithLimit(20).WithDirection(DirectionASC)

	page, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
	require.NoError(t, err)

	require.NotNil(t, page.Results)
	require.Empty(t, page.Results)
	require.False(t, page.HasNextPage)
	require.False(t, page.HasPreviousPage)
	require.Nil(t, page.StartCursor)
	require.Nil(t, page.EndCursor)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// An anchor pointing past the end of the data yields an empty page and
// no next page.
func Test_PaginateCursor_AnchorPastEnd(t *testing.T) {
	_, db, mock, err := newGORMPostgresMock()
	require.NoError(t, err)

	mock.ExpectQuery(
		"^SELECT \\* FROM [`'\"]listings[`'\"] WHERE status = 'active' AND " +
			"\\(created_date > (?:\\$\\d+|\\?) OR \\(created_date = (?:\\$\\d+|\\?) AND id >= (?:\\$\\d+|\\?)\\)\\) " +
			"ORDER BY created_date ASC, id ASC LIMIT 7$",
	).WillReturnRows(tListingRows())

	anchorCursor, err := EncodeRecord(tAsset{ID: 99, CreatedDate: tListingDate(99)}, tListingSpec, tAssetGetters)
	require.NoError(t, err)

	q := NewQuery(db.Select("*").Table("listings").Where("status = 'active'"))
	pager := NewCursorPager(tListingSpec).
		WithLimit(5).
		WithDirection(DirectionASC).
		StartingAfter(anchorCursor)

	page, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
	require.NoError(t, err)

	require.Empty(t, page.Results)
	require.False(t, page.HasNextPage)
	require.False(t, page.HasPreviousPage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PaginateCursor_Failures(t *testing.T) {
	_, db, _, err := newGORMPostgresMock()
	require.NoError(t, err)

	q := NewQuery(db.Select("*").Table("listings"))

	t.Run("both cursors rejected", func(t *testing.T) {
		pager := NewCursorPager(tListingSpec).
			StartingAfter(Cursor("a")).
			EndingBefore(Cursor("b"))

		_, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
		require.True(t, errors.Is(err, ErrContractViolation))
	})

	t.Run("malformed token fails whole operation", func(t *testing.T) {
		pager := NewCursorPager(tListingSpec).StartingAfter(Cursor("%%%"))

		_, err := PaginateCursor(context.Background(), q, pager, tAssetGetters)
		require.True(t, errors.Is(err, ErrInvalidCursor))
	})

	t.Run("missing getter rejected before querying", func(t *testing.T) {
		pager := NewCursorPager(tListingSpec).WithLimit(5)

		_, err := PaginateCursor(context.Background(), q, pager, Getters[tAsset]{
			"created_date": func(a tAsset) any { return a.CreatedDate },
		})
		require.True(t, errors.Is(err, ErrContractViolation))
	})
}

func Test_PaginateCursor_PropagatesStorageErrors(t *testing.T) {
	_, db, mock, err := newGORMPostgresMock()
	require.NoError(t, err)

	storageErr := errors.New("connection reset")
	mock.ExpectQuery("^SELECT \\* FROM [`'\"]listings[`'\"] ORDER BY created_date ASC, id ASC LIMIT 22$").
		WillReturnError(storageErr)

	q := NewQuery(db.Select("*").Table("listings"))
	pager := NewCursorPager(tListingSpec).WithLimit(20)

	_, err = PaginateCursor(context.Background(), q, pager, tAssetGetters)
	require.Error(t, err)
	require.ErrorContains(t, err, "connection reset")
}

func Test_RawCursorRequest_Decode(t *testing.T) {
	after := Cursor("token")

	t.Run("normalizes and parses", func(t *testing.T) {
		pager, err := RawCursorRequest{
			StartingAfter:    &after,
			NbResultsPerPage: MaxLimit + 50,
			Order:            "desc",
		}.Decode(tListingSpec)
		require.NoError(t, err)

		require.Equal(t, MaxLimit, pager.limit)
		require.Equal(t, DirectionDESC, pager.direction)
		require.NotNil(t, pager.startingAfter)
		require.Equal(t, after, *pager.startingAfter)
		require.Nil(t, pager.endingBefore)
	})

	t.Run("defaults applied", func(t *testing.T) {
		pager, err := RawCursorRequest{}.Decode(tListingSpec)
		require.NoError(t, err)

		require.Equal(t, DefaultLimit, pager.limit)
		require.Equal(t, DirectionASC, pager.direction)
	})

	t.Run("invalid order rejected", func(t *testing.T) {
		_, err := RawCursorRequest{Order: "sideways"}.Decode(tListingSpec)
		require.Error(t, err)
	})
}

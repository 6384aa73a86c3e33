package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/service/linking"
)

func listingRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "status", "author_account_id", "created_at", "updated_at"})
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		rows.AddRow(id, "Listing "+id, "published", "a1", base.AddDate(0, 0, i), base.AddDate(0, 0, i))
	}
	return rows
}

func TestListingByAuthorFiltersStatus(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewListingRepo(db)

	mock.ExpectQuery(`WHERE author_account_id = \$1 AND status = ANY\(\$2\)`).
		WithArgs("a1", sqlmock.AnyArg()).
		WillReturnRows(listingRows("l1", "l2"))

	got, err := repo.ByAuthor(context.Background(), "a1", domain.VisibleStatuses)
	if err != nil {
		t.Fatalf("ByAuthor: %v", err)
	}
	if len(got) != 2 || got[0].ID != "l1" {
		t.Errorf("ByAuthor = %+v", got)
	}
}

func TestListingByIDsEmptyInput(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewListingRepo(db)

	got, err := repo.ByIDs(context.Background(), nil, nil)
	if err != nil || got != nil {
		t.Errorf("ByIDs(nil) = %v, %v; want nil, nil without touching the db", got, err)
	}
}

func TestListingSetAuthorMissingRow(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewListingRepo(db)

	mock.ExpectExec("UPDATE listings").
		WithArgs("ghost", "a1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAuthor(context.Background(), "ghost", "a1")
	if !errors.Is(err, linking.ErrNotFound) {
		t.Errorf("SetAuthor error = %v, want ErrNotFound", err)
	}
}

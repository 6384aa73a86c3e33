// Package postgres implements the linking store contracts against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/service/linking"
)

// ListingRepo implements linking.ListingStore.
type ListingRepo struct{ db *sql.DB }

// NewListingRepo creates a Postgres-backed listing store.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingColumns = `id, title, status, author_account_id, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(&l.ID, &l.Title, &l.Status, &l.AuthorAccountID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ListingRepo) Get(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, linking.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (r *ListingRepo) ByAuthor(ctx context.Context, accountID string, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	q := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE author_account_id = $1`
	args := []interface{}{accountID}
	if names := statusNames(statuses); names != nil {
		q += ` AND status = ANY($2)`
		args = append(args, pq.Array(names))
	}
	q += ` ORDER BY created_at, id`

	return r.queryListings(ctx, "listings by author", q, args...)
}

func (r *ListingRepo) ByIDs(ctx context.Context, ids []string, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = ANY($1)`
	args := []interface{}{pq.Array(ids)}
	if names := statusNames(statuses); names != nil {
		q += ` AND status = ANY($2)`
		args = append(args, pq.Array(names))
	}
	q += ` ORDER BY created_at, id`

	return r.queryListings(ctx, "listings by ids", q, args...)
}

func (r *ListingRepo) SetAuthor(ctx context.Context, listingID, accountID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET author_account_id = $2, updated_at = now()
		WHERE id = $1
	`, listingID, accountID)
	if err != nil {
		return fmt.Errorf("set listing author: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return linking.ErrNotFound
	}
	return nil
}

func (r *ListingRepo) queryListings(ctx context.Context, op, q string, args ...interface{}) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

// statusNames converts the status filter to SQL values, treating an empty
// filter or a wildcard as "no restriction".
func statusNames(statuses []domain.ListingStatus) []string {
	if len(statuses) == 0 {
		return nil
	}
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if st == domain.ListingAny {
			return nil
		}
		names = append(names, string(st))
	}
	return names
}

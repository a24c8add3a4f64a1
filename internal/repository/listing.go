package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, title, sector, skills, location, created_at`

// Get all listings in insertion order
func (r *Repository) GetAllListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	items := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over listings: %w", err)
	}
	return items, nil
}

func (r *Repository) GetListingByID(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := scanListing(r.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("query listing id=%d: %w", id, err)
	}
	return &l, nil
}

func (r *Repository) CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error) {
	created, err := scanListing(r.pool.QueryRow(ctx,
		`INSERT INTO listings (title, sector, skills, location)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+listingColumns,
		l.Title, l.Sector, l.Skills, l.Location,
	))
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return &created, nil
}

func (r *Repository) UpdateListing(ctx context.Context, id int64, l domain.Listing) (*domain.Listing, error) {
	updated, err := scanListing(r.pool.QueryRow(ctx,
		`UPDATE listings SET title = $2, sector = $3, skills = $4, location = $5
		 WHERE id = $1
		 RETURNING `+listingColumns,
		id, l.Title, l.Sector, l.Skills, l.Location,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("update listing id=%d: %w", id, err)
	}
	return &updated, nil
}

func (r *Repository) DeleteListing(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing id=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *Repository) CountListings(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return total, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(&l.ID, &l.Title, &l.Sector, &l.Skills, &l.Location, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, err
		}
		return l, fmt.Errorf("scan listing: %w", err)
	}
	if l.Skills == nil {
		l.Skills = []string{}
	}
	return l, nil
}

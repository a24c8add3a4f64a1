package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Get single user
func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	user := &domain.User{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin, profile, created_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.Profile, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user id=%d: %w", userID, err)
	}

	user.Profile.Normalize()
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user := &domain.User{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin, profile, created_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.Profile, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user %q: %w", username, err)
	}

	user.Profile.Normalize()
	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	u.Profile.Normalize()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin, profile)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.IsAdmin, u.Profile,
	).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return &u, nil
}

// Get the stored profile of a user
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT profile FROM users WHERE id = $1`, userID,
	).Scan(&profile)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query profile for user %d: %w", userID, err)
	}

	profile.Normalize()
	return &profile, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) (*domain.Profile, error) {
	profile.Normalize()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET profile = $2 WHERE id = $1`, userID, profile,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &profile, nil
}

// Get user ids for page
func (r *Repository) GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query user ids for page %d: %w", page, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

// Count total users
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/penshort/roster/internal/model"
)

// UserStore persists users in PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, is_active, phone, first`

// List returns all users ordered by ID.
func (s *UserStore) List(ctx context.Context) ([]*model.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.Phone, &u.First); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.IsActive, &u.Phone, &u.First)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user. The ID is assigned when empty.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = model.NewID()
	}

	query := `
		INSERT INTO users (id, email, is_active, phone, first)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, u.ID, u.Email, u.IsActive, u.Phone, u.First); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update overwrites all columns of an existing user.
func (s *UserStore) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET email = $2, is_active = $3, phone = $4, first = $5
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, u.ID, u.Email, u.IsActive, u.Phone, u.First)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Receivers pointing at it are cleared by the
// foreign key's ON DELETE SET NULL.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

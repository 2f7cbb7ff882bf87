package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/penshort/roster/internal/model"
)

// ReceiverStore persists receivers in PostgreSQL.
// Reads join the referenced user so the nested relation is populated.
type ReceiverStore struct {
	pool *pgxpool.Pool
}

const receiverSelect = `
	SELECT r.id, r.receiver_id,
	       u.id, u.email, u.is_active, u.phone, u.first
	FROM receivers r
	LEFT JOIN users u ON u.id = r.receiver_id
`

// List returns all receivers ordered by ID.
func (s *ReceiverStore) List(ctx context.Context) ([]*model.Receiver, error) {
	rows, err := s.pool.Query(ctx, receiverSelect+` ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivers: %w", err)
	}
	defer rows.Close()

	receivers := make([]*model.Receiver, 0)
	for rows.Next() {
		r, err := scanReceiver(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receiver: %w", err)
		}
		receivers = append(receivers, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receivers: %w", err)
	}

	return receivers, nil
}

// Get retrieves a receiver by ID.
func (s *ReceiverStore) Get(ctx context.Context, id string) (*model.Receiver, error) {
	r, err := scanReceiver(s.pool.QueryRow(ctx, receiverSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receiver: %w", err)
	}
	return r, nil
}

// Create inserts a new receiver. The ID is assigned when empty.
func (s *ReceiverStore) Create(ctx context.Context, r *model.Receiver) error {
	if r.ID == "" {
		r.ID = model.NewID()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO receivers (id, receiver_id) VALUES ($1, $2)`,
		r.ID, r.ReceiverID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRelatedNotFound
		}
		return fmt.Errorf("failed to create receiver: %w", err)
	}
	return nil
}

// Update overwrites the reference of an existing receiver.
func (s *ReceiverStore) Update(ctx context.Context, r *model.Receiver) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE receivers SET receiver_id = $2 WHERE id = $1`,
		r.ID, r.ReceiverID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRelatedNotFound
		}
		return fmt.Errorf("failed to update receiver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a receiver.
func (s *ReceiverStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM receivers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receiver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanReceiver scans a receiverSelect row.
func scanReceiver(row pgx.Row) (*model.Receiver, error) {
	var (
		r        model.Receiver
		userID   *string
		email    *string
		isActive *bool
		phone    *string
		first    *string
	)

	if err := row.Scan(&r.ID, &r.ReceiverID, &userID, &email, &isActive, &phone, &first); err != nil {
		return nil, err
	}

	if userID != nil {
		r.Receiver = &model.User{
			ID:       *userID,
			Email:    deref(email),
			IsActive: isActive != nil && *isActive,
			Phone:    deref(phone),
			First:    first,
		}
	}

	return &r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

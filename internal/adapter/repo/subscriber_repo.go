package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"postify/internal/domain"
)

// SubscriberRepositoryPG implements domain.SubscriberRepository. The overlay
// and logo blobs are only selected by the Raw variants so list endpoints do
// not drag image bytes through every response.
type SubscriberRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSubscriberRepository creates a new subscriber repository backed by PostgreSQL.
func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepositoryPG {
	return &SubscriberRepositoryPG{pool: pool}
}

// Create inserts a new subscriber record and returns its generated id.
func (r *SubscriberRepositoryPG) Create(ctx context.Context, subscriber *domain.Subscriber) (string, error) {
	id := uuid.NewString()
	query := `
INSERT INTO subscribers (id, phone, name, mail, website, overlay, logo)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, query,
		id,
		subscriber.Phone,
		subscriber.Name,
		subscriber.Mail,
		subscriber.Website,
		nullableBytes(subscriber.Overlay),
		nullableBytes(subscriber.Logo),
	)
	if err != nil {
		return "", fmt.Errorf("insert subscriber: %w", err)
	}
	return id, nil
}

// GetAll returns every subscriber without the image blobs, newest first.
func (r *SubscriberRepositoryPG) GetAll(ctx context.Context) ([]domain.Subscriber, error) {
	query := `
SELECT id, phone, name, mail, website, created_at, updated_at
FROM subscribers
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []domain.Subscriber{}
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Phone, &s.Name, &s.Mail, &s.Website, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// GetAllRaw returns every subscriber including the image blobs, newest first.
func (r *SubscriberRepositoryPG) GetAllRaw(ctx context.Context) ([]domain.Subscriber, error) {
	query := `
SELECT id, phone, name, mail, website, overlay, logo, created_at, updated_at
FROM subscribers
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []domain.Subscriber{}
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Phone, &s.Name, &s.Mail, &s.Website, &s.Overlay, &s.Logo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// GetByID fetches a subscriber by id without the image blobs.
func (r *SubscriberRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Subscriber, error) {
	query := `
SELECT id, phone, name, mail, website, created_at, updated_at
FROM subscribers
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var s domain.Subscriber
	if err := row.Scan(&s.ID, &s.Phone, &s.Name, &s.Mail, &s.Website, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByIDRaw fetches a subscriber by id including the image blobs.
func (r *SubscriberRepositoryPG) GetByIDRaw(ctx context.Context, id string) (*domain.Subscriber, error) {
	query := `
SELECT id, phone, name, mail, website, overlay, logo, created_at, updated_at
FROM subscribers
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var s domain.Subscriber
	if err := row.Scan(&s.ID, &s.Phone, &s.Name, &s.Mail, &s.Website, &s.Overlay, &s.Logo, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update applies a partial update. Absent fields keep their stored values.
func (r *SubscriberRepositoryPG) Update(ctx context.Context, id string, upd domain.SubscriberUpdate) error {
	query := `
UPDATE subscribers
SET phone = COALESCE($2, phone),
    name = COALESCE($3, name),
    mail = COALESCE($4, mail),
    website = COALESCE($5, website),
    overlay = COALESCE($6, overlay),
    logo = COALESCE($7, logo),
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		id,
		upd.Phone,
		upd.Name,
		upd.Mail,
		upd.Website,
		nullableBytes(upd.Overlay),
		nullableBytes(upd.Logo),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a subscriber by id.
func (r *SubscriberRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

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

// HolidayRepositoryPG implements domain.HolidayRepository.
type HolidayRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository creates a new holiday repository backed by PostgreSQL.
func NewHolidayRepository(pool *pgxpool.Pool) *HolidayRepositoryPG {
	return &HolidayRepositoryPG{pool: pool}
}

// Create inserts a new holiday record and returns its generated id.
func (r *HolidayRepositoryPG) Create(ctx context.Context, holiday *domain.Holiday) (string, error) {
	id := uuid.NewString()
	query := `
INSERT INTO holidays (id, date, prompt, description)
VALUES ($1, $2, $3, $4);
`
	if _, err := r.pool.Exec(ctx, query, id, holiday.Date, holiday.Prompt, holiday.Description); err != nil {
		return "", fmt.Errorf("insert holiday: %w", err)
	}
	return id, nil
}

// GetAll returns every holiday, newest first.
func (r *HolidayRepositoryPG) GetAll(ctx context.Context) ([]domain.Holiday, error) {
	query := `
SELECT id, date, prompt, description, created_at, updated_at
FROM holidays
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []domain.Holiday{}
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Prompt, &h.Description, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// GetByID fetches a holiday by its identifier.
func (r *HolidayRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Holiday, error) {
	query := `
SELECT id, date, prompt, description, created_at, updated_at
FROM holidays
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var h domain.Holiday
	if err := row.Scan(&h.ID, &h.Date, &h.Prompt, &h.Description, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// GetByDate returns the oldest holiday stored for the given DD-MM-YYYY date,
// or nil when none matches.
func (r *HolidayRepositoryPG) GetByDate(ctx context.Context, date string) (*domain.Holiday, error) {
	query := `
SELECT id, date, prompt, description, created_at, updated_at
FROM holidays
WHERE date = $1
ORDER BY created_at ASC
LIMIT 1;
`
	row := r.pool.QueryRow(ctx, query, date)
	var h domain.Holiday
	if err := row.Scan(&h.ID, &h.Date, &h.Prompt, &h.Description, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// Update applies a partial update. Absent fields keep their stored values.
func (r *HolidayRepositoryPG) Update(ctx context.Context, id string, upd domain.HolidayUpdate) error {
	query := `
UPDATE holidays
SET date = COALESCE($2, date),
    prompt = COALESCE($3, prompt),
    description = COALESCE($4, description),
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, id, upd.Date, upd.Prompt, upd.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a holiday by id.
func (r *HolidayRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every holiday and returns the number deleted.
func (r *HolidayRepositoryPG) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holidays;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

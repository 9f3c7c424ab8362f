package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// RefreshTokenRepository manages refresh session records. The record id is
// embedded in the refresh token, so callers create the record first and
// then encode its id.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.RefreshTokenRecord, error)
	// DeleteByID is idempotent: deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id int64) error
	// Rotate replaces oldID with a new record in one transaction. It fails
	// with pgx.ErrNoRows when oldID is already gone, which rejects a second
	// refresh with the same token.
	Rotate(ctx context.Context, oldID, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error)
}

type refreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository returns a Postgres-backed implementation.
func NewRefreshTokenRepository(pool *pgxpool.Pool) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

const insertRefreshTokenQuery = `
        INSERT INTO refresh_tokens (user_id, expires_at)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

func (r *refreshTokenRepository) Create(ctx context.Context, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error) {
	record := &domain.RefreshTokenRecord{UserID: userID, ExpiresAt: expiresAt}
	if err := r.pool.QueryRow(ctx, insertRefreshTokenQuery, userID, expiresAt).
		Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *refreshTokenRepository) GetByID(ctx context.Context, id int64) (*domain.RefreshTokenRecord, error) {
	const query = `
        SELECT id, user_id, expires_at, created_at, updated_at
        FROM refresh_tokens WHERE id=$1`

	var record domain.RefreshTokenRecord
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.ExpiresAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *refreshTokenRepository) DeleteByID(ctx context.Context, id int64) error {
	const query = `DELETE FROM refresh_tokens WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *refreshTokenRepository) Rotate(ctx context.Context, oldID, userID int64, expiresAt time.Time) (*domain.RefreshTokenRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id=$1`, oldID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	record := &domain.RefreshTokenRecord{UserID: userID, ExpiresAt: expiresAt}
	if err := tx.QueryRow(ctx, insertRefreshTokenQuery, userID, expiresAt).
		Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

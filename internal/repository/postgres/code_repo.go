package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
)

// CodeRepo implements CodeRepository using PostgreSQL.
type CodeRepo struct{ db *DB }

// NewCodeRepo constructs a code repository.
func NewCodeRepo(db *DB) *CodeRepo { return &CodeRepo{db: db} }

// Create inserts a fresh code row.
func (r *CodeRepo) Create(ctx context.Context, c *model.Code) error {
	const q = `
INSERT INTO sms_codes (id, phone, code_hash, salt, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.Phone, c.Hash, c.Salt, c.ExpiresAt)
	return err
}

// LatestActive selects the newest unverified, unexpired code for phone.
func (r *CodeRepo) LatestActive(ctx context.Context, phone string, now time.Time) (*model.Code, error) {
	const q = `
SELECT id, phone, code_hash, salt, expires_at, attempts, verified, created_at
FROM sms_codes
WHERE phone=$1 AND verified=FALSE AND expires_at > $2
ORDER BY created_at DESC
LIMIT 1`
	row := r.db.Pool.QueryRow(ctx, q, phone, now)
	var c model.Code
	if err := row.Scan(&c.ID, &c.Phone, &c.Hash, &c.Salt, &c.ExpiresAt, &c.Attempts, &c.Verified, &c.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

// MarkVerified spends the code.
func (r *CodeRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE sms_codes SET verified=TRUE WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// IncAttempts records a failed attempt and returns the new count.
func (r *CodeRepo) IncAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	const q = `UPDATE sms_codes SET attempts = attempts + 1 WHERE id=$1 RETURNING attempts`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

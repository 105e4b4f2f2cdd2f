package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row and fills the assigned id.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (phone, nickname, username)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Phone, u.Nickname, u.Username).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, phone, nickname, username, created_at
FROM users WHERE id=$1`
	return r.scanOne(ctx, q, id)
}

// GetByPhone selects a user by normalized phone.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	const q = `
SELECT id, phone, nickname, username, created_at
FROM users WHERE phone=$1`
	return r.scanOne(ctx, q, phone)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (*model.User, error) {
	row := r.db.Pool.QueryRow(ctx, q, arg)
	var u model.User
	if err := row.Scan(&u.ID, &u.Phone, &u.Nickname, &u.Username, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// Search finds users by username or nickname substring (case-insensitive).
// An empty query lists users up to limit.
func (r *UserRepo) Search(ctx context.Context, query string, limit int) ([]model.Identity, error) {
	const withQuery = `
SELECT id, nickname, username
FROM users
WHERE username ILIKE $1 OR nickname ILIKE $1
LIMIT $2`
	const all = `
SELECT id, nickname, username
FROM users LIMIT $1`

	var (
		rows pgx.Rows
		err  error
	)
	if query != "" {
		rows, err = r.db.Pool.Query(ctx, withQuery, "%"+query+"%", limit)
	} else {
		rows, err = r.db.Pool.Query(ctx, all, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Identity
	for rows.Next() {
		var id model.Identity
		if err := rows.Scan(&id.ID, &id.Nickname, &id.Username); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

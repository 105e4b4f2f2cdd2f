package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/osokin/talkie/internal/model"
)

// FriendRepo implements FriendRepository using PostgreSQL.
type FriendRepo struct{ db *DB }

// NewFriendRepo constructs a friendship repository.
func NewFriendRepo(db *DB) *FriendRepo { return &FriendRepo{db: db} }

// SendRequest inserts a pending row; a duplicate request is a no-op.
func (r *FriendRepo) SendRequest(ctx context.Context, userID, friendID int64) error {
	const q = `
INSERT INTO friendships (user_id, friend_id, status)
VALUES ($1, $2, 'pending')
ON CONFLICT DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, userID, friendID)
	return err
}

// Accept confirms the request friendID sent to userID and writes the
// reciprocal accepted row, atomically.
func (r *FriendRepo) Accept(ctx context.Context, userID, friendID int64) error {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const confirm = `
UPDATE friendships SET status='accepted'
WHERE user_id=$1 AND friend_id=$2`
	if _, err := tx.Exec(ctx, confirm, friendID, userID); err != nil {
		return err
	}
	const reciprocal = `
INSERT INTO friendships (user_id, friend_id, status)
VALUES ($1, $2, 'accepted')
ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, reciprocal, userID, friendID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListAccepted returns confirmed friends regardless of which side initiated
// the relationship.
func (r *FriendRepo) ListAccepted(ctx context.Context, userID int64) ([]model.Friend, error) {
	const q = `
SELECT u.id, u.nickname, u.username, f.status
FROM friendships f
JOIN users u ON (f.friend_id = u.id)
WHERE f.user_id = $1 AND f.status = 'accepted'
UNION
SELECT u.id, u.nickname, u.username, f.status
FROM friendships f
JOIN users u ON (f.user_id = u.id)
WHERE f.friend_id = $1 AND f.status = 'accepted'`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Friend
	for rows.Next() {
		var f model.Friend
		if err := rows.Scan(&f.ID, &f.Nickname, &f.Username, &f.Status); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
)

// ChatRepo implements ChatRepository using PostgreSQL.
type ChatRepo struct{ db *DB }

// NewChatRepo constructs a chat repository.
func NewChatRepo(db *DB) *ChatRepo { return &ChatRepo{db: db} }

// Create inserts a chat and its membership rows in one transaction. The
// creator is always a member; duplicates in memberIDs collapse.
func (r *ChatRepo) Create(ctx context.Context, chatType, name string, createdBy int64, memberIDs []int64) (int64, error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insChat = `
INSERT INTO chats (type, name, created_by)
VALUES ($1, $2, $3)
RETURNING id`
	var chatID int64
	if err := tx.QueryRow(ctx, insChat, chatType, name, createdBy).Scan(&chatID); err != nil {
		return 0, err
	}

	members := map[int64]struct{}{createdBy: {}}
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	const insMember = `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)`
	for id := range members {
		if _, err := tx.Exec(ctx, insMember, chatID, id); err != nil {
			return 0, err
		}
	}
	return chatID, tx.Commit(ctx)
}

// FindPrivate returns the id of the two-member private chat between a and b.
func (r *ChatRepo) FindPrivate(ctx context.Context, a, b int64) (int64, error) {
	const q = `
SELECT c.id
FROM chats c
JOIN chat_members m1 ON m1.chat_id = c.id AND m1.user_id = $1
JOIN chat_members m2 ON m2.chat_id = c.id AND m2.user_id = $2
WHERE c.type = 'private'
  AND (SELECT COUNT(*) FROM chat_members WHERE chat_id = c.id) = 2
LIMIT 1`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, q, a, b).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// ListForUser returns the user's chats, most recently updated first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	const q = `
SELECT DISTINCT c.id, c.type, c.name, c.updated_at,
       (SELECT COUNT(*) FROM chat_members WHERE chat_id = c.id) AS member_count
FROM chats c
JOIN chat_members cm ON c.id = cm.chat_id
WHERE cm.user_id = $1
ORDER BY c.updated_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Chat
	for rows.Next() {
		var c model.Chat
		if err := rows.Scan(&c.ID, &c.Type, &c.Name, &c.UpdatedAt, &c.MemberCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

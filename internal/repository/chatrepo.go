package repository

import (
	"context"

	"github.com/osokin/talkie/internal/model"
)

// ChatRepository stores chat records and membership.
type ChatRepository interface {
	// Create inserts a chat with the given members (creator included) and
	// returns the chat id.
	Create(ctx context.Context, chatType, name string, createdBy int64, memberIDs []int64) (int64, error)
	// FindPrivate returns the id of the private chat whose members are
	// exactly a and b, or ErrNotFound.
	FindPrivate(ctx context.Context, a, b int64) (int64, error)
	// ListForUser returns the user's chats, most recently updated first.
	ListForUser(ctx context.Context, userID int64) ([]model.Chat, error)
}

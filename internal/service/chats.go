package service

import (
	"context"
	"errors"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/repository"
)

// ChatService manages chat records; message contents are out of scope.
type ChatService interface {
	// Create inserts a chat with the given members and returns its id.
	Create(ctx context.Context, createdBy int64, chatType, name string, memberIDs []int64) (int64, error)
	// List returns the caller's chats, most recently updated first.
	List(ctx context.Context, userID int64) ([]model.Chat, error)
}

type ChatServiceImpl struct {
	chats repository.ChatRepository
}

// NewChatService constructs ChatService.
func NewChatService(chats repository.ChatRepository) *ChatServiceImpl {
	return &ChatServiceImpl{chats: chats}
}

// Create defaults the chat type to private. A private chat between the same
// two users is reused instead of duplicated.
func (s *ChatServiceImpl) Create(ctx context.Context, createdBy int64, chatType, name string, memberIDs []int64) (int64, error) {
	if chatType == "" {
		chatType = "private"
	}
	if chatType == "private" && len(memberIDs) == 1 && memberIDs[0] != createdBy {
		id, err := s.chats.FindPrivate(ctx, createdBy, memberIDs[0])
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return 0, err
		}
	}
	return s.chats.Create(ctx, chatType, name, createdBy, memberIDs)
}

// List returns the caller's chats; none is an empty list.
func (s *ChatServiceImpl) List(ctx context.Context, userID int64) ([]model.Chat, error) {
	list, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Chat{}
	}
	return list, nil
}

package service

import (
	"context"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/repository"
)

// FriendService manages friendship rows for a caller.
type FriendService interface {
	// List returns confirmed friends.
	List(ctx context.Context, userID int64) ([]model.Friend, error)
	// SendRequest issues a pending friendship toward friendID.
	SendRequest(ctx context.Context, userID, friendID int64) error
	// Accept confirms a request friendID sent to userID.
	Accept(ctx context.Context, userID, friendID int64) error
}

type FriendServiceImpl struct {
	friends repository.FriendRepository
}

// NewFriendService constructs FriendService.
func NewFriendService(friends repository.FriendRepository) *FriendServiceImpl {
	return &FriendServiceImpl{friends: friends}
}

// List returns confirmed friends; no friends is an empty list, not an error.
func (s *FriendServiceImpl) List(ctx context.Context, userID int64) ([]model.Friend, error) {
	list, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Friend{}
	}
	return list, nil
}

// SendRequest refuses self-friendship; everything else is the repository's
// concern (duplicates collapse there).
func (s *FriendServiceImpl) SendRequest(ctx context.Context, userID, friendID int64) error {
	if friendID == userID || friendID <= 0 {
		return errs.ErrSelfFriend
	}
	return s.friends.SendRequest(ctx, userID, friendID)
}

// Accept confirms the pending request and the reciprocal row.
func (s *FriendServiceImpl) Accept(ctx context.Context, userID, friendID int64) error {
	if friendID == userID || friendID <= 0 {
		return errs.ErrSelfFriend
	}
	return s.friends.Accept(ctx, userID, friendID)
}

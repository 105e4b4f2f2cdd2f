package service

import (
	"context"
	"strings"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/phone"
	"github.com/osokin/talkie/internal/repository"
)

// searchLimit caps user search results.
const searchLimit = 20

// UserService manages account creation and search.
type UserService interface {
	// CreateProfile allocates the permanent identity for a phone. The
	// identity is immutable after creation.
	CreateProfile(ctx context.Context, rawPhone, nickname, username string) (model.User, error)
	// Search finds users by username or nickname substring.
	Search(ctx context.Context, query string) ([]model.Identity, error)
}

type UserServiceImpl struct {
	users repository.UserRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// CreateProfile validates syntax locally and relies on database uniqueness
// for nickname, username and phone.
func (s *UserServiceImpl) CreateProfile(ctx context.Context, rawPhone, nickname, username string) (model.User, error) {
	p := phone.Normalize(rawPhone)
	if !phone.IsValid(p) {
		return model.User{}, errs.ErrInvalidPhone
	}
	nickname = strings.TrimSpace(nickname)
	if !model.ValidNickname(nickname) {
		return model.User{}, errs.ErrInvalidNickname
	}
	if !model.ValidUsername(username) {
		return model.User{}, errs.ErrInvalidUsername
	}
	u := &model.User{Phone: p, Nickname: nickname, Username: username}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// Search passes the query through; an empty query lists users.
func (s *UserServiceImpl) Search(ctx context.Context, query string) ([]model.Identity, error) {
	return s.users.Search(ctx, strings.TrimSpace(query), searchLimit)
}

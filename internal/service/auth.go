// Package service contains the identity service's application services.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/osokin/talkie/internal/crypto"
	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/phone"
	"github.com/osokin/talkie/internal/repository"
)

// AuthService issues and verifies one-time phone codes.
type AuthService interface {
	// SendCode creates a code for the phone. The code is returned only in
	// dev mode, for echoing back to the caller.
	SendCode(ctx context.Context, rawPhone string) (devCode string, err error)
	// VerifyCode checks the code. A nil identity with nil error means the
	// code was accepted but no account exists for the phone.
	VerifyCode(ctx context.Context, rawPhone, code string) (*model.Identity, error)
}

type AuthServiceImpl struct {
	codes       repository.CodeRepository
	users       repository.UserRepository
	codeTTL     time.Duration
	maxAttempts int
	dev         bool
	now         func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(codes repository.CodeRepository, users repository.UserRepository, codeTTL time.Duration, maxAttempts int, dev bool) *AuthServiceImpl {
	return &AuthServiceImpl{
		codes:       codes,
		users:       users,
		codeTTL:     codeTTL,
		maxAttempts: maxAttempts,
		dev:         dev,
		now:         time.Now,
	}
}

// SendCode generates a fresh 6-digit code and stores its hash with an
// expiry. Delivery is out of band; dev mode echoes the code.
func (s *AuthServiceImpl) SendCode(ctx context.Context, rawPhone string) (string, error) {
	p := phone.Normalize(rawPhone)
	if !phone.IsValid(p) {
		return "", errs.ErrInvalidPhone
	}
	code, err := genCode()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	c := &model.Code{
		ID:        id,
		Phone:     p,
		Hash:      pkgcrypto.HashCode([]byte(code), salt),
		Salt:      salt,
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if err := s.codes.Create(ctx, c); err != nil {
		return "", err
	}
	if s.dev {
		return code, nil
	}
	return "", nil
}

// VerifyCode consumes the newest active code for the phone. A wrong code
// counts as an attempt; past the cap the code is burned. On success the
// code is spent and the phone's account, if any, is returned.
func (s *AuthServiceImpl) VerifyCode(ctx context.Context, rawPhone, code string) (*model.Identity, error) {
	p := phone.Normalize(rawPhone)
	if !phone.IsValid(p) {
		return nil, errs.ErrInvalidPhone
	}
	c, err := s.codes.LatestActive(ctx, p, s.now())
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrCodeRejected
		}
		return nil, err
	}
	if c.Attempts >= s.maxAttempts {
		return nil, errs.ErrTooManyAttempts
	}
	if !pkgcrypto.VerifyCode([]byte(code), c.Salt, c.Hash) {
		n, ierr := s.codes.IncAttempts(ctx, c.ID)
		if ierr == nil && n >= s.maxAttempts {
			return nil, errs.ErrTooManyAttempts
		}
		return nil, errs.ErrCodeRejected
	}
	if err := s.codes.MarkVerified(ctx, c.ID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByPhone(ctx, p)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// genCode returns a random 6-digit code as a string.
func genCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return (n.Add(n, big.NewInt(100000))).String(), nil
}

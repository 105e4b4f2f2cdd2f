package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/repository"
)

type fakeCodes struct {
	rows map[uuid.UUID]*model.Code

	createErr error
}

var _ repository.CodeRepository = (*fakeCodes)(nil)

func (f *fakeCodes) Create(_ context.Context, c *model.Code) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.rows == nil {
		f.rows = map[uuid.UUID]*model.Code{}
	}
	cpy := *c
	f.rows[c.ID] = &cpy
	return nil
}

func (f *fakeCodes) LatestActive(_ context.Context, phone string, now time.Time) (*model.Code, error) {
	var latest *model.Code
	for _, c := range f.rows {
		if c.Phone != phone || c.Verified || !c.ExpiresAt.After(now) {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, errs.ErrNotFound
	}
	cpy := *latest
	return &cpy, nil
}

func (f *fakeCodes) MarkVerified(_ context.Context, id uuid.UUID) error {
	c, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	c.Verified = true
	return nil
}

func (f *fakeCodes) IncAttempts(_ context.Context, id uuid.UUID) (int, error) {
	c, ok := f.rows[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	c.Attempts++
	return c.Attempts, nil
}

type fakeUsers struct {
	byPhone map[string]*model.User

	createErr error
	nextID    int64
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byPhone == nil {
		f.byPhone = map[string]*model.User{}
	}
	for _, e := range f.byPhone {
		if e.Username == u.Username || e.Nickname == u.Nickname {
			return errs.ErrAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cpy := *u
	f.byPhone[u.Phone] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byPhone {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	u, ok := f.byPhone[phone]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Search(_ context.Context, query string, limit int) ([]model.Identity, error) {
	var out []model.Identity
	for _, u := range f.byPhone {
		out = append(out, u.Identity())
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newAuth(codes *fakeCodes, users *fakeUsers) *AuthServiceImpl {
	return NewAuthService(codes, users, 5*time.Minute, 3, true)
}

func TestSendCodeStoresHashedRow(t *testing.T) {
	codes := &fakeCodes{}
	s := newAuth(codes, &fakeUsers{})
	ctx := context.Background()

	code, err := s.SendCode(ctx, "+7 (903) 123-45-67")
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("dev code = %q, want 6 digits", code)
	}
	if len(codes.rows) != 1 {
		t.Fatalf("rows = %d", len(codes.rows))
	}
	for _, c := range codes.rows {
		if c.Phone != "79031234567" {
			t.Fatalf("phone = %q", c.Phone)
		}
		if string(c.Hash) == code {
			t.Fatal("code stored in plaintext")
		}
	}
}

func TestSendCodeRejectsBadPhone(t *testing.T) {
	s := newAuth(&fakeCodes{}, &fakeUsers{})
	if _, err := s.SendCode(context.Background(), "12345"); !errors.Is(err, errs.ErrInvalidPhone) {
		t.Fatalf("err = %v", err)
	}
}

func TestVerifyCodeKnownAndUnknownUser(t *testing.T) {
	codes := &fakeCodes{}
	users := &fakeUsers{}
	s := newAuth(codes, users)
	ctx := context.Background()

	code, err := s.SendCode(ctx, "79031234567")
	if err != nil {
		t.Fatal(err)
	}

	// No account yet: accepted, nil identity.
	id, err := s.VerifyCode(ctx, "79031234567", code)
	if err != nil || id != nil {
		t.Fatalf("unknown user: id=%v err=%v", id, err)
	}

	// The code is spent; a replay is refused.
	if _, err := s.VerifyCode(ctx, "79031234567", code); !errors.Is(err, errs.ErrCodeRejected) {
		t.Fatalf("replay: err = %v", err)
	}

	// With an account, the identity comes back.
	if err := users.Create(ctx, &model.User{Phone: "79031234567", Nickname: "Анна", Username: "anna_k"}); err != nil {
		t.Fatal(err)
	}
	code, err = s.SendCode(ctx, "79031234567")
	if err != nil {
		t.Fatal(err)
	}
	id, err = s.VerifyCode(ctx, "79031234567", code)
	if err != nil || id == nil || id.Username != "anna_k" {
		t.Fatalf("known user: id=%+v err=%v", id, err)
	}
}

func TestVerifyCodeWrongCodeAndAttemptCap(t *testing.T) {
	codes := &fakeCodes{}
	s := newAuth(codes, &fakeUsers{})
	ctx := context.Background()

	code, err := s.SendCode(ctx, "79031234567")
	if err != nil {
		t.Fatal(err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 1; i <= 2; i++ {
		if _, err := s.VerifyCode(ctx, "79031234567", wrong); !errors.Is(err, errs.ErrCodeRejected) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}
	// Third failure reaches the cap.
	if _, err := s.VerifyCode(ctx, "79031234567", wrong); !errors.Is(err, errs.ErrTooManyAttempts) {
		t.Fatalf("cap: err = %v", err)
	}
	// Even the right code is refused once the code is burned.
	if _, err := s.VerifyCode(ctx, "79031234567", code); !errors.Is(err, errs.ErrTooManyAttempts) {
		t.Fatalf("after cap: err = %v", err)
	}
}

func TestVerifyCodeExpired(t *testing.T) {
	codes := &fakeCodes{}
	s := newAuth(codes, &fakeUsers{})
	ctx := context.Background()

	code, err := s.SendCode(ctx, "79031234567")
	if err != nil {
		t.Fatal(err)
	}
	// Move the clock past the expiry.
	s.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	if _, err := s.VerifyCode(ctx, "79031234567", code); !errors.Is(err, errs.ErrCodeRejected) {
		t.Fatalf("expired: err = %v", err)
	}
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
)

func TestCodeRepo_CreateAndLatestActive(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCodeRepo(db)
	ctx := context.Background()

	c := &model.Code{
		ID:        uuid.Must(uuid.NewV4()),
		Phone:     "79031234567",
		Hash:      []byte("h"),
		Salt:      []byte("s"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	mock.ExpectExec(`INSERT INTO sms_codes \(id, phone, code_hash, salt, expires_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(c.ID, c.Phone, c.Hash, c.Salt, c.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, c))

	now := time.Now()
	mock.ExpectQuery(`SELECT id, phone, code_hash, salt, expires_at, attempts, verified, created_at FROM sms_codes WHERE phone=\$1 AND verified=FALSE AND expires_at > \$2 ORDER BY created_at DESC LIMIT 1`).
		WithArgs(c.Phone, now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "phone", "code_hash", "salt", "expires_at", "attempts", "verified", "created_at"}).
			AddRow(c.ID, c.Phone, c.Hash, c.Salt, c.ExpiresAt, 0, false, time.Now()))
	got, err := r.LatestActive(ctx, c.Phone, now)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	// No active code maps to not-found.
	mock.ExpectQuery(`SELECT id, phone, code_hash, salt, expires_at, attempts, verified, created_at FROM sms_codes`).
		WithArgs(c.Phone, now).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.LatestActive(ctx, c.Phone, now)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCodeRepo_MarkVerified(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCodeRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE sms_codes SET verified=TRUE WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkVerified(ctx, id))

	mock.ExpectExec(`UPDATE sms_codes SET verified=TRUE WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.MarkVerified(ctx, id), errs.ErrNotFound)
}

func TestCodeRepo_IncAttempts(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCodeRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`UPDATE sms_codes SET attempts = attempts \+ 1 WHERE id=\$1 RETURNING attempts`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"attempts"}).AddRow(3))
	n, err := r.IncAttempts(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

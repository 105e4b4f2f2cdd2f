package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Code is a one-time verification code row. The code itself is stored only
// as an Argon2id hash; a row is spent either by verification or by expiry.
type Code struct {
	ID        uuid.UUID
	Phone     string
	Hash      []byte
	Salt      []byte
	ExpiresAt time.Time
	Attempts  int
	Verified  bool
	CreatedAt time.Time
}

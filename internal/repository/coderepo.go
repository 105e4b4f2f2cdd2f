package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/osokin/talkie/internal/model"
)

// CodeRepository stores one-time verification codes.
type CodeRepository interface {
	// Create inserts a fresh code row.
	Create(ctx context.Context, c *model.Code) error
	// LatestActive returns the newest unverified, unexpired code for phone.
	LatestActive(ctx context.Context, phone string, now time.Time) (*model.Code, error)
	// MarkVerified spends the code so it cannot be replayed.
	MarkVerified(ctx context.Context, id uuid.UUID) error
	// IncAttempts records a failed attempt and returns the new count.
	IncAttempts(ctx context.Context, id uuid.UUID) (int, error)
}

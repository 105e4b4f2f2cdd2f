package repository

import (
	"context"

	"github.com/osokin/talkie/internal/model"
)

// FriendRepository stores asymmetric friendship rows.
type FriendRepository interface {
	// SendRequest inserts a pending row from userID toward friendID.
	// A duplicate request is a no-op.
	SendRequest(ctx context.Context, userID, friendID int64) error
	// Accept confirms a request friendID sent to userID and writes the
	// reciprocal accepted row.
	Accept(ctx context.Context, userID, friendID int64) error
	// ListAccepted returns confirmed friends of userID from either side of
	// the relationship.
	ListAccepted(ctx context.Context, userID int64) ([]model.Friend, error)
}

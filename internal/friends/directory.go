// Package friends maintains the caller's friend list and username search
// against the identity service.
//
// List and search failures degrade to empty results on purpose: the UI
// renders an empty state instead of an error banner, and the failure is
// only logged. The Snapshot type still distinguishes "no friends" from
// "fetch failed" so the policy stays visible at the data level.
package friends

import (
	"context"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/osokin/talkie/internal/model"
)

// API is the slice of the identity service the directory needs.
type API interface {
	ListFriends(ctx context.Context, callerID int64) ([]model.Friend, error)
	SearchUsers(ctx context.Context, query string) ([]model.Friend, error)
	SendFriendRequest(ctx context.Context, callerID, friendID int64) error
	AcceptFriendRequest(ctx context.Context, callerID, friendID int64) error
}

// Snapshot is the confirmed-friends view. Failed marks a fetch that did not
// complete; Friends is empty in that case and the two render identically.
type Snapshot struct {
	Friends []model.Friend
	Failed  bool
}

// Directory caches the confirmed list and the current search state for one
// caller. Every fetch carries a generation token; a response is applied
// only while its token is still the newest issued for that operation, so a
// re-triggered fetch can never be overwritten by a stale reply.
type Directory struct {
	api API
	log *zap.Logger

	mu        sync.Mutex
	callerID  int64
	snapshot  Snapshot
	query     string
	results   []model.Friend
	listGen   uuid.UUID
	searchGen uuid.UUID
}

// NewDirectory builds a directory for the given caller id.
func NewDirectory(api API, callerID int64, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{api: api, callerID: callerID, log: log}
}

// SetCaller switches the directory to a new identity, dropping every cached
// list and search result. The caller reloads afterwards.
func (d *Directory) SetCaller(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callerID = id
	d.snapshot = Snapshot{}
	d.query = ""
	d.results = nil
	d.listGen = uuid.UUID{}
	d.searchGen = uuid.UUID{}
}

// Friends returns the current confirmed-friends snapshot.
func (d *Directory) Friends() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// Results returns the current search results.
func (d *Directory) Results() []model.Friend {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results
}

// Reload fetches the confirmed list. A transport failure yields a Failed
// snapshot (rendered as empty) and is only logged.
func (d *Directory) Reload(ctx context.Context) Snapshot {
	d.mu.Lock()
	gen := uuid.Must(uuid.NewV4())
	d.listGen = gen
	caller := d.callerID
	d.mu.Unlock()

	list, err := d.api.ListFriends(ctx, caller)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listGen != gen || d.callerID != caller {
		// A newer reload or a caller switch superseded this response.
		return d.snapshot
	}
	if err != nil {
		d.log.Warn("friend list fetch failed", zap.Int64("caller", caller), zap.Error(err))
		d.snapshot = Snapshot{Failed: true}
		return d.snapshot
	}
	if list == nil {
		list = []model.Friend{}
	}
	d.snapshot = Snapshot{Friends: list}
	return d.snapshot
}

// Search looks identities up by username. The query is trimmed; an empty
// query performs no network call. The caller's own identity is filtered
// out. Failures degrade to an empty result set, logged only.
func (d *Directory) Search(ctx context.Context, query string) []model.Friend {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	d.mu.Lock()
	gen := uuid.Must(uuid.NewV4())
	d.searchGen = gen
	caller := d.callerID
	d.mu.Unlock()

	found, err := d.api.SearchUsers(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.searchGen != gen || d.callerID != caller {
		return d.results
	}
	if err != nil {
		d.log.Warn("user search failed", zap.String("query", query), zap.Error(err))
		d.results = nil
		return nil
	}
	filtered := make([]model.Friend, 0, len(found))
	for _, f := range found {
		if f.ID != caller {
			filtered = append(filtered, f)
		}
	}
	d.query = query
	d.results = filtered
	return filtered
}

// SendRequest issues a friend request toward friendID. On success the
// search state is cleared; the confirmed list is not touched until the next
// explicit Reload. Errors are returned for a blocking acknowledgment.
func (d *Directory) SendRequest(ctx context.Context, friendID int64) error {
	d.mu.Lock()
	caller := d.callerID
	d.mu.Unlock()

	if err := d.api.SendFriendRequest(ctx, caller, friendID); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.query = ""
	d.results = nil
	return nil
}

// Accept confirms a pending request previously sent by friendID.
func (d *Directory) Accept(ctx context.Context, friendID int64) error {
	d.mu.Lock()
	caller := d.callerID
	d.mu.Unlock()
	return d.api.AcceptFriendRequest(ctx, caller, friendID)
}

package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/osokin/talkie/internal/model"
)

// record is the durable session file. All three fields must be present for
// the record to count; partial records load as absent and are never
// repaired.
type record struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"user_nickname"`
	Username string `json:"user_username"`
}

// Store persists the authorized identity between runs.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store { return &Store{path: path} }

// DefaultPath returns the session file location under the user config dir,
// honoring XDG_CONFIG_HOME.
func DefaultPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "talkie", "session.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "talkie", "session.json")
}

// Load reads the persisted identity. The second return is false when the
// file is missing, unreadable, or holds a partial record.
func (s *Store) Load() (model.Identity, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return model.Identity{}, false
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return model.Identity{}, false
	}
	if r.UserID == 0 || r.Nickname == "" || r.Username == "" {
		return model.Identity{}, false
	}
	return model.Identity{ID: r.UserID, Nickname: r.Nickname, Username: r.Username}, true
}

// Save writes the identity as a unit: the record lands in a temp file that
// is renamed over the target, so readers never observe a partial write.
func (s *Store) Save(id model.Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(record{UserID: id.ID, Nickname: id.Nickname, Username: id.Username}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the persisted record. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

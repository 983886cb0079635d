package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNoIdentity is returned when a session is requested without a
// stored identity. The session refuses to open the connection.
var ErrNoIdentity = errors.New("no local identity")

// Identity is the immutable local player identity.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider yields the optional local identity.
type Provider interface {
	Identity() (Identity, bool)
}

// FileStore persists the identity as a JSON file, the desktop analogue
// of the browser client's localStorage entry.
type FileStore struct {
	path string
}

// NewFileStore uses the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Identity loads the stored identity, reporting absence via ok=false.
func (s *FileStore) Identity() (Identity, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Identity{}, false
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil || id.ID == "" || id.Name == "" {
		return Identity{}, false
	}
	return id, true
}

// Create mints a new identity for the given display name and persists
// it, replacing any previous one.
func (s *FileStore) Create(name string) (Identity, error) {
	if name == "" {
		return Identity{}, errors.New("display name must not be empty")
	}

	id := Identity{ID: uuid.NewString(), Name: name}
	data, err := json.Marshal(id)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to encode identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Identity{}, fmt.Errorf("failed to create identity dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return Identity{}, fmt.Errorf("failed to write identity file: %w", err)
	}
	return id, nil
}

// Static is a fixed identity, mainly for tests and one-off runs.
type Static struct {
	Value Identity
}

// Identity returns the fixed identity.
func (s Static) Identity() (Identity, bool) {
	if s.Value.ID == "" {
		return Identity{}, false
	}
	return s.Value, true
}

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// StorageKey is the key the session is kept under in the state file.
const StorageKey = "storeAppState"

// Snapshot is the durable part of a Session.
type Snapshot struct {
	CurrentStore string `json:"currentStore"`
	IsLoggedIn   bool   `json:"isLoggedIn"`
	Token        string `json:"token,omitempty"`
	// AuthStore is the store the token was issued to.
	AuthStore string `json:"authStore,omitempty"`
}

// Persister loads and saves session snapshots.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileStore keeps snapshots in a JSON file shaped like browser local storage:
// one object whose keys hold independent values. Keys other than StorageKey
// are preserved on save.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (fs *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return entries, nil
}

// Load returns the saved snapshot. A missing file yields an empty snapshot.
func (fs *FileStore) Load() (Snapshot, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		return Snapshot{}, err
	}
	var s Snapshot
	raw, ok := entries[StorageKey]
	if !ok {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", StorageKey, err)
	}
	return s, nil
}

// Save writes s under StorageKey.
func (fs *FileStore) Save(s Snapshot) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.read()
	if err != nil {
		// An unreadable file is replaced rather than blocking every save.
		entries = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	entries[StorageKey] = raw

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.Path, data, 0o600)
}

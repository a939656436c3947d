package statestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

var _ Store = (*FileStore)(nil)

// stateFile is the YAML document written by FileStore.
type stateFile struct {
	Transfers map[string]transfer.TransferState `yaml:"transfers"`
}

// FileStore keeps states in a single YAML file. Every Put rewrites the file through a temporary file
// and a rename, so a crash never leaves a partially written document behind.
//
// A FileStore is safe for concurrent use within a process. Several processes must not share a file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore backed by path. The file is created by the first Put.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("statestore: file path is required")
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(_ context.Context, key string) (transfer.TransferState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return transfer.TransferState{}, false, err
	}
	state, ok := doc.Transfers[key]

	return state, ok, nil
}

func (s *FileStore) Put(_ context.Context, key string, state transfer.TransferState) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Transfers[key] = state

	return s.write(doc)
}

func (s *FileStore) List(context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(doc.Transfers))
	for key, state := range doc.Transfers {
		entries = append(entries, Entry{Key: key, State: state})
	}
	sortEntries(entries)

	return entries, nil
}

func (s *FileStore) read() (stateFile, error) {
	doc := stateFile{}

	b, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return doc, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	default:
		if err = yaml.Unmarshal(b, &doc); err != nil {
			return doc, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
		}
	}
	if doc.Transfers == nil {
		doc.Transfers = map[string]transfer.TransferState{}
	}

	return doc, nil
}

func (s *FileStore) write(doc stateFile) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode states: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}

	return nil
}

// Package store provides the persistent key-value blob shared by the tracker
// and the sync dispatcher. Values are JSON-encoded into a single file in the
// app home dir; every Set rewrites the file atomically.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"relloyd/focustrack/config"
)

var (
	fnGetStoreFilePath = config.FnDefaultCreateAppHomeDirAndGetConfigFilePath
	fnSafeWrite        = config.FnDefaultSafeWriteViaTemp
)

type FileStore struct {
	logger *zap.SugaredLogger
	mu     sync.Mutex
	path   string
	data   map[string]json.RawMessage
}

// Open loads (or creates) the store file in the app home dir. An unreadable
// or corrupt file is logged and replaced with an empty store rather than
// failing: losing stale telemetry is preferable to refusing to start.
func Open(logger *zap.SugaredLogger, fileName string) (*FileStore, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger must be provided")
	}
	if fileName == "" {
		return nil, fmt.Errorf("store file name must be provided")
	}

	path, err := fnGetStoreFilePath(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store file path: %w", err)
	}

	s := &FileStore{
		logger: logger,
		path:   path,
		data:   make(map[string]json.RawMessage),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Errorf("Failed to read store file %q, starting empty: %v", path, err)
		}
		return s, nil
	}

	if err := json.Unmarshal(b, &s.data); err != nil {
		logger.Errorf("Store file %q is corrupt, starting empty: %v", path, err)
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Get unmarshals the value for key into out and reports whether the key
// existed.
func (s *FileStore) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("failed to unmarshal store key %q: %w", key, err)
	}
	return true, nil
}

// Set stores the value for key and persists the whole store to disk.
func (s *FileStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal store key %q: %w", key, err)
	}
	s.data[key] = raw

	return s.flush()
}

// flush writes the store file. Callers must hold s.mu.
func (s *FileStore) flush() error {
	b, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := fnSafeWrite(s.path, string(b)); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ladderworks/ladderkit/pkg/ladder"
	"github.com/ladderworks/ladderkit/pkg/observability"
)

// FileStore is a file-based library for CLI use: one JSON document per
// file, named by document id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based library.
// If baseDir is empty, defaults to ~/.config/ladderkit/library/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "ladderkit", "library")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Get retrieves a document by id.
func (s *FileStore) Get(ctx context.Context, id string) (*ladder.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	doc, err := ladder.ReadFile(s.docPath(id))
	observability.Storage().OnQuery(ctx, "file", "get", time.Since(start), err)
	if err != nil {
		if _, statErr := os.Stat(s.docPath(id)); os.IsNotExist(statErr) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	doc.ID = id
	return doc, nil
}

// Put saves a document, assigning an id when needed.
func (s *FileStore) Put(ctx context.Context, doc *ladder.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := doc.EnsureID()
	start := time.Now()
	err := ladder.WriteFile(doc, s.docPath(id))
	observability.Storage().OnWrite(ctx, "file", "put", time.Since(start), err)
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns summaries of every document in the directory.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	entries, err := os.ReadDir(s.baseDir)
	observability.Storage().OnQuery(ctx, "file", "list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		doc, err := ladder.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			// Skip files that are not valid documents.
			continue
		}
		out = append(out, Summary{
			ID:    strings.TrimSuffix(entry.Name(), ".json"),
			Name:  doc.Name,
			Rungs: len(doc.Rungs),
		})
	}
	return out, nil
}

// Delete removes a document.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := os.Remove(s.docPath(id))
	observability.Storage().OnWrite(ctx, "file", "delete", time.Since(start), err)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)

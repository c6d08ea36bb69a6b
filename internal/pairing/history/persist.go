package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persister loads and saves the history document.
type Persister interface {
	// Load returns the stored document. It returns an error wrapping
	// ErrNotFound when nothing has been stored and ErrCorrupt when the
	// stored data cannot be decoded.
	Load(ctx context.Context) (*Document, error)
	// Save replaces the stored document.
	Save(ctx context.Context, doc *Document) error
}

// FilePersister stores the document as indented JSON in a single file.
type FilePersister struct {
	Path string
}

// NewFilePersister returns a FilePersister for path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load implements Persister.
func (p *FilePersister) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p.Path)
		}
		return nil, fmt.Errorf("failed to read pairing history: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, p.Path, err)
	}
	return &doc, nil
}

// Save implements Persister. The file is replaced atomically via a
// temporary file in the same directory.
func (p *FilePersister) Save(_ context.Context, doc *Document) error {
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pairing history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pairing_history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pairing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pairing history: %w", err)
	}
	if err := os.Rename(tmpName, p.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace pairing history: %w", err)
	}
	return nil
}

// MemoryPersister keeps the document in memory. Useful for tests and for
// running without a cache directory.
type MemoryPersister struct {
	doc     *Document
	SaveErr error
	saves   int
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context) (*Document, error) {
	if m.doc == nil {
		return nil, ErrNotFound
	}
	return cloneDocument(m.doc), nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, doc *Document) error {
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.doc = cloneDocument(doc)
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryPersister) Saves() int { return m.saves }

func cloneDocument(doc *Document) *Document {
	out := &Document{
		Records:        make([]PairingEvent, len(doc.Records)),
		AffinityScores: make([]AffinityScore, len(doc.AffinityScores)),
	}
	for i, r := range doc.Records {
		out.Records[i] = r.clone()
	}
	copy(out.AffinityScores, doc.AffinityScores)
	return out
}

// Package document manages file metadata for project attachments. The files
// themselves live in S3; this package tracks the records and hands out
// presigned URLs for upload and download.
package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// =============================================================================
// DOCUMENT RECORDS
// =============================================================================

// Document is the metadata record for one uploaded file. IDs are ULIDs so a
// project's documents sort by upload time.
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ObjectKey   string    `json:"object_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New registers a document record and derives its S3 object key. The file
// name is kept as given; the key nests under the project so bucket listings
// group naturally.
func New(projectID, name, contentType string, sizeBytes int64) (*Document, error) {
	if projectID == "" {
		return nil, fmt.Errorf("document requires a project ID")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("document requires a file name")
	}
	if strings.Contains(name, "/") {
		return nil, fmt.Errorf("file name '%s' cannot contain '/'", name)
	}
	if sizeBytes < 0 {
		return nil, fmt.Errorf("document size cannot be negative")
	}

	id := ulid.Make().String()
	now := time.Now()
	return &Document{
		ID:          id,
		ProjectID:   projectID,
		Name:        name,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		ObjectKey:   fmt.Sprintf("projects/%s/documents/%s/%s", projectID, id, name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Validate checks a record parsed off the wire
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	if d.ProjectID == "" {
		return fmt.Errorf("document '%s' has no project", d.ID)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("document '%s' has no file name", d.ID)
	}
	if d.ObjectKey == "" {
		return fmt.Errorf("document '%s' has no object key", d.ID)
	}
	return nil
}

// ToJSON serializes the document for frontend sync
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Parse deserializes and validates a document record
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// =============================================================================
// IN-MEMORY SHELF
// =============================================================================

// Shelf holds document records in memory, mirroring what the repository
// persists. Thread-safe.
type Shelf struct {
	mu      sync.RWMutex
	records map[string]*Document
}

// NewShelf creates an empty document shelf
func NewShelf() *Shelf {
	return &Shelf{records: make(map[string]*Document)}
}

// Add stores a document record
func (s *Shelf) Add(d *Document) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[d.ID] = d
	return nil
}

// Get retrieves a document by ID
func (s *Shelf) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("document '%s' not found", id)
	}
	return d, nil
}

// Delete removes a document record. Deleting an unknown ID is a no-op.
func (s *Shelf) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// ByProject returns a project's documents in upload order.
func (s *Shelf) ByProject(projectID string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0)
	for _, d := range s.records {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Replace swaps the full record set, used when loading from the repository
func (s *Shelf) Replace(docs []*Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Document, len(docs))
	for _, d := range docs {
		s.records[d.ID] = d
	}
}

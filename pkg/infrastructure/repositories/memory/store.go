package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
)

type collection struct {
	docs  []repositories.Document
	index map[string]int
}

// Store provides in-memory document storage
type Store struct {
	mu          sync.RWMutex
	collections map[repositories.Collection]*collection
	newID       func() string
}

// NewStore creates a new in-memory document store
func NewStore() *Store {
	return &Store{
		collections: make(map[repositories.Collection]*collection),
		newID:       uuid.NewString,
	}
}

// Verify interface compliance
var _ repositories.DocumentStore = (*Store)(nil)

// WithIDGenerator replaces the uuid generator, for deterministic ids in tests.
func (s *Store) WithIDGenerator(newID func() string) *Store {
	s.newID = newID
	return s
}

func (s *Store) collection(name repositories.Collection) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{index: make(map[string]int)}
		s.collections[name] = c
	}
	return c
}

// Create stores a new document and returns its id
func (s *Store) Create(ctx context.Context, name repositories.Collection, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := repositories.EncodeObject(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	id := s.newID()
	if _, exists := c.index[id]; exists {
		return "", fmt.Errorf("document %s/%s already exists", name, id)
	}
	c.index[id] = len(c.docs)
	c.docs = append(c.docs, repositories.Document{ID: id, Body: body})
	return id, nil
}

// Update merges patch into an existing document
func (s *Store) Update(ctx context.Context, name repositories.Collection, id string, patch any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("document %s/%s: %w", name, id, entities.ErrNotFound)
	}
	merged, err := repositories.MergeJSON(c.docs[i].Body, patch)
	if err != nil {
		return err
	}
	c.docs[i].Body = merged
	return nil
}

// ListAll returns copies of every document in creation order
func (s *Store) ListAll(ctx context.Context, name repositories.Collection) ([]repositories.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []repositories.Document{}, nil
	}
	out := make([]repositories.Document, len(c.docs))
	for i, doc := range c.docs {
		out[i] = repositories.Document{ID: doc.ID, Body: append([]byte(nil), doc.Body...)}
	}
	return out, nil
}

// Delete removes a document
func (s *Store) Delete(ctx context.Context, name repositories.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("document %s/%s: %w", name, id, entities.ErrNotFound)
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.docs); j++ {
		c.index[c.docs[j].ID] = j
	}
	return nil
}

// Count returns the number of documents in a collection
func (s *Store) Count(name repositories.Collection) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.docs)
	}
	return 0
}

package testing

import (
	"context"
	"sync"

	"github.com/vsinha/bomkit/pkg/domain/repositories"
)

// Op names a DocumentStore method.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpListAll Op = "list"
	OpDelete  Op = "delete"
)

// Call records one store call.
type Call struct {
	Op         Op
	Collection repositories.Collection
	ID         string
}

// SpyStore wraps a DocumentStore, records every call and can inject errors.
type SpyStore struct {
	repositories.DocumentStore

	mu    sync.Mutex
	calls []Call
	fail  map[Op]error
}

func NewSpyStore(inner repositories.DocumentStore) *SpyStore {
	return &SpyStore{DocumentStore: inner, fail: make(map[Op]error)}
}

// Verify interface compliance
var _ repositories.DocumentStore = (*SpyStore)(nil)

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (s *SpyStore) FailOn(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *SpyStore) record(op Op, c repositories.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: op, Collection: c, ID: id})
	return s.fail[op]
}

func (s *SpyStore) Create(ctx context.Context, c repositories.Collection, doc any) (string, error) {
	if err := s.record(OpCreate, c, ""); err != nil {
		return "", err
	}
	return s.DocumentStore.Create(ctx, c, doc)
}

func (s *SpyStore) Update(ctx context.Context, c repositories.Collection, id string, patch any) error {
	if err := s.record(OpUpdate, c, id); err != nil {
		return err
	}
	return s.DocumentStore.Update(ctx, c, id, patch)
}

func (s *SpyStore) ListAll(ctx context.Context, c repositories.Collection) ([]repositories.Document, error) {
	if err := s.record(OpListAll, c, ""); err != nil {
		return nil, err
	}
	return s.DocumentStore.ListAll(ctx, c)
}

func (s *SpyStore) Delete(ctx context.Context, c repositories.Collection, id string) error {
	if err := s.record(OpDelete, c, id); err != nil {
		return err
	}
	return s.DocumentStore.Delete(ctx, c, id)
}

// Calls returns the recorded calls.
func (s *SpyStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Writes counts create, update and delete calls.
func (s *SpyStore) Writes() int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op != OpListAll {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (s *SpyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

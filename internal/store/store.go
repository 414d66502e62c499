package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotInitialized is returned by Load when no document has been bootstrapped.
var ErrNotInitialized = errors.New("document store not initialized")

// Backend is the durable home of the document. Load and Save move the whole
// document; Init writes seed only when nothing is stored yet.
type Backend interface {
	Init(ctx context.Context, seed *Document) error
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// Transactor is implemented by backends that can isolate a load-mutate-save
// cycle themselves, across processes.
type Transactor interface {
	Update(ctx context.Context, fn func(*Document) error) error
}

// Store serializes every mutation of the document behind one writer lock.
type Store struct {
	backend Backend
	mu      sync.Mutex
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Init bootstraps the backend with seed if it holds no document yet.
func (s *Store) Init(ctx context.Context, seed *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Init(ctx, seed); err != nil {
		return fmt.Errorf("init document: %w", err)
	}
	return nil
}

// Snapshot returns the current document. Callers may read it freely; changes
// made to it are never persisted.
func (s *Store) Snapshot(ctx context.Context) (*Document, error) {
	doc, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	doc.normalize()
	return doc, nil
}

// Update runs fn against a freshly loaded document and saves the result. If
// fn returns an error nothing is written and the error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, ok := s.backend.(Transactor); ok {
		return tx.Update(ctx, func(doc *Document) error {
			doc.normalize()
			return fn(doc)
		})
	}

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc.normalize()

	if err := fn(doc); err != nil {
		return err
	}

	if err := s.backend.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

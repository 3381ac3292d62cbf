package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/user/catalog-crawler/internal/domain"
)

// MemoryStore is the in-process CaptureStore.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[domain.CaptureKey]domain.CapturedPage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[domain.CaptureKey]domain.CapturedPage)}
}

func (s *MemoryStore) Put(_ context.Context, key domain.CaptureKey, page domain.CapturedPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[key]; ok {
		return fmt.Errorf("%s: %w", key, domain.ErrCaptureExists)
	}
	if page.Label == "" {
		page.Label = key.String()
	}
	s.pages[key] = page
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key domain.CaptureKey) (domain.CapturedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[key]
	if !ok {
		return domain.CapturedPage{}, fmt.Errorf("%s: %w", key, domain.ErrCaptureNotFound)
	}
	return page, nil
}

func (s *MemoryStore) ProductIndices(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var indices []int
	for key := range s.pages {
		if key.Kind == domain.KindProduct {
			indices = append(indices, key.Index)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[domain.CaptureKey]domain.CapturedPage)
	return nil
}

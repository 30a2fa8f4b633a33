// Package memory is the in-process dataset store used by default and in
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"fincoach/internal/core"
)

type Store struct {
	mu       sync.RWMutex
	datasets map[string]core.Dataset
}

func New() *Store {
	return &Store{datasets: make(map[string]core.Dataset)}
}

func (s *Store) Save(_ context.Context, d core.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.ID] = d
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	if !ok {
		return core.Dataset{}, core.ErrDatasetNotFound
	}
	return d, nil
}

func (s *Store) List(_ context.Context) ([]core.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.DatasetInfo, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, core.DatasetInfo{
			ID:         d.ID,
			Filename:   d.Filename,
			SHA256:     d.SHA256,
			UploadedAt: d.UploadedAt,
			Rows:       len(d.Transactions),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return core.ErrDatasetNotFound
	}
	delete(s.datasets, id)
	return nil
}

func (s *Store) FindByHash(_ context.Context, sha256 string) (core.DatasetInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.datasets {
		if d.SHA256 == sha256 {
			return core.DatasetInfo{
				ID:         d.ID,
				Filename:   d.Filename,
				SHA256:     d.SHA256,
				UploadedAt: d.UploadedAt,
				Rows:       len(d.Transactions),
			}, true, nil
		}
	}
	return core.DatasetInfo{}, false, nil
}

func (s *Store) Close() error { return nil }

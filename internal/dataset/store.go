package dataset

import (
	"context"
	"log/slog"
	"sync"
)

// Store memoizes the loaded Snapshot. The first Snapshot call loads; later
// calls return the cached bundle until Invalidate or Reload. A failed load is
// not cached, so a later call retries.
type Store struct {
	loader *Loader
	logger *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

func NewStore(loader *Loader, logger *slog.Logger) *Store {
	return &Store{loader: loader, logger: logger}
}

// Snapshot returns the cached bundle, loading it on first use.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.snap = snap
	return snap, nil
}

// Invalidate drops the cached bundle so the next Snapshot call reloads.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
	s.logger.Info("dataset cache invalidated")
}

// Reload invalidates and loads in one step. On failure the previous bundle is
// already gone: a broken data directory must not keep serving stale views.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.snap = snap
	return snap, nil
}

// Loaded reports whether a bundle is currently cached, without triggering a
// load. Used by readiness checks.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"myfood/internal/snapshot"
)

// store is the part every in-memory registry store shares: the lock, the
// snapshot location and the logger.
type store struct {
	mu sync.RWMutex
	// saveMu serializes Save and Reset so snapshot writes and removals
	// land in the order the store state changed.
	saveMu sync.Mutex
	kind   string
	path   string
	log    *slog.Logger
}

func (s *store) init(kind, path string, log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s.kind = kind
	s.path = path
	s.log = log.With("registry", kind)
}

// transaction-aware locking helpers. The key carries the store so a
// transaction on one store does not disable locking on another.
type txKey struct{ s *store }

func (s *store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{s}) != nil
}

func (s *store) rlock(ctx context.Context) {
	if !s.inTx(ctx) {
		s.mu.RLock()
	}
}
func (s *store) runlock(ctx context.Context) {
	if !s.inTx(ctx) {
		s.mu.RUnlock()
	}
}
func (s *store) wlock(ctx context.Context) {
	if !s.inTx(ctx) {
		s.mu.Lock()
	}
}
func (s *store) wunlock(ctx context.Context) {
	if !s.inTx(ctx) {
		s.mu.Unlock()
	}
}

// WithTransaction holds the write lock for the duration of fn and marks
// the context so the store's own methods skip their locks.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{s}, true))
}

func (s *store) persistent() bool { return s.path != "" }

func (s *store) removeSnapshot() {
	if !s.persistent() {
		return
	}
	if err := snapshot.Remove(s.path); err != nil {
		s.log.Error("snapshot.remove_failed", "path", s.path, "error", err)
	}
}

func (s *store) logSaved(n int) {
	s.log.Debug("snapshot.saved", "path", s.path, "records", n)
}

func (s *store) logSaveFailed(err error) {
	s.log.Error("snapshot.save_failed", "path", s.path, "error", err)
}

// loadFailed reports whether err means the store must start empty. A
// snapshot that exists but cannot be used is logged and deleted.
func (s *store) loadFailed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, snapshot.ErrNotExist) {
		s.log.Debug("snapshot.absent", "path", s.path)
		return true
	}
	s.log.Warn("snapshot.load_failed", "path", s.path, "error", err, "action", "reset")
	s.removeSnapshot()
	return true
}

func (s *store) logLoaded(n int, next int64) {
	s.log.Info("snapshot.loaded", "path", s.path, "records", n, "next_id", next)
}

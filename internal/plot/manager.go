package plot

import (
	"context"
	"sync"
	"time"

	"garden-application-api-server/internal/docstore"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ManagerOptions tunes a Manager. Zero values pick the defaults.
type ManagerOptions struct {
	WriteTimeout time.Duration
	CacheSize    int
}

// Manager hands out one mounted Session per plot. Concurrent first requests
// for a plot share a single mount; mounted sessions are kept in a bounded LRU.
// A session leaving the cache is closed, so callers still holding it get
// ErrSessionClosed instead of writing over a newer session.
type Manager struct {
	repo         Repository
	logger       *zap.Logger
	writeTimeout time.Duration

	mounts   singleflight.Group
	sessions *lru.Cache[string, *Session]

	mu       sync.Mutex
	flushers map[string]*Flusher
}

func NewManager(store docstore.Store, opts ManagerOptions, logger *zap.Logger) (*Manager, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	cache, err := lru.NewWithEvict(opts.CacheSize, func(_ string, s *Session) {
		s.close()
	})
	if err != nil {
		return nil, err
	}
	return &Manager{
		repo:         Repository{Store: store},
		logger:       logger,
		writeTimeout: opts.WriteTimeout,
		sessions:     cache,
		flushers:     make(map[string]*Flusher),
	}, nil
}

// Session returns the mounted session of plotID, mounting it on first use.
// A failed mount is not cached; the next call tries again. Writes still queued
// by an evicted session land before the plot is read again.
func (m *Manager) Session(ctx context.Context, plotID string) (*Session, error) {
	if s, ok := m.sessions.Get(plotID); ok {
		return s, nil
	}
	v, err, _ := m.mounts.Do(plotID, func() (any, error) {
		if s, ok := m.sessions.Get(plotID); ok {
			return s, nil
		}
		f := m.flusher(plotID)
		if err := f.Drain(ctx); err != nil {
			return nil, err
		}
		s := NewSession(plotID, m.repo, f, m.logger)
		if err := s.Mount(ctx); err != nil {
			return nil, err
		}
		m.sessions.Add(plotID, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Forget closes the session of plotID, waits for its queued writes and deletes
// the stored grid.
func (m *Manager) Forget(ctx context.Context, plotID string) error {
	m.sessions.Remove(plotID)

	m.mu.Lock()
	f, ok := m.flushers[plotID]
	delete(m.flushers, plotID)
	m.mu.Unlock()
	if ok {
		if err := f.Drain(ctx); err != nil {
			return err
		}
	}
	return m.repo.Delete(ctx, plotID)
}

// Close waits for every queued write to finish.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	flushers := make([]*Flusher, 0, len(m.flushers))
	for _, f := range m.flushers {
		flushers = append(flushers, f)
	}
	m.mu.Unlock()

	for _, f := range flushers {
		if err := f.Drain(ctx); err != nil {
			return err
		}
	}
	return nil
}

// flusher returns the write queue of plotID. Queues outlive evicted sessions
// and are drained before the plot is mounted again.
func (m *Manager) flusher(plotID string) *Flusher {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flushers[plotID]
	if !ok {
		f = NewFlusher(func(ctx context.Context, g Grid) error {
			return m.repo.Save(ctx, plotID, g)
		}, m.writeTimeout)
		m.flushers[plotID] = f
	}
	return f
}

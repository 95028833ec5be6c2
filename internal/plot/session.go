package plot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/metrics"

	"go.uber.org/zap"
)

// State is the load state of a session.
type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "loading"
}

var (
	// ErrNotReady is returned by mutations on a session that has not mounted.
	ErrNotReady = errors.New("plot: session is still loading")
	// ErrSessionClosed is returned by mutations on a session that was evicted
	// or whose plot was deleted.
	ErrSessionClosed = errors.New("plot: session closed")
)

// Result is the session state after a mutation.
type Result struct {
	Grid   Grid
	Region Region
	// Changed is false when the mutation left the grid as it was; nothing is
	// written in that case.
	Changed bool
	// Persisted is true once the store acknowledged a write carrying Grid.
	// A failed write is not rolled back in memory.
	Persisted bool
}

// Session owns the grid of one plot while it is being viewed and edited.
// Mutations update the in-memory grid first and then go through the plot's
// write queue.
type Session struct {
	plotID  string
	repo    Repository
	flusher *Flusher
	logger  *zap.Logger

	mu     sync.RWMutex
	state  State
	grid   Grid
	closed bool
}

func NewSession(plotID string, repo Repository, flusher *Flusher, logger *zap.Logger) *Session {
	return &Session{
		plotID:  plotID,
		repo:    repo,
		flusher: flusher,
		logger:  logger.With(zap.String("plot_id", plotID)),
	}
}

func (s *Session) PlotID() string { return s.plotID }

// Mount loads the stored grid. A missing, malformed or out-of-range document
// is replaced by a freshly seeded empty grid. Store failures leave the session
// Loading.
func (s *Session) Mount(ctx context.Context) error {
	g, err := s.repo.Fetch(ctx, s.plotID)
	outcome := "loaded"
	switch {
	case err == nil:
		s.logger.Debug("Grid found in store")
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, ErrMalformedDocument), errors.Is(err, ErrCellOutOfRange):
		outcome = "seeded"
		if !errors.Is(err, docstore.ErrNotFound) {
			outcome = "reseeded"
			s.logger.Warn("Stored grid unreadable, reseeding", zap.Error(err))
		}
		g, err = s.repo.Seed(ctx, s.plotID)
		if err != nil {
			metrics.PlotMounts.WithLabelValues("error").Inc()
			s.logger.Error("Error creating grid", zap.Error(err))
			return err
		}
		s.logger.Info("Created new grid in store")
	default:
		metrics.PlotMounts.WithLabelValues("error").Inc()
		s.logger.Error("Error loading grid", zap.Error(err))
		return fmt.Errorf("load plot %s: %w", s.plotID, err)
	}
	metrics.PlotMounts.WithLabelValues(outcome).Inc()

	s.mu.Lock()
	s.grid = g
	s.state = Ready
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current state and a copy of the grid.
func (s *Session) Snapshot() (State, Grid) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.grid
}

// Toggle flips a cell between soil and background.
func (s *Session) Toggle(ctx context.Context, row, col int) (Result, error) {
	return s.apply(ctx, func(g Grid) Grid { return ToggleCell(g, row, col) })
}

// SetDetail records planting data for an active cell.
func (s *Session) SetDetail(ctx context.Context, row, col int, d CellDetail) (Result, error) {
	return s.apply(ctx, func(g Grid) Grid { return SetCellDetail(g, row, col, d) })
}

// close rejects every later mutation. Writes already submitted still run.
func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) apply(ctx context.Context, mutate func(Grid) Grid) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrSessionClosed
	}
	if s.state != Ready {
		s.mu.Unlock()
		return Result{}, ErrNotReady
	}
	before := s.grid
	s.grid = mutate(before)
	g := s.grid
	res := Result{Grid: g, Region: ComputeRegion(g)}
	if g.Equal(&before) {
		s.mu.Unlock()
		return res, nil
	}
	res.Changed = true
	// Submitting under the lock keeps queue order equal to mutation order.
	done := s.flusher.Submit(g)
	s.mu.Unlock()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("Error updating grid", zap.Error(err))
			return res, nil
		}
		res.Persisted = true
		s.logger.Debug("Grid updated in store")
	case <-ctx.Done():
		s.logger.Debug("Caller left before grid write finished", zap.Error(ctx.Err()))
	}
	return res, nil
}

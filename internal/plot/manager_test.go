package plot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"garden-application-api-server/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagerMountsOncePerPlot(t *testing.T) {
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{}, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Session(context.Background(), "p1")
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		assert.Same(t, sessions[0], s)
	}
	assert.Equal(t, 1, store.getCount())
	assert.Len(t, store.setCalls(), 1)
}

func TestManagerRetriesFailedMount(t *testing.T) {
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{}, zap.NewNop())
	require.NoError(t, err)

	store.fail(errors.New("unavailable"), nil)
	_, err = m.Session(context.Background(), "p1")
	require.Error(t, err)

	store.fail(nil, nil)
	s, err := m.Session(context.Background(), "p1")
	require.NoError(t, err)
	state, _ := s.Snapshot()
	assert.Equal(t, Ready, state)
}

func TestManagerEvictionKeepsWriteQueue(t *testing.T) {
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{CacheSize: 1}, zap.NewNop())
	require.NoError(t, err)

	s1, err := m.Session(context.Background(), "p1")
	require.NoError(t, err)
	_, err = s1.Toggle(context.Background(), 0, 0)
	require.NoError(t, err)

	_, err = m.Session(context.Background(), "p2")
	require.NoError(t, err)

	again, err := m.Session(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotSame(t, s1, again)
	_, g := again.Snapshot()
	assert.True(t, g[0][0].IsActive)
	assert.Same(t, s1.flusher, again.flusher)
	require.NoError(t, m.Close(context.Background()))
}

func TestManagerForgetDeletesGrid(t *testing.T) {
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{}, zap.NewNop())
	require.NoError(t, err)

	s, err := m.Session(context.Background(), "p1")
	require.NoError(t, err)
	_, err = s.Toggle(context.Background(), 3, 3)
	require.NoError(t, err)

	require.NoError(t, m.Forget(context.Background(), "p1"))
	_, err = store.Memory.Get(context.Background(), docstore.Squares, "p1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	fresh, err := m.Session(context.Background(), "p1")
	require.NoError(t, err)
	_, g := fresh.Snapshot()
	assert.Equal(t, 0, g.ActiveCount())
}

// gatedStore holds every merge write until release is closed.
type gatedStore struct {
	*recordingStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		recordingStore: newRecordingStore(),
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, collection, id string, doc any, opts docstore.SetOptions) error {
	if opts.Merge {
		s.once.Do(func() { close(s.entered) })
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.recordingStore.Set(ctx, collection, id, doc, opts)
}

func TestManagerRemountWaitsForPendingWrite(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	m, err := NewManager(store, ManagerOptions{CacheSize: 1}, zap.NewNop())
	require.NoError(t, err)

	s1, err := m.Session(ctx, "p1")
	require.NoError(t, err)
	toggled := make(chan Result, 1)
	go func() {
		res, err := s1.Toggle(ctx, 0, 0)
		assert.NoError(t, err)
		toggled <- res
	}()
	<-store.entered

	_, err = m.Session(ctx, "p2")
	require.NoError(t, err)

	remounted := make(chan *Session, 1)
	go func() {
		s, err := m.Session(ctx, "p1")
		assert.NoError(t, err)
		remounted <- s
	}()
	select {
	case <-remounted:
		t.Fatal("plot remounted while its last write was still pending")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	again := <-remounted
	require.NotNil(t, again)
	assert.True(t, (<-toggled).Persisted)

	_, g := again.Snapshot()
	assert.True(t, g[0][0].IsActive)

	res, err := again.Toggle(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, res.Persisted)

	stored, err := Repository{Store: store}.Fetch(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, stored[0][0].IsActive, "acknowledged toggle must survive the remount")
	assert.True(t, stored[1][1].IsActive)
	require.NoError(t, m.Close(ctx))
}

func TestManagerEvictedSessionRejectsMutations(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{CacheSize: 1}, zap.NewNop())
	require.NoError(t, err)

	stale, err := m.Session(ctx, "p1")
	require.NoError(t, err)
	_, err = m.Session(ctx, "p2")
	require.NoError(t, err)
	current, err := m.Session(ctx, "p1")
	require.NoError(t, err)

	_, err = current.Toggle(ctx, 2, 2)
	require.NoError(t, err)
	_, err = stale.Toggle(ctx, 5, 5)
	assert.ErrorIs(t, err, ErrSessionClosed)

	stored, err := Repository{Store: store}.Fetch(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, stored[2][2].IsActive)
	assert.False(t, stored[5][5].IsActive)
}

func TestManagerForgetClosesHeldSession(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	m, err := NewManager(store, ManagerOptions{}, zap.NewNop())
	require.NoError(t, err)

	s, err := m.Session(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, m.Forget(ctx, "p1"))

	_, err = s.Toggle(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = store.Memory.Get(ctx, docstore.Squares, "p1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

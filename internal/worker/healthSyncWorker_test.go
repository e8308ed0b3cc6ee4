package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/ocrsynth/internal/pkg/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryHealthRepo struct {
	mu      sync.Mutex
	stored  map[string]int
	stores  int
	loadErr error
}

func (r *memoryHealthRepo) Load(context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make(map[string]int, len(r.stored))
	for k, v := range r.stored {
		out[k] = v
	}
	return out, nil
}

func (r *memoryHealthRepo) Store(_ context.Context, scores map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = scores
	r.stores++
	return nil
}

func (r *memoryHealthRepo) snapshot() (map[string]int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored, r.stores
}

func TestHealthSyncWorkerRestore(t *testing.T) {
	repo := &memoryHealthRepo{stored: map[string]int{"font/a": 40, "font/b": 100}}
	tracker := health.NewTracker()
	tracker.RecordFailure("font/b")

	w := NewHealthSyncWorker(repo, tracker, time.Hour)
	require.NoError(t, w.Restore(context.Background()))

	assert.Equal(t, 40, tracker.Health("font/a"))
	assert.Equal(t, 90, tracker.Health("font/b"))
}

func TestHealthSyncWorkerRestoreError(t *testing.T) {
	repo := &memoryHealthRepo{loadErr: errors.New("connection refused")}
	w := NewHealthSyncWorker(repo, health.NewTracker(), time.Hour)
	assert.Error(t, w.Restore(context.Background()))
}

func TestHealthSyncWorkerStores(t *testing.T) {
	repo := &memoryHealthRepo{}
	tracker := health.NewTracker()
	tracker.RecordFailure("background/paper.png")

	w := NewHealthSyncWorker(repo, tracker, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, n := repo.snapshot()
		return n >= 2
	}, time.Second, 5*time.Millisecond)

	tracker.RecordFailure("background/paper.png")
	cancel()
	<-done

	stored, _ := repo.snapshot()
	assert.Equal(t, 80, stored["background/paper.png"])
}

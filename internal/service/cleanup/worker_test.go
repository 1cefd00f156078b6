package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRemover struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingRemover) CleanupIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, maxIdle)
	return 0
}

func (r *recordingRemover) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestWorker(t *testing.T) {
	remover := &recordingRemover{}
	w := NewWorker(remover, 10*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return remover.count() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	require.NotEmpty(t, remover.calls)
	assert.Equal(t, time.Hour, remover.calls[0])
}

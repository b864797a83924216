package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRecomputer struct {
	mu       sync.Mutex
	squadIDs []string
}

func (f *fakeRecomputer) RecomputeAll(ctx context.Context, squadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.squadIDs = append(f.squadIDs, squadID)
	return nil
}

func (f *fakeRecomputer) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.squadIDs))
	copy(out, f.squadIDs)
	return out
}

func TestRecomputeWorker_ProcessesJobs(t *testing.T) {
	recomputer := &fakeRecomputer{}
	worker := NewRecomputeWorker(recomputer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	worker.Enqueue("squad-1")
	worker.Enqueue("squad-2")

	assert.Eventually(t, func() bool {
		return len(recomputer.seen()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []string{"squad-1", "squad-2"}, recomputer.seen())
}

func TestRecomputeWorker_EnqueueNeverBlocks(t *testing.T) {
	// No Start: the queue fills up and overflow jobs are dropped.
	worker := NewRecomputeWorker(&fakeRecomputer{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			worker.Enqueue("squad-overflow")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestRecomputeWorker_StopsOnContextCancel(t *testing.T) {
	recomputer := &fakeRecomputer{}
	worker := NewRecomputeWorker(recomputer)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	// Give the loop a moment to observe cancellation, then verify later jobs
	// are never processed.
	time.Sleep(50 * time.Millisecond)
	worker.Enqueue("squad-after-stop")
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, recomputer.seen())
}

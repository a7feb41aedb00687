package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xisscag-ops/rr4world/internal/flow"
)

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	got, err := st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("empty store must return nil session")
	}

	sess := flow.NewSession(1, flow.StepWaterbody)
	if err := st.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err = st.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ChatID != 1 {
		t.Fatalf("got %+v", got)
	}

	if err := st.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = st.Get(ctx, 1)
	if got != nil {
		t.Fatal("session survived delete")
	}
	// A repeated delete is a no-op.
	if err := st.Delete(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryReapEvictsOnlyStale(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	stale := flow.NewSession(1, flow.StepWaterbody)
	stale.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	fresh := flow.NewSession(2, flow.StepWaterbody)

	st.Put(ctx, stale)
	st.Put(ctx, fresh)

	n, err := st.Reap(ctx, time.Now().UTC().Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if got, _ := st.Get(ctx, 1); got != nil {
		t.Fatal("stale session survived reap")
	}
	if got, _ := st.Get(ctx, 2); got == nil {
		t.Fatal("fresh session was evicted")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			st.Put(ctx, flow.NewSession(chatID, flow.StepWaterbody))
			st.Get(ctx, chatID)
			st.Delete(ctx, chatID)
		}(int64(i))
	}
	wg.Wait()

	if st.Len() != 0 {
		t.Fatalf("len = %d, want 0", st.Len())
	}
}

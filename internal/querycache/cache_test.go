package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFetchCachesByKey(t *testing.T) {
	c := New(zap.NewNop())
	calls := 0
	fn := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	key := NewKey(EntityProducts, "page=1")
	for i := 0; i < 3; i++ {
		got, err := Fetch(context.Background(), c, key, fn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected result: %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	c := New(zap.NewNop())
	var calls int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	}

	key := NewKey(EntityInvoices)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Fetch(context.Background(), c, key, fn)
			if err != nil || got != 7 {
				t.Errorf("unexpected result: %v %v", got, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one in-flight request, got %d", n)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New(zap.NewNop())
	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}
	key := NewKey(EntityCustomers, "page=1")

	if _, err := Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Invalidate(EntityCustomers)
	if _, err := Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", calls)
	}
}

func TestPageKeysAreIndependent(t *testing.T) {
	c := New(zap.NewNop())
	calls := map[string]int{}
	fetcher := func(page string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			calls[page]++
			return "page-" + page, nil
		}
	}

	page1 := NewKey(EntityProducts, "page=1")
	page2 := NewKey(EntityProducts, "page=2")

	if _, err := Fetch(context.Background(), c, page1, fetcher("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Fetch(context.Background(), c, page2, fetcher("2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Fetching page 2 must not evict or invalidate page 1.
	got, err := Fetch(context.Background(), c, page1, fetcher("1"))
	if err != nil || got != "page-1" {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
	if calls["1"] != 1 || calls["2"] != 1 {
		t.Fatalf("expected one fetch per page, got %v", calls)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestInvalidateWithDependents(t *testing.T) {
	c := New(zap.NewNop())
	counts := map[string]int{}
	fetch := func(entity string) {
		t.Helper()
		_, err := Fetch(context.Background(), c, NewKey(entity, "page=1"), func(context.Context) (string, error) {
			counts[entity]++
			return entity, nil
		})
		if err != nil {
			t.Fatalf("fetch %s: %v", entity, err)
		}
	}

	for _, entity := range []string{EntityProducts, EntityCustomers, EntityCashFlow, EntitySuppliers} {
		fetch(entity)
	}

	c.InvalidateWithDependents(EntityInvoices)

	for _, entity := range []string{EntityProducts, EntityCustomers, EntityCashFlow, EntitySuppliers} {
		fetch(entity)
	}

	if counts[EntityProducts] != 2 || counts[EntityCustomers] != 2 || counts[EntityCashFlow] != 2 {
		t.Fatalf("expected dependents refetched, got %v", counts)
	}
	if counts[EntitySuppliers] != 1 {
		t.Fatalf("expected suppliers untouched by invoice save, got %d fetches", counts[EntitySuppliers])
	}
}

func TestPeekServesStaleData(t *testing.T) {
	c := New(zap.NewNop())
	key := NewKey(EntityOrders, "page=1")
	if _, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "cached", nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Invalidate(EntityOrders)

	got, ok := Peek[string](c, key)
	if !ok || got != "cached" {
		t.Fatalf("expected stale placeholder data, got %q ok=%v", got, ok)
	}
	if state := c.State(key); !state.Stale {
		t.Fatalf("expected stale entry, got %+v", state)
	}
}

func TestInvalidationDuringFlightKeepsEntryStale(t *testing.T) {
	c := New(zap.NewNop())
	key := NewKey(EntityProducts, "page=1")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()

	<-started
	c.Invalidate(EntityProducts)
	close(release)
	<-done

	// The completed fetch predates the invalidation; its result may be
	// stored as placeholder data but must not be treated as fresh.
	if state := c.State(key); !state.Stale {
		t.Fatalf("expected entry to stay stale, got %+v", state)
	}
}

func TestReadAfterInvalidationStartsFreshFlight(t *testing.T) {
	c := New(zap.NewNop())
	key := NewKey(EntityProducts, "page=1")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "pre-mutation", nil
		})
	}()

	<-started
	c.Invalidate(EntityProducts)

	// This read was issued after the mutation's invalidation; it must
	// not join the flight that started before it.
	got, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "post-mutation", nil
	})
	if err != nil || got != "post-mutation" {
		t.Fatalf("read after invalidation got %q %v", got, err)
	}

	close(release)
	<-done

	// The late pre-invalidation result must not displace the fresh
	// value or clear its freshness.
	calls := 0
	got, err = Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		calls++
		return "refetched", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "post-mutation" || calls != 0 {
		t.Fatalf("expected fresh post-mutation value with no refetch, got %q after %d calls", got, calls)
	}
}

func TestClearDuringFlightDropsResult(t *testing.T) {
	c := New(zap.NewNop())
	key := NewKey(EntityCustomers, "page=1")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "previous session", nil
		})
	}()

	<-started
	c.Clear()
	close(release)
	<-done

	if c.Len() != 0 {
		t.Fatalf("expected empty cache, a pre-clear fetch resurrected %d entries", c.Len())
	}
	if _, ok := Peek[string](c, key); ok {
		t.Fatalf("expected no data from the cleared session")
	}
}

func TestSubscribeDeliversOnInvalidate(t *testing.T) {
	c := New(zap.NewNop())
	ch, cancel := c.Subscribe(EntityProducts)
	defer cancel()

	c.Invalidate(EntityProducts)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected wake-up after invalidation")
	}

	cancel()
	c.Invalidate(EntityProducts)
	select {
	case <-ch:
		t.Fatalf("expected no delivery after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClearDropsEverything(t *testing.T) {
	c := New(zap.NewNop())
	for _, entity := range []string{EntityProducts, EntityCustomers} {
		if _, err := Fetch(context.Background(), c, NewKey(entity), func(context.Context) (string, error) {
			return entity, nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries before clear, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestFetchErrorSurfacesToCaller(t *testing.T) {
	c := New(zap.NewNop())
	key := NewKey(EntityDeliveries)
	wantErr := context.DeadlineExceeded

	_, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "", wantErr
	})
	if err != wantErr {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if state := c.State(key); state.Status != StatusError {
		t.Fatalf("expected error status, got %+v", state)
	}

	// A later successful fetch recovers the entry.
	got, err := Fetch(context.Background(), c, key, func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("expected recovery, got %q %v", got, err)
	}
}

func TestDependentsTargetsAreKnownEntities(t *testing.T) {
	deps := Dependents()
	known := map[string]bool{}
	for entity := range deps {
		known[entity] = true
	}
	for entity, targets := range deps {
		for _, target := range targets {
			if !known[target] {
				t.Fatalf("entity %s depends on unknown entity %s", entity, target)
			}
		}
	}
}

package admission

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"

	"github.com/rs/zerolog"
)

// hangingStats segura todo Record até o ctx acabar (Redis travado).
type hangingStats struct {
	calls atomic.Int64
}

func (s *hangingStats) Record(ctx context.Context, _ domain.StatsEvent) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestStatsQueue_NilStoreIsNoop(t *testing.T) {
	q := NewStatsQueue(nil, 4, zerolog.Nop())
	if q != nil {
		t.Fatalf("expected nil queue without store")
	}
	if q.Push(domain.StatsEvent{}) {
		t.Fatalf("expected push on nil queue to report drop")
	}
	q.Start(context.Background())
	if q.Dropped() != 0 {
		t.Fatalf("expected 0 dropped on nil queue")
	}
}

func TestStatsQueue_DeliversToStore(t *testing.T) {
	store := infra.NewMemoryStatsStore()
	q := NewStatsQueue(store, 4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Push(domain.StatsEvent{Client: 1, Verdict: domain.Rejected, Source: "listener"})
	waitFor(t, func() bool { return store.Total().Rejected == 1 }, "rejected stat")
}

func TestStatsQueue_HangingStoreNeitherBlocksNorSpawns(t *testing.T) {
	store := &hangingStats{}
	q := NewStatsQueue(store, 4, zerolog.Nop())
	q.timeout = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	// o drain pega o primeiro evento e trava nele
	q.Push(domain.StatsEvent{Client: 1})
	waitFor(t, func() bool { return store.calls.Load() == 1 }, "drain to pick first event")

	before := runtime.NumGoroutine()
	start := time.Now()
	const flood = 10000
	for i := 0; i < flood; i++ {
		q.Push(domain.StatsEvent{Client: domain.ClientID(i)})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected pushes not to block, took %s", elapsed)
	}

	// 4 cabem no buffer, o resto é descartado
	if got := q.Dropped(); got != flood-4 {
		t.Fatalf("expected %d dropped, got %d", flood-4, got)
	}
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Fatalf("expected no goroutine growth, before=%d after=%d", before, after)
	}
	if store.calls.Load() != 1 {
		t.Fatalf("expected a single in-flight Record, got %d", store.calls.Load())
	}
}

func TestListener_RejectionsGoThroughBoundedQueue(t *testing.T) {
	store := &hangingStats{}
	q := NewStatsQueue(store, 2, zerolog.Nop())
	l := &Listener{opts: ListenerOptions{Stats: q}}

	for i := 0; i < 100; i++ {
		l.record(domain.Decision{Client: 7, Verdict: domain.Rejected})
	}
	// sem drain rodando: 2 na fila, 98 descartados, nenhum Record chamado
	if q.Dropped() != 98 {
		t.Fatalf("expected 98 dropped, got %d", q.Dropped())
	}
	if store.calls.Load() != 0 {
		t.Fatalf("expected record path not to call the store directly")
	}
}

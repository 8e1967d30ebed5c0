package application

import (
	"context"
	"testing"
	"time"
)

type blockingSlots struct{}

func (blockingSlots) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return nil, false
	}
}

func (blockingSlots) InUse() int { return 1 }

type countingSlots struct {
	acquired int
}

func (p *countingSlots) Acquire(context.Context) (func(), bool) {
	p.acquired++
	return func() {}, true
}

func (p *countingSlots) InUse() int { return p.acquired }

func TestConcurrencyService_Acquire_AllowsWhenNoSlots(t *testing.T) {
	svc := ConcurrencyService{}
	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok")
	}
	release()
}

func TestConcurrencyService_Acquire_UsesTimeout(t *testing.T) {
	svc := ConcurrencyService{Slots: blockingSlots{}, AcquireTimeout: 10 * time.Millisecond}

	start := time.Now()
	_, ok := svc.Acquire(context.Background())
	if ok {
		t.Fatalf("expected timeout and ok=false")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("expected acquire to honour the timeout")
	}
}

func TestConcurrencyService_Acquire_NoTimeoutDelegates(t *testing.T) {
	slots := &countingSlots{}
	svc := ConcurrencyService{Slots: slots}

	if _, ok := svc.Acquire(context.Background()); !ok {
		t.Fatalf("expected ok")
	}
	if slots.acquired != 1 {
		t.Fatalf("expected Acquire to be called once, got %d", slots.acquired)
	}
}

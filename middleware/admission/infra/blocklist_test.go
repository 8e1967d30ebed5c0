package infra

import (
	"sync"
	"testing"

	"connection-guard/middleware/admission/domain"
)

func TestBlockedList_BanThenExpiresAfterTicks(t *testing.T) {
	b := NewBlockedList()
	x := domain.ClientID(42)

	if b.IsBlocked(x) {
		t.Fatalf("expected not blocked before any ban")
	}
	b.Ban(x, 10)
	if !b.IsBlocked(x) {
		t.Fatalf("expected blocked right after ban")
	}

	for i := 0; i < 9; i++ {
		b.Tick()
		if !b.IsBlocked(x) {
			t.Fatalf("expected still blocked after %d ticks", i+1)
		}
	}
	if expired := b.Tick(); expired != 1 {
		t.Fatalf("expected 1 expired on 10th tick, got %d", expired)
	}
	if b.IsBlocked(x) {
		t.Fatalf("expected not blocked after 10 ticks")
	}
	if b.Len() != 0 {
		t.Fatalf("expected entry removed, len=%d", b.Len())
	}
}

func TestBlockedList_RebanResetsToFullDuration(t *testing.T) {
	b := NewBlockedList()
	x := domain.ClientID(7)

	b.Ban(x, 10)
	b.Tick()
	b.Tick()
	if n, _ := b.Remaining(x); n != 8 {
		t.Fatalf("expected 8 remaining, got %d", n)
	}

	b.Ban(x, 10)
	if n, _ := b.Remaining(x); n != 10 {
		t.Fatalf("expected reban to reset to 10, got %d", n)
	}

	// sobrescreve mesmo quando o novo valor é menor
	b.Ban(x, 3)
	if n, _ := b.Remaining(x); n != 3 {
		t.Fatalf("expected overwrite to 3, got %d", n)
	}
}

func TestBlockedList_NonPositiveBanIsNoop(t *testing.T) {
	b := NewBlockedList()
	b.Ban(1, 0)
	b.Ban(2, -5)
	if b.Len() != 0 {
		t.Fatalf("expected no entries, got %d", b.Len())
	}
}

func TestBlockedList_TickOnEmptyAndUnknown(t *testing.T) {
	b := NewBlockedList()
	if expired := b.Tick(); expired != 0 {
		t.Fatalf("expected 0 expired on empty list, got %d", expired)
	}
	if _, ok := b.Remaining(99); ok {
		t.Fatalf("expected unknown id to have no remaining")
	}
	if b.Unban(99) {
		t.Fatalf("expected Unban of unknown id to return false")
	}
}

func TestBlockedList_UnbanAndSnapshotSorted(t *testing.T) {
	b := NewBlockedList()
	b.Ban(30, 5)
	b.Ban(10, 2)
	b.Ban(20, 9)

	if !b.Unban(20) {
		t.Fatalf("expected Unban to return true")
	}

	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap[0].Client != 10 || snap[0].Remaining != 2 || snap[1].Client != 30 || snap[1].Remaining != 5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestBlockedList_ConcurrentReadersAndWriters(t *testing.T) {
	b := NewBlockedList()

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = b.IsBlocked(domain.ClientID(i % 16))
			}
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.Ban(domain.ClientID(i%16), 1000)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.Tick()
		}
	}()
	wg.Wait()

	// todo id banido por último com 1000 ticks e no máximo 500 ticks depois
	for i := 0; i < 16; i++ {
		if !b.IsBlocked(domain.ClientID(i)) {
			t.Fatalf("expected client %d to still be blocked", i)
		}
	}
}

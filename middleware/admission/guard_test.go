package admission

import (
	"context"
	"strings"
	"testing"
	"time"

	"connection-guard/middleware/admission/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestGuard_WiresWindowBanListAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	g, err := New(Config{WindowCapacity: 5, RateLimit: 3, BanTicks: 10}, reg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := infra.HashIdentity("203.0.113.9")
	for i := 0; i < 5; i++ {
		if !g.Admit(id).Admitted() {
			t.Fatalf("expected admission %d", i+1)
		}
	}
	g.Scheduler.CycleOnce()

	dec := g.Admit(id)
	if dec.Admitted() {
		t.Fatalf("expected client banned after cycle")
	}
	if dec.RetryAfter != 10*time.Second {
		t.Fatalf("expected RetryAfter=10s with default 1s decay, got %s", dec.RetryAfter)
	}

	if n, err := testutil.GatherAndCount(reg, "admission_decisions_total"); err != nil || n != 2 {
		t.Fatalf("expected admitted and rejected series, n=%d err=%v", n, err)
	}
	expected := `
# HELP admission_bans_active Clients currently banned.
# TYPE admission_bans_active gauge
admission_bans_active 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "admission_bans_active"); err != nil {
		t.Fatalf("unexpected bans_active: %v", err)
	}
}

func TestGuard_StartBansAndExpires(t *testing.T) {
	g, err := New(Config{
		WindowCapacity: 8,
		RateLimit:      2,
		BanTicks:       20,
		CycleEvery:     2 * time.Millisecond,
		DecayEvery:     5 * time.Millisecond,
	}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := infra.HashIdentity("198.51.100.1")
	for i := 0; i < 8; i++ {
		g.Admit(id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g.Start(ctx)

	waitFor(t, func() bool { return g.Blocked.IsBlocked(id) }, "ban")
	// a janela esvazia pelo cycle e o decay remove o ban
	waitFor(t, func() bool { return !g.Blocked.IsBlocked(id) && g.Window.Len() == 0 }, "expiry")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

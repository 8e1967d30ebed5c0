package application

import (
	"testing"
	"time"

	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"
)

type fakeBans map[domain.ClientID]int

func (f fakeBans) IsBlocked(id domain.ClientID) bool { return f[id] > 0 }

type fakeRecorder struct {
	calls []domain.ClientID
}

func (r *fakeRecorder) Record(id domain.ClientID) bool {
	r.calls = append(r.calls, id)
	return true
}

func TestGate_AdmitsWhenNoPorts(t *testing.T) {
	dec := Gate{}.Admit(1)
	if !dec.Admitted() {
		t.Fatalf("expected admitted")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when admitted, got %s", dec.RetryAfter)
	}
}

func TestGate_AdmittedRecordsExactlyOnce(t *testing.T) {
	rec := &fakeRecorder{}
	g := Gate{Blocked: fakeBans{}, Recorder: rec}

	dec := g.Admit(5)
	if !dec.Admitted() || dec.Client != 5 {
		t.Fatalf("expected client 5 admitted, got %+v", dec)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 5 {
		t.Fatalf("expected exactly one Record(5), got %v", rec.calls)
	}
}

func TestGate_RejectedNeverRecords(t *testing.T) {
	rec := &fakeRecorder{}
	g := Gate{Blocked: fakeBans{5: 3}, Recorder: rec}

	dec := g.Admit(5)
	if dec.Verdict != domain.Rejected {
		t.Fatalf("expected rejected, got %s", dec.Verdict)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no Record for banned client, got %v", rec.calls)
	}
	// sem BanInspector não há estimativa
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 without inspector, got %s", dec.RetryAfter)
	}
}

func TestGate_RetryAfterFromRemainingTicks(t *testing.T) {
	bl := infra.NewBlockedList()
	bl.Ban(9, 4)
	g := Gate{Blocked: bl, Recorder: infra.NewWindow(4, 1), TickEvery: 500 * time.Millisecond}

	dec := g.Admit(9)
	if dec.Admitted() {
		t.Fatalf("expected rejected")
	}
	if dec.RetryAfter != 2*time.Second {
		t.Fatalf("expected RetryAfter=2s, got %s", dec.RetryAfter)
	}
}

func TestGate_EndToEndBanAndRecovery(t *testing.T) {
	w := infra.NewWindow(5, 3)
	bl := infra.NewBlockedList()
	s := infra.NewScheduler(w, bl, 2)
	g := Gate{Blocked: bl, Recorder: w}

	for i := 0; i < 5; i++ {
		if !g.Admit(1).Admitted() {
			t.Fatalf("expected admission %d before any cycle", i+1)
		}
	}
	s.CycleOnce() // 4 ocorrências > 3
	if g.Admit(1).Admitted() {
		t.Fatalf("expected client to be rejected after cycle")
	}

	s.DecayOnce()
	s.DecayOnce()
	// sem novo cycle, o ban expira mesmo com o cliente ainda na janela
	if !g.Admit(1).Admitted() {
		t.Fatalf("expected client admitted again after ban expired")
	}
}

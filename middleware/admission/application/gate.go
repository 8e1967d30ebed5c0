package application

import (
	"time"

	"connection-guard/middleware/admission/domain"
)

// Gate é a fachada de admissão: a única coisa que a camada de rede precisa
// chamar, uma vez por conexão, antes de qualquer outro processamento.
//
// Ele não sabe nada sobre HTTP nem sobre sockets, apenas retorna uma decisão.
type Gate struct {
	Blocked  domain.BanChecker
	Recorder domain.Recorder
	// TickEvery converte ticks de ban restantes em RetryAfter.
	// Se 0, RetryAfter fica 0.
	TickEvery time.Duration
}

// Admit rejeita se o cliente está banido. Caso contrário registra o cliente
// na janela exatamente uma vez e admite.
func (g Gate) Admit(id domain.ClientID) domain.Decision {
	if g.Blocked != nil && g.Blocked.IsBlocked(id) {
		return domain.Decision{Client: id, Verdict: domain.Rejected, RetryAfter: g.retryAfter(id)}
	}
	if g.Recorder != nil {
		g.Recorder.Record(id)
	}
	return domain.Decision{Client: id, Verdict: domain.Admitted}
}

func (g Gate) retryAfter(id domain.ClientID) time.Duration {
	if g.TickEvery <= 0 {
		return 0
	}
	insp, ok := g.Blocked.(domain.BanInspector)
	if !ok {
		return 0
	}
	ticks, ok := insp.Remaining(id)
	if !ok {
		return 0
	}
	return time.Duration(ticks) * g.TickEvery
}

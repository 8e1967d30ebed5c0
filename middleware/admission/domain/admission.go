package domain

// Camada de domínio da admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// BanChecker responde se um cliente está banido agora.
// Fica no caminho quente de toda conexão nova, então deve ser barato e
// permitir leituras concorrentes.
type BanChecker interface {
	IsBlocked(ClientID) bool
}

// BanInspector é opcional: quando o BanChecker também sabe quantos ticks
// restam no ban, o gate usa isso para sugerir Retry-After.
type BanInspector interface {
	Remaining(ClientID) (ticks int, ok bool)
}

// Recorder registra que um cliente foi admitido (ex: janela de conexões).
// Retorna false quando o registro foi descartado por saturação.
type Recorder interface {
	Record(ClientID) bool
}

type Verdict int

const (
	Admitted Verdict = iota
	Rejected
)

func (v Verdict) String() string {
	if v == Rejected {
		return "rejected"
	}
	return "admitted"
}

type Decision struct {
	Client  ClientID
	Verdict Verdict
	// RetryAfter é a estimativa de quanto falta para o ban expirar.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

func (d Decision) Admitted() bool { return d.Verdict == Admitted }

// BanEntry é uma linha da ban list (usado pela API admin).
type BanEntry struct {
	Client    ClientID `json:"client"`
	Remaining int      `json:"remaining_ticks"`
}

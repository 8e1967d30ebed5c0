package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão de admissão.
//
// Ele é propositalmente "agnóstico de HTTP": Source é uma string genérica
// ("listener", "http", ...) e pode ser usada para qualquer transporte.
type StatsEvent struct {
	Client  ClientID
	Verdict Verdict

	Source string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis, memória, etc.
// Os adapters devem tratar erro como best-effort (não derrubar a conexão).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

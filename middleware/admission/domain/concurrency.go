package domain

import "context"

// ConnSlots limita quantas conexões admitidas podem estar em atendimento ao
// mesmo tempo (max_connections do serviço).
//
// Acquire espera por uma vaga até o ctx encerrar. O release devolvido deve ser
// chamado exatamente uma vez. InUse serve para métricas e testes.
type ConnSlots interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
}

package application

import (
	"context"
	"time"

	"connection-guard/middleware/admission/domain"
)

// ConcurrencyService aplica o max_connections com timeout de espera,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Slots          domain.ConnSlots
	AcquireTimeout time.Duration
}

// Acquire tenta ocupar uma vaga.
// - Se `AcquireTimeout <= 0`, espera até ctx cancelar.
// - Se `AcquireTimeout > 0`, espera no máximo esse tempo.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi ocupada.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Slots == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Slots.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Slots.Acquire(acqCtx)
}

package admission

import (
	"context"
	"sync/atomic"
	"time"

	"connection-guard/middleware/admission/domain"

	"github.com/rs/zerolog"
)

// StatsQueue desacopla o caminho de accept/request do StatsStore: Push nunca
// bloqueia, um único drain grava no store, e com a fila cheia o evento é
// descartado e contado.
type StatsQueue struct {
	store   domain.StatsStore
	events  chan domain.StatsEvent
	timeout time.Duration
	logger  zerolog.Logger

	dropped atomic.Uint64
}

// NewStatsQueue cria a fila com `size` eventos. Retorna nil quando store é
// nil; todos os métodos aceitam receiver nil.
func NewStatsQueue(store domain.StatsStore, size int, logger zerolog.Logger) *StatsQueue {
	if store == nil {
		return nil
	}
	if size <= 0 {
		size = 1024
	}
	return &StatsQueue{
		store:   store,
		events:  make(chan domain.StatsEvent, size),
		timeout: time.Second,
		logger:  logger,
	}
}

// Push enfileira ev sem bloquear. Retorna false se o evento foi descartado.
func (q *StatsQueue) Push(ev domain.StatsEvent) bool {
	if q == nil {
		return false
	}
	select {
	case q.events <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *StatsQueue) Dropped() uint64 {
	if q == nil {
		return 0
	}
	return q.dropped.Load()
}

// Start inicia o drain. Pare cancelando o contexto; eventos ainda na fila
// são abandonados.
func (q *StatsQueue) Start(ctx context.Context) {
	if q == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-q.events:
				q.write(ctx, ev)
			}
		}
	}()
}

func (q *StatsQueue) write(ctx context.Context, ev domain.StatsEvent) {
	wctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	if err := q.store.Record(wctx, ev); err != nil {
		q.logger.Warn().Err(err).Str("source", ev.Source).Msg("admission stats record failed")
	}
}

package infra

import (
	"time"

	"connection-guard/middleware/admission/domain"

	"github.com/rs/zerolog"
)

// Scheduler dirige as duas atividades de fundo da admissão:
//
//   - cycle: a cada CycleEvery remove a entrada mais antiga da janela e bane
//     os clientes acima do limite
//   - decay: a cada DecayEvery decrementa todos os bans e remove os expirados
//
// Ticks atrasados (máquina sobrecarregada) só fazem o ban durar mais; o
// time.Ticker descarta ticks perdidos e isso não é tratado como erro.
type Scheduler struct {
	window   *Window
	blocked  *BlockedList
	banTicks int

	cycleEvery time.Duration
	decayEvery time.Duration

	logger  zerolog.Logger
	metrics *Metrics
}

type SchedulerOption func(*Scheduler)

func WithCycleEvery(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.cycleEvery = d }
}

func WithDecayEvery(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.decayEvery = d }
}

func WithLogger(l zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

func WithMetrics(m *Metrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// NewScheduler cria o scheduler. banTicks é o ban_time_sec, na mesma unidade
// do decay (um tick por DecayEvery).
func NewScheduler(window *Window, blocked *BlockedList, banTicks int, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		window:     window,
		blocked:    blocked,
		banTicks:   banTicks,
		cycleEvery: 250 * time.Millisecond,
		decayEvery: time.Second,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) CycleEvery() time.Duration { return s.cycleEvery }
func (s *Scheduler) DecayEvery() time.Duration { return s.decayEvery }

// CycleOnce roda uma iteração do cycle e devolve os clientes banidos nela.
// O lock da janela já foi liberado quando os bans são escritos.
func (s *Scheduler) CycleOnce() []domain.ClientID {
	offenders := s.window.Cycle()
	for _, id := range offenders {
		s.blocked.Ban(id, s.banTicks)
		s.logger.Info().
			Str("client", id.String()).
			Int("ban_ticks", s.banTicks).
			Msg("client banned for connection flooding")
	}
	s.metrics.bansIssued(len(offenders))
	return offenders
}

// DecayOnce roda um tick de decay e devolve quantos bans expiraram.
func (s *Scheduler) DecayOnce() int {
	expired := s.blocked.Tick()
	if expired > 0 {
		s.logger.Debug().Int("expired", expired).Int("active", s.blocked.Len()).Msg("bans expired")
	}
	s.metrics.bansExpired(expired)
	return expired
}

// Start inicia as goroutines de cycle e decay. Pare cancelando o contexto.
func (s *Scheduler) Start(ctx DoneContext) {
	if s.cycleEvery > 0 {
		go s.loop(ctx, s.cycleEvery, func() { s.CycleOnce() })
	}
	if s.decayEvery > 0 {
		go s.loop(ctx, s.decayEvery, func() { s.DecayOnce() })
	}
}

func (s *Scheduler) loop(ctx DoneContext, every time.Duration, fn func()) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}

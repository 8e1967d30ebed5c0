package admission

import (
	"time"

	"connection-guard/middleware/admission/application"
	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Admitter é o que os adapters precisam da camada application.
type Admitter interface {
	Admit(domain.ClientID) domain.Decision
}

// Config são os limites da guarda, fixos no start do processo.
type Config struct {
	WindowCapacity int // max_client_rate_cache
	RateLimit      int // max_ratelimit
	BanTicks       int // ban_time_sec, em ticks de decay
	CycleEvery     time.Duration
	DecayEvery     time.Duration
}

// Guard junta janela, ban list, scheduler e gate. Cada processo cria o seu;
// nada aqui é global.
type Guard struct {
	Window    *infra.Window
	Blocked   *infra.BlockedList
	Scheduler *infra.Scheduler
	Gate      application.Gate
	Metrics   *infra.Metrics
}

// New monta a guarda. Se reg for nil as métricas ficam desligadas.
func New(cfg Config, reg prometheus.Registerer, logger zerolog.Logger) (*Guard, error) {
	g := &Guard{
		Window:  infra.NewWindow(cfg.WindowCapacity, cfg.RateLimit),
		Blocked: infra.NewBlockedList(),
	}

	if reg != nil {
		m, err := infra.NewMetrics(reg, g.Window, g.Blocked)
		if err != nil {
			return nil, err
		}
		g.Metrics = m
	}

	opts := []infra.SchedulerOption{
		infra.WithLogger(logger.With().Str("component", "admission").Logger()),
		infra.WithMetrics(g.Metrics),
	}
	// zero mantém os períodos padrão do scheduler
	if cfg.CycleEvery > 0 {
		opts = append(opts, infra.WithCycleEvery(cfg.CycleEvery))
	}
	if cfg.DecayEvery > 0 {
		opts = append(opts, infra.WithDecayEvery(cfg.DecayEvery))
	}
	g.Scheduler = infra.NewScheduler(g.Window, g.Blocked, cfg.BanTicks, opts...)
	g.Gate = application.Gate{
		Blocked:   g.Blocked,
		Recorder:  g.Window,
		TickEvery: g.Scheduler.DecayEvery(),
	}
	return g, nil
}

// Admit implementa Admitter e conta a decisão nas métricas.
func (g *Guard) Admit(id domain.ClientID) domain.Decision {
	dec := g.Gate.Admit(id)
	g.Metrics.ObserveDecision(dec.Verdict)
	return dec
}

// Start inicia cycle e decay. Pare cancelando o contexto.
func (g *Guard) Start(ctx infra.DoneContext) { g.Scheduler.Start(ctx) }

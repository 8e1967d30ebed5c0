package infra

import (
	"connection-guard/middleware/admission/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os coletores prometheus da admissão.
//
// Todos os métodos aceitam receiver nil, então os componentes podem rodar sem
// métricas (ex: testes).
type Metrics struct {
	decisions *prometheus.CounterVec
	issued    prometheus.Counter
	expired   prometheus.Counter
	slotsFull prometheus.Counter

	reg prometheus.Registerer
}

// NewMetrics registra os coletores em reg. window e blocked são lidos sob
// demanda no scrape (saturação da janela, bans ativos).
func NewMetrics(reg prometheus.Registerer, window *Window, blocked *BlockedList) (*Metrics, error) {
	m := &Metrics{
		reg: reg,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "decisions_total",
			Help:      "Admission decisions by result.",
		}, []string{"result"}),
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "bans_issued_total",
			Help:      "Bans issued or refreshed by the window cycle.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "bans_expired_total",
			Help:      "Bans removed by the decay tick.",
		}),
		slotsFull: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "connections_rejected_total",
			Help:      "Admitted requests refused because max_connections slots were taken.",
		}),
	}

	collectors := []prometheus.Collector{m.decisions, m.issued, m.expired, m.slotsFull}
	if window != nil {
		collectors = append(collectors,
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "admission",
				Name:      "window_dropped_total",
				Help:      "Records dropped because the connection window was full.",
			}, func() float64 { return float64(window.Dropped()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "admission",
				Name:      "window_entries",
				Help:      "Entries currently held by the connection window.",
			}, func() float64 { return float64(window.Len()) }),
		)
	}
	if blocked != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "admission",
			Name:      "bans_active",
			Help:      "Clients currently banned.",
		}, func() float64 { return float64(blocked.Len()) }))
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WatchConnSlots expõe quantas vagas de max_connections estão ocupadas.
func (m *Metrics) WatchConnSlots(slots domain.ConnSlots) error {
	if m == nil || slots == nil {
		return nil
	}
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "admission",
		Name:      "connections_in_use",
		Help:      "max_connections slots currently held.",
	}, func() float64 { return float64(slots.InUse()) }))
}

// WatchStatsDropped expõe quantos eventos de stats foram descartados com a
// fila cheia.
func (m *Metrics) WatchStatsDropped(dropped func() uint64) error {
	if m == nil || dropped == nil {
		return nil
	}
	return m.reg.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "admission",
		Name:      "stats_dropped_total",
		Help:      "Stats events dropped because the stats queue was full.",
	}, func() float64 { return float64(dropped()) }))
}

func (m *Metrics) ObserveSlotRejection() {
	if m == nil {
		return
	}
	m.slotsFull.Inc()
}

func (m *Metrics) ObserveDecision(v domain.Verdict) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(v.String()).Inc()
}

func (m *Metrics) bansIssued(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.issued.Add(float64(n))
}

func (m *Metrics) bansExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}

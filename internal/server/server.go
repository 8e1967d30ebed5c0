// Package server concentra o wiring comum aos binários: guarda de admissão,
// stats no redis, listener guardado e shutdown gracioso.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"connection-guard/internal/config"
	"connection-guard/middleware/admission"
	"connection-guard/middleware/admission/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewGuard monta a guarda a partir da config e registra as métricas em reg.
func NewGuard(cfg config.Config, reg prometheus.Registerer, logger zerolog.Logger) (*admission.Guard, error) {
	a := cfg.Admission
	return admission.New(admission.Config{
		WindowCapacity: a.MaxClientRateCache,
		RateLimit:      a.MaxRateLimit,
		BanTicks:       a.BanTimeSec,
		CycleEvery:     a.CycleInterval,
		DecayEvery:     a.DecayInterval,
	}, reg, logger)
}

// NewStats devolve a fila de stats já drenando para o redis (ou nil quando
// desabilitado) e uma função de close. Os descartes da fila viram métrica.
func NewStats(ctx context.Context, cfg config.Stats, metrics *infra.Metrics, logger zerolog.Logger) (*admission.StatsQueue, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis stats ping: %w", err)
	}

	store := infra.NewRedisStatsStore(
		rdb,
		infra.WithStatsPrefix(cfg.Prefix),
		infra.WithStatsTTL(cfg.TTL),
		infra.WithStatsBucket(cfg.Bucket),
		infra.WithStatsTrackClients(cfg.TrackClients),
	)
	q := admission.NewStatsQueue(store, cfg.QueueSize, logger)
	q.Start(ctx)
	if err := metrics.WatchStatsDropped(q.Dropped); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("stats metrics: %w", err)
	}
	return q, func() { _ = rdb.Close() }, nil
}

// Listen abre o socket TCP já com a admissão por conexão. Com HTTPAdmission a
// admissão fica só no Middleware (uma decisão por request); o listener mantém
// apenas o throttle de accept.
func Listen(cfg config.Config, gate admission.Admitter, stats *admission.StatsQueue, logger zerolog.Logger) (*admission.Listener, error) {
	inner, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	if cfg.HTTPAdmission {
		gate = nil
	}
	return admission.NewListener(inner, admission.ListenerOptions{
		Gate:     gate,
		Stats:    stats,
		Throttle: admission.NewAcceptThrottle(cfg.AcceptRPS, cfg.AcceptBurst),
		Logger:   logger,
	}), nil
}

// Wrap aplica os middlewares opcionais (admissão por request e
// max_connections) em volta de h. O uso das vagas é exposto nas métricas da
// guarda.
func Wrap(h http.Handler, cfg config.Config, guard *admission.Guard, stats *admission.StatsQueue) (http.Handler, error) {
	if cfg.MaxConnections > 0 {
		slots := infra.NewSlotPool(cfg.MaxConnections)
		if err := guard.Metrics.WatchConnSlots(slots); err != nil {
			return nil, fmt.Errorf("connection slot metrics: %w", err)
		}
		h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{
			Max:            cfg.MaxConnections,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.ConcurrencyTimeout,
			Slots:          slots,
			Metrics:        guard.Metrics,
		})(h)
	}
	if cfg.HTTPAdmission {
		h = admission.Middleware(admission.Options{
			Gate:               guard,
			Stats:              stats,
			KeyHeader:          cfg.ClientKeyHeader,
			TrustXForwardedFor: cfg.TrustXFF,
			AddClientHeader:    true,
		})(h)
	}
	return h, nil
}

// Serve roda srv em ln até ctx encerrar e então faz shutdown com timeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func NewHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

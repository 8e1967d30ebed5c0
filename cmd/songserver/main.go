package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"connection-guard/internal/config"
	"connection-guard/internal/logging"
	"connection-guard/internal/server"
	"connection-guard/middleware/admission"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// songserver é o serviço de músicas com a guarda de admissão embutida
// (sem proxy): cada conexão passa pelo Listener antes das rotas.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	guard, err := server.NewGuard(cfg, reg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("admission guard")
	}
	guard.Start(ctx)

	stats, closeStats, err := server.NewStats(ctx, cfg.Stats, guard.Metrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("admission stats")
	}
	defer closeStats()

	r := newRouter(songs{listPath: cfg.MusicList, dataDir: cfg.MusicDir, logger: logger})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/admin", admission.AdminRoutes(guard.Blocked, cfg.AdminKey))

	ln, err := server.Listen(cfg, guard, stats, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("listen")
	}
	logger.Info().Str("addr", ln.Addr().String()).Str("music_list", cfg.MusicList).Msg("song server listening")

	h, err := server.Wrap(r, cfg, guard, stats)
	if err != nil {
		logger.Fatal().Err(err).Msg("middlewares")
	}
	srv := server.NewHTTPServer(h)
	if err := server.Serve(ctx, srv, ln, logger); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"connection-guard/internal/config"
	"connection-guard/internal/logging"
	"connection-guard/internal/server"
	"connection-guard/middleware/admission"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.UpstreamURL == "" {
		logger.Fatal().Msg("UPSTREAM_URL is required")
	}
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid UPSTREAM_URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

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

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/admin", admission.AdminRoutes(guard.Blocked, cfg.AdminKey))
	r.Handle("/*", proxy)

	ln, err := server.Listen(cfg, guard, stats, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("listen")
	}

	logger.Info().
		Str("addr", ln.Addr().String()).
		Str("upstream", target.String()).
		Msg("gateway listening")
	logger.Info().
		Int("max_client_rate_cache", cfg.Admission.MaxClientRateCache).
		Int("max_ratelimit", cfg.Admission.MaxRateLimit).
		Int("ban_time_sec", cfg.Admission.BanTimeSec).
		Dur("cycle", cfg.Admission.CycleInterval).
		Dur("decay", cfg.Admission.DecayInterval).
		Bool("http_admission", cfg.HTTPAdmission).
		Bool("stats", cfg.Stats.Enabled).
		Msg("admission")

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

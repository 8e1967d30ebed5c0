// Package config carrega a configuração dos binários a partir de variáveis de
// ambiente (e de um .env opcional).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Admission são os limites da guarda de conexões.
type Admission struct {
	MaxClientRateCache int           // capacidade da janela
	MaxRateLimit       int           // ocorrências na janela acima das quais o cliente é banido
	BanTimeSec         int           // duração do ban, em ticks de decay
	CycleInterval      time.Duration // período do cycle da janela
	DecayInterval      time.Duration // período do tick de decay
}

type Stats struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	Bucket        string
	TrackClients  bool
	QueueSize     int // eventos pendentes antes de descartar
}

type Config struct {
	ListenAddr  string
	UpstreamURL string // só o gateway usa
	AdminKey    string

	MusicList string // arquivo json com a lista de músicas (songserver)
	MusicDir  string // diretório com os dados das músicas (songserver)

	Admission Admission

	HTTPAdmission      bool // admissão também por request (atrás de proxy)
	ClientKeyHeader    string
	TrustXFF           bool
	MaxConnections     int
	ConcurrencyTimeout time.Duration
	AcceptRPS          float64
	AcceptBurst        int

	Stats Stats

	LogLevel  string
	LogFormat string
}

// Load lê o .env (se existir) e as variáveis de ambiente, e valida o
// resultado. Limites zerados ou negativos são erro de configuração.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.UpstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.AdminKey = os.Getenv("ADMIN_KEY")
	cfg.MusicList = getenvDefault("MUSIC_LIST", "./music_list.json")
	cfg.MusicDir = getenvDefault("MUSIC_DIR", "./music_data")

	var err error
	if cfg.Admission, err = loadAdmission(); err != nil {
		return Config{}, err
	}

	cfg.HTTPAdmission = getenvBoolDefault("HTTP_ADMISSION", false)
	cfg.ClientKeyHeader = os.Getenv("CLIENT_KEY_HEADER")
	cfg.TrustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.MaxConnections = getenvIntDefault("MAX_CONNECTIONS", 0)
	cfg.ConcurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.AcceptRPS = getenvFloatDefault("ACCEPT_RPS", 0)
	cfg.AcceptBurst = getenvIntDefault("ACCEPT_BURST", 0)

	cfg.Stats = Stats{
		Enabled:       getenvBoolDefault("ADMISSION_STATS_ENABLED", false),
		RedisAddr:     os.Getenv("ADMISSION_STATS_REDIS_ADDR"),
		RedisPassword: os.Getenv("ADMISSION_STATS_REDIS_PASSWORD"),
		RedisDB:       getenvIntDefault("ADMISSION_STATS_REDIS_DB", 0),
		Prefix:        getenvDefault("ADMISSION_STATS_PREFIX", "admission:stats"),
		TTL:           getenvDurationDefault("ADMISSION_STATS_TTL", 24*time.Hour),
		Bucket:        getenvDefault("ADMISSION_STATS_BUCKET", "minute"),
		TrackClients:  getenvBoolDefault("ADMISSION_STATS_TRACK_CLIENTS", false),
		QueueSize:     getenvIntDefault("ADMISSION_STATS_QUEUE_SIZE", 1024),
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "console")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadAdmission() (Admission, error) {
	a := Admission{}
	var err error
	if a.MaxClientRateCache, err = getenvIntStrict("MAX_CLIENT_RATE_CACHE", 100); err != nil {
		return Admission{}, err
	}
	if a.MaxRateLimit, err = getenvIntStrict("MAX_RATELIMIT", 10); err != nil {
		return Admission{}, err
	}
	if a.BanTimeSec, err = getenvIntStrict("BAN_TIME_SEC", 60); err != nil {
		return Admission{}, err
	}
	if a.CycleInterval, err = getenvDurationStrict("CYCLE_INTERVAL", 250*time.Millisecond); err != nil {
		return Admission{}, err
	}
	if a.DecayInterval, err = getenvDurationStrict("DECAY_INTERVAL", time.Second); err != nil {
		return Admission{}, err
	}
	return a, nil
}

func (c Config) Validate() error {
	a := c.Admission
	if a.MaxClientRateCache <= 0 {
		return errors.New("MAX_CLIENT_RATE_CACHE must be > 0")
	}
	if a.MaxRateLimit <= 0 {
		return errors.New("MAX_RATELIMIT must be > 0")
	}
	if a.BanTimeSec <= 0 {
		return errors.New("BAN_TIME_SEC must be > 0")
	}
	if a.CycleInterval <= 0 {
		return errors.New("CYCLE_INTERVAL must be > 0")
	}
	if a.DecayInterval <= 0 {
		return errors.New("DECAY_INTERVAL must be > 0")
	}
	if c.MaxConnections < 0 {
		return errors.New("MAX_CONNECTIONS must be >= 0")
	}
	if c.AcceptRPS < 0 {
		return errors.New("ACCEPT_RPS must be >= 0")
	}
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("ADMISSION_STATS_REDIS_ADDR is required when ADMISSION_STATS_ENABLED=true")
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getenvIntStrict é como getenvIntDefault, mas valor inválido é erro: um
// limite da guarda digitado errado não pode cair silenciosamente no padrão.
func getenvIntStrict(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return i, nil
}

func getenvDurationStrict(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

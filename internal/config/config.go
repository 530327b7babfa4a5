package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
)

const (
	ProviderOffline     = "offline"
	ProviderCricketData = "cricketdata"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	ShutdownTimeout         time.Duration
	LogLevel                logging.Level
	DBURL                   string
	DBDisablePreparedBinary bool
	CORSAllowedOrigins      []string
	InternalJobToken        string

	Provider                       string
	OfflineDailyLimit              int
	CricketDataBaseURL             string
	CricketDataAPIKey              string
	CricketDataTimeout             time.Duration
	CricketDataMaxRetries          int
	CricketDataRequestsPerSecond   float64
	CricketDataBurst               int
	CricketDataCircuitEnabled      bool
	CricketDataCircuitFailureCount int
	CricketDataCircuitOpenTimeout  time.Duration
	CricketDataCircuitHalfOpenMax  int

	CacheEnabled        bool
	CacheTTL            time.Duration
	CacheCapacity       int
	CacheRefreshWorkers int
	CacheRefreshQueue   int

	StalenessTournament    time.Duration
	StalenessMatchList     time.Duration
	StalenessMatchUpcoming time.Duration
	StalenessPlayer        time.Duration
	StalenessSquad         time.Duration
	LiveCeiling            time.Duration
	LiveQuotaMax           time.Duration
	LiveQuotaReserve       int

	LeaderboardTieBreak string

	SchedulerEnabled         bool
	SweepInterval            time.Duration
	SweepBatchSize           int
	ContestRecomputeInterval time.Duration

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "cricket-fantasy-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		LogLevel:           logLevel,
		DBURL:              strings.TrimSpace(os.Getenv("DB_URL")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		CricketDataBaseURL: strings.TrimSpace(getEnv("CRICKETDATA_BASE_URL", "https://api.cricapi.com/v1")),
		CricketDataAPIKey:  strings.TrimSpace(getEnv("CRICKETDATA_API_KEY", "")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("APP_HTTP_ADDR cannot be empty")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{key: "APP_READ_TIMEOUT", fallback: "10s", target: &cfg.ReadTimeout},
		{key: "APP_WRITE_TIMEOUT", fallback: "15s", target: &cfg.WriteTimeout},
		{key: "APP_SHUTDOWN_TIMEOUT", fallback: "10s", target: &cfg.ShutdownTimeout},
		{key: "CRICKETDATA_TIMEOUT", fallback: "15s", target: &cfg.CricketDataTimeout},
		{key: "CRICKETDATA_CIRCUIT_OPEN_TIMEOUT", fallback: "15s", target: &cfg.CricketDataCircuitOpenTimeout},
		{key: "CACHE_TTL", fallback: "60s", target: &cfg.CacheTTL},
		{key: "STALENESS_TOURNAMENT", fallback: "6h", target: &cfg.StalenessTournament},
		{key: "STALENESS_MATCH_LIST", fallback: "1h", target: &cfg.StalenessMatchList},
		{key: "STALENESS_MATCH_UPCOMING", fallback: "1h", target: &cfg.StalenessMatchUpcoming},
		{key: "STALENESS_PLAYER", fallback: "24h", target: &cfg.StalenessPlayer},
		{key: "STALENESS_SQUAD", fallback: "168h", target: &cfg.StalenessSquad},
		{key: "STALENESS_LIVE_CEILING", fallback: "30s", target: &cfg.LiveCeiling},
		{key: "STALENESS_LIVE_QUOTA_MAX", fallback: "1h", target: &cfg.LiveQuotaMax},
		{key: "SWEEP_INTERVAL", fallback: "5m", target: &cfg.SweepInterval},
		{key: "CONTEST_RECOMPUTE_INTERVAL", fallback: "1m", target: &cfg.ContestRecomputeInterval},
		{key: "PYROSCOPE_UPLOAD_RATE", fallback: "15s", target: &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		value, err := time.ParseDuration(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", item.key)
		}
		*item.target = value
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		target   *int
	}{
		{key: "OFFLINE_DAILY_LIMIT", fallback: 0, min: 0, target: &cfg.OfflineDailyLimit},
		{key: "CRICKETDATA_MAX_RETRIES", fallback: 1, min: 0, target: &cfg.CricketDataMaxRetries},
		{key: "CRICKETDATA_BURST", fallback: 1, min: 1, target: &cfg.CricketDataBurst},
		{key: "CRICKETDATA_CIRCUIT_FAILURE_COUNT", fallback: 5, min: 1, target: &cfg.CricketDataCircuitFailureCount},
		{key: "CRICKETDATA_CIRCUIT_HALF_OPEN_MAX_REQ", fallback: 2, min: 1, target: &cfg.CricketDataCircuitHalfOpenMax},
		{key: "CACHE_CAPACITY", fallback: 10000, min: 1, target: &cfg.CacheCapacity},
		{key: "CACHE_REFRESH_WORKERS", fallback: 4, min: 1, target: &cfg.CacheRefreshWorkers},
		{key: "CACHE_REFRESH_QUEUE", fallback: 256, min: 1, target: &cfg.CacheRefreshQueue},
		{key: "LIVE_QUOTA_RESERVE", fallback: 50, min: 0, target: &cfg.LiveQuotaReserve},
		{key: "SWEEP_BATCH_SIZE", fallback: 100, min: 1, target: &cfg.SweepBatchSize},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value < item.min {
			return Config{}, fmt.Errorf("%s must be >= %d", item.key, item.min)
		}
		*item.target = value
	}

	bools := []struct {
		key      string
		fallback string
		target   *bool
	}{
		{key: "DB_DISABLE_PREPARED_BINARY_RESULT", fallback: "true", target: &cfg.DBDisablePreparedBinary},
		{key: "CRICKETDATA_CIRCUIT_ENABLED", fallback: "true", target: &cfg.CricketDataCircuitEnabled},
		{key: "CACHE_ENABLED", fallback: "true", target: &cfg.CacheEnabled},
		{key: "SCHEDULER_ENABLED", fallback: "true", target: &cfg.SchedulerEnabled},
		{key: "PPROF_ENABLED", fallback: "false", target: &cfg.PprofEnabled},
		{key: "UPTRACE_ENABLED", fallback: "false", target: &cfg.UptraceEnabled},
		{key: "PYROSCOPE_ENABLED", fallback: "false", target: &cfg.PyroscopeEnabled},
	}
	for _, item := range bools {
		value, err := strconv.ParseBool(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.target = value
	}

	cfg.CricketDataRequestsPerSecond, err = strconv.ParseFloat(getEnv("CRICKETDATA_REQUESTS_PER_SECOND", "2"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKETDATA_REQUESTS_PER_SECOND: %w", err)
	}
	if cfg.CricketDataRequestsPerSecond < 0 {
		return Config{}, fmt.Errorf("CRICKETDATA_REQUESTS_PER_SECOND must be >= 0")
	}

	cfg.Provider, err = parseProvider(getEnv("PROVIDER", ProviderOffline))
	if err != nil {
		return Config{}, err
	}
	if cfg.Provider == ProviderCricketData && cfg.CricketDataAPIKey == "" {
		return Config{}, fmt.Errorf("CRICKETDATA_API_KEY is required when PROVIDER=%s", ProviderCricketData)
	}

	cfg.LeaderboardTieBreak = strings.ToLower(strings.TrimSpace(getEnv("LEADERBOARD_TIE_BREAK", "stable")))
	switch cfg.LeaderboardTieBreak {
	case "stable", "created_at", "name":
	default:
		return Config{}, fmt.Errorf("invalid LEADERBOARD_TIE_BREAK %q: valid values are stable, created_at, name", cfg.LeaderboardTieBreak)
	}

	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
		if cfg.UptraceDSN == "" {
			return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
		}
	}

	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ProviderOffline, ProviderCricketData:
		return value, nil
	default:
		return "", fmt.Errorf("invalid PROVIDER %q: valid values are %s, %s", v, ProviderOffline, ProviderCricketData)
	}
}

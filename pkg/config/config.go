package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	MigrationsPath string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	LedgerBackend  string

	// Exchange rates
	RatesBaseURL      string
	RatesTTL          time.Duration
	RatesMaxStaleness time.Duration
	RatesFetchTimeout time.Duration
	RedisURL          string
	RedisRatesKey     string

	// Notifications
	KafkaBrokers           []string
	KafkaNotificationTopic string
	NotificationTimeout    time.Duration

	// Settlement retries
	TransferMaxAttempts    int
	TransferRetryBaseDelay time.Duration
	TransferRetryMaxDelay  time.Duration

	RateLimit          string // ulule format, e.g. "20-M"
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 0)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LEDGER_BACKEND", BackendPostgres)
	viper.SetDefault("RATES_BASE_URL", "https://api.frankfurter.app")
	viper.SetDefault("RATES_TTL", "5m")
	viper.SetDefault("RATES_MAX_STALENESS", "24h")
	viper.SetDefault("RATES_FETCH_TIMEOUT", "5s")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_RATES_KEY", "p2p_ledger:rates:usd")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_NOTIFICATION_TOPIC", "p2p-transfer-notifications")
	viper.SetDefault("NOTIFICATION_TIMEOUT", "5s")
	viper.SetDefault("TRANSFER_MAX_ATTEMPTS", 3)
	viper.SetDefault("TRANSFER_RETRY_BASE_DELAY", "20ms")
	viper.SetDefault("TRANSFER_RETRY_MAX_DELAY", "500ms")
	viper.SetDefault("RATE_LIMIT", "20-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		DBMaxConns:             viper.GetInt32("DB_MAX_CONNS"),
		MigrationsPath:         viper.GetString("MIGRATIONS_PATH"),
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:          viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:              viper.GetString("JWT_SECRET"),
		LedgerBackend:          strings.ToLower(viper.GetString("LEDGER_BACKEND")),
		RatesBaseURL:           viper.GetString("RATES_BASE_URL"),
		RatesTTL:               durationOrDefault("RATES_TTL", 5*time.Minute),
		RatesMaxStaleness:      durationOrDefault("RATES_MAX_STALENESS", 24*time.Hour),
		RatesFetchTimeout:      durationOrDefault("RATES_FETCH_TIMEOUT", 5*time.Second),
		RedisURL:               viper.GetString("REDIS_URL"),
		RedisRatesKey:          viper.GetString("REDIS_RATES_KEY"),
		KafkaBrokers:           splitList(viper.GetString("KAFKA_BROKERS")),
		KafkaNotificationTopic: viper.GetString("KAFKA_NOTIFICATION_TOPIC"),
		NotificationTimeout:    durationOrDefault("NOTIFICATION_TIMEOUT", 5*time.Second),
		TransferMaxAttempts:    viper.GetInt("TRANSFER_MAX_ATTEMPTS"),
		TransferRetryBaseDelay: durationOrDefault("TRANSFER_RETRY_BASE_DELAY", 20*time.Millisecond),
		TransferRetryMaxDelay:  durationOrDefault("TRANSFER_RETRY_MAX_DELAY", 500*time.Millisecond),
		RateLimit:              viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:     splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.LedgerBackend == BackendPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.LedgerBackend != BackendPostgres && cfg.LedgerBackend != BackendMemory {
		log.Printf("Warning: Invalid value for LEDGER_BACKEND ('%s'). Defaulting to %s.\n", cfg.LedgerBackend, BackendPostgres)
		cfg.LedgerBackend = BackendPostgres
	}
	if cfg.TransferMaxAttempts < 1 {
		log.Printf("Warning: Invalid value for TRANSFER_MAX_ATTEMPTS (%d). Defaulting to 3.\n", cfg.TransferMaxAttempts)
		cfg.TransferMaxAttempts = 3
	}

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

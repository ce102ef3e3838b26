package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Gateway mode values.
const (
	GatewayModeHTTP    = "http"
	GatewayModeSandbox = "sandbox"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string `validate:"required"`
	DatabaseURI       string `validate:"required"`
	JWTSecret         string `validate:"required"`
	TokenTTL          time.Duration
	LogLevel          string `validate:"oneof=debug info warn error"`
	Gateway           Gateway
	KafkaBrokers      []string `validate:"dive,hostname_port"`
	KafkaTopic        string   `validate:"required"`
	AllowedOrigins    []string
	CartCacheSize     int
	CartCacheTTL      time.Duration
	StrictTransitions bool
	SweepEnabled      bool
	SweepInterval     time.Duration
	StaleAfter        time.Duration
	SweepBatchSize    int
	SweepWorkers      int
	ShutdownTimeout   time.Duration
}

// Gateway configures the payment processor client.
type Gateway struct {
	Mode       string `validate:"oneof=http sandbox"`
	URL        string `validate:"omitempty,url"`
	MerchantID string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenTTL        = 24 * time.Hour
	defaultLogLevel        = "info"
	defaultGatewayMode     = GatewayModeSandbox
	defaultGatewayTimeout  = 15 * time.Second
	defaultKafkaTopic      = "storefront.orders"
	defaultCartCacheSize   = 1024
	defaultCartCacheTTL    = 10 * time.Minute
	defaultSweepInterval   = time.Minute
	defaultStaleAfter      = 10 * time.Minute
	defaultSweepBatchSize  = 50
	defaultSweepWorkers    = 2
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:  getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI: getString(lookup, "DATABASE_URI", ""),
		JWTSecret:   getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:    getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		LogLevel:    strings.ToLower(getString(lookup, "LOG_LEVEL", defaultLogLevel)),
		Gateway: Gateway{
			Mode:       strings.ToLower(getString(lookup, "GATEWAY_MODE", defaultGatewayMode)),
			URL:        getString(lookup, "GATEWAY_URL", ""),
			MerchantID: getString(lookup, "GATEWAY_MERCHANT_ID", ""),
			PublicKey:  getString(lookup, "GATEWAY_PUBLIC_KEY", ""),
			PrivateKey: getString(lookup, "GATEWAY_PRIVATE_KEY", ""),
			Timeout:    getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		},
		KafkaBrokers:      getList(lookup, "KAFKA_BROKERS"),
		KafkaTopic:        getString(lookup, "KAFKA_ORDERS_TOPIC", defaultKafkaTopic),
		AllowedOrigins:    getList(lookup, "ALLOWED_CORS_ORIGINS"),
		CartCacheSize:     getInt(lookup, "CART_CACHE_SIZE", defaultCartCacheSize),
		CartCacheTTL:      getDuration(lookup, "CART_CACHE_TTL", defaultCartCacheTTL),
		StrictTransitions: getBool(lookup, "ORDER_STRICT_TRANSITIONS", false),
		SweepEnabled:      getBool(lookup, "ATTEMPT_SWEEP_ENABLED", true),
		SweepInterval:     getDuration(lookup, "ATTEMPT_SWEEP_INTERVAL", defaultSweepInterval),
		StaleAfter:        getDuration(lookup, "ATTEMPT_STALE_AFTER", defaultStaleAfter),
		SweepBatchSize:    getInt(lookup, "ATTEMPT_SWEEP_BATCH", defaultSweepBatchSize),
		SweepWorkers:      getInt(lookup, "ATTEMPT_SWEEP_WORKERS", defaultSweepWorkers),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr  = cfg.Gateway.Timeout.String()
		tokenTTLStr        = cfg.TokenTTL.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued session tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Gateway.Mode, "gateway-mode", cfg.Gateway.Mode, "Payment gateway mode: http or sandbox")
	fs.StringVar(&cfg.Gateway.URL, "gateway-url", cfg.Gateway.URL, "Payment gateway base URL")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment gateway call timeout")
	fs.BoolVar(&cfg.StrictTransitions, "strict-transitions", cfg.StrictTransitions, "Restrict order status changes to forward progression")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Gateway.Timeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = defaultGatewayTimeout
	}

	if cfg.CartCacheSize <= 0 {
		cfg.CartCacheSize = defaultCartCacheSize
	}

	if cfg.CartCacheTTL <= 0 {
		cfg.CartCacheTTL = defaultCartCacheTTL
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}

	// an attempt younger than a gateway round trip may still be in flight
	if minStale := 2 * cfg.Gateway.Timeout; cfg.StaleAfter < minStale {
		cfg.StaleAfter = minStale
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.Gateway.Mode == GatewayModeHTTP && cfg.Gateway.URL == "" {
		return nil, fmt.Errorf("gateway URL must be provided in http mode")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// EventsEnabled reports whether order events should be published to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

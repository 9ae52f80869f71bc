// Package envconfig loads bridge configuration from the environment.
//
// All configuration is read once at startup into an immutable Config
// that is passed explicitly to the components that need it; nothing
// reads the environment after boot.
package envconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sweatstack/bridge"
	"github.com/sweatstack/bridge/observability"
)

// Config is the full runtime configuration of the bridge service.
type Config struct {
	ServiceName string
	ListenAddr  string

	// Secret is the shared Pike13 signing secret; empty disables
	// signature verification.
	Secret string

	// EndpointURLs maps topic families to CRM destination URLs.
	// Unset families stay unrouted.
	EndpointURLs map[string]string

	MaxAttempts int
	BaseDelay   time.Duration

	RequestBodyLimit   int64
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	RateLimitFailOpen  bool

	// RedisAddr switches rate limiting to the Redis-backed limiter when
	// set; empty keeps the in-memory one.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Tracing observability.TracingConfig
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	port, err := Port("PORT", "8080")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceName:        String("SERVICE_NAME", "bridged"),
		ListenAddr:         ":" + port,
		Secret:             String("PIKE13_WEBHOOK_SECRET", ""),
		EndpointURLs:       endpointURLs(),
		MaxAttempts:        Int("BRIDGE_MAX_ATTEMPTS", 3),
		BaseDelay:          time.Duration(Int("BRIDGE_BASE_DELAY_MS", 1000)) * time.Millisecond,
		RequestBodyLimit:   int64(Int("REQUEST_BODY_LIMIT_BYTES", 1<<20)),
		RequestTimeout:     time.Duration(Int("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		RateLimitPerMinute: Int("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitFailOpen:  Bool("RATE_LIMIT_FAIL_OPEN", true),
		RedisAddr:          String("REDIS_ADDR", ""),
		RedisPassword:      String("REDIS_PASSWORD", ""),
		RedisDB:            Int("REDIS_DB", 0),
	}

	cfg.Tracing = observability.TracingConfig{
		Enabled:      Bool("OTEL_ENABLED", false),
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: String("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SampleRatio:  Float("OTEL_SAMPLING_RATIO", 1),
	}

	return cfg, nil
}

// endpointURLs reads one WEBHOOK_<FAMILY>_URL variable per supported
// topic family (e.g. "personCreated" → WEBHOOK_PERSON_CREATED_URL).
func endpointURLs() map[string]string {
	urls := make(map[string]string)
	for _, family := range bridge.Families() {
		if v := os.Getenv(EnvVarForFamily(family)); v != "" {
			urls[family] = v
		}
	}
	return urls
}

// EnvVarForFamily returns the environment variable naming the
// destination URL of a topic family.
func EnvVarForFamily(family string) string {
	return "WEBHOOK_" + screamingSnake(family) + "_URL"
}

// screamingSnake converts lowerCamelCase to SCREAMING_SNAKE_CASE.
func screamingSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// String returns the environment value for key, or fallback when unset
// or empty.
func String(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// Int returns the environment value for key as an int, or fallback when
// unset or unparseable.
func Int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Float returns the environment value for key as a float64, or fallback
// when unset or unparseable.
func Float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Bool returns the environment value for key as a bool. "false" and "0"
// are false; any other non-empty value is true.
func Bool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v != "false" && v != "0"
}

// Port validates that the environment value for key is a TCP port.
func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// Package config loads runtime settings from the environment, an optional .env file
// and Secret Manager references.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 120 * time.Second
	defaultPricingLoadTimeout  = 10 * time.Second
	defaultQuoteRequestsPerMin = 10
	defaultQuoteEventsTopic    = "quote-events"
	defaultSecurityEnvironment = "local"
)

// Pricing rule sources accepted by API_PRICING_SOURCE.
const (
	PricingSourceNone      = "none"
	PricingSourceFirestore = "firestore"
	PricingSourcePostgres  = "postgres"
	PricingSourceFile      = "file"
	PricingSourceGCS       = "gcs"
)

// Config is the full runtime configuration grouped by concern.
type Config struct {
	Server     ServerConfig
	Firebase   FirebaseConfig
	Firestore  FirestoreConfig
	Pricing    PricingConfig
	Postgres   PostgresConfig
	PubSub     PubSubConfig
	RateLimits RateLimitConfig
	Security   SecurityConfig
	Features   FeatureFlags
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig selects the Firebase project for ID token verification.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig selects the Firestore database.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PricingConfig selects where rule overrides come from.
type PricingConfig struct {
	Source      string
	RulesFile   string
	RulesBucket string
	RulesObject string
	LoadTimeout time.Duration
}

// PostgresConfig holds the DSN of the legacy pricing database.
type PostgresConfig struct {
	DSN string
}

// PubSubConfig configures event publishing. An empty project disables publishing.
type PubSubConfig struct {
	ProjectID        string
	QuoteEventsTopic string
}

// RateLimitConfig throttles anonymous endpoints.
type RateLimitConfig struct {
	QuoteRequestsPerMinute int
}

// SecurityConfig names the deployment environment.
type SecurityConfig struct {
	Environment string
}

// FeatureFlags toggle optional routes.
type FeatureFlags struct {
	EnableEstimates bool
}

// SecretResolver resolves secret:// references.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts a function to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret calls f.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError lists fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// SecretError wraps a failure to resolve a secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile sets the dotenv file. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap supplies values that win over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv stops Load from consulting the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// WithSecretResolver resolves secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) { o.secret = resolver }
}

func newOptions(opts []Option) loaderOptions {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// EnvironmentValues returns the merged environment using the same precedence as Load:
// dotenv, then the process environment, then the explicit map.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := newOptions(opts)
	dotenv, err := readDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(dotenv))
	for k, v := range dotenv {
		values[k] = v
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				values[k] = v
			}
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}
	return values, nil
}

// Load assembles the configuration and validates it.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newOptions(opts)
	dotenv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "API_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "API_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
		},
		Pricing: PricingConfig{
			Source:      strings.ToLower(stringWithDefault(lookup, "API_PRICING_SOURCE", PricingSourceNone)),
			RulesFile:   stringWithDefault(lookup, "API_PRICING_RULES_FILE", ""),
			RulesBucket: stringWithDefault(lookup, "API_PRICING_RULES_BUCKET", ""),
			RulesObject: stringWithDefault(lookup, "API_PRICING_RULES_OBJECT", ""),
			LoadTimeout: durationWithDefault(lookup, "API_PRICING_LOAD_TIMEOUT", defaultPricingLoadTimeout),
		},
		Postgres: PostgresConfig{
			DSN: stringWithDefault(lookup, "API_POSTGRES_DSN", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:        stringWithDefault(lookup, "API_PUBSUB_PROJECT_ID", ""),
			QuoteEventsTopic: stringWithDefault(lookup, "API_PUBSUB_QUOTE_EVENTS_TOPIC", defaultQuoteEventsTopic),
		},
		RateLimits: RateLimitConfig{
			QuoteRequestsPerMinute: intWithDefault(lookup, "API_RATELIMIT_QUOTE_REQUESTS_PER_MIN", defaultQuoteRequestsPerMin),
		},
		Security: SecurityConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "API_SECURITY_ENVIRONMENT", defaultSecurityEnvironment)),
		},
		Features: FeatureFlags{
			EnableEstimates: boolWithDefault(lookup, "API_FEATURE_ESTIMATES", true),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}

	dsn, err := resolveSecret(ctx, cfg.Postgres.DSN, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Postgres.DSN = dsn

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	var missing []string
	require := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}

	require(cfg.Server.Port != "", "Server.Port")
	require(cfg.Firestore.ProjectID != "", "Firestore.ProjectID")
	if cfg.Features.EnableEstimates {
		require(cfg.Firebase.ProjectID != "", "Firebase.ProjectID")
	}
	require(cfg.Pricing.LoadTimeout > 0, "Pricing.LoadTimeout")
	require(cfg.RateLimits.QuoteRequestsPerMinute > 0, "RateLimits.QuoteRequestsPerMinute")

	switch cfg.Pricing.Source {
	case PricingSourceNone, PricingSourceFirestore:
	case PricingSourcePostgres:
		require(cfg.Postgres.DSN != "", "Postgres.DSN")
	case PricingSourceFile:
		require(cfg.Pricing.RulesFile != "", "Pricing.RulesFile")
	case PricingSourceGCS:
		require(cfg.Pricing.RulesBucket != "", "Pricing.RulesBucket")
		require(cfg.Pricing.RulesObject != "", "Pricing.RulesObject")
	default:
		missing = append(missing, "Pricing.Source")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	trimmed := strings.TrimSpace(value)
	var ref string
	switch {
	case strings.HasPrefix(trimmed, "secret://"):
		ref = trimmed
	case strings.HasPrefix(trimmed, "sm://"):
		ref = "secret://" + strings.TrimPrefix(trimmed, "sm://")
	default:
		return value, nil
	}
	if resolver == nil {
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

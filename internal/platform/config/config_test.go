package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "sash-dev",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "sash-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Pricing.Source != PricingSourceNone {
		t.Errorf("expected no pricing source, got %s", cfg.Pricing.Source)
	}
	if cfg.Pricing.LoadTimeout != 10*time.Second {
		t.Errorf("unexpected pricing load timeout: %s", cfg.Pricing.LoadTimeout)
	}
	if cfg.RateLimits.QuoteRequestsPerMinute != 10 {
		t.Errorf("unexpected quote request limit: %d", cfg.RateLimits.QuoteRequestsPerMinute)
	}
	if cfg.PubSub.QuoteEventsTopic != "quote-events" {
		t.Errorf("unexpected topic: %s", cfg.PubSub.QuoteEventsTopic)
	}
	if cfg.Security.Environment != "local" {
		t.Errorf("expected local environment, got %s", cfg.Security.Environment)
	}
	if !cfg.Features.EnableEstimates {
		t.Errorf("expected estimates enabled by default")
	}
}

func TestLoadResolvesPostgresSecret(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID":  "sash-prod",
		"API_FIRESTORE_PROJECT_ID": "sash-data",
		"API_PRICING_SOURCE":       "Postgres",
		"API_POSTGRES_DSN":         "sm://pricing-dsn",
		"API_PRICING_LOAD_TIMEOUT": "3s",
		"API_SERVER_PORT":          "9090",
	}
	var received string
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		received = ref
		return "postgres://pricing@db/sash", nil
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if received != "secret://pricing-dsn" {
		t.Errorf("expected normalised ref, got %s", received)
	}
	if cfg.Postgres.DSN != "postgres://pricing@db/sash" {
		t.Errorf("unexpected dsn %s", cfg.Postgres.DSN)
	}
	if cfg.Pricing.Source != PricingSourcePostgres || cfg.Pricing.LoadTimeout != 3*time.Second {
		t.Errorf("unexpected pricing config %+v", cfg.Pricing)
	}
	if cfg.Firestore.ProjectID != "sash-data" || cfg.Server.Port != "9090" {
		t.Errorf("unexpected overrides: %+v %+v", cfg.Firestore, cfg.Server)
	}
}

func TestLoadSecretWithoutResolver(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "sash-dev",
		"API_POSTGRES_DSN":        "secret://pricing-dsn",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %v", err)
	}
	if !errors.Is(err, errSecretResolverNotConfigured) {
		t.Fatalf("expected unwrap to resolver error, got %v", err)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "missing projects",
			env:  map[string]string{},
			want: []string{"Firestore.ProjectID", "Firebase.ProjectID"},
		},
		{
			name: "estimates disabled needs only firestore",
			env:  map[string]string{"API_FEATURE_ESTIMATES": "off"},
			want: []string{"Firestore.ProjectID"},
		},
		{
			name: "unknown source",
			env:  map[string]string{"API_FIREBASE_PROJECT_ID": "p", "API_PRICING_SOURCE": "redis"},
			want: []string{"Pricing.Source"},
		},
		{
			name: "gcs without object",
			env:  map[string]string{"API_FIREBASE_PROJECT_ID": "p", "API_PRICING_SOURCE": "gcs", "API_PRICING_RULES_BUCKET": "b"},
			want: []string{"Pricing.RulesObject"},
		},
		{
			name: "file without path",
			env:  map[string]string{"API_FIREBASE_PROJECT_ID": "p", "API_PRICING_SOURCE": "file"},
			want: []string{"Pricing.RulesFile"},
		},
		{
			name: "non-positive rate limit",
			env:  map[string]string{"API_FIREBASE_PROJECT_ID": "p", "API_RATELIMIT_QUOTE_REQUESTS_PER_MIN": "0"},
			want: []string{"RateLimits.QuoteRequestsPerMinute"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), WithEnvMap(tc.env), WithoutSystemEnv(), WithEnvFile(""))
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !slices.Equal(validation.Fields(), tc.want) {
				t.Fatalf("expected fields %v, got %v", tc.want, validation.Fields())
			}
		})
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "API_FIREBASE_PROJECT_ID=from-dotenv\nexport API_SERVER_PORT=7000\nAPI_PRICING_SOURCE=\"file\"\nAPI_PRICING_RULES_FILE=rules.yaml\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("API_SERVER_PORT", "7100")

	cfg, err := Load(context.Background(),
		WithEnvFile(envFile),
		WithEnvMap(map[string]string{"API_FIREBASE_PROJECT_ID": "from-map"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Firebase.ProjectID != "from-map" {
		t.Errorf("expected env map to win, got %s", cfg.Firebase.ProjectID)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("expected system env to win over dotenv, got %s", cfg.Server.Port)
	}
	if cfg.Pricing.Source != PricingSourceFile || cfg.Pricing.RulesFile != "rules.yaml" {
		t.Errorf("expected dotenv values, got %+v", cfg.Pricing)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(context.Background(),
		WithEnvFile(filepath.Join(t.TempDir(), "absent.env")),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"API_FIREBASE_PROJECT_ID": "p"}),
	)
	if err != nil {
		t.Fatalf("expected missing dotenv to be ignored, got %v", err)
	}
}

func TestEnvironmentValuesPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("A=dotenv\nB=dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	values, err := EnvironmentValues(WithEnvFile(envFile), WithoutSystemEnv(), WithEnvMap(map[string]string{"B": "map"}))
	if err != nil {
		t.Fatalf("EnvironmentValues returned error: %v", err)
	}
	if values["A"] != "dotenv" || values["B"] != "map" {
		t.Fatalf("unexpected values %v", values)
	}
}

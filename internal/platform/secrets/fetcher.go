// Package secrets resolves secret:// references against Secret Manager, with a local
// dotenv-style fallback file for development.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultFallbackPath = ".secrets.local"
	meterName           = "github.com/sash-studio/api/internal/platform/secrets"
)

var newSecretManagerClient = func(ctx context.Context, opts ...option.ClientOption) (secretManagerClient, error) {
	return secretmanager.NewClient(ctx, opts...)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Fetcher resolves and caches secret values. References look like
// secret://NAME?version=N&project=P; version defaults to latest.
type Fetcher struct {
	client     secretManagerClient
	ownsClient bool
	projectID  string
	logger     *zap.Logger

	fallbackPath string
	fallbackOnce sync.Once
	fallback     map[string]string

	mu    sync.RWMutex
	cache map[string]string

	latency   metric.Float64Histogram
	cacheHits metric.Int64Counter
}

type fetcherConfig struct {
	logger       *zap.Logger
	projectID    string
	fallbackPath string
	meter        metric.Meter
	client       secretManagerClient
	clientOpts   []option.ClientOption
}

// Option customises a Fetcher.
type Option func(*fetcherConfig)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *fetcherConfig) { cfg.logger = logger }
}

// WithDefaultProject sets the project used when a reference names none.
func WithDefaultProject(projectID string) Option {
	return func(cfg *fetcherConfig) { cfg.projectID = strings.TrimSpace(projectID) }
}

// WithFallbackFile sets the local fallback file. Keys are bare secret names.
func WithFallbackFile(path string) Option {
	return func(cfg *fetcherConfig) { cfg.fallbackPath = strings.TrimSpace(path) }
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) Option {
	return func(cfg *fetcherConfig) { cfg.meter = m }
}

// WithSecretManagerClient injects a client instead of dialling one.
func WithSecretManagerClient(client secretManagerClient) Option {
	return func(cfg *fetcherConfig) { cfg.client = client }
}

// WithClientOptions forwards options to the Secret Manager client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *fetcherConfig) { cfg.clientOpts = append(cfg.clientOpts, opts...) }
}

// NewFetcher builds a Fetcher. Without credentials it still works from the fallback file.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{logger: zap.NewNop(), fallbackPath: defaultFallbackPath}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	meter := cfg.meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	f := &Fetcher{
		projectID:    cfg.projectID,
		logger:       cfg.logger,
		fallbackPath: cfg.fallbackPath,
		cache:        make(map[string]string),
	}

	var err error
	if f.latency, err = meter.Float64Histogram("secrets.fetch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency of secret resolution by source"),
	); err != nil {
		cfg.logger.Warn("secrets: latency metric unavailable", zap.Error(err))
	}
	if f.cacheHits, err = meter.Int64Counter("secrets.fetch.cache_hits",
		metric.WithDescription("Secret resolutions served from cache"),
	); err != nil {
		cfg.logger.Warn("secrets: cache hit metric unavailable", zap.Error(err))
	}

	if cfg.client != nil {
		f.client = cfg.client
		return f, nil
	}
	client, err := newSecretManagerClient(ctx, cfg.clientOpts...)
	if err != nil {
		cfg.logger.Warn("secrets: secret manager unavailable, using fallback file only", zap.Error(err))
		return f, nil
	}
	f.client = client
	f.ownsClient = true
	return f, nil
}

// Close releases the Secret Manager client when the fetcher created it.
func (f *Fetcher) Close() error {
	if f.ownsClient && f.client != nil {
		return f.client.Close()
	}
	return nil
}

// Resolve returns the value behind ref. Remote permission or availability failures fall
// back to the local file; a missing secret does not.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (string, error) {
	start := time.Now()
	parsed, err := parseReference(ref)
	if err != nil {
		return "", err
	}

	f.mu.RLock()
	value, ok := f.cache[parsed.key()]
	f.mu.RUnlock()
	if ok {
		if f.cacheHits != nil {
			f.cacheHits.Add(ctx, 1)
		}
		f.observe(ctx, start, "cache")
		return value, nil
	}

	project := parsed.project
	if project == "" {
		project = f.projectID
	}

	source := "fallback"
	if f.client != nil && project != "" {
		value, err = f.fetchRemote(ctx, project, parsed)
		switch {
		case err == nil:
			source = "remote"
		case canFallBack(err):
			f.logger.Debug("secrets: remote fetch failed, trying fallback", zap.String("secret", parsed.name), zap.Error(err))
		default:
			f.observe(ctx, start, "error")
			return "", fmt.Errorf("secrets: fetch %s: %w", parsed.name, err)
		}
	}

	if source == "fallback" {
		value, ok = f.lookupFallback(parsed.name)
		if !ok {
			f.observe(ctx, start, "error")
			return "", fmt.Errorf("secrets: no value for %s", parsed.name)
		}
	}

	f.mu.Lock()
	f.cache[parsed.key()] = value
	f.mu.Unlock()
	f.observe(ctx, start, source)
	return value, nil
}

// Invalidate drops every cached version of ref.
func (f *Fetcher) Invalidate(ref string) {
	parsed, err := parseReference(ref)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.cache {
		if strings.HasPrefix(key, parsed.name+"#") {
			delete(f.cache, key)
		}
	}
}

func (f *Fetcher) fetchRemote(ctx context.Context, project string, ref reference) (string, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", project, ref.name, ref.version)
	resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", err
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", name)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (f *Fetcher) lookupFallback(name string) (string, bool) {
	f.fallbackOnce.Do(func() {
		if f.fallbackPath == "" {
			return
		}
		values, err := godotenv.Read(f.fallbackPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				f.logger.Warn("secrets: fallback file unreadable", zap.String("path", f.fallbackPath), zap.Error(err))
			}
			return
		}
		f.fallback = values
	})
	value, ok := f.fallback[name]
	return value, ok
}

func (f *Fetcher) observe(ctx context.Context, start time.Time, source string) {
	if f.latency == nil {
		return
	}
	f.latency.Record(ctx, float64(time.Since(start))/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("source", source)))
}

type reference struct {
	name    string
	version string
	project string
}

func (r reference) key() string { return r.name + "#" + r.project + "#" + r.version }

func parseReference(ref string) (reference, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return reference{}, fmt.Errorf("secrets: invalid reference %q: %w", ref, err)
	}
	if u.Scheme != "secret" {
		return reference{}, fmt.Errorf("secrets: unsupported scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Host+u.Path, "/")
	if name == "" {
		return reference{}, fmt.Errorf("secrets: missing secret name in %q", ref)
	}
	q := u.Query()
	version := strings.TrimSpace(q.Get("version"))
	if version == "" {
		version = "latest"
	}
	return reference{name: name, version: version, project: strings.TrimSpace(q.Get("project"))}, nil
}

func canFallBack(err error) bool {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return false
}

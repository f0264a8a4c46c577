package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/handlers"
	"github.com/sash-studio/api/internal/platform/auth"
	"github.com/sash-studio/api/internal/platform/config"
	pfirestore "github.com/sash-studio/api/internal/platform/firestore"
	"github.com/sash-studio/api/internal/platform/jobs"
	"github.com/sash-studio/api/internal/platform/observability"
	"github.com/sash-studio/api/internal/platform/secrets"
	platformstorage "github.com/sash-studio/api/internal/platform/storage"
	"github.com/sash-studio/api/internal/pricing"
	"github.com/sash-studio/api/internal/repositories"
	"github.com/sash-studio/api/internal/repositories/document"
	firestoreRepo "github.com/sash-studio/api/internal/repositories/firestore"
	"github.com/sash-studio/api/internal/repositories/postgres"
	"github.com/sash-studio/api/internal/services"
)

const pricingConfigCollection = "pricing_config"

// ruleSource is the override loader selected by API_PRICING_SOURCE together with
// whatever it holds open.
type ruleSource struct {
	name   string
	loader pricing.OverrideLoader
	ping   func(context.Context) error
	closer io.Closer
}

func (s ruleSource) close(logger *zap.Logger) {
	if s.closer == nil {
		return
	}
	if err := s.closer.Close(); err != nil {
		logger.Warn("pricing rule source close failed", zap.String("source", s.name), zap.Error(err))
	}
}

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("api")

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	secretFetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := secretFetcher.Close(); err != nil {
			logger.Warn("secret fetcher close failed", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(secretFetcher.Resolve)))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	buildInfo := buildInfoFromEnv(envValues, cfg, startedAt)

	provider := pfirestore.NewProvider(pfirestore.Config{
		ProjectID:    cfg.Firestore.ProjectID,
		EmulatorHost: cfg.Firestore.EmulatorHost,
	})
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn("firestore provider close failed", zap.Error(err))
		}
	}()

	source := resolveRuleSource(ctx, cfg, provider, logger)
	defer source.close(logger)

	// Quotes are served from the defaults until overrides arrive.
	catalog := pricing.NewCatalog(pricing.CatalogDeps{
		Loader:      source.loader,
		SourceName:  source.name,
		LoadTimeout: cfg.Pricing.LoadTimeout,
		Logger:      observability.EventLogger(logger.Named("pricing")),
	})
	catalog.Start(ctx)

	quoteService, err := services.NewQuoteService(services.QuoteServiceDeps{Catalog: catalog})
	if err != nil {
		logger.Fatal("failed to initialise quote service", zap.Error(err))
	}

	publisher, topic, closePublisher, err := newEventPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise event publisher", zap.Error(err))
	}
	defer closePublisher()

	quoteRequestRepo, err := firestoreRepo.NewQuoteRequestRepository(provider)
	if err != nil {
		logger.Fatal("failed to initialise quote request repository", zap.Error(err))
	}
	quoteRequestService, err := services.NewQuoteRequestService(services.QuoteRequestServiceDeps{
		Repository: quoteRequestRepo,
		Catalog:    catalog,
		Events:     publisher,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("quote_requests")),
	})
	if err != nil {
		logger.Fatal("failed to initialise quote request service", zap.Error(err))
	}

	systemService, err := newSystemService(provider, source, topic, buildInfo)
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	opts := []handlers.Option{
		handlers.WithMiddlewares(
			observability.InjectLogger(logger.Named("http")),
			observability.TraceMiddleware(cfg.Firebase.ProjectID),
			observability.RequestLogger(),
			observability.Recovery(logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(
			handlers.WithHealthSystemService(systemService),
			handlers.WithHealthBuildInfo(buildInfo),
		)),
		handlers.WithPublicRoutes(handlers.NewQuoteHandlers(quoteService).Routes),
		handlers.WithQuoteRequestRoutes(handlers.NewQuoteRequestHandlers(
			quoteRequestService,
			handlers.WithQuoteRequestRateLimit(cfg.RateLimits.QuoteRequestsPerMinute, nil),
		).Routes),
	}

	if cfg.Features.EnableEstimates {
		estimateHandlers, err := newEstimateHandlers(ctx, cfg, provider, catalog, publisher, logger)
		if err != nil {
			logger.Fatal("failed to initialise estimate routes", zap.Error(err))
		}
		opts = append(opts, handlers.WithMeRoutes(estimateHandlers.Routes))
	} else {
		logger.Info("estimates disabled; /api/v1/me answers not_implemented")
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("sash api listening", zap.String("pricingSource", source.name))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}

	defaultProject := lookup("API_SECRET_DEFAULT_PROJECT_ID")
	if defaultProject == "" {
		defaultProject = lookup("API_FIREBASE_PROJECT_ID")
	}
	fallbackPath := lookup("API_SECRET_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
	}
	if defaultProject != "" {
		opts = append(opts, secrets.WithDefaultProject(defaultProject))
	}
	return secrets.NewFetcher(ctx, opts...)
}

func buildInfoFromEnv(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["API_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["API_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(cfg.Security.Environment)
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

// resolveRuleSource never fails: a source that cannot be built is replaced by one whose
// load and ping report the construction error, so the catalog keeps the defaults and
// readiness shows the source as degraded.
func resolveRuleSource(ctx context.Context, cfg config.Config, provider *pfirestore.Provider, logger *zap.Logger) ruleSource {
	source, err := newRuleSource(ctx, cfg, provider)
	if err == nil {
		return source
	}
	logger.Warn("pricing rule source unavailable; serving default rules",
		zap.String("source", cfg.Pricing.Source), zap.Error(err))
	initErr := fmt.Errorf("pricing source %q: %w", cfg.Pricing.Source, err)
	return ruleSource{
		name: cfg.Pricing.Source,
		loader: pricing.OverrideLoaderFunc(func(context.Context) (domain.PricingOverrides, error) {
			return domain.PricingOverrides{}, initErr
		}),
		ping: func(context.Context) error { return initErr },
	}
}

func newRuleSource(ctx context.Context, cfg config.Config, provider *pfirestore.Provider) (ruleSource, error) {
	switch cfg.Pricing.Source {
	case config.PricingSourceNone, "":
		return ruleSource{name: config.PricingSourceNone}, nil
	case config.PricingSourceFirestore:
		repo, err := firestoreRepo.NewPricingConfigRepository(provider)
		if err != nil {
			return ruleSource{}, err
		}
		return ruleSource{name: cfg.Pricing.Source, loader: repo, ping: repo.Ping}, nil
	case config.PricingSourcePostgres:
		db, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			return ruleSource{}, err
		}
		repo, err := postgres.NewPricingConfigRepository(db)
		if err != nil {
			_ = db.Close()
			return ruleSource{}, err
		}
		return ruleSource{name: cfg.Pricing.Source, loader: repo, ping: repo.Ping, closer: dbCloser{db}}, nil
	case config.PricingSourceFile:
		repo, err := document.NewPricingConfigRepository(document.FileSource{Path: cfg.Pricing.RulesFile})
		if err != nil {
			return ruleSource{}, err
		}
		return ruleSource{name: cfg.Pricing.Source, loader: repo}, nil
	case config.PricingSourceGCS:
		reader, err := platformstorage.NewObjectReader(ctx)
		if err != nil {
			return ruleSource{}, err
		}
		repo, err := document.NewPricingConfigRepository(document.ObjectSource{
			Reader: reader,
			Bucket: cfg.Pricing.RulesBucket,
			Object: cfg.Pricing.RulesObject,
		})
		if err != nil {
			_ = reader.Close()
			return ruleSource{}, err
		}
		return ruleSource{name: cfg.Pricing.Source, loader: repo, closer: reader}, nil
	default:
		return ruleSource{}, fmt.Errorf("unsupported pricing source %q", cfg.Pricing.Source)
	}
}

type dbCloser struct{ db *sql.DB }

func (c dbCloser) Close() error { return c.db.Close() }

// newEventPublisher returns a nil publisher when no Pub/Sub project is configured;
// services then skip publishing.
func newEventPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (services.EventPublisher, *pubsub.Topic, func(), error) {
	projectID := strings.TrimSpace(cfg.PubSub.ProjectID)
	if projectID == "" {
		logger.Info("pubsub project not configured; domain events are not published")
		return nil, nil, func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pubsub: create client: %w", err)
	}
	topic := client.Topic(cfg.PubSub.QuoteEventsTopic)
	publisher, err := jobs.NewPubSubEventPublisher(topic)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, err
	}
	closeFn := func() {
		topic.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	return publisher, topic, closeFn, nil
}

func newEstimateHandlers(
	ctx context.Context,
	cfg config.Config,
	provider *pfirestore.Provider,
	catalog services.PricingCatalog,
	publisher services.EventPublisher,
	logger *zap.Logger,
) (*handlers.EstimateHandlers, error) {
	verifier, err := auth.NewFirebaseVerifier(ctx, auth.FirebaseConfig{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
	})
	if err != nil {
		return nil, err
	}
	repo, err := firestoreRepo.NewEstimateRepository(provider)
	if err != nil {
		return nil, err
	}
	svc, err := services.NewEstimateService(services.EstimateServiceDeps{
		Repository: repo,
		Catalog:    catalog,
		Events:     publisher,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("estimates")),
	})
	if err != nil {
		return nil, err
	}
	return handlers.NewEstimateHandlers(auth.NewAuthenticator(verifier), svc), nil
}

func newSystemService(provider *pfirestore.Provider, source ruleSource, topic *pubsub.Topic, build services.BuildInfo) (services.SystemService, error) {
	checks := []repositories.DependencyCheck{{
		Name:    "firestore",
		Timeout: 1500 * time.Millisecond,
		Check: func(ctx context.Context) error {
			return provider.Ping(ctx, pricingConfigCollection)
		},
	}}
	if source.ping != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:     "pricing_rules",
			Optional: true,
			Timeout:  time.Second,
			Check:    source.ping,
		})
	}
	if topic != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:     "pubsub",
			Optional: true,
			Timeout:  time.Second,
			Check: func(ctx context.Context) error {
				ok, err := topic.Exists(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("topic does not exist")
				}
				return nil
			},
		})
	}
	repo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Clock:            time.Now,
		Build:            build,
	})
}

// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	apppantry "github.com/alchemorsel/pantry/internal/application/pantry"
	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	gormstore "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	redisstore "github.com/alchemorsel/pantry/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

// ConfigPathEnv names the environment variable holding an explicit config file path
const ConfigPathEnv = "PANTRY_CONFIG"

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	EventModule,
	StorageModule,
	MonitoringModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			Fields: map[string]string{
				"service": cfg.App.Name,
				"version": cfg.App.Version,
			},
		})
	},
)

// EventModule provides the in-process domain event dispatcher
var EventModule = fx.Provide(
	fx.Annotate(
		shared.NewInProcessDispatcher,
		fx.As(new(shared.EventDispatcher)),
	),
)

// StorageModule provides the key-value store selected by pantry.backend
var StorageModule = fx.Provide(
	NewKeyValueStore,
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	func(log *zap.Logger, events shared.EventDispatcher) *monitoring.MetricsCollector {
		metrics := monitoring.NewMetricsCollector(log)
		metrics.Subscribe(events)
		return metrics
	},
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
	NewHealthCheck,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Categorization provider, nil when disabled
	func(cfg *config.Config, log *zap.Logger) (outbound.Categorizer, error) {
		return ai.NewCategorizer(context.Background(), cfg.AI, log)
	},

	// Durable store
	func(kv outbound.KeyValueStore, cfg *config.Config, events shared.EventDispatcher, log *zap.Logger) (*apppantry.Store, error) {
		locations := make([]pantry.Location, len(cfg.Pantry.Locations))
		for i, name := range cfg.Pantry.Locations {
			locations[i] = pantry.Location(name)
		}
		return apppantry.NewStore(kv, cfg.Pantry.StorageKey, locations, events, log)
	},

	// Pantry service
	func(
		store *apppantry.Store,
		categorizer outbound.Categorizer,
		events shared.EventDispatcher,
		tracing *monitoring.TracingProvider,
		log *zap.Logger,
	) *apppantry.Service {
		return apppantry.NewService(store, categorizer, events, log, apppantry.WithTracer(tracing.Tracer()))
	},
	func(s *apppantry.Service) inbound.PantryService {
		return s
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	apiserver.NewPantryAPIServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewKeyValueStore opens the configured backend and closes it when the app stops
func NewKeyValueStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.KeyValueStore, error) {
	switch cfg.Pantry.Backend {
	case "memory":
		log.Info("Using in-memory pantry store; data is lost on restart")
		return memory.NewKVStore(cfg.Pantry.QuotaBytes), nil

	case "sqlite", "postgres":
		dbCfg := gormstore.DatabaseConfig{
			Driver:          cfg.Pantry.Backend,
			DSN:             cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        gormLogLevel(cfg.Database.LogLevel),
		}
		if cfg.Pantry.Backend == "postgres" {
			dbCfg.DSN = cfg.GetDSN()
		}
		db, err := gormstore.SetupDatabase(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to setup %s database: %w", cfg.Pantry.Backend, err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return gormstore.Close(db)
			},
		})
		log.Info("Connected to pantry database", zap.String("driver", cfg.Pantry.Backend))
		return gormstore.NewKVStore(db, cfg.Pantry.QuotaBytes, log), nil

	case "redis":
		client := redisstore.NewClient(&cfg.Redis, log)
		store := redisstore.NewKVStore(client, cfg.Redis.KeyPrefix, cfg.Pantry.QuotaBytes, log)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return store.Ping(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported pantry backend %q", cfg.Pantry.Backend)
	}
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch level {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// healthChecker is implemented by categorization providers that can check their backend
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// categorizerWrapper is implemented by the rate limiter and the label cache
type categorizerWrapper interface {
	Unwrap() outbound.Categorizer
}

// NewHealthCheck registers the store as a critical dependency and the categorization
// provider, when it can be checked, as a non-critical one
func NewHealthCheck(cfg *config.Config, log *zap.Logger, kv outbound.KeyValueStore, categorizer outbound.Categorizer) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.Register("store", healthcheck.NewPingChecker(kv, true))

	provider := categorizer
	for {
		wrapper, ok := provider.(categorizerWrapper)
		if !ok {
			break
		}
		provider = wrapper.Unwrap()
	}
	if checker, ok := provider.(healthChecker); ok {
		health.Register("categorizer", healthcheck.NewCustomChecker("categorizer",
			func(ctx context.Context) (healthcheck.Status, string, interface{}) {
				if err := checker.HealthCheck(ctx); err != nil {
					return healthcheck.StatusDegraded, err.Error(), map[string]string{"provider": provider.Name()}
				}
				return healthcheck.StatusHealthy, "", map[string]string{"provider": provider.Name()}
			},
		))
	}
	return health
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	service *apppantry.Service,
	tracing *monitoring.TracingProvider,
	server *apiserver.PantryAPIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting pantry service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("backend", cfg.Pantry.Backend),
				zap.Strings("locations", cfg.Pantry.Locations),
			)

			// A corrupted store is reported but does not prevent startup; the next
			// request retries the load.
			notes, err := service.Open(ctx)
			if err != nil {
				log.Error("Failed to load pantry", zap.Error(err))
			}
			for _, n := range notes {
				log.Warn("Pantry recovered on startup", zap.String("code", string(n.Code)), zap.String("message", n.Message))
			}

			// Start HTTP server
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down pantry service")

			// Shutdown HTTP server
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := tracing.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown tracing", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}

package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/catalog"
	"github.com/MrSnakeDoc/cardshelf/internal/config"
	"github.com/MrSnakeDoc/cardshelf/internal/database"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/redis"
	"github.com/MrSnakeDoc/cardshelf/internal/retry"
	"github.com/MrSnakeDoc/cardshelf/internal/scheduler"
	"github.com/MrSnakeDoc/cardshelf/internal/store/sqldb"
	redisstore "github.com/MrSnakeDoc/cardshelf/internal/store/redis"
	"github.com/MrSnakeDoc/cardshelf/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *gorm.DB
	redisClient *goredis.Client
	seeder      *scheduler.SeedImporter
	purger      *scheduler.Purger
}

// New connects the backends and assembles the server. Nothing runs until Run.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	authz, err := auth.NewHashAuthorizer(cfg.AdminCredentialHash, cfg.EditCredentialHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	db, err := OpenDatabase(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	if err := sqldb.Migrate(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	store := sqldb.NewStore(db, loggerClient)

	opts := catalog.Options{
		Policy:               catalog.InsertionPolicy(cfg.InsertionPolicy),
		AtomicReorder:        cfg.ReorderAtomic,
		ThumbnailPlaceholder: cfg.ThumbnailPlaceholder,
	}

	// Redis is optional; without it moderation events are only logged.
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry: retry.Policy{
				ConnectTimeout: cfg.RedisConnectTimeout,
				RetryInterval:  cfg.RedisRetryInterval,
				MaxWait:        cfg.RedisMaxWait,
				PingTimeout:    cfg.RedisPingTimeout,
				WarnThreshold:  cfg.RedisWarnThreshold,
			},
		}, loggerClient)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		opts.Auditor = redisstore.NewAuditLog(redisClient, cfg.AuditStream, cfg.AuditMaxLen)
		loggerClient.Info("moderation log enabled", logger.String("stream", cfg.AuditStream))
	} else {
		loggerClient.Info("redis not configured, moderation log disabled")
	}

	svc := catalog.New(store, authz, loggerClient, opts)

	var seeder *scheduler.SeedImporter
	var seedTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed importer",
			logger.String("file", cfg.SeedFile))
		seedTrigger = make(chan struct{}, 1)
		seeder = scheduler.NewSeedImporter(cfg.SeedFile, svc, loggerClient, cfg.SeedInterval, seedTrigger)
	}

	var purger *scheduler.Purger
	if cfg.PurgeInterval > 0 {
		purger = scheduler.NewPurger(svc, loggerClient, cfg.PurgeInterval, cfg.PurgeAfter)
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
		Catalog:        svc,
		RedisClient:    redisClient,
		SeedTrigger:    seedTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		db:          db,
		redisClient: redisClient,
		seeder:      seeder,
		purger:      purger,
	}, nil
}

// OpenDatabase connects to the configured database with the startup retry
// policy.
func OpenDatabase(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*gorm.DB, error) {
	db, err := database.Open(ctx, database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		SlowQuery:       cfg.DBSlowQuery,
		LogLevel:        cfg.LogLevel,
		Retry: retry.Policy{
			ConnectTimeout: cfg.DBConnectTimeout,
			RetryInterval:  cfg.DBRetryInterval,
			MaxWait:        cfg.DBMaxWait,
			PingTimeout:    cfg.DBPingTimeout,
			WarnThreshold:  cfg.DBWarnThreshold,
		},
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Run starts the background jobs and the HTTP server, then blocks until ctx
// is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting Cardshelf v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Cardshelf %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	if a.seeder != nil {
		if err := a.seeder.Start(ctx); err != nil {
			a.close()
			return fmt.Errorf("failed to start seed importer: %w", err)
		}
		a.logger.Info("seed importer started", logger.Duration("interval", a.cfg.SeedInterval))
	}

	if a.purger != nil {
		if err := a.purger.Start(ctx); err != nil {
			a.stopJobs()
			a.close()
			return fmt.Errorf("failed to start purger: %w", err)
		}
		a.logger.Info("purger started",
			logger.Duration("interval", a.cfg.PurgeInterval),
			logger.Duration("threshold", a.cfg.PurgeAfter))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("failed to stop server: %w", err))
	}

	a.close()
	if runErr == nil {
		a.logger.Info("✅ Cardshelf stopped cleanly")
	}
	return runErr
}

func (a *App) stopJobs() {
	if a.seeder != nil {
		a.seeder.Stop()
	}
	if a.purger != nil {
		a.purger.Stop()
	}
}

func (a *App) close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}
}

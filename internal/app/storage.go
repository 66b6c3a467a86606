package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/storage/sqlstore"
)

type runtimeDependencies struct {
	store          domain.Store
	storageChecker health.Checker
	closeFn        func() error
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &runtimeDependencies{
		store:          store,
		storageChecker: health.NewPingChecker("storage", store),
		closeFn:        store.Close,
	}, nil
}

// OpenStore открывает хранилище, выбранное в cfg.StorageDriver, и при AutoMigrate применяет миграции.
func OpenStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.Store, error) {
	if logger == nil {
		logger = log.WithField("component", "storage")
	}

	var (
		driver sqlstore.Driver
		dsn    string
	)
	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case StorageDriverMemory:
		logger.Info("using in-memory storage")
		return memory.NewStore(), nil
	case StorageDriverPostgres:
		driver, dsn = sqlstore.DriverPostgres, strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn is required when storage driver is %q", StorageDriverPostgres)
		}
	case StorageDriverSQLite:
		driver, dsn = sqlstore.DriverSQLite, strings.TrimSpace(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	store, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		version, count, err := store.MigrationStatus(ctx)
		if err == nil {
			logger.WithFields(log.Fields{"version": version, "applied": count}).Info("migrations applied")
		}
	}
	logger.WithField("driver", driver).Info("sql storage initialized")
	return store, nil
}

package analytics

import (
	"context"
	"fmt"

	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/db"
	"backflow_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceConfig selects and configures the analytics data source.
type SourceConfig interface {
	config.DatabaseConfig
	config.AnalyticsConfig
	UsesDemoData() bool
}

// Source is an opened data source. Pool is nil for demo data.
type Source struct {
	Reader repository.Reader
	Pool   *pgxpool.Pool
}

// Close releases the database pool, if any.
func (s Source) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenSource connects to Postgres and applies migrations, or returns the
// seeded demo source when the config asks for demo data. Query failures are
// reported through log.
func OpenSource(ctx context.Context, cfg SourceConfig, migrate bool, log *logger.Logger) (Source, error) {
	if cfg.UsesDemoData() {
		return Source{Reader: repository.NewDemoSource(cfg.GetAnalyticsDemoSeed())}, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return Source{}, fmt.Errorf("connect database: %w", err)
	}
	if migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return Source{}, err
		}
	}
	return Source{Reader: repository.New(pool, log), Pool: pool}, nil
}

package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// OpenDB opens an instrumented lib/pq pool and verifies connectivity.
func OpenDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinaryResult)
	dbName := dbNameFromURL(dsn)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %q: %w", dbName, err)
	}

	logger.InfoContext(ctx, "postgres connected", "db_name", dbName, "max_open_conns", cfg.DBMaxOpenConns)
	return db, nil
}

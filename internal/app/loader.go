package app

import (
	"context"

	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/bulkfile"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

// NewLoaderService wires the bulk file reader to the configured store. The
// returned close func releases the database pool.
func NewLoaderService(ctx context.Context, cfg config.Config, logger *logging.Logger) (*usecase.LoaderService, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	reader := bulkfile.NewReader(cfg.Loader.DataDir, logger)

	if cfg.StoreDriver == config.StoreDriverMemory {
		// dry run: validates and reconciles files without a database
		return usecase.NewLoaderService(reader, memory.NewStore(), logger), func() error { return nil }, nil
	}

	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	writer := postgres.NewBulkWriter(db, cfg.Loader.BatchSize)
	return usecase.NewLoaderService(reader, writer, logger), db.Close, nil
}

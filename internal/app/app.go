package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/bulkfile"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/market-value-crawler/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/market-value-crawler/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/market-value-crawler/internal/platform/cache"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

// QueryApp is the assembled read-only API.
type QueryApp struct {
	Server *http.Server

	logger  *logging.Logger
	cache   *basecache.Store
	loader  *usecase.LoaderService
	closers []func() error
}

type queryRepositories struct {
	leagues    league.Repository
	players    player.Repository
	valuations valuation.Repository
}

func NewQueryApp(ctx context.Context, cfg config.Config, logger *logging.Logger) (*QueryApp, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &QueryApp{logger: logger}
	var repos queryRepositories

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		a.loader = usecase.NewLoaderService(bulkfile.NewReader(cfg.Loader.DataDir, logger), store, logger)
		if _, err := a.loader.Load(ctx); err != nil {
			return nil, fmt.Errorf("load memory store from %s: %w", cfg.Loader.DataDir, err)
		}
		repos = queryRepositories{leagues: store.Leagues(), players: store.Players(), valuations: store.Valuations()}
	default:
		db, err := OpenDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		repos = queryRepositories{
			leagues:    postgres.NewLeagueRepository(db),
			players:    postgres.NewPlayerRepository(db),
			valuations: postgres.NewValuationRepository(db),
		}
	}

	if cfg.CacheEnabled {
		a.cache = basecache.NewStore(cfg.CacheTTL)
		repos = queryRepositories{
			leagues:    cache.NewLeagueRepository(repos.leagues, a.cache),
			players:    cache.NewPlayerRepository(repos.players, a.cache),
			valuations: cache.NewValuationRepository(repos.valuations, a.cache),
		}
	}

	handler := httpapi.NewHandler(
		usecase.NewLeagueService(repos.leagues),
		usecase.NewPlayerService(repos.players, repos.valuations),
		logger,
	)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.InfoContext(ctx, "query app assembled",
		"store_driver", cfg.StoreDriver,
		"cache_enabled", cfg.CacheEnabled,
		"swagger_enabled", cfg.SwaggerEnabled,
	)
	return a, nil
}

// Reload refreshes served data after a bulk load: the memory store re-reads
// the data directory and cached responses are dropped.
func (a *QueryApp) Reload(ctx context.Context) error {
	if a.loader != nil {
		report, err := a.loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("reload memory store: %w", err)
		}
		if !report.AllSuccessful {
			a.logger.WarnContext(ctx, "reload finished with failed tables")
		}
	}
	if a.cache != nil {
		removed := cache.Invalidate(ctx, a.cache)
		a.logger.InfoContext(ctx, "query cache invalidated", "keys", removed)
	}
	return nil
}

func (a *QueryApp) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

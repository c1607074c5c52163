package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler registers job under a standard five-field cron spec (or a
// descriptor such as "@daily"). Overlapping runs are skipped and a panic in
// job is logged instead of killing the process. ctx is handed to every run.
func NewScheduler(ctx context.Context, spec string, job func(context.Context), logger *logging.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cl := cronLogger{logger: logger.Named("cron")}

	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return c, nil
}

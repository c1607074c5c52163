// Package observability starts the optional tracing, profiling and debug
// endpoints shared by every binary.
package observability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/riskibarqy/market-value-crawler/internal/config"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
)

type stopFunc struct {
	name string
	stop func(context.Context) error
}

// Runtime holds whatever Start switched on. Shutdown stops it in reverse
// order.
type Runtime struct {
	logger    *logging.Logger
	stops     []stopFunc
	PprofAddr string
}

// Start enables Uptrace, Pyroscope and pprof according to cfg. component
// names the binary (api, crawler, loader) in traces and profiles. On error,
// anything already started is stopped before returning.
func Start(ctx context.Context, cfg config.Config, component string, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger.With("component", component)}

	steps := []struct {
		name  string
		start func() (func(context.Context) error, error)
	}{
		{"uptrace", func() (func(context.Context) error, error) { return startTracing(cfg, component, rt.logger) }},
		{"pyroscope", func() (func(context.Context) error, error) { return startProfiling(cfg, component, rt.logger) }},
		{"pprof", func() (func(context.Context) error, error) {
			srv, err := startPprof(cfg, rt.logger)
			if err != nil || srv == nil {
				return nil, err
			}
			rt.PprofAddr = srv.Addr
			return srv.Shutdown, nil
		}},
	}

	for _, step := range steps {
		stop, err := step.start()
		if err != nil {
			_ = rt.Shutdown(ctx)
			return nil, fmt.Errorf("start %s: %w", step.name, err)
		}
		if stop != nil {
			rt.stops = append(rt.stops, stopFunc{name: step.name, stop: stop})
		}
	}
	return rt, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, s := range slices.Backward(r.stops) {
		if err := s.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", s.name, err))
			continue
		}
		r.logger.Debug("observability stopped", "name", s.name)
	}
	r.stops = nil
	return errors.Join(errs...)
}

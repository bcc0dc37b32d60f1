package main

import (
	"context"
	"errors"

	"verdantcalc/internal/calculator"
	"verdantcalc/internal/config"
	"verdantcalc/internal/observability"
)

// initTelemetry initialises tracing, metrics and, when enabled, OTLP log
// export, plus the calculator metric instruments. The returned function shuts
// every provider down.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	metricShutdown, err := observability.InitMetrics(ctx, cfg.ServiceName)
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	shutdowns = append(shutdowns, metricShutdown)

	if cfg.OTelLogsEnabled {
		logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}

// Package app assembles the application: configuration, metrics recorder,
// optional audit store, and the pipeline driver, wired through uber-fx.
package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/stockpost/internal/config"
	"github.com/tigerroll/stockpost/internal/metrics"
	"github.com/tigerroll/stockpost/internal/pipeline"
	"github.com/tigerroll/stockpost/internal/store"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"

	// Register the database dialectors the audit store can be configured with.
	_ "github.com/tigerroll/stockpost/internal/store/mysql"
	_ "github.com/tigerroll/stockpost/internal/store/postgres"
	_ "github.com/tigerroll/stockpost/internal/store/sqlite"
)

// NewRecorder selects the metrics backend: Prometheus when enabled in
// configuration, a no-op recorder otherwise.
func NewRecorder(cfg *config.Config) metrics.Recorder {
	if cfg.Stockpost.Metrics.Enabled {
		logger.Infof("Prometheus metrics recorder enabled")
		return metrics.NewPrometheusRecorder()
	}
	return metrics.NewNoOpRecorder()
}

// NewAuditStore opens the audit store when enabled. A disabled audit block
// yields a nil store, which the driver treats as persistence turned off.
func NewAuditStore(lc fx.Lifecycle, cfg *config.Config) (*store.AuditStore, error) {
	if !cfg.Stockpost.Audit.Enabled {
		logger.Debugf("Audit store disabled")
		return nil, nil
	}
	dbCfg, err := cfg.DatasourceConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.NewAuditStore(dbCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("Closing audit store connection...")
			return s.Close()
		},
	})
	return s, nil
}

// Module defines the application's Fx module.
var Module = fx.Options(
	fx.Provide(NewRecorder),
	fx.Provide(NewAuditStore),
	fx.Provide(pipeline.NewDriver),
)

package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/stockpost/internal/config"
	"github.com/tigerroll/stockpost/internal/pipeline"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

// RunApplication sets up and runs the postprocessing application using
// uber-fx. It blocks until the run completes or the context is cancelled.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLogLevel(cfg.Stockpost.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Stockpost.System.Logging.Level)

	application := fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),
		Module,
		fx.Invoke(fx.Annotate(startRun, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // driver *pipeline.Driver
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	application.Run()

	if application.Err() != nil {
		logger.Fatalf("Application run failed: %v", application.Err())
	}
}

// startRun launches the pipeline run once the Fx app has started and shuts
// the app down when the run finishes, carrying the run's outcome as the exit
// code.
func startRun(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	driver *pipeline.Driver,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				exitCode := 0
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in pipeline run: %v", r)
						exitCode = 1
					}
					if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				if err := driver.Run(appCtx); err != nil {
					exitCode = 1
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

package cli

import (
	"context"

	"github.com/secmon-lab/augur/pkg/cli/config"
	"github.com/secmon-lab/augur/pkg/utils/errutil"
	"github.com/secmon-lab/augur/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "augur",
		Usage:   "Memory-augmented planner turning task descriptions into symbolic programs",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logger := logging.Default()
			logger.Debug("Starting augur", "logger", loggerCfg, "sentry", &sentryCfg)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			cmdPlan(),
			cmdMemory(),
			cmdFact(),
			cmdPattern(),
			cmdMigrate(),
		},
	}

	// Closers run after error reporting so the logger and Sentry see the failure
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}

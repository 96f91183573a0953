package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/types"
	"github.com/secmon-lab/augur/pkg/service/executor"
	"github.com/urfave/cli/v3"
)

// Executor holds CLI flags for the external interpreter used by plan --run
type Executor struct {
	command string
	allow   []string
	timeout time.Duration
}

func (e *Executor) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "executor-command",
			Category:    "Executor",
			Usage:       "Interpreter command receiving the program on stdin, e.g. \"anarchy --stdin\"",
			Sources:     cli.EnvVars("AUGUR_EXECUTOR_COMMAND"),
			Destination: &e.command,
		},
		&cli.StringSliceFlag{
			Name:        "executor-allow",
			Category:    "Executor",
			Usage:       "Capabilities programs may use (control, file, network, memory, input). All when unset",
			Sources:     cli.EnvVars("AUGUR_EXECUTOR_ALLOW"),
			Destination: &e.allow,
		},
		&cli.DurationFlag{
			Name:        "executor-timeout",
			Category:    "Executor",
			Usage:       "Maximum run time of one program",
			Value:       executor.DefaultTimeout,
			Sources:     cli.EnvVars("AUGUR_EXECUTOR_TIMEOUT"),
			Destination: &e.timeout,
		},
	}
}

func (e *Executor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("command", e.command),
		slog.Any("allow", e.allow),
		slog.Duration("timeout", e.timeout),
	)
}

// Configure returns nil if no command is configured
func (e *Executor) Configure() (*executor.Command, error) {
	argv := strings.Fields(e.command)
	if len(argv) == 0 {
		return nil, nil
	}

	opts := []executor.Option{executor.WithTimeout(e.timeout)}
	if len(e.allow) > 0 {
		caps := make([]types.Capability, 0, len(e.allow))
		for _, s := range e.allow {
			c, err := types.ParseCapability(strings.TrimSpace(s))
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidConfig, "invalid executor capability", goerr.V("capability", s), goerr.V("reason", err.Error()))
			}
			caps = append(caps, c)
		}
		opts = append(opts, executor.WithAllowed(caps...))
	}

	return executor.New(argv, opts...)
}

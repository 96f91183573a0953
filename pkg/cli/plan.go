package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdPlan() *cli.Command {
	var rt runtimeConfig
	var task string
	var explain, combined, run bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "task",
			Aliases:     []string{"t"},
			Usage:       "Task description to plan",
			Required:    true,
			Destination: &task,
		},
		&cli.BoolFlag{
			Name:        "explain",
			Usage:       "Print the justification of the plan",
			Destination: &explain,
		},
		&cli.BoolFlag{
			Name:        "combined",
			Usage:       "Render every matching rule instead of the top one",
			Destination: &combined,
		},
		&cli.BoolFlag{
			Name:        "run",
			Usage:       "Execute the plan with --executor-command and record the result",
			Destination: &run,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:    "plan",
		Aliases: []string{"p"},
		Usage:   "Synthesize a program for a task",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if combined && run {
				return goerr.New("--combined cannot be used with --run")
			}

			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			w := writer(c)

			if run {
				execution, err := r.usecase.RunTask(ctx, task)
				if err != nil {
					return goerr.Wrap(err, "failed to run task")
				}
				printPlan(ctx, c, execution.Plan, explain)
				heading(ctx, w, "Result")
				line(ctx, w, "%s", execution.Result)
				field(ctx, w, "record", string(execution.RecordID))
				return nil
			}

			var plan *model.Plan
			if combined {
				plan, err = r.usecase.GenerateCombinedPlan(ctx, task)
			} else {
				plan, err = r.usecase.GeneratePlan(ctx, task)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to generate plan")
			}

			printPlan(ctx, c, plan, explain)
			return nil
		},
	}
}

func printPlan(ctx context.Context, c *cli.Command, plan *model.Plan, explain bool) {
	w := writer(c)

	heading(ctx, w, "Plan")
	field(ctx, w, "source", plan.Source.String())
	if len(plan.Tags) > 0 {
		field(ctx, w, "tags", joinTags(plan.Tags))
	}
	field(ctx, w, "context", pluralize(len(plan.Context), "previous execution"))
	line(ctx, w, "%s", plan.Code)

	if explain {
		heading(ctx, w, "Justification")
		line(ctx, w, "%s", plan.Justification)
	}
}

package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

func cmdPattern() *cli.Command {
	return &cli.Command{
		Name:  "pattern",
		Usage: "Inspect the pattern catalog",
		Commands: []*cli.Command{
			cmdPatternList(),
			cmdPatternCheck(),
			cmdPatternTemplates(),
		},
	}
}

func cmdPatternList() *cli.Command {
	var rt runtimeConfig

	return &cli.Command{
		Name:  "list",
		Usage: "List rules in match order",
		Flags: rt.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			w := writer(c)
			for _, rule := range r.engine.Patterns() {
				heading(ctx, w, fmt.Sprintf("%s (priority %d)", rule.ID, rule.Priority))
				if rule.Description != "" {
					field(ctx, w, "description", rule.Description)
				}
				field(ctx, w, "regex", rule.Expression)
				field(ctx, w, "tags", joinTags(rule.Tags))
			}
			return nil
		},
	}
}

func cmdPatternCheck() *cli.Command {
	var rt runtimeConfig
	var task string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "task",
			Aliases:     []string{"t"},
			Usage:       "Task description to match",
			Required:    true,
			Destination: &task,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Show which rules match a task and what they capture",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			catalog := r.engine.Patterns()
			w := writer(c)
			matches := r.engine.Match(task)
			if len(matches) == 0 {
				line(ctx, w, "%s", dimColor.Sprintf("no rule out of %d matched", len(catalog)))
				return nil
			}

			for i, m := range matches {
				heading(ctx, w, fmt.Sprintf("%d. %s (priority %d)", i+1, m.RuleID, m.Priority))
				names := make([]string, 0, len(m.Captures))
				for name := range m.Captures {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					field(ctx, w, name, m.Captures[name])
				}
			}
			return nil
		},
	}
}


func cmdPatternTemplates() *cli.Command {
	var rt runtimeConfig

	return &cli.Command{
		Name:  "templates",
		Usage: "List named templates usable as template_name in [[pattern]]",
		Flags: rt.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			w := writer(c)
			for _, name := range r.synth.TemplateNames() {
				text, _ := r.synth.Template(name)
				heading(ctx, w, name)
				line(ctx, w, "%s", text)
			}
			return nil
		},
	}
}

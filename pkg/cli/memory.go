package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func limitFlag(dst *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "limit",
		Aliases:     []string{"n"},
		Usage:       "Maximum number of records (defaults to memory.search_limit)",
		Destination: dst,
	}
}

func cmdMemory() *cli.Command {
	return &cli.Command{
		Name:    "memory",
		Aliases: []string{"mem"},
		Usage:   "Inspect and populate episodic memory",
		Commands: []*cli.Command{
			cmdMemoryStore(),
			cmdMemorySearch(),
			cmdMemoryTags(),
			cmdMemoryText(),
			cmdMemoryList(),
		},
	}
}

func cmdMemoryStore() *cli.Command {
	var rt runtimeConfig
	var task, code, result string
	var tags []string
	var importance int

	flags := []cli.Flag{
		&cli.StringFlag{Name: "task", Required: true, Usage: "Task description", Destination: &task},
		&cli.StringFlag{Name: "code", Required: true, Usage: "Program that was executed", Destination: &code},
		&cli.StringFlag{Name: "result", Usage: "Execution result", Destination: &result},
		&cli.StringSliceFlag{Name: "tag", Usage: "Tag of the record (repeatable)", Destination: &tags},
		&cli.IntFlag{
			Name:        "importance",
			Usage:       "Importance between 0 and 100",
			Value:       50,
			Destination: &importance,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:  "store",
		Usage: "Record an execution",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			id, err := r.memory.StoreExecution(ctx, task, code, result, tags, model.ClampImportance(importance))
			if err != nil {
				return goerr.Wrap(err, "failed to store execution")
			}
			field(ctx, writer(c), "stored", string(id))
			return nil
		},
	}
}

// searchCommand builds a memory subcommand taking argFlag and --limit
func searchCommand(name, usage string, argFlag cli.Flag, search func(ctx context.Context, r *runtime, limit int) ([]*model.EpisodicRecord, error)) *cli.Command {
	var rt runtimeConfig
	var limit int

	flags := []cli.Flag{argFlag, limitFlag(&limit)}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			if limit <= 0 {
				limit = r.config.Memory.SearchLimit
			}

			records, err := search(ctx, r, limit)
			if err != nil {
				return goerr.Wrap(err, "failed to search memory", goerr.V("command", name))
			}
			printRecords(ctx, writer(c), records)
			return nil
		},
	}
}

func cmdMemorySearch() *cli.Command {
	var query string
	return searchCommand("search", "Find records similar to a task",
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true, Usage: "Task description to compare with", Destination: &query},
		func(ctx context.Context, r *runtime, limit int) ([]*model.EpisodicRecord, error) {
			return r.memory.RetrieveContext(ctx, query, limit)
		})
}

func cmdMemoryTags() *cli.Command {
	var tags []string
	return searchCommand("tags", "Find records carrying every given tag",
		&cli.StringSliceFlag{Name: "tag", Required: true, Usage: "Required tag (repeatable)", Destination: &tags},
		func(ctx context.Context, r *runtime, limit int) ([]*model.EpisodicRecord, error) {
			return r.memory.SearchByTags(ctx, tags, limit)
		})
}

func cmdMemoryText() *cli.Command {
	var query string
	return searchCommand("text", "Find records whose content contains a string",
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true, Usage: "Case-insensitive substring", Destination: &query},
		func(ctx context.Context, r *runtime, limit int) ([]*model.EpisodicRecord, error) {
			return r.memory.SearchByText(ctx, query, limit)
		})
}

func cmdMemoryList() *cli.Command {
	var rt runtimeConfig

	return &cli.Command{
		Name:  "list",
		Usage: "List every stored record, including ones no longer indexed",
		Flags: rt.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			records, err := r.memory.Records(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list records")
			}

			w := writer(c)
			printRecords(ctx, w, records)
			field(ctx, w, "indexed", pluralize(r.memory.IndexLen(), "vector"))
			return nil
		},
	}
}

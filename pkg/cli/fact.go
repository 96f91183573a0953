package cli

import (
	"context"
	"errors"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdFact() *cli.Command {
	return &cli.Command{
		Name:  "fact",
		Usage: "Manage the key/value fact store",
		Commands: []*cli.Command{
			cmdFactSet(),
			cmdFactGet(),
			cmdFactDelete(),
			cmdFactList(),
		},
	}
}

func keyFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "key",
		Aliases:     []string{"k"},
		Usage:       "Fact key",
		Required:    true,
		Destination: dst,
	}
}

func cmdFactSet() *cli.Command {
	var rt runtimeConfig
	var key, value string

	flags := []cli.Flag{
		keyFlag(&key),
		&cli.StringFlag{Name: "value", Aliases: []string{"v"}, Usage: "Fact value", Required: true, Destination: &value},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:  "set",
		Usage: "Set a fact",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			if err := r.memory.SetFact(ctx, key, value); err != nil {
				return goerr.Wrap(err, "failed to set fact", goerr.V(model.KeyKey, key))
			}
			return nil
		},
	}
}

func cmdFactGet() *cli.Command {
	var rt runtimeConfig
	var key string

	flags := append([]cli.Flag{keyFlag(&key)}, rt.Flags()...)

	return &cli.Command{
		Name:  "get",
		Usage: "Print a fact",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			value, err := r.memory.GetFact(ctx, key)
			if errors.Is(err, model.ErrKeyNotFound) {
				return goerr.Wrap(err, "no such fact", goerr.V(model.KeyKey, key))
			}
			if err != nil {
				return goerr.Wrap(err, "failed to get fact", goerr.V(model.KeyKey, key))
			}
			line(ctx, writer(c), "%s", value)
			return nil
		},
	}
}

func cmdFactDelete() *cli.Command {
	var rt runtimeConfig
	var key string

	flags := append([]cli.Flag{keyFlag(&key)}, rt.Flags()...)

	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Usage:   "Delete a fact. Deleting a missing key is not an error",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			if err := r.memory.DeleteFact(ctx, key); err != nil {
				return goerr.Wrap(err, "failed to delete fact", goerr.V(model.KeyKey, key))
			}
			return nil
		},
	}
}

func cmdFactList() *cli.Command {
	var rt runtimeConfig

	return &cli.Command{
		Name:  "list",
		Usage: "Print every fact",
		Flags: rt.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			facts := r.memory.Facts(ctx)
			keys := make([]string, 0, len(facts))
			for k := range facts {
				keys = append(keys, k)
			}
			slices.Sort(keys)

			w := writer(c)
			for _, k := range keys {
				field(ctx, w, k, facts[k])
			}
			return nil
		},
	}
}

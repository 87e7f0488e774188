package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/registry"
)

func listCmd(lo *logOptions) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls", "types"},
		Usage:   "List registered model types and their shape integers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := lo.install(cmd.Root().ErrWriter); err != nil {
				return err
			}
			w := cmd.Root().Writer
			for _, id := range registry.RegisteredTypes() {
				usage, _ := registry.Usage(id)
				_, _ = fmt.Fprintf(w, "%-12s %s\n", id, usage)
			}
			return nil
		},
	}
}

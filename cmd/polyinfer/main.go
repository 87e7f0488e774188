package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	var lo logOptions

	return &cli.Command{
		Name:  "polyinfer",
		Usage: "Run feed-forward models built from a type id, a shape, and a flat parameter list",
		Flags: lo.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			listCmd(&lo),
			runCmd(&lo),
			demoCmd(&lo),
			checkCmd(&lo),
			plotCmd(&lo),
			exportCmd(&lo),
			serveCmd(&lo),
		},
	}
}

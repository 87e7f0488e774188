package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

func exportCmd(lo *logOptions) *cli.Command {
	var (
		mo     modelOptions
		out    string
		format string
	)

	return &cli.Command{
		Name:  "export",
		Usage: "Write a model's type, shape and parameters as JSON or YAML",
		Flags: append(mo.flags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file; the extension picks the format (stdout when empty)",
				Destination: &out,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "stdout format (json, yaml)",
				Value:       "yaml",
				Destination: &format,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := lo.install(cmd.Root().ErrWriter)
			if err != nil {
				return err
			}
			_, mw, err := mo.build()
			if err != nil {
				return err
			}

			if out == "" {
				f := model.FormatYAML
				switch format {
				case "yaml", "yml":
				case "json":
					f = model.FormatJSON
				default:
					return cli.Exit(fmt.Sprintf("error: unknown format %q", format), 2)
				}
				return model.SaveWeightsToWriter(mw, cmd.Root().Writer, f)
			}

			if err := model.SaveWeights(mw, out); err != nil {
				return err
			}
			logger.Info("weights exported",
				log.SourceKey, out,
				log.TypeIDKey, mw.TypeID,
				log.ParamCountKey, len(mw.Parameters),
			)
			_, _ = fmt.Fprintf(cmd.Root().Writer, "wrote %s (sha256 %s)\n", out, mw.Hash())
			return nil
		},
	}
}

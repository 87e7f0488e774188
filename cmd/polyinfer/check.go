package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/casefile"
	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
	"github.com/YuminosukeSato/polyinfer/registry"
)

func checkCmd(lo *logOptions) *cli.Command {
	var (
		mo        modelOptions
		file      string
		tolerance float64
		threshold int64
		verbose   bool
	)

	return &cli.Command{
		Name:  "check",
		Usage: "Evaluate a model against a case file",
		Description: "Lines are either \"input | parameters | expected\" or \"input -> expected\".\n" +
			"For the second form the parameters come from --params or --weights.",
		Flags: append(mo.flags(),
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "case file",
				Required:    true,
				Destination: &file,
			},
			&cli.Float64Flag{
				Name:        "tolerance",
				Usage:       "accepted absolute deviation per output element",
				Value:       casefile.DefaultTolerance,
				Destination: &tolerance,
			},
			&cli.Int64Flag{
				Name:        "parallel-threshold",
				Usage:       "evaluate on all cores above this many cases",
				Value:       casefile.DefaultParallelThreshold,
				Destination: &threshold,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "print passing cases too",
				Destination: &verbose,
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

			res, err := casefile.LoadFile(file)
			if err != nil {
				return err
			}
			logger.Info("cases loaded",
				log.OperationKey, log.OperationLoad,
				log.SourceKey, res.Source,
				log.CasesKey, len(res.Cases),
				log.SkippedKey, len(res.Skipped),
			)

			opts := []casefile.Option{
				casefile.WithTolerance(tolerance),
				casefile.WithParallelThreshold(int(threshold)),
				casefile.WithLogger(logger),
			}
			if mo.params != "" || mo.weights != "" {
				opts = append(opts, casefile.WithParameters(mw.Parameters))
			}
			factory := func() (model.Network, error) { return registry.Build(mw) }

			rep, err := casefile.Evaluate(ctx, factory, res.Cases, opts...)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			printReport(w, rep, verbose)
			if n := len(res.Skipped); n > 0 {
				_, _ = fmt.Fprintf(w, "skipped %d malformed line(s)\n", n)
			}
			if !rep.OK() {
				return cli.Exit(fmt.Sprintf("error: %d case(s) failed", rep.Failed), 1)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, rep *casefile.Report, verbose bool) {
	for _, o := range rep.Outcomes {
		switch {
		case o.Err != nil:
			_, _ = fmt.Fprintf(w, "FAIL %s: %v\n", o.Case.Name(), o.Err)
		case !o.Passed:
			_, _ = fmt.Fprintf(w, "FAIL %s: expected %s, got %s (max abs error %.4g)\n",
				o.Case.Name(),
				model.FormatVector(o.Case.Expected, 3),
				model.FormatVector(o.Output, 3),
				o.MaxAbsError)
		case verbose:
			_, _ = fmt.Fprintf(w, "ok   %s: %s\n", o.Case.Name(), model.FormatVector(o.Output, 3))
		}
	}
	_, _ = fmt.Fprintln(w, rep.String())
}

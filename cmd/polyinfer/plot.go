package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/polyinfer/casefile"
	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/core/parallel"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

// sweepParallelThreshold is the step count above which the sweep runs
// forward passes on all cores.
const sweepParallelThreshold = 64

func plotCmd(lo *logOptions) *cli.Command {
	var (
		mo      modelOptions
		input   string
		feature int64
		from    float64
		to      float64
		steps   int64
		out     string
	)

	return &cli.Command{
		Name:  "plot",
		Usage: "Plot every output while sweeping one input feature",
		Flags: append(mo.flags(),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"x"},
				Usage:       "base input vector (zeros when empty)",
				Destination: &input,
			},
			&cli.Int64Flag{Name: "feature", Usage: "index of the swept input feature", Destination: &feature},
			&cli.Float64Flag{Name: "from", Usage: "sweep start", Value: -5, Destination: &from},
			&cli.Float64Flag{Name: "to", Usage: "sweep end", Value: 5, Destination: &to},
			&cli.Int64Flag{Name: "steps", Usage: "number of sweep points", Value: 201, Destination: &steps},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output image (.png, .svg, .pdf)",
				Required:    true,
				Destination: &out,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := lo.install(cmd.Root().ErrWriter)
			if err != nil {
				return err
			}
			net, _, err := mo.build()
			if err != nil {
				return err
			}

			base := make([]float64, net.InputSize())
			if input != "" {
				if base, err = casefile.ParseFloats(input); err != nil {
					return cli.Exit(fmt.Sprintf("error: --input: %v", err), 2)
				}
			}

			xs, ys, err := sweep(ctx, net, base, int(feature), from, to, int(steps))
			if err != nil {
				return err
			}
			if err := renderResponse(out, net.ModelType(), int(feature), xs, ys); err != nil {
				return err
			}
			logger.Info("plot written", log.SourceKey, out, log.ModelNameKey, net.ModelType())
			_, _ = fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", out)
			return nil
		},
	}
}

// sweep evaluates net at steps evenly spaced values of base[feature] in
// [from, to]. ys[o][i] is output o at xs[i].
func sweep(ctx context.Context, net model.Network, base []float64, feature int, from, to float64, steps int) ([]float64, [][]float64, error) {
	if len(base) != net.InputSize() {
		return nil, nil, errors.NewDimensionError("sweep", errors.OperandInput, net.InputSize(), len(base))
	}
	if feature < 0 || feature >= len(base) {
		return nil, nil, errors.NewValueError("sweep", fmt.Sprintf("feature %d out of range [0, %d)", feature, len(base)))
	}
	if steps < 2 || !(from < to) {
		return nil, nil, errors.NewValueError("sweep", "need at least 2 steps and from < to")
	}

	xs := floats.Span(make([]float64, steps), from, to)
	ys := make([][]float64, net.OutputSize())
	for o := range ys {
		ys[o] = make([]float64, steps)
	}

	shared := model.NewSynchronized(net)
	err := parallel.ParallelizeWithThreshold(ctx, steps, sweepParallelThreshold,
		func(_ context.Context, start, end int) error {
			x := make([]float64, len(base))
			copy(x, base)
			for i := start; i < end; i++ {
				x[feature] = xs[i]
				out, err := shared.Forward(x)
				if err != nil {
					return err
				}
				for o, v := range out {
					ys[o][i] = v
				}
			}
			return nil
		})
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// renderResponse draws one line per output and saves the plot; the format
// follows the file extension.
func renderResponse(path, title string, feature int, xs []float64, ys [][]float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("x[%d]", feature)
	p.Y.Label.Text = "output"
	p.Add(plotter.NewGrid())

	for o, series := range ys {
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = xs[i]
			pts[i].Y = series[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "plot output %d", o)
		}
		line.Color = plotutil.Color(o)
		line.Dashes = plotutil.Dashes(o)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("output %d", o), line)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

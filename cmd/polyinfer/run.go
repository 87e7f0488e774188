package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/casefile"
	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/linear"
	"github.com/YuminosukeSato/polyinfer/metrics"
	"github.com/YuminosukeSato/polyinfer/neural"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

func runCmd(lo *logOptions) *cli.Command {
	var (
		mo        modelOptions
		input     string
		precision int64
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Build one model and run a forward pass",
		Flags: append(mo.flags(),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"x"},
				Usage:       "comma separated input vector",
				Required:    true,
				Destination: &input,
			},
			&cli.Int64Flag{
				Name:        "precision",
				Usage:       "digits after the decimal point",
				Value:       3,
				Destination: &precision,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := lo.install(cmd.Root().ErrWriter)
			if err != nil {
				return err
			}
			net, mw, err := mo.build()
			if err != nil {
				return err
			}
			x, err := casefile.ParseFloats(input)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: --input: %v", err), 2)
			}

			logger.Debug("forward",
				log.OperationKey, log.OperationForward,
				log.TypeIDKey, mw.TypeID,
				log.ModelNameKey, net.ModelType(),
				log.InputSizeKey, len(x),
			)
			return printForward(cmd.Root().Writer, net, x, int(precision))
		},
	}
}

// printForward prints the model summary, the input and the output. Variants
// with extra diagnostics also print those.
func printForward(w io.Writer, net model.Network, x []float64, prec int) error {
	_, _ = fmt.Fprintln(w, model.Describe(net))
	_, _ = fmt.Fprintf(w, "Parameters: %d values\n", net.ParameterCount())
	_, _ = fmt.Fprintf(w, "Input:  %s\n", model.FormatVector(x, prec))

	out, err := net.Forward(x)
	if err != nil {
		return err
	}

	switch n := net.(type) {
	case *neural.TwoLayerPerceptron:
		h, err := n.Hidden(x)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Hidden: %s\n", model.FormatVector(h, prec))
	case *linear.MultiClassClassifier:
		z, err := n.Logits(x)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Logits: %s\n", model.FormatVector(z, prec))
	case *linear.LogisticRegressor:
		z, err := n.DecisionFunction(x)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Logit:  %.*f\n", prec, z)
	}

	_, _ = fmt.Fprintf(w, "Output: %s\n", model.FormatVector(out, prec))
	if _, ok := net.(*linear.MultiClassClassifier); ok {
		class, err := metrics.ArgMax(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Predicted class: %d\n", class)
	}
	return nil
}


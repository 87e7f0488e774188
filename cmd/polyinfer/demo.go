package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/pkg/log"
	"github.com/YuminosukeSato/polyinfer/registry"
)

func demoCmd(lo *logOptions) *cli.Command {
	var configPath string

	return &cli.Command{
		Name:  "demo",
		Usage: "Create models from a scenario and run each one through the common interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "scenario YAML file (built-in walk-through when empty)",
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := lo.install(cmd.Root().ErrWriter)
			if err != nil {
				return err
			}

			scenario := builtinScenario()
			if configPath != "" {
				if scenario, err = loadScenario(configPath); err != nil {
					return err
				}
			}

			failed := runScenario(cmd.Root().Writer, scenario, logger)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d models failed", failed, len(scenario.Models)), 1)
			}
			return nil
		},
	}
}

// runScenario builds and runs every model of s. A failing model is reported
// and the remaining models still run. It returns the number of failures.
func runScenario(w io.Writer, s *Scenario, logger log.Logger) int {
	failed := 0
	for i, m := range s.Models {
		_, _ = fmt.Fprintf(w, "\n=== %s ===\n", m.title())
		if err := runModelScenario(w, m, s.Input); err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "error: %v\n", err)
			logger.Error("scenario model failed", err,
				"index", i,
				log.TypeIDKey, m.Type,
				log.ShapeKey, m.Shape,
			)
		}
	}
	return failed
}

func runModelScenario(w io.Writer, m ModelScenario, shared []float64) error {
	net, err := registry.Create(m.Type, m.Shape...)
	if err != nil {
		return err
	}

	params := m.Parameters
	if len(params) == 0 && m.Fill != nil {
		params = make([]float64, net.ParameterCount())
		for i := range params {
			params[i] = *m.Fill
		}
	}
	if len(params) > 0 {
		if err := net.SetParameters(params); err != nil {
			return err
		}
	}
	return printForward(w, net, m.input(shared), 3)
}

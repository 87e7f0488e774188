package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/casefile"
	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
	"github.com/YuminosukeSato/polyinfer/registry"
)

const envLogLevel = "POLYINFER_LOG_LEVEL"

type logOptions struct {
	level  string
	format string
	debug  bool
}

func (o *logOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Sources:     cli.EnvVars(envLogLevel),
			Destination: &o.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (console, json)",
			Value:       "console",
			Destination: &o.format,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
	}
}

// install replaces the process-wide logger provider and routes library
// warnings through it. Logs go to w, command output stays on stdout.
func (o *logOptions) install(w io.Writer) (log.Logger, error) {
	level, ok := log.ParseLevel(strings.ToLower(strings.TrimSpace(o.level)))
	if !ok {
		return nil, cli.Exit(fmt.Sprintf("error: unknown log level %q", o.level), 2)
	}
	if o.debug {
		level = log.LevelDebug
	}

	var p *log.ZerologProvider
	switch o.format {
	case "console", "pretty", "":
		p = log.NewConsoleProvider(w, level)
	case "json":
		p = log.NewZerologProvider(w, level)
	default:
		return nil, cli.Exit(fmt.Sprintf("error: unknown log format %q", o.format), 2)
	}
	log.SetProvider(p)
	if zl, ok := p.GetLogger().(*log.ZerologLogger); ok {
		zl.InstallWarnHook()
	}
	return p.GetLoggerWithName("cli"), nil
}

// modelOptions are the flags shared by commands that build one network.
type modelOptions struct {
	typeID  string
	shape   string
	params  string
	weights string
}

func (o *modelOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "model type id (" + strings.Join(registry.RegisteredTypes(), ", ") + ")",
			Destination: &o.typeID,
		},
		&cli.StringFlag{
			Name:        "shape",
			Aliases:     []string{"s"},
			Usage:       "comma separated shape integers, e.g. 2,3",
			Destination: &o.shape,
		},
		&cli.StringFlag{
			Name:        "params",
			Aliases:     []string{"p"},
			Usage:       "comma separated flat parameter list",
			Destination: &o.params,
		},
		&cli.StringFlag{
			Name:        "weights",
			Aliases:     []string{"w"},
			Usage:       "load type, shape and parameters from a .json or .yaml weights file",
			Destination: &o.weights,
		},
	}
}

// build creates the network described by the flags. The returned weights
// describe the network as built, including its parameters.
func (o *modelOptions) build() (model.Network, *model.ModelWeights, error) {
	if o.weights != "" {
		mw, err := model.LoadWeights(o.weights)
		if err != nil {
			return nil, nil, err
		}
		net, err := registry.Build(mw)
		if err != nil {
			return nil, nil, err
		}
		return net, model.Snapshot(mw.TypeID, mw.Shape, net), nil
	}

	if o.typeID == "" {
		return nil, nil, cli.Exit("error: --type or --weights is required", 2)
	}
	shape, err := parseInts(o.shape)
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("error: --shape: %v", err), 2)
	}
	net, err := registry.Create(o.typeID, shape...)
	if err != nil {
		return nil, nil, err
	}
	if o.params != "" {
		params, err := casefile.ParseFloats(o.params)
		if err != nil {
			return nil, nil, cli.Exit(fmt.Sprintf("error: --params: %v", err), 2)
		}
		if err := net.SetParameters(params); err != nil {
			return nil, nil, err
		}
	}
	return net, model.Snapshot(o.typeID, shape, net), nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Newf("invalid integer %q", tok)
		}
		out = append(out, v)
	}
	return out, nil
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
	"github.com/YuminosukeSato/polyinfer/registry"
	"github.com/YuminosukeSato/polyinfer/server"
)

func serveCmd(lo *logOptions) *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		weights     []string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Host models over a JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.StringSliceFlag{
				Name:        "weights",
				Aliases:     []string{"w"},
				Usage:       "weights file to host at startup (repeatable)",
				Destination: &weights,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := lo.install(cmd.Root().ErrWriter)
			if err != nil {
				return err
			}

			store, err := preload(weights, logger)
			if err != nil {
				return err
			}

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.New(store).Register(e)

			logger.Info("starting server", "address", addr, "models", store.Len())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// preload builds a store hosting one model per weights file.
func preload(files []string, logger log.Logger) (*server.Store, error) {
	store := server.NewStore()
	for _, f := range files {
		mw, err := model.LoadWeights(f)
		if err != nil {
			return nil, err
		}
		net, err := registry.Build(mw)
		if err != nil {
			return nil, errors.Wrapf(err, "preload %s", f)
		}
		m := store.Add(mw.TypeID, mw.Shape, net)
		logger.Info("model hosted", log.ModelIDKey, m.ID, log.SourceKey, f, log.TypeIDKey, m.TypeID)
	}
	return store, nil
}

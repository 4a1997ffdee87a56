package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/samcharles93/visualforge/internal/api"
	"github.com/samcharles93/visualforge/internal/logger"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	var readTimeout time.Duration

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the session REST API",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: "127.0.0.1:8080",
			},
			&cli.StringFlag{
				Name:  "maps-dir",
				Usage: "directory clients may open containers from",
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, st, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			if st.MapsDir == "" {
				return cli.Exit("error: --maps-dir is required", 1)
			}
			if fi, err := os.Stat(st.MapsDir); err != nil || !fi.IsDir() {
				return cli.Exit(fmt.Sprintf("error: maps dir %q is not a directory", st.MapsDir), 1)
			}
			log := logger.FromContext(ctx)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(api.NewSessionStore(), api.Config{
				MapsDir: st.MapsDir,
				Forge:   st.forgeOptions(log),
			})
			defer func() {
				if err := server.Close(); err != nil {
					log.Error("closing sessions", "error", err)
				}
			}()

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", st.ServerAddress, "maps_dir", st.MapsDir)
			sc := echo.StartConfig{
				Address: st.ServerAddress,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

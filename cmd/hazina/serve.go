package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/martiendejong/Hazina-sub003/internal/server"
)

func newServeCommand(state *cliState) *cobra.Command {
	var (
		host string
		port string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reasoning API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.loadConfig(); err != nil {
				return err
			}

			engine, tp, err := buildEngine(state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()

			serverCfg := server.DefaultConfig()
			serverCfg.AllowedOrigins = state.cfg.Server.AllowedOrigins
			if state.cfg.Server.Port != "" {
				serverCfg.Port = state.cfg.Server.Port
			}
			if state.cfg.Server.ReadTimeout > 0 {
				serverCfg.ReadTimeout = state.cfg.Server.ReadTimeout
			}
			if state.cfg.Server.WriteTimeout > 0 {
				serverCfg.WriteTimeout = state.cfg.Server.WriteTimeout
			}
			if host != "" {
				serverCfg.Host = host
			}
			if port != "" {
				serverCfg.Port = port
			}
			serverCfg.Debug = state.verbose

			srv := server.New(engine, serverCfg, state.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				state.logger.Info("received %s, draining", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Bind address (default localhost)")
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from config)")

	return cmd
}

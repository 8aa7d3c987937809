package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andresmx/salachat-server/internal/audit"
	auditsqlite "github.com/andresmx/salachat-server/internal/audit/sqlite"
	"github.com/andresmx/salachat-server/internal/config"
	"github.com/andresmx/salachat-server/internal/log"
	"github.com/andresmx/salachat-server/internal/server"
	transporthttp "github.com/andresmx/salachat-server/internal/transport/http"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "salachat-server",
		Short:         "Multi-room TCP chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "salachat-server "+version)
		},
	}
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := log.New("info")

			cfg, path, err := config.Load(bootLog, configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg)

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			sinks := []audit.Sink{audit.NewFileSink(cfg.AuditLogPath)}
			if cfg.AuditDBPath != "" {
				store, err := auditsqlite.New(cfg.AuditDBPath)
				if err != nil {
					return fmt.Errorf("open audit db: %w", err)
				}
				defer store.Close()
				sinks = append(sinks, store)
				logger.Info().Str("db_path", cfg.AuditDBPath).Msg("audit database initialized")
			}

			srv := server.New(cfg, logger, audit.NewMulti(logger, sinks...))

			if cfg.StatusAddr != "" {
				status := transporthttp.NewStatusServer(cfg.StatusAddr, srv.Registry(), srv.Sessions(), logger)
				go func() {
					logger.Info().Str("addr", cfg.StatusAddr).Msg("status api listening")
					if err := status.ListenAndServe(); err != nil {
						logger.Warn().Err(err).Msg("status api stopped")
					}
				}()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	cmd.Flags().String("addr", "", "TCP listen address (overrides config)")
	cmd.Flags().Int("max-clients", 0, "max concurrent client workers (overrides config)")
	cmd.Flags().String("status-addr", "", "status API listen address (overrides config)")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	return cmd
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("max-clients") {
		cfg.MaxClients, _ = cmd.Flags().GetInt("max-clients")
	}
	if cmd.Flags().Changed("status-addr") {
		cfg.StatusAddr, _ = cmd.Flags().GetString("status-addr")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
}

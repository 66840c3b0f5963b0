// Command whiplash runs the market-readiness core: it ingests per-symbol
// kline streams, maintains bounded per-symbol history, and logs a
// readiness verdict once per second per symbol.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cptdom/whiplash/internal/config"
	"github.com/cptdom/whiplash/internal/logging"
	"github.com/cptdom/whiplash/internal/supervisor"
)

const defaultStatusAddr = ":8090"

func main() {
	var logLevel string
	var statusAddr string

	root := &cobra.Command{
		Use:   "whiplash [config-path]",
		Short: "Per-symbol ATR + volume-delta readiness monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLevel(logLevel)
			log := logging.Logger

			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			} else {
				log.Warn().Str("default", config.DefaultPath).Msg("config path not specified, using default")
			}

			cfg, err := config.Load(path, log)
			if err != nil {
				return err
			}
			log.Info().Strs("symbols", cfg.Symbols).Msg("configuration loaded")

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sup := supervisor.New(cfg, log)
			if err := sup.Run(ctx, statusAddr); err != nil {
				return err
			}
			log.Info().Msg("shut down gracefully")
			return nil
		},
	}

	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.Flags().StringVar(&statusAddr, "status-addr", defaultStatusAddr, "bind address for the read-only status HTTP server")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

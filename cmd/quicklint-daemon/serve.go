package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skaji/quicklint-daemon/internal/config"
	"github.com/skaji/quicklint-daemon/internal/frontend"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LSP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})))

			server, err := frontend.New(cfg)
			if err != nil {
				return err
			}
			return server.RunStdio()
		},
	}
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/CiroGamboa/bimoi/cmd/bimoi/modules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and Telegram webhook",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(
			modules.Infra(configPath),
			modules.Domain,
			modules.Server,
			fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
				return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
			}),
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

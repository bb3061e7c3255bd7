package main

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/CiroGamboa/bimoi/internal/bot"
	"github.com/CiroGamboa/bimoi/internal/config"
	"github.com/CiroGamboa/bimoi/internal/logger"
)

func botFromConfig() (*tgbotapi.BotAPI, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if cfg.Telegram.BotToken == "" {
		return nil, cfg, fmt.Errorf("telegram bot_token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, cfg, fmt.Errorf("telegram client: %w", err)
	}
	return api, cfg, nil
}

var setCommandsCmd = &cobra.Command{
	Use:   "set-commands",
	Short: "Register the bot command menu with Telegram",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		api, _, err := botFromConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := bot.SetCommands(api); err != nil {
			fmt.Fprintf(os.Stderr, "set commands: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Bot commands registered")
	},
}

var setWebhookCmd = &cobra.Command{
	Use:   "set-webhook",
	Short: "Point the Telegram webhook at this deployment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		api, cfg, err := botFromConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cfg.Telegram.WebhookURL == "" {
			fmt.Fprintln(os.Stderr, "telegram webhook_url is required")
			os.Exit(1)
		}
		if err := bot.SetWebhook(api, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			fmt.Fprintf(os.Stderr, "set webhook: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Webhook set to %s\n", cfg.Telegram.WebhookURL)
	},
}

var deleteWebhookCmd = &cobra.Command{
	Use:   "delete-webhook",
	Short: "Remove the Telegram webhook registration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		api, _, err := botFromConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := bot.DeleteWebhook(api); err != nil {
			fmt.Fprintf(os.Stderr, "delete webhook: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Webhook removed")
	},
}

func init() {
	rootCmd.AddCommand(setCommandsCmd, setWebhookCmd, deleteWebhookCmd)
}

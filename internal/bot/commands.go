package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SetCommands registers the bot command menu with Telegram.
func SetCommands(api *tgbotapi.BotAPI) error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "What this bot does and how to add contacts"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help"},
		tgbotapi.BotCommand{Command: "list", Description: "See all your contacts"},
		tgbotapi.BotCommand{Command: "search", Description: "Search contacts by description"},
	)
	if _, err := api.Request(cfg); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// SetWebhook points Telegram at url. The secret token is echoed back by
// Telegram on every webhook call and verified by the handler. The library's
// WebhookConfig predates secret_token, so the request is built by hand.
func SetWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params, err := webhookParams(url, secret)
	if err != nil {
		return err
	}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func webhookParams(url, secret string) (tgbotapi.Params, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is empty")
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	return params, nil
}

// DeleteWebhook removes the webhook registration.
func DeleteWebhook(api *tgbotapi.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/shared-expenses/internal/diagnose"
	"github.com/frahmantamala/shared-expenses/internal/telegram"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

var webhookURL string

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Point the Telegram webhook at this backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		url := webhookURL
		if url == "" {
			url = cfg.Telegram.WebhookURL
		}
		if url == "" {
			return errors.New("webhook url not provided: use --url or TELEGRAM_WEBHOOK_URL")
		}

		client := telegram.NewBotClient(cfg.Telegram)
		if err := client.SetWebhook(cmd.Context(), cfg.Telegram.BotToken, url, cfg.Telegram.WebhookSecret); err != nil {
			return fmt.Errorf("setWebhook: %w", err)
		}
		logger.LoggerWrapper().Info("webhook configured", "url", url, "token", diagnose.MaskToken(cfg.Telegram.BotToken))
		return nil
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the current Telegram webhook info",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger.Output = cmd.ErrOrStderr()
		cfg, err := setup()
		if err != nil {
			return err
		}
		info, err := telegram.NewBotClient(cfg.Telegram).GetWebhookInfo(cmd.Context(), cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("getWebhookInfo: %w", err)
		}
		return encodeResult(cmd.OutOrStdout(), formatJSON, info)
	},
}

func init() {
	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "public webhook url, defaults to TELEGRAM_WEBHOOK_URL")
	webhookCmd.AddCommand(webhookSetCmd, webhookInfoCmd)
}

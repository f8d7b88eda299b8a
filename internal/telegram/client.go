package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frahmantamala/shared-expenses/internal"
)

const defaultRequestTimeout = 10 * time.Second

var (
	ErrMissingToken  = errors.New("bot token not provided")
	ErrMissingChatID = errors.New("chat id not provided")
)

// Client is the subset of the Bot API the backend calls. The bot token is a
// per call credential; nothing about a bot is kept between calls.
type Client interface {
	GetMe(ctx context.Context, token string) (*models.User, error)
	SetWebhook(ctx context.Context, token, url, secret string) error
	GetWebhookInfo(ctx context.Context, token string) (*models.WebhookInfo, error)
	SendMessage(ctx context.Context, token string, chatID any, text string) error
}

// BotClient implements Client on top of go-telegram/bot.
type BotClient struct {
	serverURL  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewBotClient(cfg internal.TelegramConfig) *BotClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &BotClient{
		serverURL:  strings.TrimRight(cfg.APIURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ Client = (*BotClient)(nil)

func (c *BotClient) bot(token string) (*bot.Bot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(c.timeout, c.httpClient),
	}
	if c.serverURL != "" {
		opts = append(opts, bot.WithServerURL(c.serverURL))
	}
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot client: %w", err)
	}
	return b, nil
}

func (c *BotClient) GetMe(ctx context.Context, token string) (*models.User, error) {
	b, err := c.bot(token)
	if err != nil {
		return nil, err
	}
	user, err := b.GetMe(ctx)
	if err != nil {
		telegramCalls.WithLabelValues("getMe", "error").Inc()
		return nil, err
	}
	telegramCalls.WithLabelValues("getMe", "ok").Inc()
	return user, nil
}

func (c *BotClient) SetWebhook(ctx context.Context, token, url, secret string) error {
	b, err := c.bot(token)
	if err != nil {
		return err
	}
	_, err = b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         url,
		SecretToken: secret,
	})
	if err != nil {
		telegramCalls.WithLabelValues("setWebhook", "error").Inc()
		return err
	}
	telegramCalls.WithLabelValues("setWebhook", "ok").Inc()
	return nil
}

func (c *BotClient) GetWebhookInfo(ctx context.Context, token string) (*models.WebhookInfo, error) {
	b, err := c.bot(token)
	if err != nil {
		return nil, err
	}
	info, err := b.GetWebhookInfo(ctx)
	if err != nil {
		telegramCalls.WithLabelValues("getWebhookInfo", "error").Inc()
		return nil, err
	}
	telegramCalls.WithLabelValues("getWebhookInfo", "ok").Inc()
	return info, nil
}

func (c *BotClient) SendMessage(ctx context.Context, token string, chatID any, text string) error {
	if chatID == nil || chatID == "" {
		return ErrMissingChatID
	}
	b, err := c.bot(token)
	if err != nil {
		return err
	}
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		telegramCalls.WithLabelValues("sendMessage", "error").Inc()
		return err
	}
	telegramCalls.WithLabelValues("sendMessage", "ok").Inc()
	return nil
}

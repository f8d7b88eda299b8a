package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/shared-expenses/internal/expense"
)

const (
	FormatHint = "Formato inválido. Use: 95 mercado -> compartilhado"
	UsageHint  = "Envie um gasto no formato: 95 mercado -> compartilhado\n" +
		"Use \"-> individual\" para gastos pessoais."
)

// Recorder turns chat text into a stored expense.
type Recorder interface {
	RecordMessage(ctx context.Context, text string) (*expense.Expense, bool, error)
}

// Relay processes inbound updates: it hands the message text to the
// recorder, keeps an audit entry and answers in the originating chat.
type Relay struct {
	recorder Recorder
	client   Client
	audit    *AuditLog
	logger   *slog.Logger
	now      func() time.Time
}

func NewRelay(recorder Recorder, client Client, audit *AuditLog, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if audit == nil {
		audit = NewAuditLog(AuditCapacity)
	}
	return &Relay{
		recorder: recorder,
		client:   client,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Relay) Audit() *AuditLog {
	return r.audit
}

// HandleUpdate stores the expense described by the update, if any. The reply
// is sent with replyToken when both it and a chat id are known; a failed
// reply never undoes the stored expense.
func (r *Relay) HandleUpdate(ctx context.Context, update *models.Update, replyToken string) (bool, error) {
	msg := updateMessage(update)
	ev := WebhookEvent{Timestamp: r.now().UTC()}
	if update != nil {
		ev.UpdateID = update.ID
	}

	var chatID int64
	if msg != nil {
		if msg.Chat.ID != 0 {
			chatID = msg.Chat.ID
			ev.ChatID = &chatID
		}
		ev.Text = messageText(msg)
	}

	log := r.logger.With("update_id", ev.UpdateID, "chat_id", chatID)

	switch {
	case strings.TrimSpace(ev.Text) == "":
		ev.Outcome = OutcomeEmpty
		r.finish(ev)
		log.Info("webhook update without text")
		return false, nil

	case expense.IsCommand(ev.Text):
		ev.Outcome = OutcomeCommand
		r.finish(ev)
		log.Info("webhook command received", "command", ev.Text)
		if isHelpCommand(ev.Text) {
			r.reply(ctx, log, replyToken, ev.ChatID, UsageHint)
		}
		return false, nil
	}

	e, matched, err := r.recorder.RecordMessage(ctx, ev.Text)
	if err != nil {
		ev.Outcome = OutcomeError
		r.finish(ev)
		log.Error("failed to record webhook expense", "error", err)
		return false, err
	}

	if !matched {
		ev.Outcome = OutcomeNoMatch
		r.finish(ev)
		r.reply(ctx, log, replyToken, ev.ChatID, FormatHint)
		return false, nil
	}

	ev.Stored = true
	ev.Outcome = OutcomeStored
	r.finish(ev)
	log.Info("webhook expense stored", "expense_id", e.ID, "amount", e.Amount)
	r.reply(ctx, log, replyToken, ev.ChatID, Confirmation(e))
	return true, nil
}

func (r *Relay) finish(ev WebhookEvent) {
	r.audit.Record(ev)
	webhookUpdates.WithLabelValues(string(ev.Outcome)).Inc()
}

func (r *Relay) reply(ctx context.Context, log *slog.Logger, token string, chatID *int64, text string) {
	if r.client == nil || strings.TrimSpace(token) == "" || chatID == nil {
		return
	}
	if err := r.client.SendMessage(ctx, token, *chatID, text); err != nil {
		confirmationFailures.Inc()
		log.Warn("failed to send chat reply", "error", err)
	}
}

// Confirmation is the chat reply for a stored expense.
func Confirmation(e *expense.Expense) string {
	kind := "compartilhado"
	if e.IsIndividual() {
		kind = "individual"
	}
	return fmt.Sprintf("Gasto registrado: %s - %s (%s)", FormatBRL(e.Amount), e.Description, kind)
}

// FormatBRL renders an amount as "R$ 1234,50".
func FormatBRL(amount float64) string {
	s := decimal.NewFromFloat(amount).StringFixed(2)
	return "R$ " + strings.Replace(s, ".", ",", 1)
}

func updateMessage(update *models.Update) *models.Message {
	if update == nil {
		return nil
	}
	switch {
	case update.Message != nil:
		return update.Message
	case update.EditedMessage != nil:
		return update.EditedMessage
	case update.ChannelPost != nil:
		return update.ChannelPost
	}
	return nil
}

func messageText(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func isHelpCommand(text string) bool {
	cmd := strings.Fields(strings.TrimSpace(text))[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd == "/start" || cmd == "/help"
}

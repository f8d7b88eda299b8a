package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/transport"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

const (
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	DefaultTestText   = "Teste do Controle de Gastos"

	maxWebhookBody = 1 << 20
)

type Handler struct {
	*transport.BaseHandler
	Relay  *Relay
	Client Client
	Config internal.TelegramConfig
}

func NewHandler(relay *Relay, client Client, cfg internal.TelegramConfig) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Relay:       relay,
		Client:      client,
		Config:      cfg,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type UpdateResponse struct {
	Status string `json:"status"`
	Stored bool   `json:"stored"`
}

type UpdatesResponse struct {
	Updates []WebhookEvent `json:"updates"`
}

// WebhookRequest holds the fields that decide which of the two webhook
// payloads was posted: a set-webhook command or a Telegram update.
type WebhookRequest struct {
	Token         string          `json:"token"`
	WebhookURL    string          `json:"webhookUrl"`
	UpdateID      *int64          `json:"update_id"`
	Message       json.RawMessage `json:"message"`
	EditedMessage json.RawMessage `json:"edited_message"`
	ChannelPost   json.RawMessage `json:"channel_post"`
}

func (r WebhookRequest) isUpdate() bool {
	return r.UpdateID != nil || present(r.Message) || present(r.EditedMessage) || present(r.ChannelPost)
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

type TestMessageRequest struct {
	Token   string `json:"token"`
	ChatID  any    `json:"chatId"`
	Message string `json:"message"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "Server is up."})
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.Logger.Warn("Webhook: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	token := h.token(req.Token)
	if req.WebhookURL != "" && token != "" {
		h.setWebhook(w, r, token, req.WebhookURL)
		return
	}

	if !req.isUpdate() {
		h.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if !h.secretMatches(r) {
		h.WriteError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var update models.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.Logger.Warn("Webhook: malformed update", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	stored, err := h.Relay.HandleUpdate(r.Context(), &update, token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UpdateResponse{Status: "ok", Stored: stored})
}

func (h *Handler) setWebhook(w http.ResponseWriter, r *http.Request, token, url string) {
	if err := h.Client.SetWebhook(r.Context(), token, url, h.Config.WebhookSecret); err != nil {
		h.Logger.Error("Webhook: setWebhook failed", "error", err)
		h.HandleServiceError(w, internal.NewExternalError(err, internal.ErrCodeTelegramFailed))
		return
	}
	h.Logger.Info("Webhook: webhook configured", "url", url)
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Webhook configured."})
}

func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	user, err := h.Client.GetMe(r.Context(), h.token(r.URL.Query().Get("token")))
	if err != nil {
		h.Logger.Error("Diagnose: getMe failed", "error", err)
		h.HandleServiceError(w, internal.NewExternalError(err, internal.ErrCodeTelegramFailed))
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Bot connected: @" + user.Username})
}

func (h *Handler) TestMessage(w http.ResponseWriter, r *http.Request) {
	var req TestMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ChatID == nil || req.ChatID == "" {
		h.WriteError(w, http.StatusBadRequest, ErrMissingChatID.Error())
		return
	}

	text := req.Message
	if strings.TrimSpace(text) == "" {
		text = DefaultTestText
	}

	if err := h.Client.SendMessage(r.Context(), h.token(req.Token), req.ChatID, text); err != nil {
		h.Logger.Error("TestMessage: sendMessage failed", "error", err)
		if errors.Is(err, ErrMissingChatID) {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.HandleServiceError(w, internal.NewExternalError(err, internal.ErrCodeTelegramFailed))
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Message sent to Telegram."})
}

func (h *Handler) Updates(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, UpdatesResponse{Updates: h.Relay.Audit().Snapshot()})
}

// token prefers the token sent with the request over the configured one.
func (h *Handler) token(requested string) string {
	if t := strings.TrimSpace(requested); t != "" {
		return t
	}
	return h.Config.BotToken
}

func (h *Handler) secretMatches(r *http.Request) bool {
	if h.Config.WebhookSecret == "" {
		return true
	}
	got := r.Header.Get(SecretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Config.WebhookSecret)) == 1
}

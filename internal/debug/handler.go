package debug

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/expense"
	"github.com/frahmantamala/shared-expenses/internal/transport"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

type ExpenseReader interface {
	LatestExpenses(ctx context.Context, n int) ([]*expense.Expense, error)
}

// Handler exposes a key protected view of the most recent expenses.
type Handler struct {
	*transport.BaseHandler
	Expenses ExpenseReader
	key      string
}

func NewHandler(expenses ExpenseReader, cfg internal.DebugConfig) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Expenses:    expenses,
		key:         cfg.Key,
	}
}

type LastExpensesResponse struct {
	Expenses []*expense.Expense `json:"expenses"`
}

func (h *Handler) LastExpenses(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r.URL.Query().Get("key")) {
		h.Logger.Warn("LastExpenses: rejected debug key", "remote_addr", r.RemoteAddr)
		h.HandleServiceError(w, internal.ErrInvalidDebugKey)
		return
	}

	expenses, err := h.Expenses.LatestExpenses(r.Context(), expense.DebugViewSize)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, LastExpensesResponse{Expenses: expenses})
}

// authorized denies every key while no key is configured.
func (h *Handler) authorized(got string) bool {
	if h.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.key)) == 1
}

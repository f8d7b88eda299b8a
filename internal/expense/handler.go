package expense

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/transport"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

type ServiceAPI interface {
	CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error)
	ListExpenses(ctx context.Context) ([]*Expense, error)
	LatestExpenses(ctx context.Context, n int) ([]*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type CreateExpenseResponse struct {
	Message string   `json:"message"`
	Expense *Expense `json:"expense"`
}

func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Service.ListExpenses(r.Context())
	if err != nil {
		h.Logger.Error("GetExpenses: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListExpensesResponse{Expenses: expenses})
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "description and amount are required")
		return
	}

	expense, err := h.Service.CreateExpense(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err, "subject", internal.SubjectFromContext(r.Context()))
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateExpense: expense created successfully",
		"expense_id", expense.ID,
		"subject", internal.SubjectFromContext(r.Context()),
		"amount", expense.Amount)

	h.WriteJSON(w, http.StatusOK, CreateExpenseResponse{
		Message: "Expense recorded.",
		Expense: expense,
	})
}

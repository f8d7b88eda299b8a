package expense

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/shared-expenses/internal"
)

// DebugViewSize is the number of records the debug endpoint exposes.
const DebugViewSize = 5

// Service handles expense business logic
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a new expense service
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  NewID,
	}
}

// WithClock replaces the time source, used by tests to pin the record date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateExpense validates a manual submission and stores it at the head.
func (s *Service) CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error) {
	amount, err := dto.Validate()
	if err != nil {
		s.logger.Warn("expense validation failed", "error", err, "description", dto.Description, "amount", string(dto.Amount))
		return nil, validationError(err)
	}

	e := dto.ToExpense(s.newID(), amount, s.now())
	if err := s.store.Append(ctx, e); err != nil {
		s.logger.Error("failed to store expense", "error", err, "source", e.Source)
		return nil, internal.NewInternalError("failed to store expense", err)
	}
	expensesCreated.WithLabelValues(string(e.Source)).Inc()

	s.logger.Info("expense created successfully",
		"expense_id", e.ID,
		"amount", e.Amount,
		"type", e.Type,
		"source", e.Source)

	return e, nil
}

// RecordMessage parses a chat message and stores the result. A message that
// does not describe an expense returns matched=false and no error.
func (s *Service) RecordMessage(ctx context.Context, text string) (e *Expense, matched bool, err error) {
	result := ParseMessage(text)
	if !result.Matched {
		s.logger.Info("expense not parsed", "text", text)
		return nil, false, nil
	}

	e = result.Draft.Expense(s.newID(), s.now())
	s.logger.Info("expense parsed", "amount", e.Amount, "description", e.Description, "type", e.Type)

	if err := s.store.Append(ctx, e); err != nil {
		s.logger.Error("failed to store parsed expense", "error", err)
		return nil, true, internal.NewInternalError("failed to store expense", err)
	}
	expensesCreated.WithLabelValues(string(e.Source)).Inc()

	s.logger.Info("expense stored", "expense_id", e.ID, "source", e.Source)
	return e, true, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]*Expense, error) {
	expenses, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err)
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	return expenses, nil
}

func (s *Service) LatestExpenses(ctx context.Context, n int) ([]*Expense, error) {
	expenses, err := s.store.Latest(ctx, n)
	if err != nil {
		s.logger.Error("failed to read latest expenses", "error", err, "n", n)
		return nil, internal.NewInternalError("failed to read latest expenses", err)
	}
	return expenses, nil
}

// Ping checks the backing store when it holds a connection.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func validationError(err error) *internal.AppError {
	switch {
	case errors.Is(err, ErrDescriptionRequired):
		return internal.NewValidationError("description and amount are required", internal.ErrCodeInvalidDescription).WithCause(err)
	case errors.Is(err, ErrInvalidAmount):
		return internal.NewValidationError("description and amount are required", internal.ErrCodeInvalidAmount).WithCause(err)
	case errors.Is(err, ErrInvalidDate):
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidDate).WithCause(err)
	default:
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed).WithCause(err)
	}
}

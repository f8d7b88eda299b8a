package expense

import (
	"errors"
	"strings"
	"time"
)

// CreateExpenseDTO represents the request payload for creating an expense
type CreateExpenseDTO struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      Amount `json:"amount"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Owner       string `json:"owner,omitempty"`
}

var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidDate         = errors.New("date must use the YYYY-MM-DD format")
)

// Validate checks the fields a manual expense cannot do without and returns
// the normalized amount.
func (dto CreateExpenseDTO) Validate() (float64, error) {
	if strings.TrimSpace(dto.Description) == "" {
		return 0, ErrDescriptionRequired
	}
	amount, err := dto.Amount.Normalize()
	if err != nil {
		return 0, err
	}
	if dto.Date != "" {
		if _, err := time.Parse(DateLayout, dto.Date); err != nil {
			return 0, ErrInvalidDate
		}
	}
	return amount, nil
}

// ToExpense builds a manual record from a validated payload.
func (dto CreateExpenseDTO) ToExpense(id string, amount float64, now time.Time) *Expense {
	e := &Expense{
		ID:          id,
		Description: strings.TrimSpace(dto.Description),
		Category:    strings.TrimSpace(dto.Category),
		Amount:      amount,
		Type:        TypeShared,
		Date:        dto.Date,
		Source:      SourceManual,
	}
	if e.Category == "" {
		e.Category = CategoryManual
	}
	if dto.Type != "" {
		e.Type = ClassifyType(dto.Type)
	}
	if e.Date == "" {
		e.Date = FormatDate(now)
	}
	if e.IsIndividual() {
		e.Owner = strings.TrimSpace(dto.Owner)
	}
	return e
}

package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/shared-expenses/internal/core/datamodel/expense"
	"github.com/google/uuid"
)

type Type string

const (
	TypeShared     Type = "shared"
	TypeIndividual Type = "individual"
)

type Source string

const (
	SourceTelegram Source = "telegram"
	SourceManual   Source = "manual"
)

const (
	CategoryBot    = "Bot"
	CategoryManual = "Manual"

	DefaultBotDescription = "Gasto via bot"

	DateLayout = "2006-01-02"
)

// Expense is an immutable record of one spending event.
type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Type        Type    `json:"type"`
	Date        string  `json:"date"`
	Source      Source  `json:"source"`
	Owner       string  `json:"owner,omitempty"`
}

func (e *Expense) IsIndividual() bool {
	return e.Type == TypeIndividual
}

// NewID returns a time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	m := &expenseDatamodel.Expense{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		Type:        string(e.Type),
		Date:        e.Date,
		Source:      string(e.Source),
	}
	if e.Owner != "" {
		owner := e.Owner
		m.Owner = &owner
	}
	return m
}

func FromDataModel(m *expenseDatamodel.Expense) *Expense {
	e := &Expense{
		ID:          m.ID,
		Description: m.Description,
		Category:    m.Category,
		Amount:      m.Amount,
		Type:        Type(m.Type),
		Date:        m.Date,
		Source:      Source(m.Source),
	}
	if m.Owner != nil {
		e.Owner = *m.Owner
	}
	return e
}

func FromDataModelSlice(rows []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(rows))
	for i, m := range rows {
		result[i] = FromDataModel(m)
	}
	return result
}

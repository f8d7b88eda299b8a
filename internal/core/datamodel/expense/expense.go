package expense

import "time"

type Expense struct {
	RowID       int64     `gorm:"column:row_id;primaryKey;autoIncrement"`
	ID          string    `gorm:"column:id;uniqueIndex;size:64;not null"`
	Description string    `gorm:"column:description;not null"`
	Category    string    `gorm:"column:category;not null"`
	Amount      float64   `gorm:"column:amount;not null"`
	Type        string    `gorm:"column:type;size:16;not null"`
	Date        string    `gorm:"column:date;size:10;not null"`
	Source      string    `gorm:"column:source;size:16;not null"`
	Owner       *string   `gorm:"column:owner"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

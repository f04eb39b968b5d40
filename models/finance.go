package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExpenseCategory classifies an expense line item.
type ExpenseCategory string

const (
	ExpenseMaterial  ExpenseCategory = "Material"
	ExpenseLabor     ExpenseCategory = "Labor"
	ExpenseEquipment ExpenseCategory = "Equipment"
	ExpenseOther     ExpenseCategory = "Other"
)

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseMaterial, ExpenseLabor, ExpenseEquipment, ExpenseOther:
		return true
	}
	return false
}

// Expense is an append-only cost line.
type Expense struct {
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Date        time.Time       `json:"date"`
}

// Revenue is an append-only income line.
type Revenue struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// Finance holds the money position of one project. There is logically one
// record per project, created lazily on first access.
type Finance struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID     uuid.UUID                    `gorm:"type:uuid;not null;index" json:"project"`
	TotalInvested float64                      `gorm:"type:decimal(15,2);not null;default:0" json:"totalInvested"`
	AbleToBill    float64                      `gorm:"type:decimal(15,2);not null;default:0" json:"ableToBill"`
	Expenses      datatypes.JSONSlice[Expense] `gorm:"type:jsonb;default:'[]'" json:"expenses"`
	Revenue       datatypes.JSONSlice[Revenue] `gorm:"type:jsonb;default:'[]'" json:"revenue"`
	UpdatedBy     string                       `gorm:"size:255" json:"updatedBy,omitempty"`
	CreatedAt     time.Time                    `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time                    `json:"updatedAt"`
}

// TableName specifies the table name for Finance
func (Finance) TableName() string {
	return "finances"
}

// Pending is the amount invested that cannot be billed yet.
func (f *Finance) Pending() float64 {
	return f.TotalInvested - f.AbleToBill
}

// MarshalJSON adds the derived pending amount to the wire form.
func (f Finance) MarshalJSON() ([]byte, error) {
	type finance Finance
	return json.Marshal(struct {
		finance
		Pending float64 `json:"pending"`
	}{finance(f), f.Pending()})
}

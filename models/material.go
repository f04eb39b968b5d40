package models

import (
	"time"

	"github.com/google/uuid"
)

// MaterialType classifies a material entry as on hand or still needed.
type MaterialType string

const (
	MaterialAvailable MaterialType = "Available"
	MaterialRequired  MaterialType = "Required"
)

// MaterialStatus is the supply-chain status of a material entry.
type MaterialStatus string

const (
	MaterialPending   MaterialStatus = "Pending"
	MaterialOrdered   MaterialStatus = "Ordered"
	MaterialDelivered MaterialStatus = "Delivered"
	MaterialInStock   MaterialStatus = "In Stock"
)

// Priority only carries meaning for required materials.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Rank orders priorities from most to least urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Material is a material line reported against a project.
// Status, Priority and NeededBy are reconciled with Type on every write.
type Material struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"project"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Quantity   string         `gorm:"size:100;not null" json:"quantity"` // free text with unit, e.g. "20 bags"
	Type       MaterialType   `gorm:"size:20;not null;index" json:"type"`
	Location   string         `gorm:"size:255" json:"location,omitempty"`
	Status     MaterialStatus `gorm:"size:20;not null;default:'Pending'" json:"status"`
	Priority   *Priority      `gorm:"size:10" json:"priority,omitempty"`
	NeededBy   *time.Time     `json:"neededBy,omitempty"`
	ReportedBy string         `gorm:"size:255" json:"reportedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Material
func (Material) TableName() string {
	return "materials"
}

// MaterialFilter narrows material listings.
type MaterialFilter struct {
	Type      MaterialType
	ProjectID *uuid.UUID
}

// Matches reports whether m passes the filter.
func (f MaterialFilter) Matches(m *Material) bool {
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.ProjectID != nil && m.ProjectID != *f.ProjectID {
		return false
	}
	return true
}

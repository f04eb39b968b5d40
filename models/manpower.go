package models

import (
	"time"

	"github.com/google/uuid"
)

// Manpower is a worker that can be assigned to at most one project.
// IsAvailable is derived from AssignedProjectID and is never taken from input.
type Manpower struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EmployeeID        string     `gorm:"column:employee_id;size:100;uniqueIndex;not null" json:"employeeId"`
	Name              string     `gorm:"size:255;not null" json:"name"`
	Role              string     `gorm:"size:100;not null;index" json:"role"`
	Phone             string     `gorm:"size:15" json:"phone,omitempty"`
	Email             string     `gorm:"size:255" json:"email,omitempty"`
	Experience        string     `gorm:"size:255" json:"experience,omitempty"`
	Skills            string     `gorm:"type:text" json:"skills,omitempty"`
	AssignedProjectID *uuid.UUID `gorm:"type:uuid;index" json:"assignedProject"`
	IsAvailable       bool       `gorm:"not null;default:true;index" json:"isAvailable"`

	CreatedBy string    `gorm:"size:255;not null" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Manpower
func (Manpower) TableName() string {
	return "manpower"
}

// Consistent reports whether the availability flag agrees with the assignment.
func (m *Manpower) Consistent() bool {
	return m.IsAvailable == (m.AssignedProjectID == nil)
}

// ManpowerFilter narrows manpower listings.
type ManpowerFilter struct {
	// Only workers whose availability equals *Available
	Available *bool
	ProjectID *uuid.UUID
	Role      string
}

// Matches reports whether m passes the filter.
func (f ManpowerFilter) Matches(m *Manpower) bool {
	if f.Available != nil && m.IsAvailable != *f.Available {
		return false
	}
	if f.ProjectID != nil && (m.AssignedProjectID == nil || *m.AssignedProjectID != *f.ProjectID) {
		return false
	}
	if f.Role != "" && m.Role != f.Role {
		return false
	}
	return true
}

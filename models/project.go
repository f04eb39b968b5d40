package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectStatus is the lifecycle state of a construction project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectOnHold     ProjectStatus = "On Hold"
	ProjectCompleted  ProjectStatus = "Completed"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// DefaultMilestoneIcon is used when a timeline entry carries no icon.
const DefaultMilestoneIcon = "checkmark-circle"

// Milestone is a single entry of a project timeline.
type Milestone struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Icon        string    `json:"icon"`
}

// Project represents a construction site project
type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectCode string        `gorm:"column:project_code;size:7;uniqueIndex;not null" json:"projectId"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Location    string        `gorm:"size:255;not null" json:"location"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	ClientName  string        `gorm:"size:255" json:"clientName,omitempty"`
	Budget      float64       `gorm:"type:decimal(15,2);default:0" json:"budget"`
	Status      ProjectStatus `gorm:"size:50;not null;default:'Planning';index" json:"status"`
	Progress    int           `gorm:"not null;default:0" json:"progress"` // 0-100

	StartDate              *time.Time `json:"startDate,omitempty"`
	ExpectedCompletionDate *time.Time `json:"expectedCompletionDate,omitempty"`
	ActualCompletionDate   *time.Time `json:"actualCompletionDate,omitempty"`

	// Replaced wholesale on update
	Timeline datatypes.JSONSlice[Milestone] `gorm:"type:jsonb;default:'[]'" json:"timeline"`

	// Site boundary staff locations are checked against; empty means none
	Geofence datatypes.JSONSlice[Coordinate] `gorm:"type:jsonb;default:'[]'" json:"geofence,omitempty"`

	CreatedBy string    `gorm:"size:255;not null" json:"createdBy"`
	UpdatedBy string    `gorm:"size:255" json:"updatedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Derived from manpower.assigned_project_id, never written through the project
	AssignedManpower []Manpower `gorm:"foreignKey:AssignedProjectID" json:"assignedManpower,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status ProjectStatus
	// "started" or "not-started"
	State string
}

const (
	ProjectStateStarted    = "started"
	ProjectStateNotStarted = "not-started"
)

// Matches reports whether p passes the filter.
func (f ProjectFilter) Matches(p *Project) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	switch f.State {
	case ProjectStateStarted:
		return (p.Status == ProjectPlanning || p.Status == ProjectInProgress) && p.Progress > 0
	case ProjectStateNotStarted:
		return p.Status == ProjectPlanning || p.Progress == 0
	}
	return true
}

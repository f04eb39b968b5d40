package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkStatus says whether work on site has begun.
type WorkStatus string

const (
	WorkStarted    WorkStatus = "Started"
	WorkNotStarted WorkStatus = "Not Started"
)

// Progress is an append-only progress report. Its WorkCompleted value is
// projected onto the owning project when the report is saved.
type Progress struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"project"`
	ReportedBy       string     `gorm:"size:255;not null;index" json:"reportedBy"`
	WorkCompleted    int        `gorm:"not null" json:"workCompleted"`
	Status           WorkStatus `gorm:"size:20;not null" json:"status"`
	NotStartedReason string     `gorm:"type:text" json:"notStartedReason,omitempty"`
	MaterialStatus   string     `gorm:"type:text" json:"materialStatus,omitempty"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for Progress
func (Progress) TableName() string {
	return "progress_reports"
}

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"p9e.in/sitecore/models"
)

func TestProjectProgress(t *testing.T) {
	tests := []struct {
		name       string
		status     models.ProjectStatus
		progress   int
		work       int
		wantStatus models.ProjectStatus
	}{
		{"zero work keeps planning", models.ProjectPlanning, 0, 0, models.ProjectPlanning},
		{"first work starts project", models.ProjectPlanning, 0, 45, models.ProjectInProgress},
		{"full work does not complete", models.ProjectPlanning, 0, 100, models.ProjectInProgress},
		{"regression keeps in progress", models.ProjectInProgress, 45, 10, models.ProjectInProgress},
		{"regression to zero keeps in progress", models.ProjectInProgress, 45, 0, models.ProjectInProgress},
		{"on hold untouched", models.ProjectOnHold, 20, 30, models.ProjectOnHold},
		{"completed untouched", models.ProjectCompleted, 100, 80, models.ProjectCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Project{Status: tt.status, Progress: tt.progress}
			out := ProjectProgress(&p, tt.work)

			assert.Equal(t, tt.work, p.Progress)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.progress, out.PreviousProgress)
			assert.Equal(t, tt.status != tt.wantStatus, out.StatusChanged())
		})
	}
}

func TestProjectProgress_Scenario(t *testing.T) {
	p := models.Project{Status: models.ProjectPlanning}

	ProjectProgress(&p, 45)
	assert.Equal(t, 45, p.Progress)
	assert.Equal(t, models.ProjectInProgress, p.Status)

	ProjectProgress(&p, 10)
	assert.Equal(t, 10, p.Progress)
	assert.Equal(t, models.ProjectInProgress, p.Status)
}

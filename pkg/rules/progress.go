package rules

import "p9e.in/sitecore/models"

// Projection describes what a progress report changed on its project.
type Projection struct {
	PreviousProgress int
	Progress         int
	PreviousStatus   models.ProjectStatus
	Status           models.ProjectStatus
}

// StatusChanged reports whether the projection moved the project status.
func (p Projection) StatusChanged() bool {
	return p.PreviousStatus != p.Status
}

// ProjectProgress copies a report's completion onto its project.
// The latest report always wins, even when it is lower than the current
// value. A project still in Planning moves to In Progress once any work is
// reported; nothing here ever marks a project Completed or moves it back.
func ProjectProgress(p *models.Project, workCompleted int) Projection {
	out := Projection{PreviousProgress: p.Progress, PreviousStatus: p.Status}
	p.Progress = workCompleted
	if workCompleted > 0 && p.Status == models.ProjectPlanning {
		p.Status = models.ProjectInProgress
	}
	out.Progress = p.Progress
	out.Status = p.Status
	return out
}

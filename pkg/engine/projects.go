package engine

import (
	"context"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// MilestoneInput is a timeline entry as submitted. IDs are always assigned
// by the engine.
type MilestoneInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        models.JSONTime `json:"date"`
	Icon        string          `json:"icon"`
}

// ProjectInput creates a project.
type ProjectInput struct {
	ProjectID              string               `json:"projectId"`
	Name                   string               `json:"name"`
	Location               string               `json:"location"`
	Description            string               `json:"description"`
	ClientName             string               `json:"clientName"`
	Budget                 float64              `json:"budget"`
	Status                 models.ProjectStatus `json:"status"`
	StartDate              *models.JSONTime     `json:"startDate"`
	ExpectedCompletionDate *models.JSONTime     `json:"expectedCompletionDate"`
	Timeline               []MilestoneInput     `json:"timeline"`
	Geofence               []models.Coordinate  `json:"geofence"`
}

// ProjectPatch is a partial project update; nil fields are left alone.
// Progress set here is stored as given and does not move the status.
type ProjectPatch struct {
	ProjectID              *string               `json:"projectId"`
	Name                   *string               `json:"name"`
	Location               *string               `json:"location"`
	Description            *string               `json:"description"`
	ClientName             *string               `json:"clientName"`
	Budget                 *float64              `json:"budget"`
	Status                 *models.ProjectStatus `json:"status"`
	Progress               *int                  `json:"progress"`
	StartDate              *models.JSONTime      `json:"startDate"`
	ExpectedCompletionDate *models.JSONTime      `json:"expectedCompletionDate"`
	ActualCompletionDate   *models.JSONTime      `json:"actualCompletionDate"`
	// Replaces the whole timeline when present
	Timeline *[]MilestoneInput `json:"timeline"`
	// Replaces the boundary when present; an empty list removes it
	Geofence *[]models.Coordinate `json:"geofence"`
}

func (s *Service) buildTimeline(in []MilestoneInput) ([]models.Milestone, error) {
	out := make([]models.Milestone, 0, len(in))
	for _, m := range in {
		title, err := rules.RequireText("project", "timeline.title", m.Title)
		if err != nil {
			return nil, err
		}
		date := m.Date.Time()
		if date.IsZero() {
			date = s.timestamp()
		}
		icon := m.Icon
		if icon == "" {
			icon = models.DefaultMilestoneIcon
		}
		out = append(out, models.Milestone{
			ID:          uuid.New(),
			Title:       title,
			Description: m.Description,
			Date:        date.UTC(),
			Icon:        icon,
		})
	}
	return out, nil
}

func validBudget(b float64) error {
	if b < 0 {
		return apperr.Validation("project", "budget", "must not be negative")
	}
	return nil
}

// CreateProject validates and stores a new project in Planning unless
// another status is given.
func (s *Service) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (*models.Project, error) {
	code, err := rules.NormalizeProjectCode(in.ProjectID)
	if err != nil {
		return nil, err
	}
	name, err := rules.RequireText("project", "name", in.Name)
	if err != nil {
		return nil, err
	}
	location, err := rules.RequireText("project", "location", in.Location)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.ProjectPlanning
	}
	if !status.Valid() {
		return nil, apperr.Validation("project", "status", "must be one of Planning, In Progress, On Hold, Completed")
	}
	if err := validBudget(in.Budget); err != nil {
		return nil, err
	}
	timeline, err := s.buildTimeline(in.Timeline)
	if err != nil {
		return nil, err
	}
	if err := rules.ValidateGeofence(in.Geofence); err != nil {
		return nil, err
	}

	now := s.timestamp()
	p := &models.Project{
		ID:                     uuid.New(),
		ProjectCode:            code,
		Name:                   name,
		Location:               location,
		Description:            in.Description,
		ClientName:             in.ClientName,
		Budget:                 in.Budget,
		Status:                 status,
		StartDate:              in.StartDate.Ptr(),
		ExpectedCompletionDate: in.ExpectedCompletionDate.Ptr(),
		Timeline:               timeline,
		Geofence:               in.Geofence,
		CreatedBy:              actor.UserID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.Write("project", "create")
	s.log.Info().Str("project", p.ID.String()).Str("projectId", p.ProjectCode).Str("user", actor.UserID).Msg("project created")
	return p, nil
}

// GetProject returns the project with its currently assigned manpower.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

// ListProjects returns projects newest first.
func (s *Service) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("project", "status", "unknown status filter")
	}
	switch filter.State {
	case "", models.ProjectStateStarted, models.ProjectStateNotStarted:
	default:
		return nil, apperr.Validation("project", "state", "must be started or not-started")
	}
	return s.store.ListProjects(ctx, filter)
}

// projectUpdate holds the normalized values of a validated patch.
type projectUpdate struct {
	code, name, location string
	timeline             []models.Milestone
}

func (s *Service) validateProjectPatch(patch *ProjectPatch) (u projectUpdate, err error) {
	if patch.ProjectID != nil {
		if u.code, err = rules.NormalizeProjectCode(*patch.ProjectID); err != nil {
			return u, err
		}
	}
	if patch.Name != nil {
		if u.name, err = rules.RequireText("project", "name", *patch.Name); err != nil {
			return u, err
		}
	}
	if patch.Location != nil {
		if u.location, err = rules.RequireText("project", "location", *patch.Location); err != nil {
			return u, err
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return u, apperr.Validation("project", "status", "must be one of Planning, In Progress, On Hold, Completed")
	}
	if patch.Progress != nil {
		if err = rules.ValidatePercent("project", "progress", *patch.Progress); err != nil {
			return u, err
		}
	}
	if patch.Budget != nil {
		if err = validBudget(*patch.Budget); err != nil {
			return u, err
		}
	}
	if patch.Timeline != nil {
		if u.timeline, err = s.buildTimeline(*patch.Timeline); err != nil {
			return u, err
		}
	}
	if patch.Geofence != nil {
		if err = rules.ValidateGeofence(*patch.Geofence); err != nil {
			return u, err
		}
	}
	return u, nil
}

// UpdateProject applies direct field updates. A timeline in the patch
// replaces the stored one and every entry gets a fresh ID.
func (s *Service) UpdateProject(ctx context.Context, actor Actor, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	u, err := s.validateProjectPatch(&patch)
	if err != nil {
		return nil, err
	}

	_, err = s.store.UpdateProject(ctx, id, func(p *models.Project) error {
		if patch.ProjectID != nil {
			p.ProjectCode = u.code
		}
		if patch.Name != nil {
			p.Name = u.name
		}
		if patch.Location != nil {
			p.Location = u.location
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.ClientName != nil {
			p.ClientName = *patch.ClientName
		}
		if patch.Budget != nil {
			p.Budget = *patch.Budget
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Progress != nil {
			p.Progress = *patch.Progress
		}
		if patch.StartDate != nil {
			p.StartDate = patch.StartDate.Ptr()
		}
		if patch.ExpectedCompletionDate != nil {
			p.ExpectedCompletionDate = patch.ExpectedCompletionDate.Ptr()
		}
		if patch.ActualCompletionDate != nil {
			p.ActualCompletionDate = patch.ActualCompletionDate.Ptr()
		}
		if patch.Timeline != nil {
			p.Timeline = u.timeline
		}
		if patch.Geofence != nil {
			p.Geofence = *patch.Geofence
		}
		p.UpdatedBy = actor.UserID
		p.UpdatedAt = s.timestamp()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Write("project", "update")
	s.log.Info().Str("project", id.String()).Str("user", actor.UserID).Msg("project updated")
	return s.store.GetProject(ctx, id)
}

// DeleteProject removes only the project. Reports, materials, finance
// records and assignments that reference it are left in place and resolve
// to NotFound when followed.
func (s *Service) DeleteProject(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.metrics.Write("project", "delete")
	s.log.Info().Str("project", id.String()).Str("user", actor.UserID).Msg("project deleted")
	return nil
}

// requireProject is the existence lookup that precedes any rule taking a
// project reference.
func (s *Service) requireProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, apperr.Validation("project", "project", "is required")
	}
	return s.store.GetProject(ctx, id)
}

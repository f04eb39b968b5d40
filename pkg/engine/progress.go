package engine

import (
	"context"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// ProgressInput is a progress report as submitted.
type ProgressInput struct {
	Project          uuid.UUID         `json:"project"`
	WorkCompleted    int               `json:"workCompleted"`
	Status           models.WorkStatus `json:"status"`
	NotStartedReason string            `json:"notStartedReason"`
	MaterialStatus   string            `json:"materialStatus"`
	Notes            string            `json:"notes"`
}

// ProgressPatch amends a report. A WorkCompleted value is projected onto
// the project again.
type ProgressPatch struct {
	WorkCompleted    *int               `json:"workCompleted"`
	Status           *models.WorkStatus `json:"status"`
	NotStartedReason *string            `json:"notStartedReason"`
	MaterialStatus   *string            `json:"materialStatus"`
	Notes            *string            `json:"notes"`
}

func validWorkStatus(st models.WorkStatus) error {
	switch st {
	case models.WorkStarted, models.WorkNotStarted:
		return nil
	}
	return apperr.Validation("progress", "status", "must be Started or Not Started")
}

// project writes workCompleted onto the project in one atomic
// read-modify-write. reportID is already committed, so any failure here is
// a partial failure.
func (s *Service) project(ctx context.Context, reportID, projectID uuid.UUID, workCompleted int) error {
	var proj rules.Projection
	_, err := s.store.UpdateProject(ctx, projectID, func(p *models.Project) error {
		proj = rules.ProjectProgress(p, workCompleted)
		p.UpdatedAt = s.timestamp()
		return nil
	})
	if err != nil {
		s.metrics.PartialFailure("project")
		s.log.Error().Err(err).
			Str("progress", reportID.String()).
			Str("project", projectID.String()).
			Msg("progress saved but project projection failed")
		return apperr.PartialFailure("project", reportID.String(), err)
	}

	outcome := "progress"
	if proj.StatusChanged() {
		outcome = "started"
	}
	s.metrics.RuleDecision("progress", outcome)
	s.metrics.Write("project", "project")
	s.log.Debug().
		Str("project", projectID.String()).
		Int("from", proj.PreviousProgress).
		Int("to", proj.Progress).
		Str("status", string(proj.Status)).
		Msg("progress projected")
	return nil
}

// SubmitProgress stores a report and then projects its completion onto the
// owning project. The two writes are not atomic: if the second fails the
// report stays and a PartialFailure naming it is returned.
func (s *Service) SubmitProgress(ctx context.Context, actor Actor, in ProgressInput) (*models.Progress, error) {
	if err := rules.ValidatePercent("progress", "workCompleted", in.WorkCompleted); err != nil {
		return nil, err
	}
	if err := validWorkStatus(in.Status); err != nil {
		return nil, err
	}
	if _, err := s.requireProject(ctx, in.Project); err != nil {
		return nil, err
	}

	report := &models.Progress{
		ID:               uuid.New(),
		ProjectID:        in.Project,
		ReportedBy:       actor.UserID,
		WorkCompleted:    in.WorkCompleted,
		Status:           in.Status,
		NotStartedReason: in.NotStartedReason,
		MaterialStatus:   in.MaterialStatus,
		Notes:            in.Notes,
		CreatedAt:        s.timestamp(),
	}
	if err := s.store.CreateProgress(ctx, report); err != nil {
		return nil, err
	}
	s.metrics.Write("progress", "create")
	s.log.Info().
		Str("progress", report.ID.String()).
		Str("project", report.ProjectID.String()).
		Int("workCompleted", report.WorkCompleted).
		Str("user", actor.UserID).
		Msg("progress report submitted")

	if err := s.project(ctx, report.ID, report.ProjectID, report.WorkCompleted); err != nil {
		return nil, err
	}
	return report, nil
}

// GetProgress loads one report.
func (s *Service) GetProgress(ctx context.Context, id uuid.UUID) (*models.Progress, error) {
	return s.store.GetProgress(ctx, id)
}

// ListProgress returns reports newest first. With a project ID the project
// must still exist.
func (s *Service) ListProgress(ctx context.Context, projectID *uuid.UUID) ([]models.Progress, error) {
	if projectID != nil {
		if _, err := s.requireProject(ctx, *projectID); err != nil {
			return nil, err
		}
	}
	return s.store.ListProgress(ctx, projectID)
}

// UpdateProgress amends a report. Only its reporter or an admin may do so.
func (s *Service) UpdateProgress(ctx context.Context, actor Actor, id uuid.UUID, patch ProgressPatch) (*models.Progress, error) {
	if patch.WorkCompleted != nil {
		if err := rules.ValidatePercent("progress", "workCompleted", *patch.WorkCompleted); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if err := validWorkStatus(*patch.Status); err != nil {
			return nil, err
		}
	}

	current, err := s.store.GetProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ReportedBy != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("progress", "not authorized to update this report")
	}
	if patch.WorkCompleted != nil {
		if _, err := s.requireProject(ctx, current.ProjectID); err != nil {
			return nil, err
		}
	}

	report, err := s.store.UpdateProgress(ctx, id, func(p *models.Progress) error {
		if patch.WorkCompleted != nil {
			p.WorkCompleted = *patch.WorkCompleted
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.NotStartedReason != nil {
			p.NotStartedReason = *patch.NotStartedReason
		}
		if patch.MaterialStatus != nil {
			p.MaterialStatus = *patch.MaterialStatus
		}
		if patch.Notes != nil {
			p.Notes = *patch.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Write("progress", "update")
	s.log.Info().Str("progress", id.String()).Str("user", actor.UserID).Msg("progress report updated")

	if patch.WorkCompleted != nil {
		if err := s.project(ctx, report.ID, report.ProjectID, report.WorkCompleted); err != nil {
			return nil, err
		}
	}
	return report, nil
}

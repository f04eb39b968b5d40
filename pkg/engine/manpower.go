package engine

import (
	"context"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/rules"
)

// ManpowerInput creates a worker. IsAvailable is accepted on the wire so
// older clients keep working, but it is never read.
type ManpowerInput struct {
	EmployeeID      string            `json:"employeeId"`
	Name            string            `json:"name"`
	Role            string            `json:"role"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Experience      string            `json:"experience"`
	Skills          string            `json:"skills"`
	AssignedProject models.OptionalID `json:"assignedProject"`
	IsAvailable     *bool             `json:"isAvailable,omitempty"`
}

// ManpowerPatch is a partial worker update. AssignedProject distinguishes
// omitted, null and a project ID; IsAvailable is ignored.
type ManpowerPatch struct {
	EmployeeID      *string           `json:"employeeId"`
	Name            *string           `json:"name"`
	Role            *string           `json:"role"`
	Phone           *string           `json:"phone"`
	Email           *string           `json:"email"`
	Experience      *string           `json:"experience"`
	Skills          *string           `json:"skills"`
	AssignedProject models.OptionalID `json:"assignedProject"`
	IsAvailable     *bool             `json:"isAvailable,omitempty"`
}

// checkAssignment fails with NotFound when requested names a project that
// does not exist.
func (s *Service) checkAssignment(ctx context.Context, requested models.OptionalID) error {
	if requested.Value == nil {
		return nil
	}
	_, err := s.requireProject(ctx, *requested.Value)
	return err
}

func (s *Service) recordAssignment(id uuid.UUID, requested models.OptionalID, a rules.Assignment) {
	outcome := "kept"
	switch {
	case requested.Set && a.ProjectID != nil:
		outcome = "assigned"
	case requested.Set:
		outcome = "released"
	}
	s.metrics.RuleDecision("availability", outcome)
	ev := s.log.Debug().Str("manpower", id.String()).Str("outcome", outcome).Bool("isAvailable", a.IsAvailable)
	if a.ProjectID != nil {
		ev = ev.Str("assignedProject", a.ProjectID.String())
	}
	ev.Msg("availability reconciled")
}

// CreateManpower validates and stores a new worker, available unless the
// input assigns a project.
func (s *Service) CreateManpower(ctx context.Context, actor Actor, in ManpowerInput) (*models.Manpower, error) {
	employeeID, err := rules.ValidateEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	name, err := rules.RequireText("manpower", "name", in.Name)
	if err != nil {
		return nil, err
	}
	role, err := rules.RequireText("manpower", "role", in.Role)
	if err != nil {
		return nil, err
	}
	phone, err := rules.NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	email, err := rules.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignment(ctx, in.AssignedProject); err != nil {
		return nil, err
	}

	now := s.timestamp()
	m := &models.Manpower{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Name:       name,
		Role:       role,
		Phone:      phone,
		Email:      email,
		Experience: in.Experience,
		Skills:     in.Skills,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	a := rules.ApplyAssignment(m, in.AssignedProject)
	s.recordAssignment(m.ID, in.AssignedProject, a)

	if err := s.store.CreateManpower(ctx, m); err != nil {
		return nil, err
	}
	s.metrics.Write("manpower", "create")
	s.log.Info().Str("manpower", m.ID.String()).Str("employeeId", m.EmployeeID).Str("user", actor.UserID).Msg("manpower created")
	return m, nil
}

// GetManpower loads one worker.
func (s *Service) GetManpower(ctx context.Context, id uuid.UUID) (*models.Manpower, error) {
	return s.store.GetManpower(ctx, id)
}

// ListManpower returns workers newest first.
func (s *Service) ListManpower(ctx context.Context, filter models.ManpowerFilter) ([]models.Manpower, error) {
	return s.store.ListManpower(ctx, filter)
}

// ListAvailableManpower groups unassigned workers by role.
func (s *Service) ListAvailableManpower(ctx context.Context) (map[string][]models.Manpower, error) {
	available := true
	all, err := s.store.ListManpower(ctx, models.ManpowerFilter{Available: &available})
	if err != nil {
		return nil, err
	}
	byRole := make(map[string][]models.Manpower)
	for _, m := range all {
		byRole[m.Role] = append(byRole[m.Role], m)
	}
	return byRole, nil
}

func applyManpowerPatch(m *models.Manpower, patch *ManpowerPatch) error {
	var err error
	if patch.EmployeeID != nil {
		if m.EmployeeID, err = rules.ValidateEmployeeID(*patch.EmployeeID); err != nil {
			return err
		}
	}
	if patch.Name != nil {
		if m.Name, err = rules.RequireText("manpower", "name", *patch.Name); err != nil {
			return err
		}
	}
	if patch.Role != nil {
		if m.Role, err = rules.RequireText("manpower", "role", *patch.Role); err != nil {
			return err
		}
	}
	if patch.Phone != nil {
		if m.Phone, err = rules.NormalizePhone(*patch.Phone); err != nil {
			return err
		}
	}
	if patch.Email != nil {
		if m.Email, err = rules.NormalizeEmail(*patch.Email); err != nil {
			return err
		}
	}
	if patch.Experience != nil {
		m.Experience = *patch.Experience
	}
	if patch.Skills != nil {
		m.Skills = *patch.Skills
	}
	return nil
}

// UpdateManpower merges the patch and reconciles availability against the
// version of the record being written.
func (s *Service) UpdateManpower(ctx context.Context, actor Actor, id uuid.UUID, patch ManpowerPatch) (*models.Manpower, error) {
	if err := s.checkAssignment(ctx, patch.AssignedProject); err != nil {
		return nil, err
	}

	var decided rules.Assignment
	m, err := s.store.UpdateManpower(ctx, id, func(m *models.Manpower) error {
		if err := applyManpowerPatch(m, &patch); err != nil {
			return err
		}
		decided = rules.ApplyAssignment(m, patch.AssignedProject)
		m.UpdatedAt = s.timestamp()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAssignment(id, patch.AssignedProject, decided)
	s.metrics.Write("manpower", "update")
	s.log.Info().Str("manpower", id.String()).Str("user", actor.UserID).Msg("manpower updated")
	return m, nil
}

// AssignManpower puts the worker on projectID.
func (s *Service) AssignManpower(ctx context.Context, actor Actor, id, projectID uuid.UUID) (*models.Manpower, error) {
	return s.UpdateManpower(ctx, actor, id, ManpowerPatch{AssignedProject: models.SomeID(projectID)})
}

// UnassignManpower releases the worker from whatever project it is on.
func (s *Service) UnassignManpower(ctx context.Context, actor Actor, id uuid.UUID) (*models.Manpower, error) {
	return s.UpdateManpower(ctx, actor, id, ManpowerPatch{AssignedProject: models.ClearID})
}

// DeleteManpower removes a worker.
func (s *Service) DeleteManpower(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.store.DeleteManpower(ctx, id); err != nil {
		return err
	}
	s.metrics.Write("manpower", "delete")
	s.log.Info().Str("manpower", id.String()).Str("user", actor.UserID).Msg("manpower deleted")
	return nil
}

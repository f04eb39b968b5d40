package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// MaterialInput creates a material line.
type MaterialInput struct {
	Project  uuid.UUID             `json:"project"`
	Name     string                `json:"name"`
	Quantity string                `json:"quantity"`
	Type     models.MaterialType   `json:"type"`
	Location string                `json:"location"`
	Status   models.MaterialStatus `json:"status"`
	Priority models.Priority       `json:"priority"`
	NeededBy *models.JSONTime      `json:"neededBy"`
}

// MaterialPatch is a partial material update. The lifecycle policy runs
// over the merged record, so changing only the type re-derives the rest.
type MaterialPatch struct {
	Project  *uuid.UUID             `json:"project"`
	Name     *string                `json:"name"`
	Quantity *string                `json:"quantity"`
	Type     *models.MaterialType   `json:"type"`
	Location *string                `json:"location"`
	Status   *models.MaterialStatus `json:"status"`
	Priority *models.Priority       `json:"priority"`
	NeededBy models.OptionalTime    `json:"neededBy"`
}

func (s *Service) classify(id uuid.UUID, f rules.MaterialFields) (rules.MaterialState, error) {
	state, err := rules.ClassifyMaterial(f)
	if err != nil {
		s.metrics.RuleDecision("material", "rejected")
		return nil, err
	}
	var normalized models.Material
	state.Apply(&normalized)
	outcome := "accepted"
	if f.Status != "" && normalized.Status != f.Status {
		outcome = "normalized"
	}
	s.metrics.RuleDecision("material", outcome)
	s.log.Debug().
		Str("material", id.String()).
		Str("type", string(state.Type())).
		Str("requestedStatus", string(f.Status)).
		Str("status", string(normalized.Status)).
		Str("outcome", outcome).
		Msg("material lifecycle applied")
	return state, nil
}

// CreateMaterial stores a material line against an existing project.
func (s *Service) CreateMaterial(ctx context.Context, actor Actor, in MaterialInput) (*models.Material, error) {
	name, err := rules.RequireText("material", "name", in.Name)
	if err != nil {
		return nil, err
	}
	quantity, err := rules.RequireText("material", "quantity", in.Quantity)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireProject(ctx, in.Project); err != nil {
		return nil, err
	}

	id := uuid.New()
	state, err := s.classify(id, rules.MaterialFields{
		Type:     in.Type,
		Status:   in.Status,
		Priority: in.Priority,
		NeededBy: in.NeededBy.Ptr(),
	})
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	m := &models.Material{
		ID:         id,
		ProjectID:  in.Project,
		Name:       name,
		Quantity:   quantity,
		Location:   in.Location,
		ReportedBy: actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	state.Apply(m)
	if err := s.store.CreateMaterial(ctx, m); err != nil {
		return nil, err
	}
	s.metrics.Write("material", "create")
	s.log.Info().Str("material", m.ID.String()).Str("project", m.ProjectID.String()).Str("type", string(m.Type)).Msg("material created")
	return m, nil
}

// GetMaterial loads one material line.
func (s *Service) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	return s.store.GetMaterial(ctx, id)
}

// ListMaterials returns material lines newest first.
func (s *Service) ListMaterials(ctx context.Context, filter models.MaterialFilter) ([]models.Material, error) {
	switch filter.Type {
	case "", models.MaterialAvailable, models.MaterialRequired:
	default:
		return nil, apperr.Validation("material", "type", "must be Available or Required")
	}
	return s.store.ListMaterials(ctx, filter)
}

// ListAvailableMaterials returns on-site material, optionally for one project.
func (s *Service) ListAvailableMaterials(ctx context.Context, projectID *uuid.UUID) ([]models.Material, error) {
	return s.store.ListMaterials(ctx, models.MaterialFilter{Type: models.MaterialAvailable, ProjectID: projectID})
}

// ListRequiredMaterials returns needed material, most urgent first and then
// by earliest neededBy.
func (s *Service) ListRequiredMaterials(ctx context.Context, projectID *uuid.UUID) ([]models.Material, error) {
	out, err := s.store.ListMaterials(ctx, models.MaterialFilter{Type: models.MaterialRequired, ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		ni, nj := out[i].NeededBy, out[j].NeededBy
		switch {
		case ni == nil:
			return false
		case nj == nil:
			return true
		}
		return ni.Before(*nj)
	})
	return out, nil
}

func priorityRank(p *models.Priority) int {
	if p == nil {
		return models.Priority("").Rank()
	}
	return p.Rank()
}

func mergeMaterialFields(m *models.Material, patch *MaterialPatch) rules.MaterialFields {
	f := rules.FieldsOf(m)
	if patch.Type != nil {
		f.Type = *patch.Type
	}
	if patch.Status != nil {
		f.Status = *patch.Status
	}
	if patch.Priority != nil {
		f.Priority = *patch.Priority
	}
	if patch.NeededBy.Set {
		f.NeededBy = patch.NeededBy.Value
	}
	return f
}

// UpdateMaterial merges the patch and re-runs the lifecycle policy on the
// result.
func (s *Service) UpdateMaterial(ctx context.Context, actor Actor, id uuid.UUID, patch MaterialPatch) (*models.Material, error) {
	if patch.Project != nil {
		if _, err := s.requireProject(ctx, *patch.Project); err != nil {
			return nil, err
		}
	}
	var (
		name, quantity string
		err            error
	)
	if patch.Name != nil {
		if name, err = rules.RequireText("material", "name", *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Quantity != nil {
		if quantity, err = rules.RequireText("material", "quantity", *patch.Quantity); err != nil {
			return nil, err
		}
	}

	m, err := s.store.UpdateMaterial(ctx, id, func(m *models.Material) error {
		state, err := s.classify(id, mergeMaterialFields(m, &patch))
		if err != nil {
			return err
		}
		if patch.Project != nil {
			m.ProjectID = *patch.Project
		}
		if patch.Name != nil {
			m.Name = name
		}
		if patch.Quantity != nil {
			m.Quantity = quantity
		}
		if patch.Location != nil {
			m.Location = *patch.Location
		}
		state.Apply(m)
		m.UpdatedAt = s.timestamp()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Write("material", "update")
	s.log.Info().Str("material", id.String()).Str("user", actor.UserID).Msg("material updated")
	return m, nil
}

// DeleteMaterial removes a material line.
func (s *Service) DeleteMaterial(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.store.DeleteMaterial(ctx, id); err != nil {
		return err
	}
	s.metrics.Write("material", "delete")
	s.log.Info().Str("material", id.String()).Str("user", actor.UserID).Msg("material deleted")
	return nil
}

package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/store"
)

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

var projects = table[models.Project]{
	name:    tableProjects,
	entity:  "project",
	keyName: "projectId",
	clone: func(p models.Project) models.Project {
		p.Timeline = slices.Clone(p.Timeline)
		p.Geofence = slices.Clone(p.Geofence)
		p.AssignedManpower = nil
		return p
	},
	rowOf: func(p *models.Project) (uuid.UUID, string, string) {
		return p.ID, p.ProjectCode, ""
	},
}

var manpower = table[models.Manpower]{
	name:    tableManpower,
	entity:  "manpower",
	keyName: "employeeId",
	clone: func(m models.Manpower) models.Manpower {
		m.AssignedProjectID = cloneUUID(m.AssignedProjectID)
		return m
	},
	rowOf: func(m *models.Manpower) (uuid.UUID, string, string) {
		return m.ID, m.EmployeeID, idString(m.AssignedProjectID)
	},
}

var materials = table[models.Material]{
	name:   tableMaterials,
	entity: "material",
	clone: func(m models.Material) models.Material {
		if m.Priority != nil {
			p := *m.Priority
			m.Priority = &p
		}
		if m.NeededBy != nil {
			t := *m.NeededBy
			m.NeededBy = &t
		}
		return m
	},
	rowOf: func(m *models.Material) (uuid.UUID, string, string) {
		return m.ID, "", m.ProjectID.String()
	},
}

var progressReports = table[models.Progress]{
	name:   tableProgress,
	entity: "progress",
	clone:  func(p models.Progress) models.Progress { return p },
	rowOf: func(p *models.Progress) (uuid.UUID, string, string) {
		return p.ID, "", p.ProjectID.String()
	},
}

var finances = table[models.Finance]{
	name:   tableFinances,
	entity: "finance",
	clone: func(f models.Finance) models.Finance {
		f.Expenses = slices.Clone(f.Expenses)
		f.Revenue = slices.Clone(f.Revenue)
		return f
	},
	rowOf: func(f *models.Finance) (uuid.UUID, string, string) {
		return f.ID, "", f.ProjectID.String()
	},
}

// locations rows are keyed by user ID rather than a UUID, so only clone
// and list are used from the generic table.
var locations = table[models.StaffLocation]{
	name:   tableLocations,
	entity: "location",
	clone: func(l models.StaffLocation) models.StaffLocation {
		l.ProjectID = cloneUUID(l.ProjectID)
		if l.OnSite != nil {
			v := *l.OnSite
			l.OnSite = &v
		}
		return l
	},
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return projects.create(ctx, s, p)
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := projects.get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	crew, err := manpower.list(ctx, s, indexProject, []interface{}{id.String()}, nil)
	if err != nil {
		return nil, err
	}
	p.AssignedManpower = crew
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	return projects.list(ctx, s, indexID, nil, filter.Matches)
}

func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Project]) (*models.Project, error) {
	return projects.update(ctx, s, id, fn)
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return projects.delete(ctx, s, id)
}

// Manpower

func (s *Store) CreateManpower(ctx context.Context, m *models.Manpower) error {
	return manpower.create(ctx, s, m)
}

func (s *Store) GetManpower(ctx context.Context, id uuid.UUID) (*models.Manpower, error) {
	return manpower.get(ctx, s, id)
}

func (s *Store) ListManpower(ctx context.Context, filter models.ManpowerFilter) ([]models.Manpower, error) {
	if filter.ProjectID != nil {
		return manpower.list(ctx, s, indexProject, []interface{}{filter.ProjectID.String()}, filter.Matches)
	}
	return manpower.list(ctx, s, indexID, nil, filter.Matches)
}

func (s *Store) UpdateManpower(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Manpower]) (*models.Manpower, error) {
	return manpower.update(ctx, s, id, fn)
}

func (s *Store) DeleteManpower(ctx context.Context, id uuid.UUID) error {
	return manpower.delete(ctx, s, id)
}

// Materials

func (s *Store) CreateMaterial(ctx context.Context, m *models.Material) error {
	return materials.create(ctx, s, m)
}

func (s *Store) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	return materials.get(ctx, s, id)
}

func (s *Store) ListMaterials(ctx context.Context, filter models.MaterialFilter) ([]models.Material, error) {
	if filter.ProjectID != nil {
		return materials.list(ctx, s, indexProject, []interface{}{filter.ProjectID.String()}, filter.Matches)
	}
	return materials.list(ctx, s, indexID, nil, filter.Matches)
}

func (s *Store) UpdateMaterial(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Material]) (*models.Material, error) {
	return materials.update(ctx, s, id, fn)
}

func (s *Store) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	return materials.delete(ctx, s, id)
}

// Progress

func (s *Store) CreateProgress(ctx context.Context, p *models.Progress) error {
	return progressReports.create(ctx, s, p)
}

func (s *Store) GetProgress(ctx context.Context, id uuid.UUID) (*models.Progress, error) {
	return progressReports.get(ctx, s, id)
}

func (s *Store) ListProgress(ctx context.Context, projectID *uuid.UUID) ([]models.Progress, error) {
	if projectID != nil {
		return progressReports.list(ctx, s, indexProject, []interface{}{projectID.String()}, nil)
	}
	return progressReports.list(ctx, s, indexID, nil, nil)
}

func (s *Store) UpdateProgress(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Progress]) (*models.Progress, error) {
	return progressReports.update(ctx, s, id, fn)
}

// Finance

func (s *Store) CreateFinance(ctx context.Context, f *models.Finance) error {
	return finances.create(ctx, s, f)
}

func (s *Store) GetFinance(ctx context.Context, id uuid.UUID) (*models.Finance, error) {
	return finances.get(ctx, s, id)
}

func (s *Store) FindFinanceByProject(ctx context.Context, projectID uuid.UUID) (*models.Finance, error) {
	all, err := finances.list(ctx, s, indexProject, []interface{}{projectID.String()}, nil)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, apperr.NotFound("finance", projectID.String())
	}
	oldest := all[len(all)-1]
	return &oldest, nil
}

func (s *Store) ListFinances(ctx context.Context) ([]models.Finance, error) {
	return finances.list(ctx, s, indexID, nil, nil)
}

func (s *Store) UpdateFinance(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Finance]) (*models.Finance, error) {
	return finances.update(ctx, s, id, fn)
}

// Locations

func (s *Store) UpsertLocation(ctx context.Context, l *models.StaffLocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	s.seq++
	r := &row[models.StaffLocation]{
		ID:      l.UserID,
		Project: idString(l.ProjectID),
		Seq:     s.seq,
		Value:   locations.clone(*l),
	}
	if err := txn.Insert(tableLocations, r); err != nil {
		return apperr.Internal("memstore insert", err)
	}
	txn.Commit()
	return nil
}

func (s *Store) GetLocation(ctx context.Context, userID string) (*models.StaffLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.db.Txn(false).First(tableLocations, indexID, userID)
	if err != nil {
		return nil, apperr.Internal("memstore lookup", err)
	}
	if raw == nil {
		return nil, apperr.NotFound("location", userID)
	}
	l := locations.clone(raw.(*row[models.StaffLocation]).Value)
	return &l, nil
}

// ListLocations orders by write sequence, which follows LastUpdated since
// every upsert takes a fresh one.
func (s *Store) ListLocations(ctx context.Context) ([]models.StaffLocation, error) {
	return locations.list(ctx, s, indexID, nil, nil)
}

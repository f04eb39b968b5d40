// Package gormstore is the Postgres-backed Store used in production.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/store"
)

// Store implements store.Store on gorm. The *gorm.DB must be opened with
// TranslateError so unique violations come back as gorm.ErrDuplicatedKey.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error, entity, keyField, key, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity, keyField, key)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(fmt.Sprintf("%s store", entity), err)
}

func create[T any](ctx context.Context, db *gorm.DB, v *T) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

func get[T any](ctx context.Context, db *gorm.DB, entity string, id uuid.UUID) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err, entity, "", "", id.String())
	}
	return &v, nil
}

// update locks the row for the duration of fn so concurrent writers to the
// same document serialize; nothing else is held. A unique violation on save
// is reported against keyField with the patched value from key.
func update[T any](ctx context.Context, db *gorm.DB, entity, keyField string, key func(*T) string, id uuid.UUID, fn store.Mutator[T]) (*T, error) {
	var v T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&v).Error
	})
	if err != nil {
		return nil, updateError(err, entity, keyField, key, &v, id)
	}
	return &v, nil
}

// updateError translates a failed update; v holds the document as fn left it.
func updateError[T any](err error, entity, keyField string, key func(*T) string, v *T, id uuid.UUID) error {
	value := ""
	if key != nil {
		value = key(v)
	}
	return translate(err, entity, keyField, value, id.String())
}

func projectCode(p *models.Project) string { return p.ProjectCode }

func employeeID(m *models.Manpower) string { return m.EmployeeID }

func remove[T any](ctx context.Context, db *gorm.DB, entity string, id uuid.UUID) error {
	var v T
	res := db.WithContext(ctx).Delete(&v, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, entity, "", "", id.String())
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entity, id.String())
	}
	return nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return translate(create(ctx, s.db, p), "project", "projectId", p.ProjectCode, p.ID.String())
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).
		Preload("AssignedManpower", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "project", "", "", id.String())
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	query := s.db.WithContext(ctx).Model(&models.Project{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	switch filter.State {
	case models.ProjectStateStarted:
		query = query.Where("status IN ? AND progress > 0", []models.ProjectStatus{models.ProjectPlanning, models.ProjectInProgress})
	case models.ProjectStateNotStarted:
		query = query.Where("status = ? OR progress = 0", models.ProjectPlanning)
	}
	var out []models.Project
	if err := query.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "project", "", "", "")
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Project]) (*models.Project, error) {
	return update(ctx, s.db, "project", "projectId", projectCode, id, fn)
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return remove[models.Project](ctx, s.db, "project", id)
}

// Manpower

func (s *Store) CreateManpower(ctx context.Context, m *models.Manpower) error {
	return translate(create(ctx, s.db, m), "manpower", "employeeId", m.EmployeeID, m.ID.String())
}

func (s *Store) GetManpower(ctx context.Context, id uuid.UUID) (*models.Manpower, error) {
	return get[models.Manpower](ctx, s.db, "manpower", id)
}

func (s *Store) ListManpower(ctx context.Context, filter models.ManpowerFilter) ([]models.Manpower, error) {
	query := s.db.WithContext(ctx).Model(&models.Manpower{})
	if filter.Available != nil {
		query = query.Where("is_available = ?", *filter.Available)
	}
	if filter.ProjectID != nil {
		query = query.Where("assigned_project_id = ?", *filter.ProjectID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	var out []models.Manpower
	if err := query.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "manpower", "", "", "")
	}
	return out, nil
}

func (s *Store) UpdateManpower(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Manpower]) (*models.Manpower, error) {
	return update(ctx, s.db, "manpower", "employeeId", employeeID, id, fn)
}

func (s *Store) DeleteManpower(ctx context.Context, id uuid.UUID) error {
	return remove[models.Manpower](ctx, s.db, "manpower", id)
}

// Materials

func (s *Store) CreateMaterial(ctx context.Context, m *models.Material) error {
	return translate(create(ctx, s.db, m), "material", "", "", m.ID.String())
}

func (s *Store) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	return get[models.Material](ctx, s.db, "material", id)
}

func (s *Store) ListMaterials(ctx context.Context, filter models.MaterialFilter) ([]models.Material, error) {
	query := s.db.WithContext(ctx).Model(&models.Material{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	var out []models.Material
	if err := query.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "material", "", "", "")
	}
	return out, nil
}

func (s *Store) UpdateMaterial(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Material]) (*models.Material, error) {
	return update[models.Material](ctx, s.db, "material", "", nil, id, fn)
}

func (s *Store) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	return remove[models.Material](ctx, s.db, "material", id)
}

// Progress

func (s *Store) CreateProgress(ctx context.Context, p *models.Progress) error {
	return translate(create(ctx, s.db, p), "progress", "", "", p.ID.String())
}

func (s *Store) GetProgress(ctx context.Context, id uuid.UUID) (*models.Progress, error) {
	return get[models.Progress](ctx, s.db, "progress", id)
}

func (s *Store) ListProgress(ctx context.Context, projectID *uuid.UUID) ([]models.Progress, error) {
	query := s.db.WithContext(ctx).Model(&models.Progress{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var out []models.Progress
	if err := query.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "progress", "", "", "")
	}
	return out, nil
}

func (s *Store) UpdateProgress(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Progress]) (*models.Progress, error) {
	return update[models.Progress](ctx, s.db, "progress", "", nil, id, fn)
}

// Finance

func (s *Store) CreateFinance(ctx context.Context, f *models.Finance) error {
	return translate(create(ctx, s.db, f), "finance", "", "", f.ID.String())
}

func (s *Store) GetFinance(ctx context.Context, id uuid.UUID) (*models.Finance, error) {
	return get[models.Finance](ctx, s.db, "finance", id)
}

func (s *Store) FindFinanceByProject(ctx context.Context, projectID uuid.UUID) (*models.Finance, error) {
	var f models.Finance
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		First(&f).Error
	if err != nil {
		return nil, translate(err, "finance", "", "", projectID.String())
	}
	return &f, nil
}

func (s *Store) ListFinances(ctx context.Context) ([]models.Finance, error) {
	var out []models.Finance
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "finance", "", "", "")
	}
	return out, nil
}

func (s *Store) UpdateFinance(ctx context.Context, id uuid.UUID, fn store.Mutator[models.Finance]) (*models.Finance, error) {
	return update[models.Finance](ctx, s.db, "finance", "", nil, id, fn)
}

// Locations

func (s *Store) UpsertLocation(ctx context.Context, l *models.StaffLocation) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, UpdateAll: true}).
		Create(l).Error
	return translate(err, "location", "", "", l.UserID)
}

func (s *Store) GetLocation(ctx context.Context, userID string) (*models.StaffLocation, error) {
	var l models.StaffLocation
	if err := s.db.WithContext(ctx).First(&l, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "location", "", "", userID)
	}
	return &l, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]models.StaffLocation, error) {
	var out []models.StaffLocation
	if err := s.db.WithContext(ctx).Order("last_updated DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "location", "", "", "")
	}
	return out, nil
}

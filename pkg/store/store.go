// Package store defines the persistence port the engine writes through.
//
// Implementations give per-document atomic read-modify-write via the
// Update* methods and nothing stronger: there is no way to update two
// documents atomically. Missing documents are reported as apperr NotFound
// and unique-key collisions as apperr Conflict.
package store

import (
	"context"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
)

// Mutator edits a freshly loaded document in place. Returning an error
// aborts the write and leaves the stored document unchanged.
type Mutator[T any] func(*T) error

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	// GetProject loads the project along with its assigned manpower.
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, fn Mutator[models.Project]) (*models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type ManpowerStore interface {
	CreateManpower(ctx context.Context, m *models.Manpower) error
	GetManpower(ctx context.Context, id uuid.UUID) (*models.Manpower, error)
	ListManpower(ctx context.Context, filter models.ManpowerFilter) ([]models.Manpower, error)
	UpdateManpower(ctx context.Context, id uuid.UUID, fn Mutator[models.Manpower]) (*models.Manpower, error)
	DeleteManpower(ctx context.Context, id uuid.UUID) error
}

type MaterialStore interface {
	CreateMaterial(ctx context.Context, m *models.Material) error
	GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListMaterials(ctx context.Context, filter models.MaterialFilter) ([]models.Material, error)
	UpdateMaterial(ctx context.Context, id uuid.UUID, fn Mutator[models.Material]) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
}

type ProgressStore interface {
	CreateProgress(ctx context.Context, p *models.Progress) error
	GetProgress(ctx context.Context, id uuid.UUID) (*models.Progress, error)
	// ListProgress returns newest first; a nil projectID lists every report.
	ListProgress(ctx context.Context, projectID *uuid.UUID) ([]models.Progress, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, fn Mutator[models.Progress]) (*models.Progress, error)
}

type FinanceStore interface {
	CreateFinance(ctx context.Context, f *models.Finance) error
	GetFinance(ctx context.Context, id uuid.UUID) (*models.Finance, error)
	// FindFinanceByProject returns the oldest record for the project.
	FindFinanceByProject(ctx context.Context, projectID uuid.UUID) (*models.Finance, error)
	ListFinances(ctx context.Context) ([]models.Finance, error)
	UpdateFinance(ctx context.Context, id uuid.UUID, fn Mutator[models.Finance]) (*models.Finance, error)
}

// LocationStore keeps one last-known position per user.
type LocationStore interface {
	// UpsertLocation replaces whatever was stored for l.UserID.
	UpsertLocation(ctx context.Context, l *models.StaffLocation) error
	GetLocation(ctx context.Context, userID string) (*models.StaffLocation, error)
	// ListLocations returns the most recently updated first.
	ListLocations(ctx context.Context) ([]models.StaffLocation, error)
}

// Store is everything the engine needs.
type Store interface {
	ProjectStore
	ManpowerStore
	MaterialStore
	ProgressStore
	FinanceStore
	LocationStore
}

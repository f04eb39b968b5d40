package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := &models.Project{ID: uuid.New(), ProjectCode: "ABC-001", Name: "A", Timeline: []models.Milestone{{ID: uuid.New(), Title: "m"}}}
	require.NoError(t, s.CreateProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-001", got.ProjectCode)

	// callers get copies
	got.Timeline[0].Title = "changed"
	again, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "m", again.Timeline[0].Title)

	updated, err := s.UpdateProject(ctx, p.ID, func(p *models.Project) error {
		p.Progress = 40
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Progress)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProject(ctx, p.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := &models.Project{ID: uuid.New(), ProjectCode: "ABC-001"}
	b := &models.Project{ID: uuid.New(), ProjectCode: "ABC-002"}
	require.NoError(t, s.CreateProject(ctx, a))
	require.NoError(t, s.CreateProject(ctx, b))

	err := s.CreateProject(ctx, &models.Project{ID: uuid.New(), ProjectCode: "ABC-001"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "projectId", apperr.As(err).Field)

	_, err = s.UpdateProject(ctx, b.ID, func(p *models.Project) error {
		p.ProjectCode = "ABC-001"
		return nil
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// a freed key can be reused
	_, err = s.UpdateProject(ctx, a.ID, func(p *models.Project) error {
		p.ProjectCode = "ABC-009"
		return nil
	})
	require.NoError(t, err)
	_, err = s.UpdateProject(ctx, b.ID, func(p *models.Project) error {
		p.ProjectCode = "ABC-001"
		return nil
	})
	require.NoError(t, err)

	m := &models.Manpower{ID: uuid.New(), EmployeeID: "EMP-1", IsAvailable: true}
	require.NoError(t, s.CreateManpower(ctx, m))
	err = s.CreateManpower(ctx, &models.Manpower{ID: uuid.New(), EmployeeID: "EMP-1"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "employeeId", apperr.As(err).Field)
}

func TestMutatorErrorAborts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	m := &models.Manpower{ID: uuid.New(), EmployeeID: "EMP-1", Name: "before", IsAvailable: true}
	require.NoError(t, s.CreateManpower(ctx, m))

	boom := errors.New("boom")
	_, err := s.UpdateManpower(ctx, m.ID, func(m *models.Manpower) error {
		m.Name = "after"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetManpower(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Name)

	_, err = s.UpdateManpower(ctx, uuid.New(), func(*models.Manpower) error { return nil })
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProjectIndexFollowsAssignment(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := &models.Project{ID: uuid.New(), ProjectCode: "ABC-001"}
	require.NoError(t, s.CreateProject(ctx, p))
	m := &models.Manpower{ID: uuid.New(), EmployeeID: "EMP-1", AssignedProjectID: &p.ID}
	require.NoError(t, s.CreateManpower(ctx, m))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.AssignedManpower, 1)

	_, err = s.UpdateManpower(ctx, m.ID, func(m *models.Manpower) error {
		m.AssignedProjectID = nil
		m.IsAvailable = true
		return nil
	})
	require.NoError(t, err)

	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssignedManpower)

	available := true
	free, err := s.ListManpower(ctx, models.ManpowerFilter{Available: &available})
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestListOrderingAndFinanceLookup(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	project := uuid.New()
	other := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := &models.Progress{ID: uuid.New(), ProjectID: project, WorkCompleted: i, CreatedAt: time.Now()}
		require.NoError(t, s.CreateProgress(ctx, r))
		ids = append(ids, r.ID)
	}
	require.NoError(t, s.CreateProgress(ctx, &models.Progress{ID: uuid.New(), ProjectID: other}))

	reports, err := s.ListProgress(ctx, &project)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, ids[2], reports[0].ID)
	assert.Equal(t, ids[0], reports[2].ID)

	all, err := s.ListProgress(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = s.FindFinanceByProject(ctx, project)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	oldest := &models.Finance{ID: uuid.New(), ProjectID: project, TotalInvested: 1}
	require.NoError(t, s.CreateFinance(ctx, oldest))
	require.NoError(t, s.CreateFinance(ctx, &models.Finance{ID: uuid.New(), ProjectID: project, TotalInvested: 2}))

	f, err := s.FindFinanceByProject(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, f.ID)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newStore(t)
	err := s.CreateProject(ctx, &models.Project{ID: uuid.New(), ProjectCode: "ABC-001"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocationUpsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.GetLocation(ctx, "u-1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	onSite := true
	site := uuid.New()
	require.NoError(t, s.UpsertLocation(ctx, &models.StaffLocation{UserID: "u-1", Position: orb.Point{73.85, 18.5}, ProjectID: &site, OnSite: &onSite}))
	require.NoError(t, s.UpsertLocation(ctx, &models.StaffLocation{UserID: "u-2", Position: orb.Point{72.8, 19.0}}))

	got, err := s.GetLocation(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 18.5, got.Position.Lat())
	// callers get copies
	*got.OnSite = false
	again, err := s.GetLocation(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, *again.OnSite)

	// a second report replaces the first and moves it to the front
	require.NoError(t, s.UpsertLocation(ctx, &models.StaffLocation{UserID: "u-1", Position: orb.Point{73.9, 18.6}, Address: "Gate 2"}))
	list, err := s.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u-1", list[0].UserID)
	assert.Equal(t, "Gate 2", list[0].Address)
	assert.Nil(t, list[0].ProjectID)
	assert.Equal(t, "u-2", list[1].UserID)
}

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/store"
	"p9e.in/sitecore/pkg/store/memstore"
)

func TestSubmitProgressProjection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "PRG-001")

	r1, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 45, Status: models.WorkStarted})
	require.NoError(t, err)
	assert.Equal(t, worker.UserID, r1.ReportedBy)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectInProgress, got.Status)
	assert.Equal(t, 45, got.Progress)

	_, err = s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 10, Status: models.WorkStarted})
	require.NoError(t, err)

	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Progress)
	assert.Equal(t, models.ProjectInProgress, got.Status)

	reports, err := s.ListProgress(ctx, &p.ID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 10, reports[0].WorkCompleted)
	assert.Equal(t, 45, reports[1].WorkCompleted)
}

func TestSubmitProgressBoundaries(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	p := mustProject(t, s, "PRG-002")
	_, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 0, Status: models.WorkNotStarted, NotStartedReason: "rain"})
	require.NoError(t, err)
	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectPlanning, got.Status)

	_, err = s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 100, Status: models.WorkStarted})
	require.NoError(t, err)
	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, models.ProjectInProgress, got.Status)

	held := mustProject(t, s, "PRG-003")
	_, err = s.UpdateProject(ctx, admin, held.ID, ProjectPatch{Status: ptr(models.ProjectOnHold)})
	require.NoError(t, err)
	_, err = s.SubmitProgress(ctx, worker, ProgressInput{Project: held.ID, WorkCompleted: 20, Status: models.WorkStarted})
	require.NoError(t, err)
	got, err = s.GetProject(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectOnHold, got.Status)
	assert.Equal(t, 20, got.Progress)
}

func TestSubmitProgressValidation(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	p := mustProject(t, s, "PRG-004")

	tests := []struct {
		name  string
		in    ProgressInput
		kind  error
		field string
	}{
		{"over 100", ProgressInput{Project: p.ID, WorkCompleted: 101, Status: models.WorkStarted}, apperr.ErrValidation, "workCompleted"},
		{"negative", ProgressInput{Project: p.ID, WorkCompleted: -1, Status: models.WorkStarted}, apperr.ErrValidation, "workCompleted"},
		{"bad status", ProgressInput{Project: p.ID, WorkCompleted: 5, Status: "Paused"}, apperr.ErrValidation, "status"},
		{"no project", ProgressInput{WorkCompleted: 5, Status: models.WorkStarted}, apperr.ErrValidation, "project"},
		{"unknown project", ProgressInput{Project: uuid.New(), WorkCompleted: 5, Status: models.WorkStarted}, apperr.ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SubmitProgress(ctx, worker, tt.in)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.field, apperr.As(err).Field)
		})
	}

	// nothing was written
	all, err := st.ListProgress(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// brokenProjectWrites fails every project update after the report is saved.
type brokenProjectWrites struct {
	*memstore.Store
}

func (brokenProjectWrites) UpdateProject(context.Context, uuid.UUID, store.Mutator[models.Project]) (*models.Project, error) {
	return nil, errors.New("connection reset")
}

func TestSubmitProgressPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem, err := memstore.New()
	require.NoError(t, err)
	healthy := New(mem, WithLogger(zerolog.Nop()))
	p := mustProject(t, healthy, "PRG-005")

	s := New(brokenProjectWrites{mem}, WithLogger(zerolog.Nop()))
	_, err = s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 30, Status: models.WorkStarted})
	require.ErrorIs(t, err, apperr.ErrPartialFailure)

	ae := apperr.As(err)
	assert.Equal(t, "project", ae.Entity)
	require.NotEmpty(t, ae.CommittedID)

	// the report stays, the project was not touched
	reportID, err := uuid.Parse(ae.CommittedID)
	require.NoError(t, err)
	report, err := mem.GetProgress(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, 30, report.WorkCompleted)

	got, err := mem.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, models.ProjectPlanning, got.Status)
}

func TestUpdateProgressAuthorization(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "PRG-006")
	report, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 20, Status: models.WorkStarted})
	require.NoError(t, err)

	stranger := Actor{UserID: "u-other", Role: "user"}
	_, err = s.UpdateProgress(ctx, stranger, report.ID, ProgressPatch{Notes: ptr("mine now")})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := s.UpdateProgress(ctx, worker, report.ID, ProgressPatch{Notes: ptr("slab poured")})
	require.NoError(t, err)
	assert.Equal(t, "slab poured", got.Notes)

	got, err = s.UpdateProgress(ctx, admin, report.ID, ProgressPatch{WorkCompleted: ptr(35)})
	require.NoError(t, err)
	assert.Equal(t, 35, got.WorkCompleted)

	proj, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, proj.Progress)

	_, err = s.UpdateProgress(ctx, admin, report.ID, ProgressPatch{WorkCompleted: ptr(150)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.UpdateProgress(ctx, admin, uuid.New(), ProgressPatch{Notes: ptr("x")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentSubmissionsLeaveProjectConsistent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "PRG-007")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(pct int) {
			defer wg.Done()
			_, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: pct, Status: models.WorkStarted})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	// whichever report committed its projection last wins
	assert.GreaterOrEqual(t, got.Progress, 1)
	assert.LessOrEqual(t, got.Progress, 50)
	assert.Equal(t, models.ProjectInProgress, got.Status)

	reports, err := s.ListProgress(ctx, &p.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 50)
}

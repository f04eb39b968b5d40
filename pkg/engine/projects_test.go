package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

func TestCreateProjectIdentifiers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.CreateProject(ctx, admin, ProjectInput{ProjectID: "pj-001", Name: "A", Location: "B"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "projectId", apperr.As(err).Field)

	p, err := s.CreateProject(ctx, admin, ProjectInput{ProjectID: "PJT-001", Name: "A", Location: "B"})
	require.NoError(t, err)
	assert.Equal(t, "PJT-001", p.ProjectCode)
	assert.Equal(t, models.ProjectPlanning, p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, admin.UserID, p.CreatedBy)

	_, err = s.CreateProject(ctx, admin, ProjectInput{ProjectID: "PJT-001", Name: "C", Location: "D"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "projectId", apperr.As(err).Field)

	// case normalization makes this a duplicate too
	_, err = s.CreateProject(ctx, admin, ProjectInput{ProjectID: "pjt-001", Name: "C", Location: "D"})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateProjectValidation(t *testing.T) {
	s, _ := newTestService(t)
	tests := []struct {
		name  string
		in    ProjectInput
		field string
	}{
		{"missing name", ProjectInput{ProjectID: "ABC-001", Location: "x"}, "name"},
		{"missing location", ProjectInput{ProjectID: "ABC-001", Name: "x"}, "location"},
		{"bad status", ProjectInput{ProjectID: "ABC-001", Name: "x", Location: "y", Status: "Done"}, "status"},
		{"negative budget", ProjectInput{ProjectID: "ABC-001", Name: "x", Location: "y", Budget: -1}, "budget"},
		{"untitled milestone", ProjectInput{ProjectID: "ABC-001", Name: "x", Location: "y", Timeline: []MilestoneInput{{}}}, "timeline.title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProject(context.Background(), admin, tt.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.field, apperr.As(err).Field)
		})
	}
}

func TestUpdateProjectDirectFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "ABC-001")

	got, err := s.UpdateProject(ctx, admin, p.ID, ProjectPatch{
		Name:     ptr("Renamed"),
		Progress: ptr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 60, got.Progress)
	// a direct progress edit is not a report and must not start the project
	assert.Equal(t, models.ProjectPlanning, got.Status)
	assert.Equal(t, admin.UserID, got.UpdatedBy)

	_, err = s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Progress: ptr(101)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Status: ptr(models.ProjectStatus("Finished"))})
	require.ErrorIs(t, err, apperr.ErrValidation)

	got, err = s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Status: ptr(models.ProjectCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, got.Status)

	_, err = s.UpdateProject(ctx, admin, uuid.New(), ProjectPatch{Name: ptr("x")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProjectTrimsText(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "ABC-004")

	tests := []struct {
		name         string
		patch        ProjectPatch
		wantErr      bool
		wantName     string
		wantLocation string
	}{
		{"trimmed name and location", ProjectPatch{Name: ptr("  Tower B "), Location: ptr("\tPune ")}, false, "Tower B", "Pune"},
		{"blank name rejected", ProjectPatch{Name: ptr("   ")}, true, "Tower B", "Pune"},
		{"blank location rejected", ProjectPatch{Name: ptr("Tower C"), Location: ptr("")}, true, "Tower B", "Pune"},
		{"location only", ProjectPatch{Location: ptr(" Nashik")}, false, "Tower B", "Nashik"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProject(ctx, admin, p.ID, tt.patch)
			if tt.wantErr {
				require.ErrorIs(t, err, apperr.ErrValidation)
			} else {
				require.NoError(t, err)
			}
			stored, err := s.GetProject(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, stored.Name)
			assert.Equal(t, tt.wantLocation, stored.Location)
		})
	}
}

func TestUpdateProjectCodeConflict(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	mustProject(t, s, "ABC-001")
	p := mustProject(t, s, "ABC-002")

	_, err := s.UpdateProject(ctx, admin, p.ID, ProjectPatch{ProjectID: ptr("abc-001")})
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.UpdateProject(ctx, admin, p.ID, ProjectPatch{ProjectID: ptr("abc-003")})
	require.NoError(t, err)
	assert.Equal(t, "ABC-003", got.ProjectCode)
}

func TestUpdateProjectReplacesTimeline(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	date := models.JSONTime(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	p, err := s.CreateProject(ctx, admin, ProjectInput{
		ProjectID: "TML-001", Name: "T", Location: "L",
		Timeline: []MilestoneInput{{Title: "Foundation", Date: date}, {Title: "Frame", Date: date}},
	})
	require.NoError(t, err)
	require.Len(t, p.Timeline, 2)
	assert.Equal(t, models.DefaultMilestoneIcon, p.Timeline[0].Icon)
	firstIDs := []uuid.UUID{p.Timeline[0].ID, p.Timeline[1].ID}

	got, err := s.UpdateProject(ctx, admin, p.ID, ProjectPatch{
		Timeline: &[]MilestoneInput{{Title: "Foundation", Date: date, Icon: "flag"}},
	})
	require.NoError(t, err)
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, "Foundation", got.Timeline[0].Title)
	assert.Equal(t, "flag", got.Timeline[0].Icon)
	assert.NotContains(t, firstIDs, got.Timeline[0].ID)
	assert.Equal(t, date.Time(), got.Timeline[0].Date)

	// omitting the timeline keeps it
	got, err = s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Name: ptr("T2")})
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 1)
}

func TestListProjectsFilters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	planning := mustProject(t, s, "AAA-001")
	started := mustProject(t, s, "AAA-002")
	held := mustProject(t, s, "AAA-003")

	_, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: started.ID, WorkCompleted: 30, Status: models.WorkStarted})
	require.NoError(t, err)
	_, err = s.UpdateProject(ctx, admin, held.ID, ProjectPatch{Status: ptr(models.ProjectOnHold), Progress: ptr(50)})
	require.NoError(t, err)

	ids := func(ps []models.Project) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	all, err := s.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{held.ID, started.ID, planning.ID}, ids(all))

	got, err := s.ListProjects(ctx, models.ProjectFilter{State: models.ProjectStateStarted})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{started.ID}, ids(got))

	got, err = s.ListProjects(ctx, models.ProjectFilter{State: models.ProjectStateNotStarted})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{planning.ID}, ids(got))

	got, err = s.ListProjects(ctx, models.ProjectFilter{Status: models.ProjectOnHold})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{held.ID}, ids(got))

	_, err = s.ListProjects(ctx, models.ProjectFilter{State: "paused"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetProjectIncludesAssignedManpower(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "CRW-001")
	a := mustManpower(t, s, "EMP-1")
	mustManpower(t, s, "EMP-2")

	_, err := s.AssignManpower(ctx, admin, a.ID, p.ID)
	require.NoError(t, err)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.AssignedManpower, 1)
	assert.Equal(t, a.ID, got.AssignedManpower[0].ID)

	_, err = s.UnassignManpower(ctx, admin, a.ID)
	require.NoError(t, err)
	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssignedManpower)
}

func TestDeleteProjectOrphansDependents(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	p := mustProject(t, s, "DEL-001")
	report, err := s.SubmitProgress(ctx, worker, ProgressInput{Project: p.ID, WorkCompleted: 10, Status: models.WorkStarted})
	require.NoError(t, err)
	_, err = s.GetOrCreateProjectFinance(ctx, admin, p.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, admin, p.ID))
	require.ErrorIs(t, s.DeleteProject(ctx, admin, p.ID), apperr.ErrNotFound)

	// dependents survive
	kept, err := s.GetProgress(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, kept.ProjectID)
	all, err := s.ListFinances(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// following the dangling reference does not
	_, err = s.GetOrCreateProjectFinance(ctx, admin, p.ID)
	require.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = s.ListProgress(ctx, &p.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.UpdateProgress(ctx, worker, report.ID, ProgressPatch{WorkCompleted: ptr(20)})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

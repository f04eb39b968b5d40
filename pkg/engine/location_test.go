package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

var siteFence = []models.Coordinate{
	{Lat: 18.49, Lng: 73.84},
	{Lat: 18.49, Lng: 73.86},
	{Lat: 18.51, Lng: 73.86},
	{Lat: 18.51, Lng: 73.84},
}

func fencedProject(t *testing.T, s *Service, code string) *models.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), admin, ProjectInput{
		ProjectID: code, Name: "Fenced " + code, Location: "Pune", Geofence: siteFence,
	})
	require.NoError(t, err)
	return p
}

func TestUpdateLocationGeofence(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	fenced := fencedProject(t, s, "GEO-001")
	open := mustProject(t, s, "GEO-002")
	engineer := Actor{UserID: "u-eng", Role: "site_engineer", Name: "Ravi"}

	tests := []struct {
		name       string
		in         LocationInput
		wantOnSite *bool
	}{
		{"no project", LocationInput{Latitude: ptr(18.5), Longitude: ptr(73.85)}, nil},
		{"inside fence", LocationInput{Latitude: ptr(18.5), Longitude: ptr(73.85), ProjectID: &fenced.ID}, ptr(true)},
		{"outside fence", LocationInput{Latitude: ptr(18.6), Longitude: ptr(73.85), ProjectID: &fenced.ID}, ptr(false)},
		{"project without fence", LocationInput{Latitude: ptr(18.6), Longitude: ptr(73.85), ProjectID: &open.ID}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := s.UpdateLocation(ctx, engineer, tt.in)
			require.NoError(t, err)
			assert.Equal(t, "u-eng", l.UserID)
			assert.Equal(t, "Ravi", l.Name)
			assert.Equal(t, *tt.in.Latitude, l.Position.Lat())
			assert.Equal(t, *tt.in.Longitude, l.Position.Lon())
			assert.Equal(t, tt.wantOnSite, l.OnSite)

			stored, err := s.GetLocation(ctx, "u-eng")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOnSite, stored.OnSite)
			assert.Equal(t, tt.in.ProjectID, stored.ProjectID)
		})
	}
}

func TestUpdateLocationValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	tests := []struct {
		name    string
		actor   Actor
		in      LocationInput
		wantErr error
	}{
		{"missing latitude", worker, LocationInput{Longitude: ptr(73.0)}, apperr.ErrValidation},
		{"missing longitude", worker, LocationInput{Latitude: ptr(18.0)}, apperr.ErrValidation},
		{"latitude out of range", worker, LocationInput{Latitude: ptr(91.0), Longitude: ptr(73.0)}, apperr.ErrValidation},
		{"unknown project", worker, LocationInput{Latitude: ptr(18.0), Longitude: ptr(73.0), ProjectID: ptr(uuid.New())}, apperr.ErrNotFound},
		{"anonymous caller", Actor{}, LocationInput{Latitude: ptr(18.0), Longitude: ptr(73.0)}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateLocation(ctx, tt.actor, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := s.GetLocation(ctx, worker.UserID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.GetLocation(ctx, " ")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListLocationsByRole(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.UpdateLocation(ctx, worker, LocationInput{Latitude: ptr(18.5), Longitude: ptr(73.8)})
	require.NoError(t, err)
	_, err = s.UpdateLocation(ctx, admin, LocationInput{Latitude: ptr(19.0), Longitude: ptr(72.8), Address: "  Head office "})
	require.NoError(t, err)

	all, err := s.ListLocations(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, admin.UserID, all[0].UserID)
	assert.Equal(t, "Head office", all[0].Address)

	users, err := s.ListLocations(ctx, worker.Role)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, worker.UserID, users[0].UserID)
}

func TestProjectGeofenceValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.CreateProject(ctx, admin, ProjectInput{
		ProjectID: "GEO-010", Name: "N", Location: "L", Geofence: siteFence[:2],
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	p := fencedProject(t, s, "GEO-011")
	assert.Len(t, p.Geofence, len(siteFence))

	got, err := s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Geofence: &[]models.Coordinate{}})
	require.NoError(t, err)
	assert.Empty(t, got.Geofence)

	_, err = s.UpdateProject(ctx, admin, p.ID, ProjectPatch{Geofence: &[]models.Coordinate{{Lat: 1}, {Lat: 2}, {Lat: 200}}})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

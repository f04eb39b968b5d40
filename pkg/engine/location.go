package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/rules"
)

// LocationInput is a position report from the caller's device. ProjectID
// optionally names the site to check the position against.
type LocationInput struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Address   string     `json:"address"`
	ProjectID *uuid.UUID `json:"projectId"`
}

// UpdateLocation stores the caller's position, replacing the previous one.
func (s *Service) UpdateLocation(ctx context.Context, actor Actor, in LocationInput) (*models.StaffLocation, error) {
	if actor.UserID == "" {
		return nil, apperr.Forbidden("location", "caller has no user id")
	}
	if in.Latitude == nil {
		return nil, apperr.Validation("location", "latitude", "Valid latitude is required")
	}
	if in.Longitude == nil {
		return nil, apperr.Validation("location", "longitude", "Valid longitude is required")
	}
	c := models.Coordinate{Lat: *in.Latitude, Lng: *in.Longitude}
	if err := rules.ValidateCoordinate("location", "coordinates", c); err != nil {
		return nil, err
	}

	l := &models.StaffLocation{
		UserID:      actor.UserID,
		Name:        actor.Name,
		Role:        actor.Role,
		Position:    c.Point(),
		Address:     strings.TrimSpace(in.Address),
		LastUpdated: s.timestamp(),
	}
	if in.ProjectID != nil {
		p, err := s.requireProject(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		l.ProjectID = &p.ID
		l.OnSite = rules.OnSite(p.Geofence, l.Position)
		s.metrics.RuleDecision("geofence", geofenceOutcome(l.OnSite))
	}

	if err := s.store.UpsertLocation(ctx, l); err != nil {
		return nil, err
	}
	s.metrics.Write("location", "update")
	ev := s.log.Info().Str("user", actor.UserID).Float64("latitude", c.Lat).Float64("longitude", c.Lng)
	if l.OnSite != nil {
		ev = ev.Bool("onSite", *l.OnSite)
	}
	ev.Msg("location updated")
	return l, nil
}

func geofenceOutcome(onSite *bool) string {
	switch {
	case onSite == nil:
		return "unfenced"
	case *onSite:
		return "on_site"
	}
	return "off_site"
}

// GetLocation returns the last position reported by userID.
func (s *Service) GetLocation(ctx context.Context, userID string) (*models.StaffLocation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("location", "userId", "is required")
	}
	return s.store.GetLocation(ctx, userID)
}

// ListLocations returns every known position, most recent first. A
// non-empty role keeps only staff holding it.
func (s *Service) ListLocations(ctx context.Context, role string) ([]models.StaffLocation, error) {
	all, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return all, nil
	}
	out := make([]models.StaffLocation, 0, len(all))
	for _, l := range all {
		if l.Role == role {
			out = append(out, l)
		}
	}
	return out, nil
}

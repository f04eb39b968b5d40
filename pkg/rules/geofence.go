package rules

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

// ValidateCoordinate checks latitude is within [-90, 90] and longitude
// within [-180, 180].
func ValidateCoordinate(entity, field string, c models.Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return apperr.Validation(entity, field, fmt.Sprintf("latitude %.6f is out of valid range [-90, 90]", c.Lat))
	}
	if c.Lng < -180 || c.Lng > 180 {
		return apperr.Validation(entity, field, fmt.Sprintf("longitude %.6f is out of valid range [-180, 180]", c.Lng))
	}
	return nil
}

// ValidateGeofence accepts an empty fence (none) or a polygon of at least
// three valid coordinates. The polygon need not be closed.
func ValidateGeofence(fence []models.Coordinate) error {
	if len(fence) == 0 {
		return nil
	}
	if len(fence) < 3 {
		return apperr.Validation("project", "geofence", "must have at least 3 coordinates to form a polygon")
	}
	for i, c := range fence {
		if err := ValidateCoordinate("project", fmt.Sprintf("geofence[%d]", i), c); err != nil {
			return err
		}
	}
	return nil
}

// SitePolygon builds a closed orb polygon from the fence, or nil when the
// fence is empty.
func SitePolygon(fence []models.Coordinate) orb.Polygon {
	if len(fence) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(fence)+1)
	for _, c := range fence {
		ring = append(ring, c.Point())
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// OnSite reports whether p falls inside the fence; points on the boundary
// count as inside. It returns nil when there is no fence to check against.
func OnSite(fence []models.Coordinate, p orb.Point) *bool {
	poly := SitePolygon(fence)
	if poly == nil {
		return nil
	}
	inside := planar.PolygonContains(poly, p)
	return &inside
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Coordinate is a latitude/longitude pair as clients send it.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts to orb's [lng, lat] order.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// StaffLocation is the last reported position of a staff member, one row
// per user. Each report replaces the previous one.
type StaffLocation struct {
	UserID   string    `gorm:"primaryKey;size:255" json:"userId"`
	Name     string    `gorm:"size:255" json:"name,omitempty"`
	Role     string    `gorm:"size:100;index" json:"role,omitempty"`
	Position orb.Point `gorm:"type:jsonb;serializer:json;not null" json:"-"`
	Address  string    `gorm:"size:500" json:"address,omitempty"`

	// Site the report was checked against, if any; OnSite is nil when the
	// project has no geofence
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"projectId,omitempty"`
	OnSite    *bool      `json:"onSite,omitempty"`

	LastUpdated time.Time `gorm:"index" json:"lastUpdated"`
}

// TableName specifies the table name for StaffLocation
func (StaffLocation) TableName() string {
	return "staff_locations"
}

// MarshalJSON flattens Position into latitude and longitude.
func (l StaffLocation) MarshalJSON() ([]byte, error) {
	type plain StaffLocation
	return json.Marshal(struct {
		plain
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{plain(l), l.Position.Lat(), l.Position.Lon()})
}

package rules

import (
	"github.com/google/uuid"

	"p9e.in/sitecore/models"
)

// Assignment is the reconciled assignment state of a worker.
type Assignment struct {
	ProjectID   *uuid.UUID
	IsAvailable bool
}

// ReconcileAssignment decides a worker's assignment and availability.
// current is the persisted assignment (nil on create or when unassigned),
// requested is what the payload said about assignedProject.
//
//  1. requested names a project: assign it, unavailable.
//  2. requested is null or empty: clear it, available.
//  3. requested omitted: keep current, availability follows current.
//
// A client-supplied isAvailable never reaches this function.
func ReconcileAssignment(current *uuid.UUID, requested models.OptionalID) Assignment {
	switch {
	case requested.Set && requested.Value != nil:
		id := *requested.Value
		return Assignment{ProjectID: &id, IsAvailable: false}
	case requested.Set:
		return Assignment{ProjectID: nil, IsAvailable: true}
	}
	if current == nil {
		return Assignment{IsAvailable: true}
	}
	id := *current
	return Assignment{ProjectID: &id, IsAvailable: false}
}

// ApplyAssignment writes the reconciled assignment onto m.
func ApplyAssignment(m *models.Manpower, requested models.OptionalID) Assignment {
	a := ReconcileAssignment(m.AssignedProjectID, requested)
	m.AssignedProjectID = a.ProjectID
	m.IsAvailable = a.IsAvailable
	return a
}

package rules

import (
	"time"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

// MaterialFields are the type-dependent fields as submitted, before policy.
type MaterialFields struct {
	Type     models.MaterialType
	Status   models.MaterialStatus
	Priority models.Priority
	NeededBy *time.Time
}

// MaterialState is a material's lifecycle, legal by construction:
// either AvailableMaterial or RequiredMaterial.
type MaterialState interface {
	Type() models.MaterialType
	// Apply flattens the state onto the persisted row.
	Apply(m *models.Material)
}

// AvailableStatus is the subset of statuses an on-hand material can have.
type AvailableStatus models.MaterialStatus

const (
	AvailablePending AvailableStatus = AvailableStatus(models.MaterialPending)
	AvailableInStock AvailableStatus = AvailableStatus(models.MaterialInStock)
)

// RequiredStatus is the subset of statuses a needed material can have.
type RequiredStatus models.MaterialStatus

const (
	RequiredPending   RequiredStatus = RequiredStatus(models.MaterialPending)
	RequiredOrdered   RequiredStatus = RequiredStatus(models.MaterialOrdered)
	RequiredDelivered RequiredStatus = RequiredStatus(models.MaterialDelivered)
)

// AvailableMaterial is material already on site.
type AvailableMaterial struct {
	Status AvailableStatus
}

func (AvailableMaterial) Type() models.MaterialType { return models.MaterialAvailable }

func (a AvailableMaterial) Apply(m *models.Material) {
	m.Type = models.MaterialAvailable
	m.Status = models.MaterialStatus(a.Status)
	m.Priority = nil
	m.NeededBy = nil
}

// RequiredMaterial is material the site still needs.
type RequiredMaterial struct {
	Status   RequiredStatus
	Priority models.Priority
	NeededBy *time.Time
}

func (RequiredMaterial) Type() models.MaterialType { return models.MaterialRequired }

func (r RequiredMaterial) Apply(m *models.Material) {
	m.Type = models.MaterialRequired
	m.Status = models.MaterialStatus(r.Status)
	p := r.Priority
	m.Priority = &p
	if r.NeededBy != nil {
		t := *r.NeededBy
		m.NeededBy = &t
	} else {
		m.NeededBy = nil
	}
}

// ClassifyMaterial reconciles status, priority and neededBy with the type.
//
// Statuses that are meaningless for the type are corrected, not rejected:
// an Available material that is Ordered or Delivered is In Stock, and a
// Required material cannot be In Stock so it falls back to Pending.
// Unknown enum values are rejected.
func ClassifyMaterial(f MaterialFields) (MaterialState, error) {
	switch f.Status {
	case "", models.MaterialPending, models.MaterialOrdered, models.MaterialDelivered, models.MaterialInStock:
	default:
		return nil, apperr.Validation("material", "status", "must be one of Pending, Ordered, Delivered, In Stock")
	}

	switch f.Type {
	case models.MaterialAvailable:
		st := AvailablePending
		switch f.Status {
		case models.MaterialOrdered, models.MaterialDelivered, models.MaterialInStock:
			st = AvailableInStock
		}
		return AvailableMaterial{Status: st}, nil

	case models.MaterialRequired:
		st := RequiredPending
		switch f.Status {
		case models.MaterialOrdered:
			st = RequiredOrdered
		case models.MaterialDelivered:
			st = RequiredDelivered
		}
		prio := f.Priority
		switch prio {
		case "":
			prio = models.PriorityMedium
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		default:
			return nil, apperr.Validation("material", "priority", "must be one of Low, Medium, High")
		}
		return RequiredMaterial{Status: st, Priority: prio, NeededBy: f.NeededBy}, nil
	}
	return nil, apperr.Validation("material", "type", "must be Available or Required")
}

// FieldsOf reads the policy-relevant fields back off a persisted row.
func FieldsOf(m *models.Material) MaterialFields {
	f := MaterialFields{Type: m.Type, Status: m.Status, NeededBy: m.NeededBy}
	if m.Priority != nil {
		f.Priority = *m.Priority
	}
	return f
}

package rules

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"p9e.in/sitecore/models"
)

func TestReconcileAssignment(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	tests := []struct {
		name      string
		current   *uuid.UUID
		requested models.OptionalID
		wantProj  *uuid.UUID
		wantAvail bool
	}{
		{"create without assignment", nil, models.OmittedID, nil, true},
		{"create with assignment", nil, models.SomeID(p1), &p1, false},
		{"assign free worker", nil, models.SomeID(p1), &p1, false},
		{"reassign", &p1, models.SomeID(p2), &p2, false},
		{"clear assignment", &p1, models.ClearID, nil, true},
		{"clear already free", nil, models.ClearID, nil, true},
		{"omitted keeps assignment", &p1, models.OmittedID, &p1, false},
		{"omitted keeps free", nil, models.OmittedID, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileAssignment(tt.current, tt.requested)
			assert.Equal(t, tt.wantProj, got.ProjectID)
			assert.Equal(t, tt.wantAvail, got.IsAvailable)
			assert.Equal(t, got.ProjectID == nil, got.IsAvailable)
		})
	}
}

func TestApplyAssignment_InvariantAndIdempotence(t *testing.T) {
	p1 := uuid.New()
	payloads := []models.OptionalID{models.OmittedID, models.ClearID, models.SomeID(p1)}
	starts := []func() models.Manpower{
		func() models.Manpower { return models.Manpower{IsAvailable: true} },
		func() models.Manpower { id := p1; return models.Manpower{AssignedProjectID: &id} },
		// corrupted rows heal on the next write
		func() models.Manpower { return models.Manpower{IsAvailable: false} },
		func() models.Manpower { id := p1; return models.Manpower{AssignedProjectID: &id, IsAvailable: true} },
	}

	for _, start := range starts {
		for _, payload := range payloads {
			once := start()
			ApplyAssignment(&once, payload)
			assert.True(t, once.Consistent())

			twice := start()
			ApplyAssignment(&twice, payload)
			ApplyAssignment(&twice, payload)
			assert.Equal(t, once, twice)
		}
	}
}

func TestReconcileAssignment_DoesNotAliasInput(t *testing.T) {
	p1 := uuid.New()
	current := p1
	got := ReconcileAssignment(&current, models.OmittedID)
	current = uuid.New()
	assert.Equal(t, p1, *got.ProjectID)
}

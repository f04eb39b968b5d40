package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/apperr"
)

func TestClassifyMaterial_Available(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		status models.MaterialStatus
		want   models.MaterialStatus
	}{
		{"", models.MaterialPending},
		{models.MaterialPending, models.MaterialPending},
		{models.MaterialInStock, models.MaterialInStock},
		{models.MaterialOrdered, models.MaterialInStock},
		{models.MaterialDelivered, models.MaterialInStock},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			state, err := ClassifyMaterial(MaterialFields{
				Type:     models.MaterialAvailable,
				Status:   tt.status,
				Priority: models.PriorityHigh,
				NeededBy: &due,
			})
			require.NoError(t, err)
			assert.IsType(t, AvailableMaterial{}, state)

			var m models.Material
			state.Apply(&m)
			assert.Equal(t, models.MaterialAvailable, m.Type)
			assert.Equal(t, tt.want, m.Status)
			assert.Nil(t, m.Priority)
			assert.Nil(t, m.NeededBy)
		})
	}
}

func TestClassifyMaterial_Required(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		in           MaterialFields
		wantStatus   models.MaterialStatus
		wantPriority models.Priority
	}{
		{"defaults", MaterialFields{Type: models.MaterialRequired}, models.MaterialPending, models.PriorityMedium},
		{"ordered high", MaterialFields{Type: models.MaterialRequired, Status: models.MaterialOrdered, Priority: models.PriorityHigh}, models.MaterialOrdered, models.PriorityHigh},
		{"delivered", MaterialFields{Type: models.MaterialRequired, Status: models.MaterialDelivered, Priority: models.PriorityLow}, models.MaterialDelivered, models.PriorityLow},
		{"in stock normalized", MaterialFields{Type: models.MaterialRequired, Status: models.MaterialInStock}, models.MaterialPending, models.PriorityMedium},
		{"needed by kept", MaterialFields{Type: models.MaterialRequired, NeededBy: &due}, models.MaterialPending, models.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := ClassifyMaterial(tt.in)
			require.NoError(t, err)
			assert.IsType(t, RequiredMaterial{}, state)

			var m models.Material
			state.Apply(&m)
			assert.Equal(t, tt.wantStatus, m.Status)
			require.NotNil(t, m.Priority)
			assert.Equal(t, tt.wantPriority, *m.Priority)
			assert.Equal(t, tt.in.NeededBy, m.NeededBy)
		})
	}
}

func TestClassifyMaterial_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		in    MaterialFields
		field string
	}{
		{"unknown type", MaterialFields{Type: "Borrowed"}, "type"},
		{"missing type", MaterialFields{}, "type"},
		{"unknown status", MaterialFields{Type: models.MaterialAvailable, Status: "Lost"}, "status"},
		{"unknown priority", MaterialFields{Type: models.MaterialRequired, Priority: "Urgent"}, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClassifyMaterial(tt.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.field, apperr.As(err).Field)
		})
	}
}

func TestClassifyMaterial_TypeChangeRenormalizes(t *testing.T) {
	var m models.Material
	state, err := ClassifyMaterial(MaterialFields{Type: models.MaterialAvailable, Status: models.MaterialInStock})
	require.NoError(t, err)
	state.Apply(&m)

	f := FieldsOf(&m)
	f.Type = models.MaterialRequired
	state, err = ClassifyMaterial(f)
	require.NoError(t, err)
	state.Apply(&m)

	assert.Equal(t, models.MaterialPending, m.Status)
	require.NotNil(t, m.Priority)
	assert.Equal(t, models.PriorityMedium, *m.Priority)

	// applying the policy again changes nothing
	before := m
	state, err = ClassifyMaterial(FieldsOf(&m))
	require.NoError(t, err)
	state.Apply(&m)
	assert.Equal(t, before.Status, m.Status)
	assert.Equal(t, *before.Priority, *m.Priority)
}

package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/sitecore/pkg/apperr"
)

func TestNormalizeProjectCode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"canonical", "PJT-001", "PJT-001", false},
		{"lowercase letters are uppercased", "pjt-001", "PJT-001", false},
		{"surrounding space trimmed", "  abc-999 ", "ABC-999", false},
		{"two letters", "PJ-001", "", true},
		{"four digits", "PJT-0001", "", true},
		{"missing dash", "PJT001", "", true},
		{"digits in prefix", "P1T-001", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeProjectCode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				assert.Equal(t, "projectId", apperr.As(err).Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// "pj-001" has a two-letter prefix, so uppercasing does not rescue it.
func TestNormalizeProjectCode_RejectsShortLowercase(t *testing.T) {
	_, err := NormalizeProjectCode("pj-001")
	assert.Error(t, err)
}

func TestValidateEmployeeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"EMP001", "EMP001", false},
		{"abc", "abc", false},
		{" ab ", "", true},
		{"", "", true},
		{"  E-1  ", "E-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateEmployeeID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContactValidation(t *testing.T) {
	_, err := NormalizePhone("98765")
	assert.Error(t, err)
	phone, err := NormalizePhone("9876543210")
	assert.NoError(t, err)
	assert.Equal(t, "9876543210", phone)

	email, err := NormalizeEmail("Ravi.K@Site.com")
	assert.NoError(t, err)
	assert.Equal(t, "ravi.k@site.com", email)
	_, err = NormalizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestValidatePercent(t *testing.T) {
	assert.NoError(t, ValidatePercent("progress", "workCompleted", 0))
	assert.NoError(t, ValidatePercent("progress", "workCompleted", 100))
	assert.Error(t, ValidatePercent("progress", "workCompleted", -1))
	assert.Error(t, ValidatePercent("progress", "workCompleted", 101))
}

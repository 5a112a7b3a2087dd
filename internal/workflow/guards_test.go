package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEvidence(t *testing.T) {
	complete := Evidence{PhotoCount: 3, VisitDate: "2026-08-20", PropertyType: "residential"}
	assert.NoError(t, ValidateEvidence(complete))

	// 零照片是明确的失败字段
	zero := complete
	zero.PhotoCount = 0
	err := ValidateEvidence(zero)
	require.Error(t, err)
	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "photos", terr.Field)
	assert.True(t, IsInvalidTransition(err))

	noDate := complete
	noDate.VisitDate = ""
	err = ValidateEvidence(noDate)
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "visit_date", terr.Field)

	noType := complete
	noType.PropertyType = ""
	err = ValidateEvidence(noType)
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "property_type", terr.Field)
}

func TestValidateMeasurements(t *testing.T) {
	complete := Measurements{Area: 120.5, ConstructionType: "concrete", EstimatedValue: 450000}
	assert.NoError(t, ValidateMeasurements(complete))

	cases := []struct {
		name  string
		mut   func(*Measurements)
		field string
	}{
		{"missing area", func(m *Measurements) { m.Area = 0 }, "area"},
		{"negative area", func(m *Measurements) { m.Area = -1 }, "area"},
		{"missing construction type", func(m *Measurements) { m.ConstructionType = "" }, "construction_type"},
		{"missing estimated value", func(m *Measurements) { m.EstimatedValue = 0 }, "estimated_value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := complete
			tc.mut(&m)
			err := ValidateMeasurements(m)
			require.Error(t, err)
			var terr *TransitionError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tc.field, terr.Field)
		})
	}
}

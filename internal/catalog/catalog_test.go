package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/domain/models"
)

func TestLoad_Embedded(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.True(t, c.IsDepartment("Poli Umum"))
	assert.True(t, c.IsDepartment("IGD"))
	assert.False(t, c.IsDepartment("Radiology"))
	assert.Equal(t, []string{
		models.FieldSymptoms,
		models.FieldDiagnosis,
		models.FieldTreatment,
		models.FieldNotes,
		models.FieldAIAnalysis,
	}, c.SensitiveFields())
	assert.Equal(t, "No automated diagnosis yet", c.Defaults().Diagnosis)
	assert.Equal(t, "Awaiting treatment", c.Defaults().Treatment)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "departments: [{name: A}]\nsensitive_fields: [bloodType]"},
		{"duplicate department", "departments: [{name: A}, {name: A}]\nsensitive_fields: [notes]"},
		{"unnamed department", "departments: [{description: x}]\nsensitive_fields: [notes]"},
		{"empty scope", "departments: [{name: A}]\nsensitive_fields: []"},
		{"bad yaml", "departments: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSensitiveFields_CanonicalOrder(t *testing.T) {
	c, err := Parse([]byte("departments: []\nsensitive_fields: [notes, symptoms, notes]"))
	require.NoError(t, err)
	assert.Equal(t, []string{models.FieldSymptoms, models.FieldNotes}, c.SensitiveFields())
}

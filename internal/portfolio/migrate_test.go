package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatches(t *testing.T) {
	tests := []struct {
		name    string
		reset   bool
		in      Data
		applied []string
		check   func(t *testing.T, d Data)
	}{
		{
			name:    "reset then reseed",
			reset:   true,
			in:      Data{Experience: []Experience{{ID: 9, Title: "x", Company: "Micro Infotech"}}},
			applied: []string{"reset-experience", "seed-bootstrap-experience"},
			check: func(t *testing.T, d Data) {
				require.Len(t, d.Experience, 1)
				assert.Equal(t, 1, d.Experience[0].ID)
				assert.Equal(t, "Intern", d.Experience[0].Title)
			},
		},
		{
			name:    "bootstrap present",
			in:      Data{Experience: []Experience{{ID: 9, Company: "Micro Infotech, Coimbatore"}}},
			applied: nil,
		},
		{
			name: "academic excellence old dates",
			in: Data{
				Experience:   bootstrapExperience(),
				Achievements: []Achievement{{ID: 4, Title: "Academic Excellence", Meta: "Dean's List | 2022-2023"}},
			},
			applied: []string{"academic-excellence-dates"},
			check: func(t *testing.T, d Data) {
				assert.Equal(t, "Dean's List | 2023-2027", d.Achievements[0].Meta)
			},
		},
		{
			name: "certification year bump",
			in: Data{
				Experience:   bootstrapExperience(),
				Achievements: []Achievement{{ID: 1, Title: "Data Analyst Certification", Meta: "Google | 2024"}},
			},
			applied: []string{"data-analyst-cert-year"},
			check: func(t *testing.T, d Data) {
				assert.Equal(t, "Google | 2025", d.Achievements[0].Meta)
			},
		},
		{
			name: "retired achievements dropped",
			in: Data{
				Experience: bootstrapExperience(),
				Achievements: []Achievement{
					{ID: 1, Title: "SQL Mastery Certification"},
					{ID: 2, Title: "Keep"},
					{ID: 3, Title: "Outstanding Project Award"},
				},
			},
			applied: []string{"drop-retired-achievements"},
			check: func(t *testing.T, d Data) {
				require.Len(t, d.Achievements, 1)
				assert.Equal(t, "Keep", d.Achievements[0].Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.in.Clone()
			got := ApplyPatches(&d, Patches(tt.reset))
			assert.Equal(t, tt.applied, got)
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestPatches_Idempotent(t *testing.T) {
	d, err := Defaults()
	require.NoError(t, err)
	assert.Empty(t, ApplyPatches(&d, Patches(false)))
}

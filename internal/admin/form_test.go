package admin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

func validFields() map[string]string {
	return map[string]string{
		catalog.ColEpicID:      "STO-4821",
		catalog.ColName:        "Budget Tracker",
		catalog.ColDescription: "Tracks LOB budgets",
		catalog.ColLOB:         "CORP",
		catalog.ColVersion:     "2.1",
		catalog.ColReleaseDate: "2026-03-01",
		catalog.ColEnvironment: "PROD",
		catalog.ColExePath:     `\\shared\tools\budget\budget.exe`,
		catalog.ColDeveloper:   "u998877",
		catalog.ColTechnology:  "Python",
	}
}

func TestValidateAcceptsCompleteRow(t *testing.T) {
	assert.NoError(t, Validate(validFields()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		problem string
	}{
		{
			name:    "missing name",
			mutate:  func(f map[string]string) { delete(f, catalog.ColName) },
			problem: "Application Name is required",
		},
		{
			name:    "blank required field",
			mutate:  func(f map[string]string) { f[catalog.ColDescription] = "   " },
			problem: "Application Description is required",
		},
		{
			name:    "version not a number",
			mutate:  func(f map[string]string) { f[catalog.ColVersion] = "two point one" },
			problem: "Version must be a number",
		},
		{
			name:    "date in wrong form",
			mutate:  func(f map[string]string) { f[catalog.ColReleaseDate] = "01/03/2026" },
			problem: "Release Date must be a date",
		},
		{
			name:    "unknown line of business",
			mutate:  func(f map[string]string) { f[catalog.ColLOB] = "RETAIL" },
			problem: "Line of Business must be one of",
		},
		{
			name:    "unknown environment",
			mutate:  func(f map[string]string) { f[catalog.ColEnvironment] = "STAGING" },
			problem: "Release Environment must be one of",
		},
		{
			name:    "bare executable name",
			mutate:  func(f map[string]string) { f[catalog.ColExePath] = "budget.exe" },
			problem: "Executable Path must be a full path",
		},
		{
			name:    "unknown column",
			mutate:  func(f map[string]string) { f["Solution_Nmae"] = "typo" },
			problem: `unknown field "Solution_Nmae"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(fields)

			err := Validate(fields)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tc.problem)
		})
	}
}

func TestValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	fields := validFields()
	delete(fields, catalog.ColLOB)
	delete(fields, catalog.ColEnvironment)

	assert.NoError(t, Validate(fields))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	fields := validFields()
	delete(fields, catalog.ColName)
	fields[catalog.ColVersion] = "abc"

	problems := Problems(fields)
	require.Len(t, problems, 2)
	joined := strings.Join(problems, "; ")
	assert.Contains(t, joined, "Application Name is required")
	assert.Contains(t, joined, "Version must be a number")
}

func TestValidatePartial(t *testing.T) {
	assert.NoError(t, ValidatePartial(map[string]string{catalog.ColVersion: "3.0"}))

	err := ValidatePartial(map[string]string{catalog.ColVersion: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Version must be a number")

	// A partial update does not demand the fields it leaves out
	assert.NoError(t, ValidatePartial(map[string]string{catalog.ColDescription: "new text"}))

	// But blanking a required field is rejected
	err = ValidatePartial(map[string]string{catalog.ColName: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Application Name is required")
}

func TestValidateAllowsAccessColumn(t *testing.T) {
	fields := validFields()
	fields[catalog.ColAccess] = "everyone"
	fields[catalog.ColValidity] = "90"

	assert.NoError(t, Validate(fields))
}

package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/schemas"
)

func TestProfileSchema_ValidJSON(t *testing.T) {
	data, err := os.ReadFile(filepath.Join(".", "profile.schema.json"))
	require.NoError(t, err, "should be able to read schema file")

	var v interface{}
	err = json.Unmarshal(data, &v)
	assert.NoError(t, err, "schema file should be valid JSON")
}

func TestProfileSchema_AcceptsCompleteProfile(t *testing.T) {
	profileJSON := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"phone": "+1-555-0100",
		"skills": ["Go", "PostgreSQL"],
		"work_history": [
			{"title": "Engineer", "company": "Acme", "years": 3.5}
		],
		"education": [
			{"degree": "BSc", "field": "Mathematics", "school": "UCL", "year": 2015}
		],
		"salary_expectation": "90000 USD",
		"availability": "Two weeks notice"
	}`

	err := schemas.ValidateJSON("profile.schema.json", writeTemp(t, profileJSON))
	assert.NoError(t, err)
}

func TestProfileSchema_RejectsMissingRequiredFields(t *testing.T) {
	err := schemas.ValidateJSON("profile.schema.json", writeTemp(t, `{"first_name": "Ada"}`))

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestProfileSchema_RejectsUnknownFields(t *testing.T) {
	profileJSON := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.com",
		"favorite_color": "mauve"
	}`

	err := schemas.ValidateJSON("profile.schema.json", writeTemp(t, profileJSON))
	assert.Error(t, err)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

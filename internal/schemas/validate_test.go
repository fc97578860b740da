package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"count": {"type": "integer", "minimum": 0}
	},
	"additionalProperties": false
}`

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(testSchema, `{"name": "ok", "count": 2}`))
}

func TestValidateJSONString_CollectsFieldErrors(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"count": -1}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 2)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 42}`, `{}`)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSON_Files(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	docPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchema), 0o644))
	require.NoError(t, os.WriteFile(docPath, []byte(`{"name": "ok"}`), 0o644))

	assert.NoError(t, ValidateJSON(schemaPath, docPath))

	missing := filepath.Join(dir, "missing.json")
	assert.Error(t, ValidateJSON(schemaPath, missing))
	assert.Error(t, ValidateJSON(missing, docPath))
}

func TestResolveSchemaPath(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "profile.schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchema), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) }) //nolint:errcheck

	assert.NotEmpty(t, ResolveSchemaPath("profile.schema.json"))
	assert.Empty(t, ResolveSchemaPath("nope.schema.json"))
}

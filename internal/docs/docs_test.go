package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Swagger  string                                `json:"swagger"`
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
		Security map[string]json.RawMessage            `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/", doc.BasePath)
	assert.Contains(t, doc.Security, "BearerAuth")

	require.NotEmpty(t, doc.Paths)
	assert.Contains(t, doc.Paths["/api/v1/sessions"], "post")
	assert.Contains(t, doc.Paths["/api/v1/sessions/{id}/end"], "post")
	assert.Contains(t, doc.Paths["/api/v1/admin/cleanup"], "delete")
	assert.Contains(t, doc.Paths["/health"], "get")
}

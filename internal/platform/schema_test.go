package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreplane-io/coreplane/internal/output"
)

func TestResourceTypeSchemas(t *testing.T) {
	types := []ResourceType{
		K8sClusterType, K8sWorkerType, GatewayType, TenantType,
		UserType, RoleType, CatalogType,
	}
	for _, typ := range types {
		t.Run(typ.Name, func(t *testing.T) {
			require.NotEmpty(t, typ.Path)
			require.NotEmpty(t, typ.ListKey)
			assert.True(t, strings.HasPrefix(typ.Path, "/api/"), "path %q", typ.Path)

			// Every default field must resolve against the declared columns.
			_, err := output.SelectColumns(typ.Fields, typ.DefaultFields)
			require.NoError(t, err)

			for _, failure := range typ.FailureStatuses {
				assert.True(t, typ.ValidStatus(failure),
					"failure status %q missing from statuses", failure)
			}
			if typ.StatusField == "" {
				assert.Empty(t, typ.Statuses)
			}
		})
	}
}

func TestRecordID(t *testing.T) {
	rec := Record{
		"_links": map[string]any{
			"self": map[string]any{"href": "/api/v2/k8scluster/7"},
		},
	}
	assert.Equal(t, "/api/v2/k8scluster/7", rec.ID())
	assert.Empty(t, Record{}.ID())
}

func TestRecordStatusUsesSchemaField(t *testing.T) {
	rec := Record{"state": "installed", "status": "ignored"}
	assert.Equal(t, "installed", rec.Status(GatewayType))
}

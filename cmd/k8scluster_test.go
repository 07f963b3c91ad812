package cmd

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clustersListBody = `{
	"_embedded": {"k8sclusters": [
		{
			"label": {"name": "dev", "description": "dev cluster"},
			"k8s_version": "1.20.11",
			"status": "ready",
			"_links": {"self": {"href": "/api/v2/k8scluster/1"}}
		},
		{
			"label": {"name": "prod", "description": "prod cluster"},
			"k8s_version": "1.19.9",
			"status": "creating",
			"_links": {"self": {"href": "/api/v2/k8scluster/2"}}
		}
	]}
}`

func TestK8sClusterListTable(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/k8scluster", r.URL.Path)
		w.Write([]byte(clustersListBody))
	})

	out, err := runCommand(t, "k8scluster", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "/api/v2/k8scluster/1")
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "creating")
}

func TestK8sClusterListWithQueryAndColumns(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(clustersListBody))
	})

	out, err := runCommand(t, "k8scluster", "list",
		"--output", "text",
		"--columns", "name",
		"--query", "[?status == 'ready']")
	require.NoError(t, err)

	assert.Equal(t, "dev\n", out)
}

func TestK8sClusterListUnknownColumn(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(clustersListBody))
	})

	out, err := runCommand(t, "k8scluster", "list", "--columns", "flavor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "flavor"`)
	assert.NotContains(t, out, "/api/v2/k8scluster")
}

func TestK8sClusterCreatePrintsID(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Location", "/api/v2/k8scluster/7")
		w.WriteHeader(http.StatusCreated)
	})

	out, err := runCommand(t, "k8scluster", "create",
		"--name", "dev",
		"--node", "/api/v2/worker/k8shost/1:master")
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/k8scluster/7\n", out)
}

func TestK8sClusterSupportedVersionsCommand(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/k8smanifest", r.URL.Path)
		w.Write([]byte(`{"supported_versions": ["1.19.9", "1.20.11"]}`))
	})

	out, err := runCommand(t, "k8scluster", "supported-versions")
	require.NoError(t, err)
	assert.Equal(t, "1.19.9\n1.20.11\n", out)
}

func TestHTTPClientGetPassthrough(t *testing.T) {
	withFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/workers", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"_embedded": {"workers": []}}`))
	})

	out, err := runCommand(t, "httpclient", "get", "/api/v1/workers")
	require.NoError(t, err)
	assert.Equal(t, "{\"_embedded\": {\"workers\": []}}\n", out)
}

package kubeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: dev
  cluster:
    server: https://10.0.0.1:9500
contexts:
- name: dev-admin
  context:
    cluster: dev
    user: admin
users:
- name: admin
  user:
    token: abc123
current-context: dev-admin
`

const otherKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: prod
  cluster:
    server: https://10.0.0.2:9500
contexts:
- name: prod-admin
  context:
    cluster: prod
    user: prod-admin
users:
- name: prod-admin
  user:
    token: xyz789
current-context: prod-admin
`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validKubeconfig))
	require.NoError(t, err)
	assert.Equal(t, "dev-admin", cfg.CurrentContext)
	assert.Contains(t, cfg.Clusters, "dev")
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("{not yaml: ["))
	assert.Error(t, err)
}

func TestParseStructurallyInvalid(t *testing.T) {
	// Context points at a cluster that does not exist.
	broken := `apiVersion: v1
kind: Config
contexts:
- name: dangling
  context:
    cluster: nosuch
    user: nosuch
current-context: dangling
`
	_, err := Parse([]byte(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kubeconfig")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config")
	require.NoError(t, Write([]byte(validKubeconfig), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, validKubeconfig, string(data))
}

func TestWriteRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	err := Write([]byte("nope"), path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestMergeIntoExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(otherKubeconfig), 0o600))

	require.NoError(t, Merge([]byte(validKubeconfig), path))

	merged, err := Parse(mustRead(t, path))
	require.NoError(t, err)
	assert.Contains(t, merged.Clusters, "dev")
	assert.Contains(t, merged.Clusters, "prod")
	assert.Contains(t, merged.Contexts, "dev-admin")
	assert.Contains(t, merged.Contexts, "prod-admin")
	assert.Equal(t, "dev-admin", merged.CurrentContext)
}

func TestMergeIntoMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, Merge([]byte(validKubeconfig), path))

	merged, err := Parse(mustRead(t, path))
	require.NoError(t, err)
	assert.Contains(t, merged.Clusters, "dev")
}

func TestDefaultPathEnv(t *testing.T) {
	t.Setenv("KUBECONFIG", "/tmp/from-env")
	assert.Equal(t, "/tmp/from-env", DefaultPath())
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

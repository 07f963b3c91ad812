package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelfUpdateCmd(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		expectError   bool
		errorContains string
	}{
		{
			name:          "self-update with dev version should fail",
			version:       "dev",
			expectError:   true,
			errorContains: "cannot self-update a development version",
		},
		{
			name:          "self-update with empty version should fail",
			version:       "",
			expectError:   true,
			errorContains: "cannot self-update a development version",
		},
		// Actual updates need network access and real releases, so they are
		// not covered by unit tests.
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalVersion := rootCmd.Version
			defer func() {
				rootCmd.Version = originalVersion
			}()
			rootCmd.Version = tt.version

			cmd := newSelfUpdateCmd()
			err := cmd.Execute()

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelfUpdateCmdProperties(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Equal(t, "Update coreplane to the latest version", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "coreplane"))
	assert.True(t, strings.Contains(cmd.Long, "GitHub"))
}

func TestGithubRepoSlug(t *testing.T) {
	assert.Equal(t, "coreplane-io/coreplane", githubRepoSlug)
}

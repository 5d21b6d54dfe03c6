package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/config"
)

func TestTemplates_LoadAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{name: "project", template: ProjectConfigTemplate},
		{name: "user", template: UserConfigTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: the template written as a project config
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			dir := t.TempDir()
			require.NotEmpty(t, tt.template)
			require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectConfigName), []byte(tt.template), 0644))

			// When: loading it
			cfg, err := config.Load(dir)

			// Then: it parses and validates
			require.NoError(t, err)
			assert.Equal(t, 1, cfg.Version)
		})
	}
}

package configpaths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDirHonorsEnvOverride(t *testing.T) {
	t.Setenv(configDirEnvVar, "/tmp/hidrelay-custom")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hidrelay-custom", dir)
}

func TestDefaultNamedConfigPathPicksExtensionByFormat(t *testing.T) {
	t.Setenv(configDirEnvVar, "/tmp/hidrelay-custom")

	path, err := DefaultNamedConfigPath("run", "toml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hidrelay-custom/run.toml", path)

	path, err = DefaultNamedConfigPath("run", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hidrelay-custom/run.yaml", path)
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigManager_Defaults(t *testing.T) {
	cm := NewConfigManager()
	config := cm.GetConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, int64(42), config.Training.RandomSeed)
	assert.Equal(t, 0.60, config.Training.TrainSize)
	assert.Equal(t, 0.20, config.Training.ValSize)
	assert.Equal(t, 0.20, config.Training.TestSize)
	assert.Equal(t, "cap", config.Training.OutlierMethod)
	assert.Equal(t, "info", config.Logging.Level)
	assert.False(t, config.Retrain.Enabled)
}

func TestConfigManager_LoadFromFile(t *testing.T) {
	t.Run("YAML overrides merge over defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := `
server:
  port: 9090
training:
  random_seed: 7
  outlier_method: remove
logging:
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

		cm := NewConfigManager()
		require.NoError(t, cm.LoadFromFile(path))

		config := cm.GetConfig()
		assert.Equal(t, 9090, config.Server.Port)
		assert.Equal(t, int64(7), config.Training.RandomSeed)
		assert.Equal(t, "remove", config.Training.OutlierMethod)
		assert.Equal(t, "debug", config.Logging.Level)
		// untouched sections keep defaults
		assert.Equal(t, 0.60, config.Training.TrainSize)
		assert.Equal(t, "text", config.Logging.Format)
	})

	t.Run("JSON config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		jsonBody := `{"server": {"port": 8181}}`
		require.NoError(t, os.WriteFile(path, []byte(jsonBody), 0644))

		cm := NewConfigManager()
		require.NoError(t, cm.LoadFromFile(path))
		assert.Equal(t, 8181, cm.GetConfig().Server.Port)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("port = 1"), 0644))

		cm := NewConfigManager()
		err := cm.LoadFromFile(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config file format")
	})

	t.Run("invalid split sizes rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := `
training:
  train_size: 0.5
  val_size: 0.2
  test_size: 0.2
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

		cm := NewConfigManager()
		err := cm.LoadFromFile(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.0")
	})

	t.Run("invalid outlier method rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("training:\n  outlier_method: drop\n"), 0644))

		cm := NewConfigManager()
		err := cm.LoadFromFile(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid outlier method")
	})
}

func TestConfigManager_LoadFromEnvironment(t *testing.T) {
	t.Setenv("MAIZE_PORT", "7070")
	t.Setenv("MAIZE_LOG_LEVEL", "warn")
	t.Setenv("MAIZE_MODEL_DIR", "/tmp/models")

	cm := NewConfigManager()
	require.NoError(t, cm.LoadFromEnvironment())

	config := cm.GetConfig()
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "/tmp/models", config.Paths.ModelDir)
}

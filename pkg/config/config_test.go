package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "auto", config.Server.APIKey)
	assert.Equal(t, BackendPebble, config.Storage.Backend)
	assert.Equal(t, "./data", config.Storage.Path)
	assert.Equal(t, "info", config.Logging.Level)
	require.Len(t, config.Formats, 1)
	assert.Equal(t, "header", config.Formats[0].Name)
	assert.NoError(t, config.Validate())
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

		// Verify it's valid hex
		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("zero length", func(t *testing.T) {
		key, err := GenerateSecureKey(0)
		require.NoError(t, err)
		assert.Empty(t, key)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir := t.TempDir()

		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := &Config{
			Formats: []FormatDef{
				{
					Name: "frame",
					Fields: FieldList{
						{Name: "size", Width: 8},
						{Name: "body", Width: 0, LengthFrom: "size"},
					},
				},
			},
			Server: Server{
				Bind:   "0.0.0.0",
				Port:   9000,
				APIKey: "test-api-key",
			},
			Storage: Storage{
				Backend: BackendBolt,
				Path:    "/custom/data",
			},
			Logging: Logging{
				Level:  "debug",
				Format: "json",
			},
		}

		err := SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		tmpDir := t.TempDir()

		configPath := filepath.Join(tmpDir, "invalid.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load config with invalid format", func(t *testing.T) {
		tmpDir := t.TempDir()

		configPath := filepath.Join(tmpDir, "bad-format.yaml")
		content := "formats:\n  - name: broken\n    fields:\n      a: -1\n"
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		_, err := LoadConfig(configPath)
		assert.ErrorIs(t, err, codec.ErrFormat)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestFieldListYAML(t *testing.T) {
	t.Run("mapping shorthand keeps order", func(t *testing.T) {
		doc := `
name: ip
fields:
  version: 4
  ihl: 4
  tos: 8
  total_length: 16
  options: {width: 0}
`
		var def FormatDef
		require.NoError(t, yaml.Unmarshal([]byte(doc), &def))

		assert.Equal(t, []string{"version", "ihl", "tos", "total_length", "options"}, def.Codec().Names())
		assert.Equal(t, 32, def.Codec().Bits())
		assert.True(t, def.Codec()[4].IsVariable())
	})

	t.Run("sequence form", func(t *testing.T) {
		doc := `
name: frame
fields:
  - name: size
    width: 8
  - name: body
    width: 0
    length_from: size
`
		var def FormatDef
		require.NoError(t, yaml.Unmarshal([]byte(doc), &def))

		assert.Equal(t, codec.Format{
			{Name: "size", Width: 8},
			{Name: "body", Width: 0, LengthFrom: "size"},
		}, def.Codec())
	})

	t.Run("non-integer width", func(t *testing.T) {
		var def FormatDef
		err := yaml.Unmarshal([]byte("name: x\nfields:\n  a: wide\n"), &def)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), `width of "a" must be an integer`)
	})

	t.Run("scalar fields", func(t *testing.T) {
		var def FormatDef
		err := yaml.Unmarshal([]byte("name: x\nfields: 12\n"), &def)
		assert.Error(t, err)
	})
}

func TestConfigFormat(t *testing.T) {
	config := DefaultConfig()

	f, err := config.Format("header")
	require.NoError(t, err)
	assert.Equal(t, 16, f.Bits())

	_, err = config.Format("missing")
	assert.ErrorIs(t, err, ErrFormatNotFound)
}

func TestConfigValidate(t *testing.T) {
	t.Run("duplicate format names", func(t *testing.T) {
		config := DefaultConfig()
		config.Formats = append(config.Formats, ExampleFormat())
		assert.Error(t, config.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		config := DefaultConfig()
		config.Storage.Backend = "tape"
		assert.Error(t, config.Validate())
	})
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	config := DefaultConfig()

	err := SaveConfig(config, configPath)
	require.NoError(t, err)

	// Verify file exists
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Verify content
	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestBootstrapConfig(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	dataDir := "/custom/data/dir"

	config, err := BootstrapConfig(configPath, dataDir)
	require.NoError(t, err)

	// Verify config values
	assert.Equal(t, dataDir, config.Storage.Path)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, "info", config.Logging.Level)

	// Verify key is generated and not "auto"
	assert.NotEqual(t, "auto", config.Server.APIKey)
	_, err = hex.DecodeString(config.Server.APIKey)
	assert.NoError(t, err)

	// Verify file was created
	assert.True(t, ConfigExists(configPath))

	// Verify we can load it back
	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "serialize")
	assert.Contains(t, path, "config.yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	// Create a file
	err := os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}

func TestSaveConfigErrorHandling(t *testing.T) {
	config := DefaultConfig()

	// A regular file where a directory is expected
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveConfig(config, filepath.Join(blocker, "sub", "config.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}

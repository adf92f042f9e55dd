package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LeDuy-Vu/serialize-this/pkg/api"
	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/di"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// execute runs the CLI with args and returns what it wrote to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--log-level", "error"))

	err := root.Execute()
	return out.String(), err
}

// setupConfig bootstraps a config file in a temp dir and returns its path
func setupConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	_, err := execute(t, "init", "--config", configPath, "--data-dir", filepath.Join(dir, "data"))
	require.NoError(t, err)
	return configPath
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")

	t.Run("creates config", func(t *testing.T) {
		out, err := execute(t, "init", "--config", configPath, "--data-dir", dataDir, "--print-key")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration created at "+configPath)
		assert.Contains(t, out, "API key: ")

		cfg, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, dataDir, cfg.Storage.Path)
		assert.NotEqual(t, "auto", cfg.Server.APIKey)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := execute(t, "init", "--config", configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := execute(t, "init", "--config", configPath, "--data-dir", dataDir, "--force")
		assert.NoError(t, err)
	})
}

func TestFormatsCommand(t *testing.T) {
	configPath := setupConfig(t)

	out, err := execute(t, "formats", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "header")
	assert.Contains(t, out, "{type:4, len:4, payload:8}")
}

func TestEncodeDecodeCommands(t *testing.T) {
	configPath := setupConfig(t)

	t.Run("encode", func(t *testing.T) {
		out, err := execute(t, "encode", "header", "type=5", "len=3", "payload=0xab", "--config", configPath)
		require.NoError(t, err)
		assert.Equal(t, "53ab\n", out)
	})

	t.Run("encode raw", func(t *testing.T) {
		out, err := execute(t, "encode", "header", "type=0b0101", "len=3", "payload=171", "--raw", "--config", configPath)
		require.NoError(t, err)
		assert.Equal(t, "\x53\xab", out)
	})

	t.Run("encode full range", func(t *testing.T) {
		_, err := execute(t, "encode", "header", "type=-8", "--config", configPath)
		assert.Error(t, err)

		out, err := execute(t, "encode", "header", "type=-8", "--full-range", "--config", configPath)
		require.NoError(t, err)
		assert.Equal(t, "8000\n", out)
	})

	t.Run("encode unknown field", func(t *testing.T) {
		_, err := execute(t, "encode", "header", "flags=1", "--config", configPath)
		assert.Error(t, err)
	})

	t.Run("encode unknown format", func(t *testing.T) {
		_, err := execute(t, "encode", "ip", "--config", configPath)
		assert.ErrorIs(t, err, config.ErrFormatNotFound)
	})

	t.Run("decode", func(t *testing.T) {
		out, err := execute(t, "decode", "header", "53ab", "--config", configPath)
		require.NoError(t, err)
		assert.Contains(t, out, "type     0101      5")
		assert.Contains(t, out, "payload  10101011  171")
	})

	t.Run("decode with index", func(t *testing.T) {
		out, err := execute(t, "decode", "header", "ff53ab", "--index", "1", "--config", configPath)
		require.NoError(t, err)
		assert.Contains(t, out, "len      0011      3")
	})

	t.Run("decode short packet", func(t *testing.T) {
		_, err := execute(t, "decode", "header", "53", "--config", configPath)
		assert.Error(t, err)
	})
}

func TestArchiveCommands(t *testing.T) {
	configPath := setupConfig(t)

	out, err := execute(t, "archive", "put", "header", "53ab", "--config", configPath)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = execute(t, "archive", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, id+"\n", out)

	out, err = execute(t, "archive", "get", id, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:  header")
	assert.Contains(t, out, "Packet:  53ab")
	assert.Contains(t, out, "payload  10101011  171")

	_, err = execute(t, "archive", "put", "header", "53", "--config", configPath)
	assert.Error(t, err, "packets that do not decode are rejected")

	out, err = execute(t, "archive", "delete", id, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, err = execute(t, "archive", "get", id, "--config", configPath)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = execute(t, "archive", "get", "nope", "--config", configPath)
	assert.Error(t, err)
}

func TestEncodeArchive(t *testing.T) {
	configPath := setupConfig(t)

	out, err := execute(t, "encode", "header", "type=1", "--archive", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "1000\n", out)

	out, err = execute(t, "archive", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 1)
}

type fakeServerFactory struct{ starter *fakeStarter }

func (f *fakeServerFactory) CreateServerStarter() api.ServerStarter { return f.starter }

type fakeStarter struct {
	cfg     *config.Config
	archive storage.Storage
}

func (s *fakeStarter) StartServer(ctx context.Context, cfg *config.Config, archive storage.Storage, log *zap.Logger) error {
	s.cfg = cfg
	s.archive = archive
	return nil
}

func TestServeCommand(t *testing.T) {
	configPath := setupConfig(t)

	starter := &fakeStarter{}
	c := di.NewContainer()
	c.SetServerFactory(&fakeServerFactory{starter: starter})
	SetContainer(c)
	defer SetContainer(nil)

	_, err := execute(t, "serve", "--port", "9100", "--config", configPath)
	require.NoError(t, err)

	require.NotNil(t, starter.cfg)
	assert.Equal(t, 9100, starter.cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", starter.cfg.Server.Bind)
	assert.NotNil(t, starter.archive)
}

func TestInvalidLogLevel(t *testing.T) {
	configPath := setupConfig(t)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"formats", "--config", configPath, "--log-level", "loud"})
	assert.Error(t, root.Execute())
}

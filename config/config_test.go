package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cheval.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", cfg.Binaries.FFmpeg)
	assert.Equal(t, "yt-dlp", cfg.Binaries.YtDlp)
	assert.Equal(t, "_processed", cfg.Batch.Suffix)
	assert.Equal(t, 7890, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.ProbeTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("FFMPEG_HOME", "/opt/ffmpeg")
	t.Setenv("CHEVAL_PORT", "9000")
	path := writeConfig(t, `
log_level = "debug"

[binaries]
ffmpeg = "${FFMPEG_HOME}/bin/ffmpeg"

[server]
port = 8000

[probe]
timeout = "30s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Binaries.FFmpeg)
	assert.Equal(t, "ffprobe", cfg.Binaries.FFprobe)
	assert.Equal(t, 9000, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestLoad_MissingVariable(t *testing.T) {
	path := writeConfig(t, `[paths]
data_dir = "${CHEVAL_TEST_UNSET_VAR}"
`)
	_, err := Load(path)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"CHEVAL_TEST_UNSET_VAR"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "missing environment variables")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "port = = 1"))
	assert.ErrorContains(t, err, "parsing config")

	t.Setenv("CHEVAL_PORT", "abc")
	_, err = Load("")
	assert.ErrorContains(t, err, "CHEVAL_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"binary", func(c *Config) { c.Binaries.YtDlp = " " }, "binaries.yt_dlp"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"suffix", func(c *Config) { c.Batch.Suffix = "../x" }, "batch.suffix"},
		{"timeout", func(c *Config) { c.Probe.Timeout = "soon" }, "probe.timeout"},
		{"keep", func(c *Config) { c.History.Keep = -1 }, "history.keep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Server.Port = 0

	var cfgErr *ConfigError
	require.True(t, errors.As(cfg.Validate(), &cfgErr))
	assert.Len(t, cfgErr.Errors, 2)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("CHEVAL_CONFIG", "")

	_, err := Discover()
	assert.ErrorIs(t, err, ErrNotFound)

	xdg := filepath.Join(dir, "xdg", "cheval", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(xdg), 0o755))
	require.NoError(t, os.WriteFile(xdg, nil, 0o644))
	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, xdg, path)

	require.NoError(t, os.WriteFile("cheval.toml", nil, 0o644))
	path, err = Discover()
	require.NoError(t, err)
	assert.Equal(t, "./cheval.toml", path)

	t.Setenv("CHEVAL_CONFIG", filepath.Join(dir, "nope.toml"))
	_, err = Discover()
	assert.Error(t, err)
}

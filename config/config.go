package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LogLevel string         `toml:"log_level"`
	Binaries BinariesConfig `toml:"binaries"`
	Paths    PathsConfig    `toml:"paths"`
	Batch    BatchConfig    `toml:"batch"`
	Server   ServerConfig   `toml:"server"`
	Probe    ProbeConfig    `toml:"probe"`
	History  HistoryConfig  `toml:"history"`
}

type BinariesConfig struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	YtDlp   string `toml:"yt_dlp"`
}

type PathsConfig struct {
	DataDir     string `toml:"data_dir"`
	DownloadDir string `toml:"download_dir"`
}

type BatchConfig struct {
	Suffix string `toml:"suffix"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type ProbeConfig struct {
	Timeout string `toml:"timeout"`
}

type HistoryConfig struct {
	// Keep is how many runs survive a prune.
	Keep int `toml:"keep"`
}

func Defaults() *Config {
	return &Config{
		LogLevel: "info",
		Binaries: BinariesConfig{FFmpeg: "ffmpeg", FFprobe: "ffprobe", YtDlp: "yt-dlp"},
		Paths:    PathsConfig{DataDir: defaultDataDir(), DownloadDir: defaultDownloadDir()},
		Batch:    BatchConfig{Suffix: "_processed"},
		Server:   ServerConfig{Host: "127.0.0.1", Port: 7890},
		Probe:    ProbeConfig{Timeout: "15s"},
		History:  HistoryConfig{Keep: 500},
	}
}

// Load builds the configuration from defaults, the TOML file at path (when
// path is not empty) and CHEVAL_* environment variables, in that order.
// ${VAR} references in the file are expanded first; unset ones are reported
// in a *ConfigError.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		content, missing := substituteEnvVars(string(data))
		if len(missing) > 0 {
			return nil, &ConfigError{Path: path, Missing: missing}
		}
		if _, err := toml.Decode(content, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("CHEVAL_LOG_LEVEL", c.LogLevel)
	c.Binaries.FFmpeg = getEnv("CHEVAL_FFMPEG", c.Binaries.FFmpeg)
	c.Binaries.FFprobe = getEnv("CHEVAL_FFPROBE", c.Binaries.FFprobe)
	c.Binaries.YtDlp = getEnv("CHEVAL_YTDLP", c.Binaries.YtDlp)
	c.Paths.DataDir = getEnv("CHEVAL_DATA_DIR", c.Paths.DataDir)
	c.Paths.DownloadDir = getEnv("CHEVAL_DOWNLOAD_DIR", c.Paths.DownloadDir)
	c.Batch.Suffix = getEnv("CHEVAL_BATCH_SUFFIX", c.Batch.Suffix)
	c.Server.Host = getEnv("CHEVAL_HOST", c.Server.Host)
	c.Probe.Timeout = getEnv("CHEVAL_PROBE_TIMEOUT", c.Probe.Timeout)

	port, err := strconv.Atoi(getEnv("CHEVAL_PORT", strconv.Itoa(c.Server.Port)))
	if err != nil {
		return fmt.Errorf("invalid CHEVAL_PORT: %w", err)
	}
	c.Server.Port = port

	keep, err := strconv.Atoi(getEnv("CHEVAL_HISTORY_KEEP", strconv.Itoa(c.History.Keep)))
	if err != nil {
		return fmt.Errorf("invalid CHEVAL_HISTORY_KEEP: %w", err)
	}
	c.History.Keep = keep
	return nil
}

// ProbeTimeout parses Probe.Timeout; Validate has already rejected bad values.
func (c *Config) ProbeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Probe.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BinaryPaths maps each external program name to its configured path.
func (c *Config) BinaryPaths() map[string]string {
	return map[string]string{
		"ffmpeg":  c.Binaries.FFmpeg,
		"ffprobe": c.Binaries.FFprobe,
		"yt-dlp":  c.Binaries.YtDlp,
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR} with its value and returns the names it
// could not resolve.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		missing = append(missing, name)
		return match
	})
	return out, missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "cheval")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "cheval")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

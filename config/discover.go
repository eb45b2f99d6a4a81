package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("config file not found")

// DefaultPath returns the XDG config location.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./cheval.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "cheval", "config.toml")
}

// Discover finds the config file. Search order:
//  1. CHEVAL_CONFIG
//  2. ./cheval.toml
//  3. $XDG_CONFIG_HOME/cheval/config.toml
//
// It returns ErrNotFound when none exists; the file is optional.
func Discover() (string, error) {
	if envPath := os.Getenv("CHEVAL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("CHEVAL_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}
	for _, p := range []string{"./cheval.toml", DefaultPath()} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

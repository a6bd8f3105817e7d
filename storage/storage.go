package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirEnv = "CINEMA_CONFIG_DIR"

	configFile  = "config.yaml"
	sessionFile = "session.json"
	ticketsFile = "tickets.db"
)

var dirOverride string

// UseDir points every storage path at dir. An empty dir restores the default.
func UseDir(dir string) {
	dirOverride = strings.TrimSpace(dir)
}

// ConfigDir is the UseDir directory, else $CINEMA_CONFIG_DIR, else ~/.config/cinema.
func ConfigDir() (string, error) {
	if dirOverride != "" {
		return dirOverride, nil
	}
	if dir := strings.TrimSpace(os.Getenv(DirEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cinema"), nil
}

func ConfigPath() (string, error) {
	return inConfigDir(configFile)
}

func SessionPath() (string, error) {
	return inConfigDir(sessionFile)
}

func TicketsPath() (string, error) {
	return inConfigDir(ticketsFile)
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}

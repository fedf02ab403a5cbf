// Package config loads the logwrapper defaults from a KDL file. Flags on the
// command line always win over file values.
package config

import (
	"os"
	"path/filepath"

	kdl "github.com/sblinch/kdl-go"
)

// ConfigFileName is the name of the global configuration file, looked up
// under $XDG_CONFIG_HOME/logwrapper (falling back to ~/.config/logwrapper).
const ConfigFileName = "config.kdl"

// Config holds the wrapper defaults.
type Config struct {
	Settings Settings `kdl:"settings"`
}

// Settings mirrors the settings block of the KDL file.
type Settings struct {
	// Quiet suppresses relaying of the child's output lines.
	Quiet bool `kdl:"quiet"`
	// IgnoreIntQuit shields the wrapper from SIGINT/SIGQUIT while the child
	// runs.
	IgnoreIntQuit bool `kdl:"ignore-int-quit"`
	// Syslog routes lines to the local syslog daemon instead of stderr.
	Syslog bool `kdl:"syslog"`
	// CrashOnFailure raises SIGSEGV in the wrapper after an abnormal or
	// non-zero child exit, so a crash handler captures the failure.
	CrashOnFailure bool `kdl:"crash-on-failure"`
}

// Default returns the built-in defaults, matching the historical wrapper
// behavior: relay everything, ignore INT/QUIT while the child runs.
func Default() *Config {
	return &Config{
		Settings: Settings{
			IgnoreIntQuit: true,
		},
	}
}

// Load reads the global configuration, returning defaults when no file
// exists.
func Load() (*Config, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		configDir = filepath.Join(home, ".config")
	}

	configPath := filepath.Join(configDir, "logwrapper", ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse parses KDL configuration data on top of the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if err := kdl.Unmarshal([]byte(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
